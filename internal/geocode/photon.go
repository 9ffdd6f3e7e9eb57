package geocode

import (
	"context"
	"math"
	"strings"

	"resty.dev/v3"

	"pincheck/internal/models"
)

const (
	// PhotonName selects the komoot Photon backend.
	PhotonName = "photon"

	// PhotonBaseURL is the public Photon endpoint.
	PhotonBaseURL = "https://photon.komoot.io"
)

type photonResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Name    string `json:"name"`
			City    string `json:"city"`
			State   string `json:"state"`
			Country string `json:"country"`
		} `json:"properties"`
	} `json:"features"`
}

// Photon queries a Photon GeoJSON search API for the single best match.
type Photon struct {
	client  *resty.Client
	baseURL string
}

// NewPhoton creates a Photon provider.
func NewPhoton(cfg ProviderConfig) *Photon {
	base := cfg.BaseURL
	if base == "" {
		base = PhotonBaseURL
	}
	return &Photon{client: newRestyClient(cfg), baseURL: base}
}

// Name implements Provider.
func (p *Photon) Name() string { return PhotonName }

// Lookup implements Provider.
func (p *Photon) Lookup(ctx context.Context, query string) (*models.GeoResult, error) {
	var body photonResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     query,
			"limit": "1",
		}).
		SetResult(&body).
		Get(p.baseURL + "/api")
	if err := checkStatus(PhotonName, resp, err); err != nil {
		return nil, err
	}

	if len(body.Features) == 0 {
		return nil, nil
	}

	f := body.Features[0]
	// GeoJSON order is [lon, lat].
	lat, lon := math.NaN(), math.NaN()
	if len(f.Geometry.Coordinates) >= 2 {
		lon, lat = f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]
	}

	var parts []string
	for _, s := range []string{f.Properties.Name, f.Properties.City, f.Properties.State, f.Properties.Country} {
		if s != "" && (len(parts) == 0 || parts[len(parts)-1] != s) {
			parts = append(parts, s)
		}
	}

	return &models.GeoResult{
		Latitude:    lat,
		Longitude:   lon,
		DisplayName: strings.Join(parts, ", "),
	}, nil
}
