package geocode

import (
	"context"

	"resty.dev/v3"

	"pincheck/internal/models"
)

const (
	// NominatimName selects the OpenStreetMap Nominatim backend.
	NominatimName = "nominatim"

	// NominatimBaseURL is the public Nominatim endpoint.
	NominatimBaseURL = "https://nominatim.openstreetmap.org"
)

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Nominatim queries the OSM Nominatim search API for the single best match.
type Nominatim struct {
	client  *resty.Client
	baseURL string
}

// NewNominatim creates a Nominatim provider. The usage policy requires a
// User-Agent identifying the application.
func NewNominatim(cfg ProviderConfig) *Nominatim {
	base := cfg.BaseURL
	if base == "" {
		base = NominatimBaseURL
	}
	return &Nominatim{client: newRestyClient(cfg), baseURL: base}
}

// Name implements Provider.
func (n *Nominatim) Name() string { return NominatimName }

// Lookup implements Provider.
func (n *Nominatim) Lookup(ctx context.Context, query string) (*models.GeoResult, error) {
	var places []nominatimPlace
	resp, err := n.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":              query,
			"format":         "jsonv2",
			"limit":          "1",
			"addressdetails": "1",
		}).
		SetResult(&places).
		Get(n.baseURL + "/search")
	if err := checkStatus(NominatimName, resp, err); err != nil {
		return nil, err
	}

	if len(places) == 0 {
		return nil, nil
	}

	hit := places[0]
	return &models.GeoResult{
		Latitude:    parseCoordinate(hit.Lat),
		Longitude:   parseCoordinate(hit.Lon),
		DisplayName: hit.DisplayName,
	}, nil
}
