// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"pincheck/internal/checkin"
	"pincheck/internal/geocode"
	"pincheck/internal/models"
	"pincheck/internal/store"
	"pincheck/internal/throttle"
)

// StubProvider is an in-memory geocode.Provider keyed by lower-cased query.
type StubProvider struct {
	mu      sync.Mutex
	Places  map[string]models.GeoResult
	Err     error
	queries []string
}

// NewStubProvider returns a provider that knows the given places.
func NewStubProvider(places map[string]models.GeoResult) *StubProvider {
	known := make(map[string]models.GeoResult, len(places))
	for k, v := range places {
		known[strings.ToLower(k)] = v
	}
	return &StubProvider{Places: known}
}

// Name implements geocode.Provider.
func (p *StubProvider) Name() string { return "stub" }

// Lookup implements geocode.Provider.
func (p *StubProvider) Lookup(_ context.Context, query string) (*models.GeoResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.queries = append(p.queries, query)
	if p.Err != nil {
		return nil, p.Err
	}
	place, ok := p.Places[strings.ToLower(query)]
	if !ok {
		return nil, nil
	}
	return &place, nil
}

// Calls returns how many lookups reached the provider.
func (p *StubProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queries)
}

// Paris is the canonical fixture place.
var Paris = models.GeoResult{Latitude: 48.8566, Longitude: 2.3522, DisplayName: "Paris, France"}

// Pipeline bundles a check-in service with its collaborators for inspection.
type Pipeline struct {
	Service  *checkin.Service
	Provider *StubProvider
	Cache    *geocode.Cache
	Resolver *geocode.Resolver
	Ledger   *throttle.Ledger
	Pins     *store.PinStore
}

// NewPipeline builds a full check-in pipeline over a stub provider.
// Cooldowns of zero use the production defaults.
func NewPipeline(t *testing.T, userCooldown, originCooldown time.Duration) *Pipeline {
	t.Helper()

	provider := NewStubProvider(map[string]models.GeoResult{"paris": Paris})
	cache := geocode.NewCache(100, time.Hour)
	resolver := geocode.NewResolver(provider, cache, time.Second, nil)
	ledger := throttle.NewLedger(userCooldown, originCooldown)
	pins := store.NewPinStore(store.DefaultMaxPins)

	return &Pipeline{
		Service:  checkin.NewService(resolver, ledger, pins, nil),
		Provider: provider,
		Cache:    cache,
		Resolver: resolver,
		Ledger:   ledger,
		Pins:     pins,
	}
}
