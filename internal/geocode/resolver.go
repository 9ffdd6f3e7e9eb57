package geocode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"pincheck/internal/metrics"
	"pincheck/internal/models"
	"pincheck/internal/telemetry"
	"pincheck/internal/validation"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 10 * time.Second

// Resolver turns a normalized query into a GeoResult, consulting the cache
// before the provider. Concurrent misses for the same key share one call.
type Resolver struct {
	provider Provider
	cache    *Cache
	timeout  time.Duration
	group    singleflight.Group
	log      *zap.Logger
}

// NewResolver creates a resolver backed by provider and cache.
func NewResolver(provider Provider, cache *Cache, timeout time.Duration, log *zap.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{provider: provider, cache: cache, timeout: timeout, log: log}
}

// Resolve returns the location for query, (nil, nil) when there is no usable
// match, or an error wrapping ErrUpstream when the provider failed.
// An empty query never reaches the provider.
func (r *Resolver) Resolve(ctx context.Context, query string) (*models.GeoResult, error) {
	if query == "" {
		return nil, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "geocode.Resolve")
	defer span.End()

	key := validation.CacheKey(query)
	if hit, ok := r.cache.Get(key); ok {
		metrics.RecordCacheLookup(true)
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return &hit, nil
	}
	metrics.RecordCacheLookup(false)
	span.SetAttributes(attribute.Bool("cache.hit", false))

	// The flight outlives any single caller; only the lookup timeout bounds it.
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := r.group.Do(key, func() (any, error) {
		return r.lookup(flightCtx, query, key)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Bool("singleflight.shared", shared))

	res, _ := v.(*models.GeoResult)
	if res == nil {
		return nil, nil
	}
	out := *res
	return &out, nil
}

// Cache exposes the underlying cache for sweeping and health reporting.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

func (r *Resolver) lookup(ctx context.Context, query, key string) (*models.GeoResult, error) {
	// A flight that finished just before this one may have filled the key.
	if hit, ok := r.cache.Get(key); ok {
		return &hit, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	found, err := r.provider.Lookup(ctx, query)
	elapsed := time.Since(start)

	if err != nil {
		metrics.RecordUpstream(r.provider.Name(), "error", elapsed)
		if !errors.Is(err, ErrUpstream) {
			err = fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		r.log.Warn("geocoding provider failed",
			zap.String("provider", r.provider.Name()),
			zap.String("query", query),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return nil, err
	}

	if found == nil {
		metrics.RecordUpstream(r.provider.Name(), "empty", elapsed)
		r.log.Debug("no geocoding candidate", zap.String("query", query))
		return nil, nil
	}

	if !validation.ValidateCoordinates(found.Latitude, found.Longitude) {
		metrics.RecordUpstream(r.provider.Name(), "invalid", elapsed)
		r.log.Debug("discarding candidate with unusable coordinates",
			zap.String("query", query),
			zap.Float64("lat", found.Latitude),
			zap.Float64("lon", found.Longitude))
		return nil, nil
	}

	metrics.RecordUpstream(r.provider.Name(), "ok", elapsed)
	result := models.GeoResult{
		Latitude:    found.Latitude,
		Longitude:   found.Longitude,
		DisplayName: validation.NormalizeDisplay(found.DisplayName, query),
	}
	r.cache.Put(key, result)
	return &result, nil
}
