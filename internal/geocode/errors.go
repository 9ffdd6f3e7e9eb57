package geocode

import "errors"

var (
	// ErrUpstream is returned when the geocoding provider could not be reached
	// or answered with a non-success status.
	ErrUpstream = errors.New("geocoding provider failed")

	// ErrUnknownProvider is returned by NewProvider for an unsupported backend name.
	ErrUnknownProvider = errors.New("unknown geocoding provider")
)
