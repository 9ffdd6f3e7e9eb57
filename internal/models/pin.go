package models

import (
	"encoding/json"
	"time"
)

// GeoResult is a resolved location from a geocoding provider.
type GeoResult struct {
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
}

// Pin is the current resolved location of a single user.
type Pin struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Display   string    `json:"display"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	CreatedAt time.Time `json:"created_at"`
}

// MarshalJSON adds the unix-millisecond "ts" field the map client sorts on.
func (p Pin) MarshalJSON() ([]byte, error) {
	type pin Pin
	return json.Marshal(struct {
		pin
		TS int64 `json:"ts"`
	}{pin: pin(p), TS: p.CreatedAt.UnixMilli()})
}
