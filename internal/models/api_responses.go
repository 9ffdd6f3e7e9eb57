package models

// CheckInRequest is the JSON body accepted by the check-in API.
type CheckInRequest struct {
	User     string `json:"user"`
	Location string `json:"location"`
}

// CheckInResponse reports the outcome of a single check-in.
type CheckInResponse struct {
	Outcome string `json:"outcome"`
	Message string `json:"message,omitempty"`
	Pin     *Pin   `json:"pin,omitempty"`
}

// HealthResponse is returned by the liveness probe.
type HealthResponse struct {
	Status       string `json:"status"`
	Pins         int    `json:"pins"`
	GeocodeCache int    `json:"geocode_cache"`
}
