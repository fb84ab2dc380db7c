package api

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

// DenialResponse is returned when an entitlement or usage-gate check blocks a
// request. Upgrade tells clients to show the upgrade prompt.
type DenialResponse struct {
	Error   string `json:"error"`
	Reason  string `json:"reason"`
	Upgrade bool   `json:"upgrade"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
