package coffeebot

import "time"

// StatusResponse is the fixed JSON payload of GET /status.
// LastCoffee is null when no brew has ever been recorded.
type StatusResponse struct {
	LastCoffee *time.Time `json:"last_coffee"`
}

// NewStatusResponse normalises readyAt to UTC so the payload is ISO-8601 with a Z suffix.
func NewStatusResponse(readyAt *time.Time) StatusResponse {
	if readyAt == nil {
		return StatusResponse{}
	}
	t := readyAt.UTC()
	return StatusResponse{LastCoffee: &t}
}

// Plain-text bodies of the HTTP action endpoints.
const (
	BodyThanks         = "Thanks!"
	BodyAlreadyBrewing = "Already brewing"
	BodyNotFound       = "Not found"
	BodyAssetsMissing  = "UI assets not built"
	BodyInternalError  = "Internal error"
)
