package models

// Constant attribution fields carried by every successful response.
const (
	Team    = "VISPER INC"
	Creater = "Pathum Rajapakshe"
)

// Defaults for fields the page did not provide.
const (
	UnknownTitle   = "Unknown Title"
	NoDownloadLink = "No download link found"
)

// DownloadResponse is the 200 body of GET /api/download.
// The "creater" spelling is part of the public contract.
type DownloadResponse struct {
	Status      bool   `json:"status"`
	Team        string `json:"team"`
	Creater     string `json:"creater"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Download    string `json:"download"`
}

// NewDownloadResponse fills the constant fields around the extracted ones.
func NewDownloadResponse(title, description, image, download string) *DownloadResponse {
	return &DownloadResponse{
		Status:      true,
		Team:        Team,
		Creater:     Creater,
		Title:       title,
		Description: description,
		Image:       image,
		Download:    download,
	}
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Status bool   `json:"status"`
	Error  string `json:"error"`
}

// HealthResponse is the response for GET /api/health.
type HealthResponse struct {
	Status       string `json:"status"`
	Uptime       string `json:"uptime"`
	Version      string `json:"version"`
	CacheEntries int    `json:"cache_entries"`
}
