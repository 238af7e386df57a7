package dto

import "time"

// ArchiveObject describes one stored audit archive.
type ArchiveObject struct {
	Name         string    `json:"name" example:"login-history/2026-08-30/1756500000000000000.json"`
	SizeBytes    int64     `json:"size_bytes" example:"18432"`
	LastModified time.Time `json:"last_modified"`
}

// ArchiveURLResponse carries a time-limited download link for an archive.
type ArchiveURLResponse struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expires_in" example:"900"`
}
