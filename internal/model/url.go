package model

import (
	"net/url"
	"strings"
)

// ShortenRequest is the body sent to the create endpoint.
type ShortenRequest struct {
	URL string `json:"url"`
}

// ShortenResult is the create endpoint's success reply.
type ShortenResult struct {
	OriginalURL string `json:"original_url"`
	ShortURL    string `json:"short_url"`
}

// URLRecord is one element of the history list.
// CreatedAt and Clicks are only sent by newer backends.
type URLRecord struct {
	Original  string `json:"original"`
	Short     string `json:"short"`
	CreatedAt string `json:"created_at,omitempty"`
	Clicks    *int   `json:"clicks,omitempty"`
}

// ErrorResponse is the body of a non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Status string `json:"status"`
}

// ShortCode extracts the short code from an absolute short URL,
// e.g. "http://sh.rt/abc" -> "abc". A bare code is returned as is.
func ShortCode(shortURL string) string {
	shortURL = strings.TrimSpace(shortURL)
	if u, err := url.Parse(shortURL); err == nil && u.Path != "" {
		shortURL = u.Path
	}

	segments := strings.Split(strings.Trim(shortURL, "/"), "/")
	return segments[len(segments)-1]
}
