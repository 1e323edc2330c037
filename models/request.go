package models

import "strings"

// DownloadRequest is bound from the query string of GET /api/download.
type DownloadRequest struct {
	// URL is the cartoons.lk page to scrape. Required.
	URL string `form:"url"`
}

// Validate checks the request against the allowed URL prefix.
// The check is a literal prefix match, not a parsed-host comparison.
func (r *DownloadRequest) Validate(allowedPrefix string) error {
	if r.URL == "" {
		return NewScrapeError(ErrCodeMissingURL, MsgMissingURL, nil)
	}
	if !strings.HasPrefix(r.URL, allowedPrefix) {
		return NewScrapeError(ErrCodeInvalidDomain, MsgInvalidDomain, nil)
	}
	return nil
}
