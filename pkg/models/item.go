package models

import "time"

// Item is one unit of content fetched from a source and pushed to a sink
type Item struct {
	ID          string         `json:"id"`
	Title       string         `json:"title,omitempty"`
	URL         string         `json:"url,omitempty"`
	Description string         `json:"description,omitempty"`
	Author      string         `json:"author,omitempty"`
	MediaURLs   []string       `json:"mediaUrls,omitempty"`
	CreatedAt   time.Time      `json:"createdAt,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}
