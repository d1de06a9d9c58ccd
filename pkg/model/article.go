package model

import "time"

// Article is a news item returned by a news provider for a keyword
type Article struct {
	SourceName  string
	Title       string
	URL         string
	PublishedAt time.Time
}
