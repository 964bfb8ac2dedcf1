// Package news provides the article domain model and RSS feed crawling for
// the signal system.
package news

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// NewsArticle represents a normalized article from an RSS/web source.
// Articles are immutable after creation; re-ingesting the same URL
// overwrites the stored vector and metadata under the same ID.
type NewsArticle struct {
	// ID is derived from the canonical URL, so re-fetching the same URL
	// yields the same ID and an idempotent overwrite instead of a duplicate.
	ID string `json:"id"`

	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`

	// Summary and Content are plain text with HTML stripped.
	Summary string `json:"summary"`
	Content string `json:"content"`

	Author string `json:"author,omitempty"`

	// PublishedAt is the publication timestamp, if the feed provided one.
	PublishedAt *time.Time `json:"published_at,omitempty"`

	// FetchedAt records when the crawler saw this article.
	FetchedAt time.Time `json:"fetched_at"`

	Tags []string `json:"tags,omitempty"`

	// Metadata carries provider-specific extras (feed category, feed URL).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ArticleID derives the deterministic, content-derived article identity
// from its canonical URL.
func ArticleID(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

// Signal wraps an article with its relevance score for one ranking request.
// Signals are never persisted; they exist only in the response.
type Signal struct {
	Article NewsArticle `json:"article"`

	// Score is the user-facing relevance in [0, 10], rounded to 1 decimal.
	Score float64 `json:"score"`

	// Similarity is the raw index similarity in [0, 1], rounded to 3 decimals.
	Similarity float64 `json:"similarity"`

	// Reason is an optional AI-generated justification. The base pipeline
	// leaves it empty.
	Reason string `json:"reason,omitempty"`
}

// FeedSource is an RSS/Atom feed configuration entry.
type FeedSource struct {
	Name     string `json:"name" koanf:"name"`
	URL      string `json:"url" koanf:"url"`
	Category string `json:"category" koanf:"category"`
	Enabled  bool   `json:"enabled" koanf:"enabled"`
}

// DefaultFeeds returns the built-in feed sources used when no feeds are
// configured.
func DefaultFeeds() []FeedSource {
	return []FeedSource{
		{Name: "TechCrunch", URL: "https://techcrunch.com/feed/", Category: "tech", Enabled: true},
		{Name: "Hacker News", URL: "https://hnrss.org/frontpage", Category: "tech", Enabled: true},
		{Name: "MIT Technology Review", URL: "https://www.technologyreview.com/feed/", Category: "tech", Enabled: true},
		{Name: "The Verge", URL: "https://www.theverge.com/rss/index.xml", Category: "tech", Enabled: true},
		{Name: "Wired", URL: "https://www.wired.com/feed/rss", Category: "tech", Enabled: true},
	}
}
