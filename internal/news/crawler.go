package news

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

const (
	// crawlerUserAgent identifies the crawler to feed servers.
	crawlerUserAgent = "PAI-Crawler/1.0"

	// fetchTimeout bounds a single feed fetch.
	fetchTimeout = 30 * time.Second

	// DefaultLimitPerFeed caps articles taken from each feed.
	DefaultLimitPerFeed = 10
)

// Crawler fetches RSS/Atom feeds and normalizes entries into NewsArticle
// values. It is safe for concurrent use.
type Crawler struct {
	parser   *gofeed.Parser
	sanitize *bluemonday.Policy
	logger   *slog.Logger
}

// NewCrawler creates a feed crawler.
func NewCrawler(logger *slog.Logger) *Crawler {
	parser := gofeed.NewParser()
	parser.UserAgent = crawlerUserAgent
	parser.Client = &http.Client{Timeout: fetchTimeout}

	return &Crawler{
		parser:   parser,
		sanitize: bluemonday.StrictPolicy(),
		logger:   logger,
	}
}

// FetchFeed fetches and parses a single feed, returning normalized articles.
// Individual entries that cannot be normalized are skipped.
func (c *Crawler) FetchFeed(ctx context.Context, feed FeedSource) ([]NewsArticle, error) {
	parsed, err := c.parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feed.Name, err)
	}

	now := time.Now().UTC()
	articles := make([]NewsArticle, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil || item.Link == "" {
			continue
		}

		article := NewsArticle{
			ID:        ArticleID(item.Link),
			Title:     c.cleanText(item.Title),
			URL:       item.Link,
			Source:    feed.Name,
			Summary:   c.cleanText(item.Description),
			Content:   c.cleanText(item.Content),
			FetchedAt: now,
			Metadata: map[string]string{
				"category": feed.Category,
				"feed_url": feed.URL,
			},
		}
		if article.Title == "" {
			article.Title = "Untitled"
		}
		if item.Author != nil {
			article.Author = item.Author.Name
		}
		if item.PublishedParsed != nil {
			published := item.PublishedParsed.UTC()
			article.PublishedAt = &published
		}
		for _, category := range item.Categories {
			if category != "" {
				article.Tags = append(article.Tags, category)
			}
		}

		articles = append(articles, article)
	}

	c.logger.Info("fetched feed", "feed", feed.Name, "articles", len(articles))
	return articles, nil
}

// FetchAll fetches every enabled feed, taking at most limitPerFeed articles
// from each. One feed's failure is logged and skipped, never aborts the
// crawl. The combined result is sorted newest-first.
func (c *Crawler) FetchAll(ctx context.Context, feeds []FeedSource, limitPerFeed int) []NewsArticle {
	if limitPerFeed <= 0 {
		limitPerFeed = DefaultLimitPerFeed
	}

	var all []NewsArticle
	for _, feed := range feeds {
		if !feed.Enabled {
			continue
		}

		articles, err := c.FetchFeed(ctx, feed)
		if err != nil {
			c.logger.Error("feed fetch failed", "feed", feed.Name, "error", err)
			continue
		}
		if len(articles) > limitPerFeed {
			articles = articles[:limitPerFeed]
		}
		all = append(all, articles...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return publishedOrZero(all[i]).After(publishedOrZero(all[j]))
	})

	c.logger.Info("crawl complete", "total_articles", len(all))
	return all
}

// cleanText strips HTML tags and entities and collapses whitespace.
func (c *Crawler) cleanText(s string) string {
	if s == "" {
		return ""
	}
	stripped := c.sanitize.Sanitize(s)
	unescaped := html.UnescapeString(stripped)
	return strings.Join(strings.Fields(unescaped), " ")
}

func publishedOrZero(a NewsArticle) time.Time {
	if a.PublishedAt != nil {
		return *a.PublishedAt
	}
	return time.Time{}
}
