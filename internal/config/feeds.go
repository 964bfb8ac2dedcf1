package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/pai-labs/engine/internal/news"
	"github.com/pai-labs/engine/internal/validate"
)

// LoadFeeds reads feed sources from the configured YAML file. An empty path
// returns the built-in defaults. The file holds a top-level "feeds" list:
//
//	feeds:
//	  - name: TechCrunch
//	    url: https://techcrunch.com/feed/
//	    category: tech
//	    enabled: true
func LoadFeeds(path string) ([]news.FeedSource, error) {
	if path == "" {
		return news.DefaultFeeds(), nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load feeds file %s: %w", path, err)
	}

	var feeds []news.FeedSource
	if err := k.Unmarshal("feeds", &feeds); err != nil {
		return nil, fmt.Errorf("failed to parse feeds file %s: %w", path, err)
	}
	if len(feeds) == 0 {
		return nil, fmt.Errorf("feeds file %s contains no feeds", path)
	}

	for _, feed := range feeds {
		if feed.Name == "" {
			return nil, fmt.Errorf("feeds file %s: every feed needs a name", path)
		}
		// The crawler fetches these URLs, so a misconfigured feed must not be
		// able to point it at internal services.
		if _, err := validate.FeedURL(feed.URL); err != nil {
			return nil, fmt.Errorf("feeds file %s: feed %q: %w", path, feed.Name, err)
		}
	}
	return feeds, nil
}
