package news

import "testing"

// TestArticleID_Deterministic tests that the same URL always yields the
// same ID.
func TestArticleID_Deterministic(t *testing.T) {
	a := ArticleID("https://example.com/story")
	b := ArticleID("https://example.com/story")
	if a != b {
		t.Errorf("expected identical IDs for same URL, got %s and %s", a, b)
	}
	if len(a) != 32 {
		t.Errorf("expected 32-char hex ID, got %q", a)
	}
}

// TestArticleID_DistinctURLs tests that different URLs yield different IDs.
func TestArticleID_DistinctURLs(t *testing.T) {
	a := ArticleID("https://example.com/story-1")
	b := ArticleID("https://example.com/story-2")
	if a == b {
		t.Error("different URLs produced the same ID")
	}
}

// TestDefaultFeeds tests that the built-in feeds are all enabled and named.
func TestDefaultFeeds(t *testing.T) {
	feeds := DefaultFeeds()
	if len(feeds) == 0 {
		t.Fatal("expected non-empty default feeds")
	}
	for _, f := range feeds {
		if f.Name == "" || f.URL == "" {
			t.Errorf("feed missing name or url: %+v", f)
		}
		if !f.Enabled {
			t.Errorf("default feed %s should be enabled", f.Name)
		}
	}
}
