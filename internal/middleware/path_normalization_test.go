package middleware

import (
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		// Static routes - no normalization
		{
			name:     "root path",
			path:     "/",
			expected: "/",
		},
		{
			name:     "health endpoint",
			path:     "/health",
			expected: "/health",
		},
		{
			name:     "ready endpoint",
			path:     "/ready",
			expected: "/ready",
		},
		{
			name:     "metrics endpoint",
			path:     "/metrics",
			expected: "/metrics",
		},
		{
			name:     "vectorize endpoint",
			path:     "/api/v1/vectorize",
			expected: "/api/v1/vectorize",
		},
		{
			name:     "context endpoint",
			path:     "/api/v1/context",
			expected: "/api/v1/context",
		},
		{
			name:     "search endpoint",
			path:     "/api/v1/search",
			expected: "/api/v1/search",
		},
		{
			name:     "insight endpoint",
			path:     "/api/v1/insight",
			expected: "/api/v1/insight",
		},
		{
			name:     "feeds endpoint",
			path:     "/api/v1/feeds",
			expected: "/api/v1/feeds",
		},
		{
			name:     "feeds fetch endpoint",
			path:     "/api/v1/feeds/fetch",
			expected: "/api/v1/feeds/fetch",
		},
		{
			name:     "signals endpoint",
			path:     "/api/v1/signals",
			expected: "/api/v1/signals",
		},
		{
			name:     "signal stats endpoint",
			path:     "/api/v1/signals/stats",
			expected: "/api/v1/signals/stats",
		},

		// Unknown paths collapse to a single label
		{
			name:     "unknown route",
			path:     "/admin/login",
			expected: "/unknown",
		},
		{
			name:     "trailing slash on known route",
			path:     "/api/v1/search/",
			expected: "/unknown",
		},
		{
			name:     "scanner probe",
			path:     "/wp-admin/setup-config.php",
			expected: "/unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizePath(tt.path)
			if result != tt.expected {
				t.Errorf("normalizePath(%q) = %q, want %q", tt.path, result, tt.expected)
			}
		})
	}
}

func TestNormalizePath_CardinalityControl(t *testing.T) {
	// Test that arbitrary unknown paths collapse to the same label
	paths := []string{
		"/probe/1",
		"/probe/2",
		"/probe/999",
		"/550e8400-e29b-41d4-a716-446655440000",
		"/.env",
	}

	expected := "/unknown"
	seen := make(map[string]bool)

	for _, path := range paths {
		result := normalizePath(path)
		if result != expected {
			t.Errorf("normalizePath(%q) = %q, want %q", path, result, expected)
		}
		seen[result] = true
	}

	// Should all normalize to the same pattern (low cardinality)
	if len(seen) != 1 {
		t.Errorf("Expected all paths to normalize to single pattern, got %d patterns: %v", len(seen), seen)
	}
}
