package api

import (
	"testing"
)

func TestOriginChecker(t *testing.T) {
	checker := NewOriginChecker("http://localhost:3000, HTTPS://Chat.Example.COM,  ,not a url")

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"allowed origin", "http://localhost:3000", true},
		{"case-insensitive match", "HTTP://LOCALHOST:3000", true},
		{"normalized configured origin", "https://chat.example.com", true},
		{"disallowed origin", "http://evil.example.com", false},
		{"different port", "http://localhost:9999", false},
		{"scheme mismatch", "https://localhost:3000", false},
		{"no origin header", "", true},
		{"garbage origin", "://///", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.Allowed(tt.origin); got != tt.want {
				t.Errorf("Allowed(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestOriginCheckerWildcard(t *testing.T) {
	checker := NewOriginChecker("*")

	if !checker.Allowed("http://anywhere.example.com") {
		t.Error("wildcard config should allow any origin")
	}
}

func TestNormalizeOrigin(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"http://localhost:3000", "http://localhost:3000", true},
		{"HTTPS://Example.COM", "https://example.com", true},
		{"http://example.com/path", "http://example.com", true},
		{"example.com", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := normalizeOrigin(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("normalizeOrigin(%q) = (%q, %v), want (%q, %v)",
				tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
