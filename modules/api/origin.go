package api

import (
	"log"
	"net/url"
	"strings"
)

// OriginChecker validates WebSocket upgrade origins against a configured
// allow list. Origins are compared in scheme://host form, lowercased.
type OriginChecker struct {
	allowed  map[string]bool
	allowAll bool
}

// NewOriginChecker builds a checker from a comma-separated origin list.
// A "*" entry allows every origin; invalid entries are skipped with a log.
func NewOriginChecker(origins string) *OriginChecker {
	checker := &OriginChecker{allowed: make(map[string]bool)}

	for _, origin := range strings.Split(origins, ",") {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		if trimmed == "*" {
			checker.allowAll = true
			continue
		}

		normalized, ok := normalizeOrigin(trimmed)
		if !ok {
			log.Printf("[api] Ignoring invalid origin in configuration: %q", origin)
			continue
		}
		checker.allowed[normalized] = true
	}

	return checker
}

// Allowed reports whether the given Origin header value may connect.
// Requests without an Origin header (non-browser clients) are allowed.
func (o *OriginChecker) Allowed(origin string) bool {
	if origin == "" {
		return true
	}
	if o.allowAll {
		return true
	}

	normalized, ok := normalizeOrigin(origin)
	if !ok {
		return false
	}
	return o.allowed[normalized]
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil {
		return "", false
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}
