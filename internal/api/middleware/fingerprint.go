package middleware

import (
	"net/http"
	"strings"

	"github.com/mcoot/resonance/internal/dependencies/fingerprint"
)

// Headers a view may send to sharpen its fingerprint. Browsers send the
// client-hint header themselves; the others are set by the view.
const (
	HeaderPlatform = "Sec-CH-UA-Platform"
	HeaderTimezone = "X-Timezone"
	HeaderScreen   = "X-Screen"
)

// Fingerprint places the caller's device traits in the request context so
// that the identity service can derive a device id
func Fingerprint() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := fingerprint.WithTraits(r.Context(), TraitsFromRequest(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TraitsFromRequest reads device traits from request headers
func TraitsFromRequest(r *http.Request) fingerprint.Traits {
	return fingerprint.Traits{
		UserAgent: r.UserAgent(),
		Languages: parseLanguages(r.Header.Get("Accept-Language")),
		Platform:  strings.Trim(r.Header.Get(HeaderPlatform), `"`),
		Timezone:  r.Header.Get(HeaderTimezone),
		Screen:    r.Header.Get(HeaderScreen),
	}
}

// parseLanguages extracts language tags from an Accept-Language header,
// dropping quality weights
func parseLanguages(header string) []string {
	var langs []string
	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(part, ";")
		if tag = strings.TrimSpace(tag); tag != "" && tag != "*" {
			langs = append(langs, tag)
		}
	}
	return langs
}
