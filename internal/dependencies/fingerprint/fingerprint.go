// Package fingerprint derives a best-effort device identifier from observable
// client characteristics. The result is stable across reloads of the same
// browser but is neither unique nor secret, and must never be treated as a
// credential.
package fingerprint

import (
	"context"
	"encoding/hex"
	"errors"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/mcoot/resonance/internal/model"
)

// Fingerprinter computes the device identifier for the current caller
type Fingerprinter interface {
	Fingerprint(ctx context.Context) (model.DeviceID, error)
}

// Traits are the device characteristics that feed the fingerprint
type Traits struct {
	UserAgent string
	Languages []string
	Platform  string
	Timezone  string
	Screen    string
}

// IsZero reports whether no characteristic was observed
func (t Traits) IsZero() bool {
	return t.UserAgent == "" && len(t.Languages) == 0 && t.Platform == "" && t.Timezone == "" && t.Screen == ""
}

// Hash returns the hex encoded BLAKE2b-256 digest of the traits. Language order
// does not matter.
func Hash(t Traits) model.DeviceID {
	langs := make([]string, 0, len(t.Languages))
	for _, l := range t.Languages {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			langs = append(langs, l)
		}
	}
	sort.Strings(langs)

	canonical := strings.Join([]string{
		"ua=" + strings.TrimSpace(t.UserAgent),
		"lang=" + strings.Join(langs, ","),
		"platform=" + strings.TrimSpace(t.Platform),
		"tz=" + strings.TrimSpace(t.Timezone),
		"screen=" + strings.TrimSpace(t.Screen),
	}, "\n")

	sum := blake2b.Sum256([]byte(canonical))
	// 16 bytes is plenty for a soft identity and keeps storage keys short
	return model.DeviceID(hex.EncodeToString(sum[:16]))
}

type contextKey struct{}

// WithTraits returns a context carrying the given traits
func WithTraits(ctx context.Context, t Traits) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// TraitsFromContext returns the traits stored in ctx, if any
func TraitsFromContext(ctx context.Context) (Traits, bool) {
	t, ok := ctx.Value(contextKey{}).(Traits)
	return t, ok
}

// ContextFingerprinter fingerprints the traits carried by the request context
type ContextFingerprinter struct{}

// NewContextFingerprinter creates a ContextFingerprinter
func NewContextFingerprinter() *ContextFingerprinter {
	return &ContextFingerprinter{}
}

// Fingerprint hashes the traits in ctx. It fails when the context carries no
// traits or only empty ones.
func (f *ContextFingerprinter) Fingerprint(ctx context.Context) (model.DeviceID, error) {
	t, ok := TraitsFromContext(ctx)
	if !ok || t.IsZero() {
		return "", model.ErrFingerprintUnavailable
	}
	return Hash(t), nil
}

// HostFingerprinter fingerprints the local machine. Used when there is no
// remote client, e.g. a locally embedded player.
type HostFingerprinter struct {
	hostname func() (string, error)
}

// NewHostFingerprinter creates a HostFingerprinter
func NewHostFingerprinter() *HostFingerprinter {
	return &HostFingerprinter{hostname: os.Hostname}
}

// Fingerprint hashes the host name, OS, architecture and local timezone
func (f *HostFingerprinter) Fingerprint(ctx context.Context) (model.DeviceID, error) {
	host, err := f.hostname()
	if err != nil {
		return "", errors.Join(model.ErrFingerprintUnavailable, err)
	}
	zone, _ := time.Now().Zone()
	return Hash(Traits{
		UserAgent: host,
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Timezone:  zone,
	}), nil
}

// Chain tries each fingerprinter in order and returns the first success
type Chain []Fingerprinter

// Fingerprint implements Fingerprinter
func (c Chain) Fingerprint(ctx context.Context) (model.DeviceID, error) {
	errs := []error{model.ErrFingerprintUnavailable}
	for _, f := range c {
		id, err := f.Fingerprint(ctx)
		if err == nil {
			return id, nil
		}
		errs = append(errs, err)
	}
	return "", errors.Join(errs...)
}
