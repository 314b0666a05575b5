package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adpulse-ai/platform/pkg/common/models"
	"github.com/adpulse-ai/platform/pkg/integration"
)

const (
	GoogleAds           = "google_ads"
	Facebook            = "facebook"
	TikTok              = "tiktok"
	LineAds             = "line_ads"
	GA4                 = "ga4"
	GoogleSearchConsole = "google_search_console"
	Shopee              = "shopee"
)

const (
	ModeReal = "real"
	ModeMock = "mock"
)

// UnknownPriority sorts providers without a configured priority after every
// known channel.
const UnknownPriority = 999

var ErrAdapterNotFound = errors.New("no sync adapter registered")

// aliases maps the provider spellings seen in integration rows and API
// requests onto one canonical key per platform.
var aliases = map[string]string{
	"google":        GoogleAds,
	"googleads":     GoogleAds,
	"meta":          Facebook,
	"meta_ads":      Facebook,
	"facebook_ads":  Facebook,
	"line":          LineAds,
	"lineads":       LineAds,
	"gsc":           GoogleSearchConsole,
	"searchconsole": GoogleSearchConsole,
}

// NormalizeProviderKey lowercases, trims and resolves aliases. Unknown
// strings pass through lowercased so lookups fail explicitly downstream
// instead of here.
func NormalizeProviderKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := aliases[key]; ok {
		return canonical
	}
	return key
}

// Handler is the sync contract every provider adapter implements. It must be
// idempotent for overlapping date ranges and must reject with a descriptive
// error on unrecoverable failure.
type Handler func(ctx context.Context, integ *integration.Integration, opts models.SyncOptions) (models.SyncStats, error)

type FallbackResult struct {
	Provider string
	Mode     string
	Stats    models.SyncStats
}

// Registry resolves canonical provider keys to adapter handlers. It is a
// constructed object rather than package state so tests and per-environment
// setups can carry their own registries.
type Registry struct {
	handlers   map[string]map[string]Handler
	priorities map[string]int
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: map[string]map[string]Handler{
			ModeReal: {},
			ModeMock: {},
		},
		priorities: map[string]int{
			GoogleAds:           1,
			Facebook:            2,
			TikTok:              3,
			LineAds:             4,
			GA4:                 5,
			GoogleSearchConsole: 6,
			Shopee:              7,
		},
	}
}

func (r *Registry) Register(mode, providerKey string, h Handler) {
	if _, ok := r.handlers[mode]; !ok {
		r.handlers[mode] = map[string]Handler{}
	}
	r.handlers[mode][NormalizeProviderKey(providerKey)] = h
}

// GetSyncHandler returns the canonical provider key and its handler, or a nil
// handler when none is registered. Callers must check for nil and fail
// explicitly.
func (r *Registry) GetSyncHandler(raw, mode string) (string, Handler) {
	key := NormalizeProviderKey(raw)
	handlers, ok := r.handlers[mode]
	if !ok {
		return key, nil
	}
	return key, handlers[key]
}

func (r *Registry) Has(raw string) bool {
	_, h := r.GetSyncHandler(raw, ModeReal)
	return h != nil
}

func (r *Registry) Priority(raw string) int {
	if p, ok := r.priorities[NormalizeProviderKey(raw)]; ok {
		return p
	}
	return UnknownPriority
}

// SyncIntegrationWithFallback resolves the integration's adapter and invokes
// it, passing the adapter result through unchanged. Retries belong to the
// caller, not here.
func (r *Registry) SyncIntegrationWithFallback(ctx context.Context, integ *integration.Integration, opts models.SyncOptions) (FallbackResult, error) {
	key, handler := r.GetSyncHandler(integ.Provider, ModeReal)
	if handler == nil {
		return FallbackResult{Provider: key, Mode: ModeReal}, fmt.Errorf("%w for provider %q", ErrAdapterNotFound, key)
	}
	stats, err := handler(ctx, integ, opts)
	if err != nil {
		return FallbackResult{Provider: key, Mode: ModeReal}, err
	}
	return FallbackResult{Provider: key, Mode: ModeReal, Stats: stats}, nil
}
