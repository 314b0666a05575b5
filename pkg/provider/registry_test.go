package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/adpulse-ai/platform/pkg/common/models"
	"github.com/adpulse-ai/platform/pkg/integration"
)

func TestNormalizeProviderKey(t *testing.T) {
	cases := map[string]string{
		"google":         GoogleAds,
		"googleads":      GoogleAds,
		"Google_Ads":     GoogleAds,
		"meta":           Facebook,
		"meta_ads":       Facebook,
		"facebook_ads":   Facebook,
		"Facebook":       Facebook,
		"line":           LineAds,
		"lineads":        LineAds,
		"gsc":            GoogleSearchConsole,
		"searchconsole":  GoogleSearchConsole,
		"  TikTok  ":     TikTok,
		"shopee":         Shopee,
		"unknown_vendor": "unknown_vendor",
	}
	for raw, want := range cases {
		if got := NormalizeProviderKey(raw); got != want {
			t.Fatalf("NormalizeProviderKey(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestNormalizeProviderKeyIdempotent(t *testing.T) {
	for _, raw := range []string{"google", "meta_ads", "gsc", "something_else"} {
		once := NormalizeProviderKey(raw)
		if twice := NormalizeProviderKey(once); twice != once {
			t.Fatalf("normalization not idempotent for %q: %q -> %q", raw, once, twice)
		}
	}
}

func TestRegistryResolvesAliases(t *testing.T) {
	reg := NewRegistry()
	reg.Register(ModeReal, GoogleAds, func(ctx context.Context, integ *integration.Integration, opts models.SyncOptions) (models.SyncStats, error) {
		return models.SyncStats{Synced: 7}, nil
	})

	for _, raw := range []string{"google", "googleads", "google_ads", "GOOGLE"} {
		key, handler := reg.GetSyncHandler(raw, ModeReal)
		if key != GoogleAds {
			t.Fatalf("expected canonical key %q for %q, got %q", GoogleAds, raw, key)
		}
		if handler == nil {
			t.Fatalf("expected handler for %q", raw)
		}
	}
}

func TestRegistryUnregisteredProvider(t *testing.T) {
	reg := NewRegistry()

	key, handler := reg.GetSyncHandler("tiktok", ModeReal)
	if key != TikTok {
		t.Fatalf("expected key %q, got %q", TikTok, key)
	}
	if handler != nil {
		t.Fatal("expected nil handler for unregistered provider")
	}
	if reg.Has("tiktok") {
		t.Fatal("Has should report false for unregistered provider")
	}
}

func TestRegistryPriorities(t *testing.T) {
	reg := NewRegistry()
	if p := reg.Priority("google"); p != 1 {
		t.Fatalf("expected google_ads priority 1, got %d", p)
	}
	if p := reg.Priority("shopee"); p != 7 {
		t.Fatalf("expected shopee priority 7, got %d", p)
	}
	if p := reg.Priority("mystery"); p != UnknownPriority {
		t.Fatalf("expected unknown priority %d, got %d", UnknownPriority, p)
	}
}

func TestSyncIntegrationWithFallback(t *testing.T) {
	reg := NewRegistry()
	reg.Register(ModeReal, Facebook, func(ctx context.Context, integ *integration.Integration, opts models.SyncOptions) (models.SyncStats, error) {
		return models.SyncStats{Synced: 10, Campaigns: 2, Metrics: 8}, nil
	})

	integ := &integration.Integration{Provider: "meta_ads"}
	res, err := reg.SyncIntegrationWithFallback(context.Background(), integ, models.SyncOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Provider != Facebook {
		t.Fatalf("expected provider %q, got %q", Facebook, res.Provider)
	}
	if res.Stats.Synced != 10 {
		t.Fatalf("expected 10 synced, got %d", res.Stats.Synced)
	}
}

func TestSyncIntegrationWithFallbackMissingAdapter(t *testing.T) {
	reg := NewRegistry()

	integ := &integration.Integration{Provider: "shopee"}
	_, err := reg.SyncIntegrationWithFallback(context.Background(), integ, models.SyncOptions{})
	if !errors.Is(err, ErrAdapterNotFound) {
		t.Fatalf("expected ErrAdapterNotFound, got %v", err)
	}
}
