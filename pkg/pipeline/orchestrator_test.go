package pipeline

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/adpulse-ai/platform/pkg/common/logger"
	"github.com/adpulse-ai/platform/pkg/common/models"
	"github.com/adpulse-ai/platform/pkg/integration"
	"github.com/adpulse-ai/platform/pkg/provider"
)

func TestMain(m *testing.M) {
	logger.Init("pipeline-test")
	os.Exit(m.Run())
}

type fakeStore struct {
	mu           sync.Mutex
	integrations []integration.Integration
	history      []integration.SyncHistory
	outcomes     map[string]string
	listErr      error
	markErr      error
	historyErr   error
}

func newFakeStore(integrations ...integration.Integration) *fakeStore {
	return &fakeStore{integrations: integrations, outcomes: map[string]string{}}
}

func (f *fakeStore) ActiveByTenant(ctx context.Context, tenantID string) ([]integration.Integration, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.integrations, nil
}

func (f *fakeStore) MarkSyncOutcome(ctx context.Context, id, status string, lastSyncAt *time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes[id] = status
	return nil
}

func (f *fakeStore) AppendHistory(ctx context.Context, h *integration.SyncHistory) error {
	if f.historyErr != nil {
		return f.historyErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, *h)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (f *fakePublisher) PublishEvent(ctx context.Context, eventType, source string, data map[string]interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType+":"+source)
	return nil
}

func okHandler(stats models.SyncStats) provider.Handler {
	return func(ctx context.Context, integ *integration.Integration, opts models.SyncOptions) (models.SyncStats, error) {
		return stats, nil
	}
}

func testIntegration(id, providerKey string, lastSync *time.Time) integration.Integration {
	return integration.Integration{
		ID:         id,
		TenantID:   "tenant-1",
		Provider:   providerKey,
		IsActive:   true,
		Status:     integration.StatusActive,
		LastSyncAt: lastSync,
	}
}

func TestShouldSyncTiers(t *testing.T) {
	orch := NewOrchestrator(DefaultConfig(), provider.NewRegistry(), newFakeStore(), nil)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	if !orch.ShouldSync(testIntegration("a", provider.GoogleAds, nil), false, now) {
		t.Fatal("never-synced integration should be due")
	}

	recent := now.Add(-time.Minute)
	if !orch.ShouldSync(testIntegration("a", provider.GoogleAds, &recent), true, now) {
		t.Fatal("force should override the interval check")
	}

	exactly := now.Add(-4 * time.Hour)
	if !orch.ShouldSync(testIntegration("a", provider.GoogleAds, &exactly), false, now) {
		t.Fatal("ad platform at exactly the high-frequency interval should be due")
	}

	justUnder := now.Add(-4*time.Hour + time.Minute)
	if orch.ShouldSync(testIntegration("a", provider.GoogleAds, &justUnder), false, now) {
		t.Fatal("ad platform under the high-frequency interval should not be due")
	}

	fiveHours := now.Add(-5 * time.Hour)
	if orch.ShouldSync(testIntegration("a", provider.GA4, &fiveHours), false, now) {
		t.Fatal("analytics platform should wait for the low-frequency interval")
	}
	sixHours := now.Add(-6 * time.Hour)
	if !orch.ShouldSync(testIntegration("a", provider.GA4, &sixHours), false, now) {
		t.Fatal("analytics platform at the low-frequency interval should be due")
	}
}

func TestShouldSyncFrequencyOverride(t *testing.T) {
	orch := NewOrchestrator(DefaultConfig(), provider.NewRegistry(), newFakeStore(), nil)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	thirty := 30
	lastSync := now.Add(-45 * time.Minute)
	integ := testIntegration("a", provider.GoogleAds, &lastSync)
	integ.SyncFrequencyMinutes = &thirty

	if !orch.ShouldSync(integ, false, now) {
		t.Fatal("per-integration override of 30m should make a 45m-old sync due")
	}

	lastSync = now.Add(-10 * time.Minute)
	integ.LastSyncAt = &lastSync
	if orch.ShouldSync(integ, false, now) {
		t.Fatal("per-integration override should also delay within its window")
	}
}

func TestRunConcurrencyLimit(t *testing.T) {
	var mu sync.Mutex
	current, peak := 0, 0

	handler := func(ctx context.Context, integ *integration.Integration, opts models.SyncOptions) (models.SyncStats, error) {
		mu.Lock()
		current++
		if current > peak {
			peak = current
		}
		mu.Unlock()

		time.Sleep(30 * time.Millisecond)

		mu.Lock()
		current--
		mu.Unlock()
		return models.SyncStats{Synced: 1}, nil
	}

	registry := provider.NewRegistry()
	providers := []string{provider.GoogleAds, provider.Facebook, provider.TikTok, provider.LineAds, provider.GA4}
	integrations := make([]integration.Integration, 0, len(providers))
	for i, p := range providers {
		registry.Register(provider.ModeReal, p, handler)
		integrations = append(integrations, testIntegration(string(rune('a'+i)), p, nil))
	}

	store := newFakeStore(integrations...)
	orch := NewOrchestrator(Config{ConcurrencyLimit: 3}, registry, store, nil)

	results, err := orch.Run(context.Background(), RunConfig{TenantID: "tenant-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	if peak > 3 {
		t.Fatalf("expected at most 3 concurrent syncs, observed %d", peak)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	registry := provider.NewRegistry()
	registry.Register(provider.ModeReal, provider.GoogleAds, okHandler(models.SyncStats{Synced: 5}))
	registry.Register(provider.ModeReal, provider.Facebook, func(ctx context.Context, integ *integration.Integration, opts models.SyncOptions) (models.SyncStats, error) {
		return models.SyncStats{}, errors.New("rate limited")
	})
	registry.Register(provider.ModeReal, provider.TikTok, okHandler(models.SyncStats{Synced: 3}))

	store := newFakeStore(
		testIntegration("a", provider.GoogleAds, nil),
		testIntegration("b", provider.Facebook, nil),
		testIntegration("c", provider.TikTok, nil),
	)
	publisher := &fakePublisher{}
	orch := NewOrchestrator(DefaultConfig(), registry, store, publisher)

	results, err := orch.Run(context.Background(), RunConfig{TenantID: "tenant-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected all three integrations in the results, got %d", len(results))
	}

	byProvider := map[string]models.SyncResult{}
	for _, r := range results {
		byProvider[r.Provider] = r
	}
	if byProvider[provider.GoogleAds].Status != models.SyncStatusSuccess {
		t.Fatalf("google_ads should have succeeded, got %q", byProvider[provider.GoogleAds].Status)
	}
	if byProvider[provider.Facebook].Status != models.SyncStatusError {
		t.Fatalf("facebook should have failed, got %q", byProvider[provider.Facebook].Status)
	}
	if byProvider[provider.Facebook].Error == "" {
		t.Fatal("failed result should carry the adapter error")
	}
	if byProvider[provider.TikTok].Status != models.SyncStatusSuccess {
		t.Fatalf("tiktok should have succeeded, got %q", byProvider[provider.TikTok].Status)
	}

	if status := store.outcomes["b"]; status != integration.StatusError {
		t.Fatalf("failed integration should be marked %q, got %q", integration.StatusError, status)
	}
	if len(store.history) != 3 {
		t.Fatalf("expected one history row per result, got %d", len(store.history))
	}
	if len(publisher.events) != 3 {
		t.Fatalf("expected one event per result, got %d", len(publisher.events))
	}
}

func TestRunPriorityOrderAndDedupe(t *testing.T) {
	registry := provider.NewRegistry()
	for _, p := range []string{provider.GoogleAds, provider.Facebook, provider.Shopee} {
		registry.Register(provider.ModeReal, p, okHandler(models.SyncStats{Synced: 1}))
	}

	store := newFakeStore(
		testIntegration("shop", "shopee", nil),
		testIntegration("fb-old", "meta_ads", nil),
		testIntegration("fb-new", "facebook", nil),
		testIntegration("gads", "google", nil),
	)
	orch := NewOrchestrator(Config{ConcurrencyLimit: 1}, registry, store, nil)

	results, err := orch.Run(context.Background(), RunConfig{TenantID: "tenant-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected the duplicate facebook integration to be dropped, got %d results", len(results))
	}
	if results[0].Provider != provider.GoogleAds || results[1].Provider != provider.Facebook || results[2].Provider != provider.Shopee {
		t.Fatalf("expected priority order google_ads, facebook, shopee, got %s, %s, %s",
			results[0].Provider, results[1].Provider, results[2].Provider)
	}
	if results[1].IntegrationID != "fb-old" {
		t.Fatalf("dedupe should keep the first (oldest-synced) row, got %q", results[1].IntegrationID)
	}
}

func TestRunProviderFilter(t *testing.T) {
	registry := provider.NewRegistry()
	registry.Register(provider.ModeReal, provider.GoogleAds, okHandler(models.SyncStats{Synced: 1}))
	registry.Register(provider.ModeReal, provider.TikTok, okHandler(models.SyncStats{Synced: 1}))

	store := newFakeStore(
		testIntegration("a", provider.GoogleAds, nil),
		testIntegration("b", provider.TikTok, nil),
	)
	orch := NewOrchestrator(DefaultConfig(), registry, store, nil)

	results, err := orch.Run(context.Background(), RunConfig{TenantID: "tenant-1", Providers: []string{"googleads"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Provider != provider.GoogleAds {
		t.Fatalf("expected only google_ads to run, got %+v", results)
	}
}

func TestAdapterTimeout(t *testing.T) {
	registry := provider.NewRegistry()
	registry.Register(provider.ModeReal, provider.GoogleAds, func(ctx context.Context, integ *integration.Integration, opts models.SyncOptions) (models.SyncStats, error) {
		select {
		case <-time.After(time.Second):
			return models.SyncStats{Synced: 1}, nil
		case <-ctx.Done():
			return models.SyncStats{}, ctx.Err()
		}
	})

	store := newFakeStore()
	cfg := DefaultConfig()
	cfg.AdapterTimeout = 20 * time.Millisecond
	orch := NewOrchestrator(cfg, registry, store, nil)

	result := orch.SyncIntegration(context.Background(), testIntegration("a", provider.GoogleAds, nil), models.SyncOptions{})
	if result.Status != models.SyncStatusError {
		t.Fatalf("expected timed-out sync to report an error, got %q", result.Status)
	}
	if !strings.Contains(result.Error, "did not finish within") {
		t.Fatalf("expected timeout error, got %q", result.Error)
	}
}

func TestPersistenceFailuresBecomeWarnings(t *testing.T) {
	registry := provider.NewRegistry()
	registry.Register(provider.ModeReal, provider.GoogleAds, okHandler(models.SyncStats{Synced: 4}))

	store := newFakeStore(testIntegration("a", provider.GoogleAds, nil))
	store.markErr = errors.New("db unavailable")
	store.historyErr = errors.New("db unavailable")
	orch := NewOrchestrator(DefaultConfig(), registry, store, nil)

	results, err := orch.Run(context.Background(), RunConfig{TenantID: "tenant-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Status != models.SyncStatusSuccess {
		t.Fatalf("adapter outcome must not be masked by persistence failures, got %q", results[0].Status)
	}
	if len(results[0].Warnings) != 2 {
		t.Fatalf("expected warnings for both the status update and the history write, got %v", results[0].Warnings)
	}
}

func TestRunPropagatesListError(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("connection refused")
	orch := NewOrchestrator(DefaultConfig(), provider.NewRegistry(), store, nil)

	if _, err := orch.Run(context.Background(), RunConfig{TenantID: "tenant-1"}); err == nil {
		t.Fatal("expected the enumeration failure to propagate")
	}
}
