package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/adpulse-ai/platform/pkg/common/logger"
	"github.com/adpulse-ai/platform/pkg/common/models"
	"github.com/adpulse-ai/platform/pkg/integration"
	"github.com/adpulse-ai/platform/pkg/observability/metrics"
	"github.com/adpulse-ai/platform/pkg/provider"
)

// IntegrationStore is the persistence surface the orchestrator needs. The
// gorm repository in pkg/integration satisfies it; tests substitute doubles.
type IntegrationStore interface {
	ActiveByTenant(ctx context.Context, tenantID string) ([]integration.Integration, error)
	MarkSyncOutcome(ctx context.Context, id, status string, lastSyncAt *time.Time) error
	AppendHistory(ctx context.Context, h *integration.SyncHistory) error
}

// EventPublisher pushes sync outcomes onto the event bus. kafka.Producer
// satisfies it; a nil publisher disables publishing.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType, source string, data map[string]interface{}) error
}

// Config carries the sync policy. All knobs were once hard-coded constants;
// they live here so the policy is tunable without code changes.
type Config struct {
	ConcurrencyLimit       int
	HighFrequencyInterval  time.Duration
	LowFrequencyInterval   time.Duration
	HighFrequencyProviders map[string]struct{}
	// AdapterTimeout converts a hung external call into an error result
	// instead of stalling its batch. Zero disables the timeout.
	AdapterTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		ConcurrencyLimit:      3,
		HighFrequencyInterval: 4 * time.Hour,
		LowFrequencyInterval:  6 * time.Hour,
		HighFrequencyProviders: map[string]struct{}{
			provider.GoogleAds: {},
			provider.Facebook:  {},
			provider.TikTok:    {},
			provider.LineAds:   {},
		},
		AdapterTimeout: 2 * time.Minute,
	}
}

type RunConfig struct {
	TenantID  string            `json:"tenant_id"`
	Providers []string          `json:"providers,omitempty"`
	DateRange *models.DateRange `json:"date_range,omitempty"`
	ForceSync bool              `json:"force_sync"`
}

type Orchestrator struct {
	cfg      Config
	registry *provider.Registry
	store    IntegrationStore
	events   EventPublisher
	nowFunc  func() time.Time
}

func NewOrchestrator(cfg Config, registry *provider.Registry, store IntegrationStore, events EventPublisher) *Orchestrator {
	def := DefaultConfig()
	if cfg.ConcurrencyLimit <= 0 {
		cfg.ConcurrencyLimit = def.ConcurrencyLimit
	}
	if cfg.HighFrequencyInterval <= 0 {
		cfg.HighFrequencyInterval = def.HighFrequencyInterval
	}
	if cfg.LowFrequencyInterval <= 0 {
		cfg.LowFrequencyInterval = def.LowFrequencyInterval
	}
	if cfg.HighFrequencyProviders == nil {
		cfg.HighFrequencyProviders = def.HighFrequencyProviders
	}
	return &Orchestrator{
		cfg:      cfg,
		registry: registry,
		store:    store,
		events:   events,
		nowFunc:  time.Now,
	}
}

// ActiveIntegrations returns the tenant's active integrations whose provider
// has a registered adapter, in the store's oldest-synced-first order.
func (o *Orchestrator) ActiveIntegrations(ctx context.Context, tenantID string) ([]integration.Integration, error) {
	integrations, err := o.store.ActiveByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing active integrations: %w", err)
	}
	eligible := make([]integration.Integration, 0, len(integrations))
	for _, integ := range integrations {
		if o.registry.Has(integ.Provider) {
			eligible = append(eligible, integ)
		}
	}
	return eligible, nil
}

// ShouldSync decides whether an integration is due. Ad-spend platforms sync
// on the high-frequency interval, analytics/SEO platforms on the low one. A
// per-integration frequency override takes precedence over the tier.
func (o *Orchestrator) ShouldSync(integ integration.Integration, force bool, now time.Time) bool {
	if force {
		return true
	}
	if integ.LastSyncAt == nil {
		return true
	}
	interval := o.cfg.LowFrequencyInterval
	key := provider.NormalizeProviderKey(integ.Provider)
	if _, ok := o.cfg.HighFrequencyProviders[key]; ok {
		interval = o.cfg.HighFrequencyInterval
	}
	if integ.SyncFrequencyMinutes != nil && *integ.SyncFrequencyMinutes > 0 {
		interval = time.Duration(*integ.SyncFrequencyMinutes) * time.Minute
	}
	return now.Sub(*integ.LastSyncAt) >= interval
}

// SyncIntegration runs one adapter and records the outcome. It never returns
// an error: adapter failures become status=error results, and persistence
// failures around the integration row are demoted to warnings so they cannot
// mask the adapter-level outcome.
func (o *Orchestrator) SyncIntegration(ctx context.Context, integ integration.Integration, opts models.SyncOptions) models.SyncResult {
	started := o.nowFunc().UTC()
	key := provider.NormalizeProviderKey(integ.Provider)
	result := models.SyncResult{
		IntegrationID: integ.ID,
		TenantID:      integ.TenantID,
		Provider:      key,
		Mode:          provider.ModeReal,
		StartedAt:     started,
	}

	fallback, err := o.invokeAdapter(ctx, &integ, opts)
	result.DurationMS = o.nowFunc().UTC().Sub(started).Milliseconds()
	if fallback.Provider != "" {
		result.Provider = fallback.Provider
		result.Mode = fallback.Mode
	}

	if err != nil {
		result.Status = models.SyncStatusError
		result.Error = err.Error()
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"tenant_id":      integ.TenantID,
			"integration_id": integ.ID,
			"provider":       result.Provider,
		}).Warn("integration sync failed")

		if updateErr := o.store.MarkSyncOutcome(ctx, integ.ID, integration.StatusError, nil); updateErr != nil {
			o.warn(&result, "status update failed", updateErr)
		}
		return result
	}

	result.Status = models.SyncStatusSuccess
	result.Synced = fallback.Stats.Synced
	now := o.nowFunc().UTC()
	if updateErr := o.store.MarkSyncOutcome(ctx, integ.ID, integration.StatusActive, &now); updateErr != nil {
		o.warn(&result, "status update failed", updateErr)
	}
	return result
}

// invokeAdapter wraps the registry call with the configured per-adapter
// timeout. The adapter runs in its own goroutine so a stalled call cannot
// block the batch past the deadline.
func (o *Orchestrator) invokeAdapter(ctx context.Context, integ *integration.Integration, opts models.SyncOptions) (provider.FallbackResult, error) {
	if o.cfg.AdapterTimeout <= 0 {
		return o.registry.SyncIntegrationWithFallback(ctx, integ, opts)
	}

	adapterCtx, cancel := context.WithTimeout(ctx, o.cfg.AdapterTimeout)
	defer cancel()

	type outcome struct {
		result provider.FallbackResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := o.registry.SyncIntegrationWithFallback(adapterCtx, integ, opts)
		done <- outcome{result: res, err: err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-adapterCtx.Done():
		key := provider.NormalizeProviderKey(integ.Provider)
		return provider.FallbackResult{Provider: key, Mode: provider.ModeReal},
			fmt.Errorf("adapter for %q did not finish within %s: %w", key, o.cfg.AdapterTimeout, adapterCtx.Err())
	}
}

// Run executes one orchestration pass for a tenant: select due integrations,
// sync them in priority order in fixed-size concurrent batches, then persist
// history and publish events best-effort. Only a failure to enumerate
// integrations propagates as an error; everything else lands in the results.
func (o *Orchestrator) Run(ctx context.Context, cfg RunConfig) ([]models.SyncResult, error) {
	integrations, err := o.ActiveIntegrations(ctx, cfg.TenantID)
	if err != nil {
		return nil, err
	}

	due := o.selectDue(integrations, cfg)
	sort.SliceStable(due, func(i, j int) bool {
		return o.registry.Priority(due[i].Provider) < o.registry.Priority(due[j].Provider)
	})

	opts := models.SyncOptions{DateRange: cfg.DateRange}
	results := make([]models.SyncResult, len(due))

	// Sequential batches with all-settle semantics: batch N+1 does not start
	// until every sync in batch N has finished, succeeded or not. This caps
	// outstanding calls against rate-limited provider APIs.
	limit := o.cfg.ConcurrencyLimit
	for start := 0; start < len(due); start += limit {
		end := start + limit
		if end > len(due) {
			end = len(due)
		}
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx] = o.SyncIntegration(ctx, due[idx], opts)
			}(i)
		}
		wg.Wait()
	}

	succeeded, failed := 0, 0
	for i := range results {
		if results[i].Status == models.SyncStatusSuccess {
			succeeded++
		} else {
			failed++
		}
		o.recordHistory(ctx, &results[i])
		o.publishEvent(ctx, &results[i])
	}
	metrics.ObserveSyncRun(succeeded, failed)

	logger.Log.WithFields(map[string]interface{}{
		"tenant_id": cfg.TenantID,
		"selected":  len(due),
		"succeeded": succeeded,
		"failed":    failed,
		"force":     cfg.ForceSync,
	}).Info("sync pipeline pass finished")

	return results, nil
}

// selectDue applies the provider filter, dedupes by canonical provider key
// (first occurrence wins, which is the oldest-synced row given store order)
// and drops integrations that synced recently.
func (o *Orchestrator) selectDue(integrations []integration.Integration, cfg RunConfig) []integration.Integration {
	var requested map[string]struct{}
	if len(cfg.Providers) > 0 {
		requested = make(map[string]struct{}, len(cfg.Providers))
		for _, p := range cfg.Providers {
			requested[provider.NormalizeProviderKey(p)] = struct{}{}
		}
	}

	now := o.nowFunc().UTC()
	seen := make(map[string]struct{}, len(integrations))
	due := make([]integration.Integration, 0, len(integrations))
	for _, integ := range integrations {
		key := provider.NormalizeProviderKey(integ.Provider)
		if requested != nil {
			if _, ok := requested[key]; !ok {
				continue
			}
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if o.ShouldSync(integ, cfg.ForceSync, now) {
			due = append(due, integ)
		}
	}
	return due
}

func (o *Orchestrator) recordHistory(ctx context.Context, result *models.SyncResult) {
	history := &integration.SyncHistory{
		TenantID:      result.TenantID,
		IntegrationID: result.IntegrationID,
		Platform:      result.Provider,
		Status:        result.Status,
		Error:         result.Error,
		SyncedAt:      result.StartedAt,
		Data: map[string]interface{}{
			"duration_ms": result.DurationMS,
			"mode":        result.Mode,
			"synced":      result.Synced,
		},
	}
	if err := o.store.AppendHistory(ctx, history); err != nil {
		o.warn(result, "history write failed", err)
	}
}

func (o *Orchestrator) publishEvent(ctx context.Context, result *models.SyncResult) {
	if o.events == nil {
		return
	}
	data := map[string]interface{}{
		"tenant_id":      result.TenantID,
		"integration_id": result.IntegrationID,
		"provider":       result.Provider,
		"status":         result.Status,
		"synced":         result.Synced,
		"duration_ms":    result.DurationMS,
	}
	if result.Error != "" {
		data["error"] = result.Error
	}
	if err := o.events.PublishEvent(ctx, "sync.completed", result.Provider, data); err != nil {
		o.warn(result, "event publish failed", err)
	}
}

// warn keeps a non-fatal failure visible on the result instead of silently
// swallowing it. The sync outcome itself is unaffected.
func (o *Orchestrator) warn(result *models.SyncResult, msg string, err error) {
	result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", msg, err))
	logger.Log.WithError(err).WithFields(map[string]interface{}{
		"integration_id": result.IntegrationID,
		"provider":       result.Provider,
	}).Warn(msg)
}

// TriggerSync is the manual-trigger entry used by the integrations HTTP API.
func (o *Orchestrator) TriggerSync(ctx context.Context, tenantID string, providers []string, force bool) ([]models.SyncResult, error) {
	return o.Run(ctx, RunConfig{TenantID: tenantID, Providers: providers, ForceSync: force})
}
