package alerting

import (
	"context"
	"fmt"
	"sync"

	"github.com/adpulse-ai/platform/pkg/common/logger"
	"github.com/adpulse-ai/platform/pkg/common/models"
	"github.com/adpulse-ai/platform/pkg/observability/metrics"
	"github.com/google/uuid"
)

// AlertStore is the persistence surface the evaluator needs; the gorm
// repository satisfies it, tests substitute doubles.
type AlertStore interface {
	Create(ctx context.Context, alert *Alert) error
}

// Service consumes sync.completed events and raises alerts per the rule set.
// Consecutive-failure counts are tracked in memory per (tenant, provider);
// a lost counter after restart only delays an alert by a few failures.
type Service struct {
	store AlertStore
	rules RulesConfig

	mu       sync.Mutex
	failures map[string]float64
}

func NewService(store AlertStore, rules RulesConfig) *Service {
	return &Service{
		store:    store,
		rules:    rules,
		failures: make(map[string]float64),
	}
}

// HandleEvent is the kafka consumer entry point.
func (s *Service) HandleEvent(ctx context.Context, event models.Event) error {
	if event.Type != "sync.completed" {
		return nil
	}
	tenantID, _ := event.Data["tenant_id"].(string)
	providerKey, _ := event.Data["provider"].(string)
	status, _ := event.Data["status"].(string)
	durationMS, _ := event.Data["duration_ms"].(float64)
	if tenantID == "" || providerKey == "" {
		return nil
	}

	for _, rule := range s.rules.Rules {
		if !rule.Enabled {
			continue
		}
		switch rule.Type {
		case RuleSyncFailure:
			s.evalFailureRule(ctx, rule, tenantID, providerKey, status, event.Data)
		case RuleSyncDuration:
			s.evalDurationRule(ctx, rule, tenantID, providerKey, durationMS, event.Data)
		}
	}
	return nil
}

func (s *Service) evalFailureRule(ctx context.Context, rule Rule, tenantID, providerKey, status string, data map[string]interface{}) {
	key := tenantID + ":" + providerKey

	s.mu.Lock()
	if status == models.SyncStatusSuccess {
		delete(s.failures, key)
		s.mu.Unlock()
		return
	}
	s.failures[key]++
	count := s.failures[key]
	fire := count >= rule.Threshold
	if fire {
		delete(s.failures, key)
	}
	s.mu.Unlock()

	if !fire {
		return
	}
	s.raise(ctx, &Alert{
		TenantID: tenantID,
		Provider: providerKey,
		Type:     rule.Type,
		Severity: rule.Severity,
		Message:  fmt.Sprintf("%s sync failed %.0f times in a row", providerKey, count),
		Payload:  data,
	})
}

func (s *Service) evalDurationRule(ctx context.Context, rule Rule, tenantID, providerKey string, durationMS float64, data map[string]interface{}) {
	if durationMS < rule.Threshold {
		return
	}
	s.raise(ctx, &Alert{
		TenantID: tenantID,
		Provider: providerKey,
		Type:     rule.Type,
		Severity: rule.Severity,
		Message:  fmt.Sprintf("%s sync took %.0fms (threshold %.0fms)", providerKey, durationMS, rule.Threshold),
		Payload:  data,
	})
}

func (s *Service) raise(ctx context.Context, alert *Alert) {
	alert.ID = uuid.New().String()
	if err := s.store.Create(ctx, alert); err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"tenant_id": alert.TenantID,
			"type":      alert.Type,
		}).Error("failed to persist alert")
		return
	}
	metrics.ObserveAlertRaised()
	logger.Log.WithFields(map[string]interface{}{
		"tenant_id": alert.TenantID,
		"provider":  alert.Provider,
		"type":      alert.Type,
		"severity":  alert.Severity,
	}).Warn(alert.Message)
}
