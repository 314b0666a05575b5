package metric

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/adpulse-ai/platform/pkg/common/logger"
	"github.com/adpulse-ai/platform/pkg/middleware"
	"github.com/adpulse-ai/platform/pkg/observability/metrics"
	"github.com/gorilla/mux"
)

type HTTPHandler struct {
	repo    *Repository
	maxBody int64
}

func NewHTTPHandler(repo *Repository, maxBody int64) *HTTPHandler {
	return &HTTPHandler{repo: repo, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/campaigns", h.handleListCampaigns).Methods(http.MethodGet)
	router.HandleFunc("/metrics/ingest", h.handleBulkIngest).Methods(http.MethodPost)
}

func (h *HTTPHandler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	campaigns, err := h.repo.ListCampaigns(r.Context(), tenantID, r.URL.Query().Get("platform"))
	if err != nil {
		logger.Log.WithError(err).Error("failed to list campaigns")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(campaigns)
}

type ingestRow struct {
	CampaignID  string                 `json:"campaign_id,omitempty"`
	Platform    string                 `json:"platform"`
	Source      string                 `json:"source,omitempty"`
	Date        string                 `json:"date"`
	Hour        *int                   `json:"hour,omitempty"`
	Impressions int64                  `json:"impressions"`
	Clicks      int64                  `json:"clicks"`
	Conversions int64                  `json:"conversions"`
	Orders      int64                  `json:"orders"`
	Spend       float64                `json:"spend"`
	Revenue     float64                `json:"revenue"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// handleBulkIngest is the debug path for loading metric rows directly,
// bypassing the provider adapters. Rows go through the same upsert key as
// adapter writes, so repeated loads are safe.
func (h *HTTPHandler) handleBulkIngest(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	tenantID := middleware.TenantFromContext(r.Context())

	var rows []ingestRow
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	written := 0
	for _, row := range rows {
		if row.Platform == "" || row.Date == "" {
			http.Error(w, "platform and date are required", http.StatusBadRequest)
			return
		}
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		source := row.Source
		if source == "" {
			source = row.Platform
		}
		// Rows without an hour are daily totals.
		hour := -1
		if row.Hour != nil {
			hour = *row.Hour
		}
		m := &Metric{
			TenantID:    tenantID,
			CampaignID:  row.CampaignID,
			Platform:    row.Platform,
			Source:      source,
			Date:        date,
			Hour:        hour,
			Impressions: row.Impressions,
			Clicks:      row.Clicks,
			Conversions: row.Conversions,
			Orders:      row.Orders,
			Spend:       row.Spend,
			Revenue:     row.Revenue,
			Metadata:    row.Metadata,
		}
		if err := h.repo.UpsertMetric(r.Context(), m); err != nil {
			logger.Log.WithError(err).Error("bulk ingest upsert failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		written++
	}
	metrics.ObserveIngestedRows(written)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{"ingested": written})
}
