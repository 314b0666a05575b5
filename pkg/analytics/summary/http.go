package summary

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/adpulse-ai/platform/pkg/common/logger"
	"github.com/adpulse-ai/platform/pkg/common/models"
	"github.com/adpulse-ai/platform/pkg/middleware"
	"github.com/gorilla/mux"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/analytics/summary", h.handleSummary).Methods(http.MethodGet)
	router.HandleFunc("/analytics/compare", h.handleCompare).Methods(http.MethodGet)
	router.HandleFunc("/analytics/platforms", h.handlePlatforms).Methods(http.MethodGet)
	router.HandleFunc("/analytics/trend/weekly", h.handleWeeklyTrend).Methods(http.MethodGet)
}

func parseDateRange(r *http.Request) (models.DateRange, bool) {
	start, err1 := time.Parse("2006-01-02", r.URL.Query().Get("start"))
	end, err2 := time.Parse("2006-01-02", r.URL.Query().Get("end"))
	if err1 != nil || err2 != nil || end.Before(start) {
		return models.DateRange{}, false
	}
	return models.DateRange{Start: start, End: end}, true
}

func parsePlatforms(r *http.Request) []string {
	raw := r.URL.Query().Get("platforms")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (h *HTTPHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	dr, ok := parseDateRange(r)
	if !ok {
		http.Error(w, "start and end must be YYYY-MM-DD with start <= end", http.StatusBadRequest)
		return
	}

	result, err := h.service.Aggregate(r.Context(), tenantID, dr, parsePlatforms(r))
	if err != nil {
		logger.Log.WithError(err).Error("summary aggregation failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	// The empty state is an explicit payload, not a zeroed chart.
	if !result.HasData {
		json.NewEncoder(w).Encode(map[string]interface{}{"has_data": false, "range": result.Range})
		return
	}
	json.NewEncoder(w).Encode(result)
}

func (h *HTTPHandler) handleCompare(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	dr, ok := parseDateRange(r)
	if !ok {
		http.Error(w, "start and end must be YYYY-MM-DD with start <= end", http.StatusBadRequest)
		return
	}

	result, err := h.service.CompareToPreviousPeriod(r.Context(), tenantID, dr)
	if err != nil {
		logger.Log.WithError(err).Error("period comparison failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *HTTPHandler) handlePlatforms(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	dr, ok := parseDateRange(r)
	if !ok {
		http.Error(w, "start and end must be YYYY-MM-DD with start <= end", http.StatusBadRequest)
		return
	}

	buckets, err := h.service.GroupByPlatform(r.Context(), tenantID, dr)
	if err != nil {
		logger.Log.WithError(err).Error("platform breakdown failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(buckets)
}

func (h *HTTPHandler) handleWeeklyTrend(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())

	endDate := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := r.URL.Query().Get("end"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "end must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		endDate = parsed
	}
	weeks, _ := strconv.Atoi(r.URL.Query().Get("weeks"))

	points, err := h.service.RollingWeeklyTrend(r.Context(), tenantID, endDate, weeks)
	if err != nil {
		logger.Log.WithError(err).Error("weekly trend failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(points)
}
