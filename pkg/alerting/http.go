package alerting

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/adpulse-ai/platform/pkg/common/logger"
	"github.com/adpulse-ai/platform/pkg/middleware"
	"github.com/gorilla/mux"
)

type HTTPHandler struct {
	repo *Repository
}

func NewHTTPHandler(repo *Repository) *HTTPHandler {
	return &HTTPHandler{repo: repo}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/alerts", h.handleList).Methods(http.MethodGet)
	router.HandleFunc("/alerts/{id}/ack", h.handleAck).Methods(http.MethodPost)
}

func (h *HTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	unackedOnly := r.URL.Query().Get("unacked") == "true"
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	alerts, err := h.repo.ListByTenant(r.Context(), tenantID, unackedOnly, limit)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list alerts")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(alerts)
}

func (h *HTTPHandler) handleAck(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	err := h.repo.Acknowledge(r.Context(), tenantID, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "alert not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to acknowledge alert")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
