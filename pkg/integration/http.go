package integration

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/adpulse-ai/platform/pkg/common/logger"
	"github.com/adpulse-ai/platform/pkg/common/models"
	"github.com/adpulse-ai/platform/pkg/middleware"
	"github.com/gorilla/mux"
)

// SyncTrigger is implemented by the pipeline orchestrator.
type SyncTrigger interface {
	TriggerSync(ctx context.Context, tenantID string, providers []string, force bool) ([]models.SyncResult, error)
}

type HTTPHandler struct {
	service *Service
	trigger SyncTrigger
	maxBody int64
}

func NewHTTPHandler(service *Service, trigger SyncTrigger, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, trigger: trigger, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/integrations", h.handleCreate).Methods(http.MethodPost)
	router.HandleFunc("/integrations", h.handleList).Methods(http.MethodGet)
	router.HandleFunc("/integrations/sync", h.handleSync).Methods(http.MethodPost)
	router.HandleFunc("/integrations/{id}", h.handleGet).Methods(http.MethodGet)
	router.HandleFunc("/integrations/{id}", h.handleUpdate).Methods(http.MethodPatch)
	router.HandleFunc("/integrations/{id}", h.handleDelete).Methods(http.MethodDelete)
	router.HandleFunc("/integrations/{id}/history", h.handleHistory).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	tenantID := middleware.TenantFromContext(r.Context())

	var input CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	integ, err := h.service.Create(r.Context(), tenantID, input)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to create integration")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(integ)
}

func (h *HTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	integrations, err := h.service.List(r.Context(), tenantID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list integrations")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(integrations)
}

func (h *HTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	integ, err := h.service.Get(r.Context(), tenantID, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err, "failed to fetch integration")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(integ)
}

func (h *HTTPHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	tenantID := middleware.TenantFromContext(r.Context())

	var input UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	integ, err := h.service.Update(r.Context(), tenantID, mux.Vars(r)["id"], input)
	if err != nil {
		h.writeError(w, err, "failed to update integration")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(integ)
}

func (h *HTTPHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	if err := h.service.Delete(r.Context(), tenantID, mux.Vars(r)["id"]); err != nil {
		h.writeError(w, err, "failed to delete integration")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type syncRequest struct {
	Providers []string `json:"providers,omitempty"`
	Force     bool     `json:"force"`
}

// handleSync is the manual trigger. The response is the full per-provider
// outcome report; partial failures are data, not an error status.
func (h *HTTPHandler) handleSync(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())

	var req syncRequest
	if r.Body != nil {
		// An empty body means "sync everything now-due".
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	results, err := h.trigger.TriggerSync(r.Context(), tenantID, req.Providers, req.Force)
	if err != nil {
		logger.Log.WithError(err).Error("sync trigger failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

func (h *HTTPHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	history, err := h.service.History(r.Context(), tenantID, mux.Vars(r)["id"], limit)
	if err != nil {
		h.writeError(w, err, "failed to fetch sync history")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(history)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "integration not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, ErrValidation) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.Log.WithError(err).Error(msg)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
