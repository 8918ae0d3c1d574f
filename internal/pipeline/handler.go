package pipeline

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/praval-labs/praval/internal/documents"
	"github.com/praval-labs/praval/pkg/handlers"
	"github.com/praval-labs/praval/pkg/routes"
)

// Handler provides HTTP endpoints for pipeline control.
type Handler struct {
	orchestrator *Orchestrator
	logger       *slog.Logger
}

// NewHandler creates a Handler over the orchestrator.
func NewHandler(orchestrator *Orchestrator, logger *slog.Logger) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		logger:       logger.With("handler", "pipeline"),
	}
}

// Routes returns the route group definition for pipeline endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/pipeline",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/documents/{id}/submit", Handler: h.Submit},
			{Method: "GET", Pattern: "/documents/{id}", Handler: h.Status},
			{Method: "POST", Pattern: "/triggers/refresh", Handler: h.RefreshTriggers},
		},
	}
}

// Submit queues a document for processing.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, documents.ErrInvalidFile)
		return
	}

	if err := h.orchestrator.Submit(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, submitStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, map[string]string{
		"id":     id.String(),
		"status": "queued",
	})
}

// Status returns the document's current processing status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, documents.ErrInvalidFile)
		return
	}

	status, err := h.orchestrator.deps.Documents.GetStatus(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, documents.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, status)
}

// RefreshTriggers invalidates the trigger phrase cache so updated
// category configuration takes effect on the next scan.
func (h *Handler) RefreshTriggers(w http.ResponseWriter, r *http.Request) {
	h.orchestrator.deps.Cache.Invalidate()
	handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func submitStatus(err error) int {
	switch classify(err) {
	case documents.StageRejected:
		return http.StatusConflict
	default:
		if documents.MapHTTPStatus(err) == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusServiceUnavailable
	}
}
