package export

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/quotebook/quotebook/internal/billing"
	"github.com/quotebook/quotebook/internal/platform/httpx"
)

// DocumentSource resolves a document ready for layout.
type DocumentSource interface {
	DocumentForExport(ctx context.Context, kind billing.DocumentKind, id string) (billing.Document, error)
}

// Enqueuer schedules an export.
type Enqueuer interface {
	Enqueue(ctx context.Context, doc billing.Document, format Format) (Status, error)
}

// StatusReader looks export progress up.
type StatusReader interface {
	Get(ctx context.Context, taskID string) (Status, error)
}

// Handler exposes export and preview endpoints.
type Handler struct {
	logger   *slog.Logger
	docs     DocumentSource
	queue    Enqueuer
	statuses StatusReader
}

// NewHandler creates an export handler.
func NewHandler(logger *slog.Logger, docs DocumentSource, queue Enqueuer, statuses StatusReader) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, docs: docs, queue: queue, statuses: statuses}
}

// MountRoutes registers export routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/quotes/{id}/export", h.export(billing.DocumentQuote))
	r.Post("/invoices/{id}/export", h.export(billing.DocumentInvoice))
	r.Get("/quotes/{id}/preview", h.preview(billing.DocumentQuote))
	r.Get("/invoices/{id}/preview", h.preview(billing.DocumentInvoice))
	r.Get("/exports/{taskID}", h.status)
	r.Get("/exports/{taskID}/file", h.download)
}

func (h *Handler) export(kind billing.DocumentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		doc, err := h.docs.DocumentForExport(r.Context(), kind, chi.URLParam(r, "id"))
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		st, err := h.queue.Enqueue(r.Context(), doc, format)
		if err != nil {
			h.logger.Error("enqueue export", slog.String("document", doc.Number), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusAccepted, st)
	}
}

func (h *Handler) preview(kind billing.DocumentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := h.docs.DocumentForExport(r.Context(), kind, chi.URLParam(r, "id"))
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		html, err := RenderLayout(doc)
		if err != nil {
			h.logger.Error("render preview", slog.String("document", doc.Number), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(html))
	}
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	st, err := h.statuses.Get(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	st, err := h.statuses.Get(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if st.State != StateDone || st.File == "" {
		httpx.RespondError(w, fmt.Errorf("export %s is %s: %w", st.TaskID, st.State, httpx.ErrConflict))
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(st.File)))
	http.ServeFile(w, r, st.File)
}
