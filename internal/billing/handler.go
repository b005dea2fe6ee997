package billing

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/quotebook/quotebook/internal/billing/clients"
	"github.com/quotebook/quotebook/internal/billing/invoices"
	"github.com/quotebook/quotebook/internal/billing/quotes"
	"github.com/quotebook/quotebook/internal/billing/settings"
	"github.com/quotebook/quotebook/internal/platform/httpx"
)

// Handler exposes the billing service as a JSON API.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers billing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/settings", h.getSettings)
	r.Put("/settings", h.updateSettings)

	r.Get("/clients", h.listClients)
	r.Post("/clients", h.createClient)
	r.Get("/clients/{id}", h.getClient)
	r.Put("/clients/{id}", h.updateClient)
	r.Delete("/clients/{id}", h.deleteClient)

	r.Get("/packages", h.listPackages)
	r.Get("/packages/{id}", h.getPackage)

	r.Get("/quotes", h.listQuotes)
	r.Post("/quotes", h.createQuote)
	r.Get("/quotes/new", h.newQuote)
	r.Get("/quotes/{id}", h.getQuote)
	r.Put("/quotes/{id}", h.saveQuote)
	r.Patch("/quotes/{id}", h.updateQuote)
	r.Post("/quotes/{id}/items", h.addQuoteItem)
	r.Patch("/quotes/{id}/items/{itemID}", h.updateQuoteItem)
	r.Delete("/quotes/{id}/items/{itemID}", h.removeQuoteItem)
	r.Post("/quotes/{id}/packages/{packageID}", h.addPackage)
	r.Post("/quotes/{id}/status", h.transitionQuote)
	r.Post("/quotes/{id}/convert", h.convertQuote)

	r.Get("/invoices", h.listInvoices)
	r.Get("/invoices/{id}", h.getInvoice)
	r.Put("/invoices/{id}", h.saveInvoice)
	r.Patch("/invoices/{id}", h.updateInvoice)

	r.Get("/dashboard", h.dashboard)
	r.Post("/totals", h.totals)
}

// decode reads and validates a request body.
func (h *Handler) decode(r *http.Request, target any) error {
	if err := httpx.DecodeJSON(r, target); err != nil {
		return err
	}
	if err := h.validator.Struct(target); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, _ := httpx.Status(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("billing request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

// ============================================================================
// SETTINGS HANDLERS
// ============================================================================

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Settings(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req settings.UpdateSettingsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	st, err := h.service.UpdateSettings(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

// ============================================================================
// CLIENT HANDLERS
// ============================================================================

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListClients(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req clients.SaveClientRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.service.SaveClient(r.Context(), "", req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.service.GetClient(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	var req clients.SaveClientRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.service.SaveClient(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteClient(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// PACKAGE HANDLERS
// ============================================================================

func (h *Handler) listPackages(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListPackages(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) getPackage(w http.ResponseWriter, r *http.Request) {
	pkg, err := h.service.GetPackage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pkg)
}

// ============================================================================
// QUOTE HANDLERS
// ============================================================================

func (h *Handler) listQuotes(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListQuotes(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filtered := list[:0]
		for _, q := range list {
			if string(q.Status) == status {
				filtered = append(filtered, q)
			}
		}
		list = filtered
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) createQuote(w http.ResponseWriter, r *http.Request) {
	var req CreateQuoteRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	q, err := h.service.CreateQuote(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, q)
}

// newQuote returns an unsaved draft for the editor. Its number is provisional
// until the first save.
func (h *Handler) newQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.NewQuote(r.Context(), r.URL.Query().Get("created_by"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

// saveQuote stores a whole quote under the id in the path.
func (h *Handler) saveQuote(w http.ResponseWriter, r *http.Request) {
	var q quotes.Quote
	if err := h.decode(r, &q); err != nil {
		h.fail(w, r, err)
		return
	}
	q.ID = chi.URLParam(r, "id")
	saved, err := h.service.SaveQuote(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}

func (h *Handler) getQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.GetQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) updateQuote(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuoteRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	q, err := h.service.UpdateQuote(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) addQuoteItem(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	q, err := h.service.AddQuoteItem(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, q)
}

func (h *Handler) updateQuoteItem(w http.ResponseWriter, r *http.Request) {
	var patch quotes.ItemPatch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		h.fail(w, r, err)
		return
	}
	q, err := h.service.UpdateQuoteItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemID"), patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) removeQuoteItem(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.RemoveQuoteItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) addPackage(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.AddPackageToQuote(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "packageID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) transitionQuote(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	q, err := h.service.TransitionQuote(r.Context(), chi.URLParam(r, "id"), quotes.QuoteStatus(req.Status))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) convertQuote(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.ConvertQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

// ============================================================================
// INVOICE HANDLERS
// ============================================================================

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListInvoices(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filtered := make([]invoices.Invoice, 0, len(list))
		for _, inv := range list {
			if string(inv.Status) == status {
				filtered = append(filtered, inv)
			}
		}
		list = filtered
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) saveInvoice(w http.ResponseWriter, r *http.Request) {
	var inv invoices.Invoice
	if err := h.decode(r, &inv); err != nil {
		h.fail(w, r, err)
		return
	}
	inv.ID = chi.URLParam(r, "id")
	saved, err := h.service.SaveInvoice(r.Context(), inv)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}

func (h *Handler) updateInvoice(w http.ResponseWriter, r *http.Request) {
	var req UpdateInvoiceRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	inv, err := h.service.UpdateInvoice(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// ============================================================================
// DASHBOARD AND CALCULATOR
// ============================================================================

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *Handler) totals(w http.ResponseWriter, r *http.Request) {
	var req TotalsRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.service.Totals(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}
