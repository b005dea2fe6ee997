package billing

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotebook/quotebook/internal/billing/invoices"
	"github.com/quotebook/quotebook/internal/billing/quotes"
	"github.com/quotebook/quotebook/internal/platform/httpx"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, _ := newTestService(t, true)
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	r := chi.NewRouter()
	r.Route("/api", h.MountRoutes)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHandlerQuoteToInvoiceFlow(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/quotes", map[string]any{
		"client_id": "client2",
		"items": []map[string]any{
			{"description": "Development server", "qty": "1", "unit_price": "1500"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	q := decodeBody[quotes.Quote](t, rec)
	assert.Equal(t, "QT-2024-0002", q.QuoteNumber)

	rec = doJSON(t, r, http.MethodPost, "/api/quotes/"+q.ID+"/packages/pkg1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	q = decodeBody[quotes.Quote](t, rec)
	assert.Len(t, q.Items, 4)

	rec = doJSON(t, r, http.MethodPost, "/api/quotes/"+q.ID+"/convert", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	for _, status := range []string{"sent", "accepted"} {
		rec = doJSON(t, r, http.MethodPost, "/api/quotes/"+q.ID+"/status", StatusRequest{Status: status})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodPost, "/api/quotes/"+q.ID+"/convert", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	inv := decodeBody[invoices.Invoice](t, rec)
	assert.Equal(t, "INV-2024-0002", inv.InvoiceNumber)
	assert.True(t, inv.TotalInclVat.Equal(q.TotalInclVat))

	rec = doJSON(t, r, http.MethodPost, "/api/quotes/"+q.ID+"/convert", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, r, http.MethodPatch, "/api/invoices/"+inv.ID, map[string]any{"status": "partially_paid"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, invoices.InvoiceStatusPartiallyPaid, decodeBody[invoices.Invoice](t, rec).Status)

	rec = doJSON(t, r, http.MethodGet, "/api/invoices?status=partially_paid", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]invoices.Invoice](t, rec), 1)
}

func TestHandlerErrors(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{name: "unknown quote", method: http.MethodGet, path: "/api/quotes/nope", status: http.StatusNotFound},
		{name: "unknown invoice", method: http.MethodGet, path: "/api/invoices/nope", status: http.StatusNotFound},
		{name: "malformed body", method: http.MethodPost, path: "/api/quotes", body: "{", status: http.StatusBadRequest},
		{name: "unknown field", method: http.MethodPost, path: "/api/clients", body: `{"name":"x","shoe_size":9}`, status: http.StatusBadRequest},
		{name: "client without name", method: http.MethodPost, path: "/api/clients", body: map[string]any{"email": "a@b.co"}, status: http.StatusBadRequest},
		{name: "bad item type", method: http.MethodPost, path: "/api/quotes/quote1/items", body: map[string]any{"item_type": "weekly"}, status: http.StatusBadRequest},
		{name: "bad transition", method: http.MethodPost, path: "/api/quotes/quote1/status", body: StatusRequest{Status: "draft"}, status: http.StatusConflict},
		{name: "bad vat", method: http.MethodPut, path: "/api/settings", body: `{"vat_percentage":"250"}`, status: http.StatusBadRequest},
		{name: "unknown package", method: http.MethodGet, path: "/api/packages/pkg9", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			problem := decodeBody[httpx.ProblemDetail](t, rec)
			assert.Equal(t, tt.status, problem.Status)
		})
	}
}

func TestHandlerClientsCRUD(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/clients", map[string]any{"name": "Grace", "email": "grace@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[map[string]any](t, rec)
	id := created["id"].(string)

	rec = doJSON(t, r, http.MethodPut, "/api/clients/"+id, map[string]any{"name": "Grace H."})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, r, http.MethodPut, "/api/clients/missing", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/api/clients/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/clients/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerTotals(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/totals", map[string]any{
		"items": []map[string]any{
			{"qty": "1", "unit_price": "1500"},
			{"qty": "1", "unit_price": "15000"},
		},
		"deposit_percentage": "40",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "18975", body["total_incl_vat"])
	assert.Equal(t, "7590", body["deposit_amount"])
	assert.Equal(t, "11385", body["balance_remaining"])
}

func TestHandlerTotalsAcceptsJSONNumbers(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/totals", map[string]any{
		"items": []map[string]any{
			{"qty": 2, "unit_price": 100},
			{"qty": "abc", "unit_price": 50.5},
		},
		"vat_percentage":     15,
		"deposit_percentage": 50,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "200", body["subtotal_excl_vat"])
	assert.Equal(t, "230", body["total_incl_vat"])
	assert.Equal(t, "115", body["deposit_amount"])

	rec = doJSON(t, r, http.MethodPatch, "/api/quotes/quote1/items/item1", map[string]any{"qty": 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	q := decodeBody[quotes.Quote](t, rec)
	assert.True(t, q.Items[0].Qty.Equal(decimal.NewFromInt(3)))
}

func TestHandlerDashboard(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	d := decodeBody[Dashboard](t, rec)
	assert.Equal(t, 1, d.TotalQuotes)
	assert.Equal(t, 1, d.OutstandingDeposits)
}

func TestHandlerWholeDocumentSaves(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/api/quotes/new?created_by=user1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	draft := decodeBody[quotes.Quote](t, rec)
	assert.Equal(t, "QT-2024-0002", draft.QuoteNumber)
	assert.Equal(t, quotes.QuoteStatusDraft, draft.Status)
	assert.Equal(t, "user1", draft.CreatedByUserID)

	rec = doJSON(t, r, http.MethodGet, "/api/quotes/quote1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	q := decodeBody[quotes.Quote](t, rec)
	q.Notes = "whole document edit"
	q.QuoteNumber = "HIJACK-1"

	rec = doJSON(t, r, http.MethodPut, "/api/quotes/quote1", q)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := decodeBody[quotes.Quote](t, rec)
	assert.Equal(t, "QT-2024-0001", saved.QuoteNumber)
	assert.Equal(t, "whole document edit", saved.Notes)

	q.DepositPercentage = decimal.NewFromInt(250)
	rec = doJSON(t, r, http.MethodPut, "/api/quotes/quote1", q)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = doJSON(t, r, http.MethodGet, "/api/invoices/inv1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	inv := decodeBody[invoices.Invoice](t, rec)
	inv.Notes = "paid by transfer"
	inv.InvoiceNumber = "INV-FAKE"

	rec = doJSON(t, r, http.MethodPut, "/api/invoices/inv1", inv)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	savedInv := decodeBody[invoices.Invoice](t, rec)
	assert.Equal(t, "INV-2024-0001", savedInv.InvoiceNumber)
	assert.Equal(t, "paid by transfer", savedInv.Notes)

	rec = doJSON(t, r, http.MethodPut, "/api/invoices/missing", inv)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
