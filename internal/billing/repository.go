package billing

import (
	"context"
	"fmt"
	"sync"

	"github.com/quotebook/quotebook/internal/billing/clients"
	"github.com/quotebook/quotebook/internal/billing/invoices"
	"github.com/quotebook/quotebook/internal/billing/packages"
	"github.com/quotebook/quotebook/internal/billing/quotes"
	"github.com/quotebook/quotebook/internal/billing/settings"
	"github.com/quotebook/quotebook/internal/platform/httpx"
)

var (
	ErrNotFound         = httpx.ErrNotFound
	ErrValidation       = httpx.ErrValidation
	ErrInvalidStatus    = fmt.Errorf("invalid status transition: %w", httpx.ErrConflict)
	ErrAlreadyConverted = fmt.Errorf("quote already converted to an invoice: %w", httpx.ErrConflict)
	ErrClientUnknown    = fmt.Errorf("client unknown: %w", httpx.ErrUnprocessable)
)

// State is everything the application keeps: the settings singleton and the
// three collections.
type State struct {
	Settings settings.CompanySettings
	Clients  []clients.Client
	Quotes   []quotes.Quote
	Invoices []invoices.Invoice
}

func (s State) clone() State {
	out := State{Settings: s.Settings}
	out.Clients = append([]clients.Client(nil), s.Clients...)
	out.Quotes = make([]quotes.Quote, len(s.Quotes))
	for i, q := range s.Quotes {
		out.Quotes[i] = q.Clone()
	}
	out.Invoices = make([]invoices.Invoice, len(s.Invoices))
	for i, inv := range s.Invoices {
		out.Invoices[i] = inv.Clone()
	}
	return out
}

// SeedState returns the state of a fresh installation. With samples it also
// holds the demo quote and the invoice converted from it.
func SeedState(withSamples bool) State {
	st := settings.Defaults()
	state := State{
		Settings: st,
		Clients:  clients.Samples(),
	}
	if withSamples {
		state.Quotes = []quotes.Quote{quotes.Sample(st)}
		state.Invoices = []invoices.Invoice{invoices.Sample(st)}
	}
	return state
}

// Repository keeps the billing state in memory. Writes go through WithTx so
// that reading a counter, issuing a number and advancing the counter happen
// as one step.
type Repository struct {
	mu      sync.RWMutex
	state   State
	catalog *packages.Catalog
}

// NewRepository constructs a repository holding seed.
func NewRepository(catalog *packages.Catalog, seed State) *Repository {
	return &Repository{
		state:   seed.clone(),
		catalog: catalog,
	}
}

// TxRepository exposes the state under change inside WithTx.
type TxRepository interface {
	Settings() settings.CompanySettings
	PutSettings(settings.CompanySettings)
	Clients() []clients.Client
	PutClients([]clients.Client)
	Quotes() []quotes.Quote
	PutQuotes([]quotes.Quote)
	Invoices() []invoices.Invoice
	PutInvoices([]invoices.Invoice)
}

type txRepo struct {
	state *State
}

func (t *txRepo) Settings() settings.CompanySettings     { return t.state.Settings }
func (t *txRepo) PutSettings(s settings.CompanySettings) { t.state.Settings = s }
func (t *txRepo) Clients() []clients.Client              { return t.state.Clients }
func (t *txRepo) PutClients(list []clients.Client)       { t.state.Clients = list }
func (t *txRepo) Quotes() []quotes.Quote                 { return t.state.Quotes }
func (t *txRepo) PutQuotes(list []quotes.Quote)          { t.state.Quotes = list }
func (t *txRepo) Invoices() []invoices.Invoice           { return t.state.Invoices }
func (t *txRepo) PutInvoices(list []invoices.Invoice)    { t.state.Invoices = list }

// WithTx runs fn against a working copy of the state. The copy replaces the
// stored state only when fn returns nil; transactions run one at a time.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	working := r.state.clone()
	if err := fn(ctx, &txRepo{state: &working}); err != nil {
		return err
	}
	r.state = working
	return nil
}

// Snapshot returns a copy of the whole state.
func (r *Repository) Snapshot(ctx context.Context) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.clone(), nil
}

// ============================================================================
// READS
// ============================================================================

func (r *Repository) GetSettings(ctx context.Context) (settings.CompanySettings, error) {
	if err := ctx.Err(); err != nil {
		return settings.CompanySettings{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Settings, nil
}

func (r *Repository) ListClients(ctx context.Context) ([]clients.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]clients.Client(nil), r.state.Clients...), nil
}

func (r *Repository) GetClient(ctx context.Context, id string) (clients.Client, error) {
	if err := ctx.Err(); err != nil {
		return clients.Client{}, err
	}
	c, ok := r.LookupClient(id)
	if !ok {
		return clients.Client{}, ErrNotFound
	}
	return c, nil
}

// LookupClient implements clients.Lookup.
func (r *Repository) LookupClient(id string) (clients.Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.state.Clients {
		if c.ID == id {
			return c, true
		}
	}
	return clients.Client{}, false
}

func (r *Repository) ListQuotes(ctx context.Context) ([]quotes.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]quotes.Quote, len(r.state.Quotes))
	for i, q := range r.state.Quotes {
		out[i] = q.Clone()
	}
	return out, nil
}

func (r *Repository) GetQuote(ctx context.Context, id string) (quotes.Quote, error) {
	if err := ctx.Err(); err != nil {
		return quotes.Quote{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := quotes.Find(r.state.Quotes, id)
	if !ok {
		return quotes.Quote{}, ErrNotFound
	}
	return q, nil
}

func (r *Repository) ListInvoices(ctx context.Context) ([]invoices.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]invoices.Invoice, len(r.state.Invoices))
	for i, inv := range r.state.Invoices {
		out[i] = inv.Clone()
	}
	return out, nil
}

func (r *Repository) GetInvoice(ctx context.Context, id string) (invoices.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return invoices.Invoice{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := invoices.Find(r.state.Invoices, id)
	if !ok {
		return invoices.Invoice{}, ErrNotFound
	}
	return inv, nil
}

// Catalog returns the package catalog.
func (r *Repository) Catalog() *packages.Catalog {
	return r.catalog
}
