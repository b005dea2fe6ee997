// Package billing hosts the quote and invoice engine: it keeps the state,
// serialises writes and exposes the operations over JSON.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quotebook/quotebook/internal/billing/clients"
	"github.com/quotebook/quotebook/internal/billing/invoices"
	"github.com/quotebook/quotebook/internal/billing/numbering"
	"github.com/quotebook/quotebook/internal/billing/packages"
	"github.com/quotebook/quotebook/internal/billing/quotes"
	"github.com/quotebook/quotebook/internal/billing/settings"
	"github.com/quotebook/quotebook/internal/billing/shared"
)

// Recorder receives domain events for metrics.
type Recorder interface {
	QuoteSaved(created bool)
	QuoteTransitioned(status string)
	InvoiceConverted()
}

type nopRecorder struct{}

func (nopRecorder) QuoteSaved(bool)          {}
func (nopRecorder) QuoteTransitioned(string) {}
func (nopRecorder) InvoiceConverted()        {}

// Service provides business logic for quotes and invoices.
type Service struct {
	repo      *Repository
	directory clients.Lookup
	logger    *slog.Logger
	recorder  Recorder
	numbers   *numbering.Generator
	now       func() time.Time
	newID     func() string
}

// Option customises a Service.
type Option func(*Service)

// WithRecorder routes domain events to rec.
func WithRecorder(rec Recorder) Option {
	return func(s *Service) {
		if rec != nil {
			s.recorder = rec
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs replaces the random id generator.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService constructs a billing service.
func NewService(repo *Repository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:     repo,
		logger:   logger,
		recorder: nopRecorder{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.directory = repo
	s.numbers = numbering.NewGenerator(s.now)
	return s
}

// ============================================================================
// SETTINGS
// ============================================================================

// Settings returns the current company settings.
func (s *Service) Settings(ctx context.Context) (settings.CompanySettings, error) {
	return s.repo.GetSettings(ctx)
}

// UpdateSettings applies the editable fields. The document counters cannot be
// changed here.
func (s *Service) UpdateSettings(ctx context.Context, req settings.UpdateSettingsRequest) (settings.CompanySettings, error) {
	var updated settings.CompanySettings
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		next, err := tx.Settings().Apply(req)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		tx.PutSettings(next)
		updated = next
		return nil
	})
	if err != nil {
		return settings.CompanySettings{}, fmt.Errorf("update settings: %w", err)
	}
	s.logger.Info("settings updated", slog.String("currency", updated.Currency), slog.String("vat", updated.VatPercentage.String()))
	return updated, nil
}

// ============================================================================
// CLIENTS
// ============================================================================

// SaveClient creates a client when id is empty and replaces it otherwise.
func (s *Service) SaveClient(ctx context.Context, id string, req clients.SaveClientRequest) (clients.Client, error) {
	if id == "" {
		id = s.newID()
	}
	c := req.ToClient(id)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		tx.PutClients(clients.Upsert(tx.Clients(), c))
		return nil
	})
	if err != nil {
		return clients.Client{}, fmt.Errorf("save client: %w", err)
	}
	return c, nil
}

// GetClient returns ErrNotFound for an unknown id.
func (s *Service) GetClient(ctx context.Context, id string) (clients.Client, error) {
	c, err := s.repo.GetClient(ctx, id)
	if err != nil {
		return clients.Client{}, fmt.Errorf("get client %s: %w", id, err)
	}
	return c, nil
}

// ListClients returns every client.
func (s *Service) ListClients(ctx context.Context) ([]clients.Client, error) {
	return s.repo.ListClients(ctx)
}

// DeleteClient removes a client. Quotes and invoices keep the dangling id.
func (s *Service) DeleteClient(ctx context.Context, id string) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		rest, found := clients.Remove(tx.Clients(), id)
		if !found {
			return ErrNotFound
		}
		tx.PutClients(rest)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete client %s: %w", id, err)
	}
	s.logger.Info("client deleted", slog.String("client_id", id))
	return nil
}

// ============================================================================
// PACKAGES
// ============================================================================

// ListPackages returns the catalog.
func (s *Service) ListPackages(ctx context.Context) ([]packages.Package, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.repo.Catalog().List(), nil
}

// GetPackage returns ErrNotFound for an unknown package.
func (s *Service) GetPackage(ctx context.Context, id string) (packages.Package, error) {
	if err := ctx.Err(); err != nil {
		return packages.Package{}, err
	}
	pkg, ok := s.repo.Catalog().Get(id)
	if !ok {
		return packages.Package{}, fmt.Errorf("get package %s: %w", id, ErrNotFound)
	}
	return pkg, nil
}

// ============================================================================
// QUOTES
// ============================================================================

// NewQuote prepares an unsaved draft numbered from the current counter.
func (s *Service) NewQuote(ctx context.Context, createdBy string) (quotes.Quote, error) {
	st, err := s.repo.GetSettings(ctx)
	if err != nil {
		return quotes.Quote{}, err
	}
	return quotes.NewDraft(st, createdBy, s.now(), s.newID), nil
}

// CreateQuote drafts and saves a quote in one step.
func (s *Service) CreateQuote(ctx context.Context, req CreateQuoteRequest) (quotes.Quote, error) {
	var created quotes.Quote
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		st := tx.Settings()
		now := s.now()
		draft := quotes.NewDraft(st, req.CreatedByUserID, now, s.newID)

		muts := []quotes.Mutation{quotes.SetClient(req.ClientID), quotes.SetNotes(req.Notes)}
		if req.DepositPercentage != nil {
			muts = append(muts, quotes.SetDepositPercentage(req.DepositPercentage.Decimal()))
		}
		for _, item := range req.Items {
			muts = append(muts, quotes.AddItem(item.ToItem(s.newID())))
		}
		q, err := quotes.Apply(draft, st.VatPercentage, muts...)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}

		coll, next := quotes.Save(q, tx.Quotes(), st, now)
		tx.PutQuotes(coll)
		tx.PutSettings(next)
		created = q
		return nil
	})
	if err != nil {
		return quotes.Quote{}, fmt.Errorf("create quote: %w", err)
	}
	s.recorder.QuoteSaved(true)
	s.logger.Info("quote created", slog.String("quote_id", created.ID), slog.String("quote_number", created.QuoteNumber))
	return created, nil
}

// SaveQuote stores q. A quote seen for the first time takes the next quote
// number inside the same transaction that advances the counter, so a draft
// prepared earlier never reuses a number issued meanwhile. A stored quote
// keeps its number and creation time. Totals are recalculated with the current
// VAT rate before storing.
func (s *Service) SaveQuote(ctx context.Context, q quotes.Quote) (quotes.Quote, error) {
	if q.Status == "" {
		q.Status = quotes.QuoteStatusDraft
	}
	if !q.Status.Valid() {
		return quotes.Quote{}, fmt.Errorf("save quote: %w: unknown status %q", ErrValidation, q.Status)
	}
	if err := quotes.ValidateDeposit(q.DepositPercentage); err != nil {
		return quotes.Quote{}, fmt.Errorf("save quote: %w: %v", ErrValidation, err)
	}
	for _, item := range q.Items {
		if !item.ItemType.Valid() {
			return quotes.Quote{}, fmt.Errorf("save quote: %w: item %s has type %q", ErrValidation, item.ID, item.ItemType)
		}
	}

	var (
		saved   quotes.Quote
		created bool
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		st := tx.Settings()
		now := s.now()
		if q.ID == "" {
			q.ID = s.newID()
		}
		stored, exists := quotes.Find(tx.Quotes(), q.ID)
		if exists && !quotes.CanTransition(stored.Status, q.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, stored.Status, q.Status)
		}
		if exists {
			q.QuoteNumber = stored.QuoteNumber
			q.CreatedAt = stored.CreatedAt
		} else {
			created = true
			q.QuoteNumber = s.numbers.Next(st.NumberingFormatQuote, st.NextQuoteNumber)
			if q.CreatedAt.IsZero() {
				q.CreatedAt = now
			}
			q.UpdatedAt = now
		}
		q.Recalculate(st.VatPercentage)
		coll, next := quotes.Save(q, tx.Quotes(), st, now)
		tx.PutQuotes(coll)
		tx.PutSettings(next)
		saved, _ = quotes.Find(coll, q.ID)
		return nil
	})
	if err != nil {
		return quotes.Quote{}, fmt.Errorf("save quote: %w", err)
	}
	s.recorder.QuoteSaved(created)
	s.logger.Info("quote saved",
		slog.String("quote_id", saved.ID),
		slog.String("quote_number", saved.QuoteNumber),
		slog.Bool("created", created),
	)
	return saved, nil
}

// GetQuote returns ErrNotFound for an unknown id.
func (s *Service) GetQuote(ctx context.Context, id string) (quotes.Quote, error) {
	q, err := s.repo.GetQuote(ctx, id)
	if err != nil {
		return quotes.Quote{}, fmt.Errorf("get quote %s: %w", id, err)
	}
	return q, nil
}

// ListQuotes returns every stored quote.
func (s *Service) ListQuotes(ctx context.Context) ([]quotes.Quote, error) {
	return s.repo.ListQuotes(ctx)
}

// UpdateQuote changes header fields of a stored quote.
func (s *Service) UpdateQuote(ctx context.Context, id string, req UpdateQuoteRequest) (quotes.Quote, error) {
	muts, err := req.mutations()
	if err != nil {
		return quotes.Quote{}, fmt.Errorf("update quote %s: %w", id, err)
	}
	return s.mutateQuote(ctx, "update quote", id, muts...)
}

// AddQuoteItem appends a line to a stored quote and returns the quote.
func (s *Service) AddQuoteItem(ctx context.Context, id string, req ItemRequest) (quotes.Quote, error) {
	return s.mutateQuote(ctx, "add quote item", id, quotes.AddItem(req.ToItem(s.newID())))
}

// UpdateQuoteItem patches one line of a stored quote.
func (s *Service) UpdateQuoteItem(ctx context.Context, id, itemID string, patch quotes.ItemPatch) (quotes.Quote, error) {
	return s.mutateQuote(ctx, "update quote item", id, quotes.UpdateItem(itemID, patch))
}

// RemoveQuoteItem drops one line of a stored quote.
func (s *Service) RemoveQuoteItem(ctx context.Context, id, itemID string) (quotes.Quote, error) {
	return s.mutateQuote(ctx, "remove quote item", id, quotes.RemoveItem(itemID))
}

// AddPackageToQuote appends fresh copies of every line in the package.
func (s *Service) AddPackageToQuote(ctx context.Context, id, packageID string) (quotes.Quote, error) {
	pkg, err := s.GetPackage(ctx, packageID)
	if err != nil {
		return quotes.Quote{}, err
	}
	return s.mutateQuote(ctx, "add package", id, quotes.AddPackage(pkg, s.newID))
}

// TransitionQuote moves a stored quote along the status machine.
func (s *Service) TransitionQuote(ctx context.Context, id string, status quotes.QuoteStatus) (quotes.Quote, error) {
	transition := func(q *quotes.Quote) error {
		next, err := quotes.Transition(*q, status)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidStatus, err)
		}
		*q = next
		return nil
	}
	q, err := s.mutateQuote(ctx, "transition quote", id, transition)
	if err != nil {
		return quotes.Quote{}, err
	}
	s.recorder.QuoteTransitioned(string(q.Status))
	return q, nil
}

func (s *Service) mutateQuote(ctx context.Context, op, id string, muts ...quotes.Mutation) (quotes.Quote, error) {
	var saved quotes.Quote
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		q, ok := quotes.Find(tx.Quotes(), id)
		if !ok {
			return ErrNotFound
		}
		st := tx.Settings()
		q, err := quotes.Apply(q, st.VatPercentage, muts...)
		if err != nil {
			return classifyQuoteError(err)
		}
		coll, next := quotes.Save(q, tx.Quotes(), st, s.now())
		tx.PutQuotes(coll)
		tx.PutSettings(next)
		saved, _ = quotes.Find(coll, id)
		return nil
	})
	if err != nil {
		return quotes.Quote{}, fmt.Errorf("%s %s: %w", op, id, err)
	}
	s.recorder.QuoteSaved(false)
	return saved, nil
}

func classifyQuoteError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidStatus):
		return err
	case errors.Is(err, quotes.ErrItemNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, quotes.ErrInvalidDeposit), errors.Is(err, quotes.ErrInvalidItemType):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return err
}

// ============================================================================
// CONVERSION
// ============================================================================

// ConvertQuote issues the invoice for an accepted quote. A quote converts at
// most once; the quote itself is left as it was.
func (s *Service) ConvertQuote(ctx context.Context, quoteID string) (invoices.Invoice, error) {
	var inv invoices.Invoice
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		q, ok := quotes.Find(tx.Quotes(), quoteID)
		if !ok {
			return ErrNotFound
		}
		if q.Status != quotes.QuoteStatusAccepted {
			return fmt.Errorf("%w: quote is %s, not accepted", ErrInvalidStatus, q.Status)
		}
		for _, existing := range tx.Invoices() {
			if existing.FromQuote(quoteID) {
				return fmt.Errorf("%w: invoice %s", ErrAlreadyConverted, existing.InvoiceNumber)
			}
		}
		var next settings.CompanySettings
		inv, next = invoices.Convert(q, tx.Settings(), s.now(), s.newID)
		tx.PutInvoices(invoices.Insert(inv, tx.Invoices()))
		tx.PutSettings(next)
		return nil
	})
	if err != nil {
		s.logger.Warn("quote conversion refused", slog.String("quote_id", quoteID), slog.Any("error", err))
		return invoices.Invoice{}, fmt.Errorf("convert quote %s: %w", quoteID, err)
	}
	s.recorder.InvoiceConverted()
	s.logger.Info("quote converted",
		slog.String("quote_id", quoteID),
		slog.String("invoice_id", inv.ID),
		slog.String("invoice_number", inv.InvoiceNumber),
	)
	return inv, nil
}

// ============================================================================
// INVOICES
// ============================================================================

// GetInvoice returns ErrNotFound for an unknown id.
func (s *Service) GetInvoice(ctx context.Context, id string) (invoices.Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return invoices.Invoice{}, fmt.Errorf("get invoice %s: %w", id, err)
	}
	return inv, nil
}

// ListInvoices returns every stored invoice.
func (s *Service) ListInvoices(ctx context.Context) ([]invoices.Invoice, error) {
	return s.repo.ListInvoices(ctx)
}

// UpdateInvoice changes status, dates or notes of a stored invoice.
func (s *Service) UpdateInvoice(ctx context.Context, id string, req UpdateInvoiceRequest) (invoices.Invoice, error) {
	muts, err := req.mutations()
	if err != nil {
		return invoices.Invoice{}, fmt.Errorf("update invoice %s: %w", id, err)
	}
	var saved invoices.Invoice
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, ok := invoices.Find(tx.Invoices(), id)
		if !ok {
			return ErrNotFound
		}
		inv, err := invoices.Apply(inv, muts...)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		coll, _ := invoices.Save(inv, tx.Invoices(), s.now())
		tx.PutInvoices(coll)
		saved, _ = invoices.Find(coll, id)
		return nil
	})
	if err != nil {
		return invoices.Invoice{}, fmt.Errorf("update invoice %s: %w", id, err)
	}
	s.logger.Info("invoice updated", slog.String("invoice_id", id), slog.String("status", string(saved.Status)))
	return saved, nil
}

// SaveInvoice replaces a stored invoice. Invoices are only created by
// conversion, so an unknown id is ErrNotFound. The number, items, totals and
// quote link of the stored invoice are kept.
func (s *Service) SaveInvoice(ctx context.Context, inv invoices.Invoice) (invoices.Invoice, error) {
	if !inv.Status.Valid() {
		return invoices.Invoice{}, fmt.Errorf("save invoice: %w: unknown status %q", ErrValidation, inv.Status)
	}
	var saved invoices.Invoice
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		stored, ok := invoices.Find(tx.Invoices(), inv.ID)
		if !ok {
			return ErrNotFound
		}
		inv.InvoiceNumber = stored.InvoiceNumber
		inv.Items = stored.Items
		inv.Totals = stored.Totals
		inv.DepositRequired = stored.DepositRequired
		inv.CreatedFromQuoteID = stored.CreatedFromQuoteID
		inv.CreatedAt = stored.CreatedAt
		coll, _ := invoices.Save(inv, tx.Invoices(), s.now())
		tx.PutInvoices(coll)
		saved, _ = invoices.Find(coll, inv.ID)
		return nil
	})
	if err != nil {
		return invoices.Invoice{}, fmt.Errorf("save invoice: %w", err)
	}
	return saved, nil
}

// ============================================================================
// DASHBOARD AND EXPORT
// ============================================================================

// Dashboard counts open quotes, outstanding deposits and overdue invoices.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	state, err := s.repo.Snapshot(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	now := s.now()
	d := Dashboard{TotalQuotes: len(state.Quotes)}
	for _, q := range state.Quotes {
		if q.Status == quotes.QuoteStatusSent {
			d.OpenQuotes++
		}
	}
	for _, inv := range state.Invoices {
		if inv.Status == invoices.InvoiceStatusSent && inv.DepositRequired {
			d.OutstandingDeposits++
		}
		if inv.Status == invoices.InvoiceStatusOverdue {
			d.OverdueInvoices++
		}
		if inv.IsOverdue(now) {
			d.PastDueInvoices++
		}
	}
	return d, nil
}

// Totals runs the calculator without touching any document.
func (s *Service) Totals(ctx context.Context, req TotalsRequest) (TotalsResponse, error) {
	st, err := s.repo.GetSettings(ctx)
	if err != nil {
		return TotalsResponse{}, err
	}
	vat := st.VatPercentage
	if req.VatPercentage != nil {
		vat = req.VatPercentage.Decimal()
	}
	deposit := decimal.NewFromInt(quotes.DefaultDepositPercentage)
	if req.DepositPercentage != nil {
		deposit = req.DepositPercentage.Decimal()
	}
	items := make([]shared.Item, len(req.Items))
	for i, r := range req.Items {
		items[i] = r.ToItem(fmt.Sprintf("line-%d", i+1))
	}
	totals := shared.CalculateTotals(items, vat, deposit)
	return TotalsResponse{
		Totals:    totals,
		Currency:  st.Currency,
		Formatted: formatTotals(totals, st.Currency),
	}, nil
}

// DocumentForExport gathers a quote or invoice with its client for layout.
// A document whose client no longer exists cannot be exported.
func (s *Service) DocumentForExport(ctx context.Context, kind DocumentKind, id string) (Document, error) {
	st, err := s.repo.GetSettings(ctx)
	if err != nil {
		return Document{}, err
	}
	doc := Document{Kind: kind, Settings: st}
	var clientID string
	switch kind {
	case DocumentQuote:
		q, err := s.GetQuote(ctx, id)
		if err != nil {
			return Document{}, err
		}
		doc.Quote, doc.Number, clientID = &q, q.QuoteNumber, q.ClientID
	case DocumentInvoice:
		inv, err := s.GetInvoice(ctx, id)
		if err != nil {
			return Document{}, err
		}
		doc.Invoice, doc.Number, clientID = &inv, inv.InvoiceNumber, inv.ClientID
	default:
		return Document{}, fmt.Errorf("%w: unknown document kind %q", ErrValidation, kind)
	}

	c, ok := s.directory.LookupClient(clientID)
	if !ok {
		s.logger.Warn("export blocked by missing client", slog.String("document", doc.Number), slog.String("client_id", clientID))
		return Document{}, fmt.Errorf("export %s %s: %w: %q", kind, doc.Number, ErrClientUnknown, clientID)
	}
	doc.Client = c
	return doc, nil
}
