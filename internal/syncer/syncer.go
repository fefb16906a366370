package syncer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/model"
	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/store"
)

// Engine materializes external business records into store records exactly
// once. Two independent guards keep it idempotent: the per-source seen-id
// sets in SyncState, and a live (source, linkedId) lookup in the store that
// survives a lost SyncState.
type Engine struct {
	store *store.Store
	now   func() time.Time
}

// NewEngine creates a sync engine over st.
func NewEngine(st *store.Store) *Engine {
	return &Engine{store: st, now: time.Now}
}

// SetClock overrides the engine's notion of now, for tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Result counts what one sync pass did.
type Result struct {
	Invoices int
	Quotes   int
	Expenses int
	Payments int
	Skipped  int
}

// Total returns the number of records materialized by the pass.
func (r Result) Total() int {
	return r.Invoices + r.Quotes + r.Expenses + r.Payments
}

// SyncNow runs the four sync paths over one external snapshot. Call once
// per external refresh; re-running on an unchanged snapshot creates
// nothing. SyncState is persisted only after the whole batch succeeds; a
// failed persist is logged and naturally retried on the next pass.
func (e *Engine) SyncNow(ctx context.Context, snap model.Snapshot) (Result, error) {
	var res Result

	for _, f := range snap.Invoices {
		created, err := e.SyncInvoice(ctx, f)
		if err != nil {
			return res, fmt.Errorf("syncing invoice %s: %w", f.ID, err)
		}
		if created {
			res.Invoices++
		} else {
			res.Skipped++
		}
	}

	for _, q := range snap.AcceptedQuotes {
		created, err := e.SyncQuote(ctx, q)
		if err != nil {
			return res, fmt.Errorf("syncing quote %s: %w", q.ID, err)
		}
		if created {
			res.Quotes++
		} else {
			res.Skipped++
		}
	}

	for _, d := range snap.Expenses {
		created, err := e.SyncExpense(ctx, d)
		if err != nil {
			return res, fmt.Errorf("syncing expense %s: %w", d.ID, err)
		}
		if created {
			res.Expenses++
		} else {
			res.Skipped++
		}
	}

	for _, p := range snap.Payments {
		created, err := e.SyncPayment(ctx, p, snap.Invoices)
		if err != nil {
			return res, fmt.Errorf("syncing payment %s: %w", p.ID, err)
		}
		if created {
			res.Payments++
		} else {
			res.Skipped++
		}
	}

	if err := e.store.PersistSyncState(ctx); err != nil {
		log.Printf("tresorerie: sync state persist deferred: %v", err)
	}
	return res, nil
}

// SyncInvoice turns one invoice into an entree prevision: amount is the
// remaining balance while unpaid and the full TTC once settled, status
// mirrors the invoice, date follows the due/validity/issue fallback.
func (e *Engine) SyncInvoice(ctx context.Context, f model.Invoice) (bool, error) {
	if f.ID == "" {
		return false, nil
	}
	state := e.store.SyncState()
	if state.HasInvoice(f.ID) {
		return false, nil
	}
	if _, ok := e.store.FindPrevisionBySourceLink(model.SourceAutoFacture, f.ID); ok {
		e.recordSynced(func(s *model.SyncState) { s.AddInvoice(f.ID) })
		return false, nil
	}

	amount := f.Remaining()
	status := model.StatusPrevu
	if f.IsPaid() {
		amount = f.TotalTTC
		status = model.StatusPaye
	}
	if amount.IsZero() {
		// Nothing expected and nothing realized; remember the id anyway.
		e.recordSynced(func(s *model.SyncState) { s.AddInvoice(f.ID) })
		return false, nil
	}

	p := model.Prevision{
		Type:        model.FlowEntree,
		Description: invoiceLabel("Facture", f.Number, f.ID, f.ClientName),
		Amount:      amount,
		Date:        f.SyncDate(),
		Category:    "Client",
		Status:      status,
		Recurrence:  model.RecurrenceUnique,
		Source:      model.SourceAutoFacture,
		LinkedID:    f.ID,
	}
	created, err := e.materialize(ctx, p)
	if err != nil {
		return false, err
	}
	e.recordSynced(func(s *model.SyncState) { s.AddInvoice(f.ID) })
	return created, nil
}

// SyncQuote turns one accepted, not-yet-invoiced quote into an entree
// prevision for its remaining balance.
func (e *Engine) SyncQuote(ctx context.Context, q model.Quote) (bool, error) {
	if q.ID == "" {
		return false, nil
	}
	state := e.store.SyncState()
	if state.HasAcceptedQuote(q.ID) {
		return false, nil
	}
	if _, ok := e.store.FindPrevisionBySourceLink(model.SourceAutoDevis, q.ID); ok {
		e.recordSynced(func(s *model.SyncState) { s.AddAcceptedQuote(q.ID) })
		return false, nil
	}

	amount := q.Remaining()
	if amount.IsZero() {
		e.recordSynced(func(s *model.SyncState) { s.AddAcceptedQuote(q.ID) })
		return false, nil
	}

	p := model.Prevision{
		Type:        model.FlowEntree,
		Description: invoiceLabel("Devis", q.Number, q.ID, q.ClientName),
		Amount:      amount,
		Date:        q.SyncDate(),
		Category:    "Client",
		Status:      model.StatusPrevu,
		Recurrence:  model.RecurrenceUnique,
		Source:      model.SourceAutoDevis,
		LinkedID:    q.ID,
	}
	created, err := e.materialize(ctx, p)
	if err != nil {
		return false, err
	}
	e.recordSynced(func(s *model.SyncState) { s.AddAcceptedQuote(q.ID) })
	return created, nil
}

// SyncExpense turns one expense into a paye sortie prevision. Expenses are
// assumed already settled when recorded.
func (e *Engine) SyncExpense(ctx context.Context, d model.Expense) (bool, error) {
	if d.ID == "" {
		return false, nil
	}
	state := e.store.SyncState()
	if state.HasExpense(d.ID) {
		return false, nil
	}
	if _, ok := e.store.FindPrevisionBySourceLink(model.SourceAutoDepense, d.ID); ok {
		e.recordSynced(func(s *model.SyncState) { s.AddExpense(d.ID) })
		return false, nil
	}

	description := d.Description
	if description == "" {
		description = "Depense " + d.Supplier
	}
	category := d.Category
	if category == "" {
		category = "Divers"
	}

	p := model.Prevision{
		Type:        model.FlowSortie,
		Description: description,
		Amount:      d.Amount,
		Date:        d.Date,
		Category:    category,
		Status:      model.StatusPaye,
		Recurrence:  model.RecurrenceUnique,
		Source:      model.SourceAutoDepense,
		LinkedID:    d.ID,
	}
	created, err := e.materialize(ctx, p)
	if err != nil {
		return false, err
	}
	e.recordSynced(func(s *model.SyncState) { s.AddExpense(d.ID) })
	return created, nil
}

// SyncPayment turns one received payment into a paye entree mouvement,
// decomposing VAT at the linked invoice's rate (default 20%).
func (e *Engine) SyncPayment(ctx context.Context, p model.Payment, invoices []model.Invoice) (bool, error) {
	if p.ID == "" {
		return false, nil
	}
	state := e.store.SyncState()
	if state.HasPayment(p.ID) {
		return false, nil
	}
	if _, ok := e.store.FindMouvementBySourceLink(model.SourcePaiement, p.ID); ok {
		e.recordSynced(func(s *model.SyncState) { s.AddPayment(p.ID) })
		return false, nil
	}

	rate := model.DefaultVATRate
	description := "Reglement recu"
	for _, f := range invoices {
		if f.ID == p.LinkedInvoiceID {
			rate = model.RateOrDefault(f.VATRate)
			description = invoiceLabel("Reglement facture", f.Number, f.ID, f.ClientName)
			break
		}
	}
	parts := model.WithVAT(p.Amount, rate, false)

	m := model.Mouvement{
		Type:        model.FlowEntree,
		Description: description,
		Amount:      p.Amount,
		AmountHT:    parts.HT,
		AmountVAT:   parts.VAT,
		VATRate:     rate,
		Date:        p.Date,
		Category:    "Client",
		Status:      model.StatusPaye,
		Source:      model.SourcePaiement,
		LinkedID:    p.ID,
		Notes:       p.Notes,
	}
	if _, err := e.store.AddMouvement(ctx, m); err != nil {
		return false, err
	}
	e.recordSynced(func(s *model.SyncState) { s.AddPayment(p.ID) })
	return true, nil
}

// materialize inserts the prevision, or resolves a sync conflict when a
// different source already claims the same linked record: the last
// detected source wins and the existing record is rewritten in place, so
// no duplicate is ever created.
func (e *Engine) materialize(ctx context.Context, p model.Prevision) (bool, error) {
	if existing, ok := e.store.FindPrevisionByLink(p.LinkedID); ok && existing.Source != p.Source {
		log.Printf("tresorerie: sync conflict on %s: %s replaces %s", p.LinkedID, p.Source, existing.Source)
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
		if existing.Status == model.StatusPaye {
			// Realized money stays realized.
			p.Status = model.StatusPaye
		}
		if _, err := e.store.UpdatePrevision(ctx, p); err != nil {
			return false, err
		}
		return false, nil
	}
	if _, err := e.store.AddPrevision(ctx, p); err != nil {
		return false, err
	}
	return true, nil
}

// recordSynced mutates the in-memory SyncState. It is only persisted at
// the end of a successful batch.
func (e *Engine) recordSynced(mutate func(*model.SyncState)) {
	state := e.store.SyncState()
	mutate(&state)
	e.store.SetSyncState(state)
}

func invoiceLabel(kind, number, id, client string) string {
	ref := number
	if ref == "" {
		ref = shortID(id)
	}
	label := kind + " " + ref
	if client != "" {
		label += " - " + client
	}
	return label
}

func shortID(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}
