package store

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/model"
)

// Store is the authoritative in-memory state for one account: previsions,
// mouvements, the settings singleton, and sync bookkeeping. All mutations
// apply optimistically to memory first, then queue a write in the outbox;
// persistence failures are logged and retried on the next flush, never
// surfaced to callers as blocking errors.
//
// Exactly one logical writer per account; the store is not safe for
// concurrent use.
type Store struct {
	previsions []model.Prevision
	mouvements []model.Mouvement
	settings   model.Settings
	syncState  model.SyncState

	persister Persister
	outbox    Outbox
	now       func() time.Time
}

// New creates an empty store backed by p. A nil persister gives a
// memory-only store (all flushes are no-ops).
func New(p Persister) *Store {
	return &Store{
		settings:  model.DefaultSettings(),
		persister: p,
		now:       time.Now,
	}
}

// SetClock overrides the store's notion of now, for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Load replaces in-memory state with the persisted snapshot. Call once at
// engine start; the original "load on mount" becomes this explicit call.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	previsions, err := s.persister.ListPrevisions(ctx)
	if err != nil {
		return fmt.Errorf("loading previsions: %w", err)
	}
	mouvements, err := s.persister.ListMouvements(ctx)
	if err != nil {
		return fmt.Errorf("loading mouvements: %w", err)
	}
	settings, ok, err := s.persister.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	syncState, err := s.persister.LoadSyncState(ctx)
	if err != nil {
		return fmt.Errorf("loading sync state: %w", err)
	}

	s.previsions = previsions
	s.mouvements = mouvements
	if ok {
		s.settings = settings
	} else {
		s.settings = model.DefaultSettings()
	}
	s.syncState = syncState
	return nil
}

// Previsions returns a copy of all stored previsions, duplicates included.
// Aggregations must filter through model.DedupPrevisions themselves.
func (s *Store) Previsions() []model.Prevision {
	return append([]model.Prevision(nil), s.previsions...)
}

// Mouvements returns a copy of all stored mouvements.
func (s *Store) Mouvements() []model.Mouvement {
	return append([]model.Mouvement(nil), s.mouvements...)
}

// Settings returns the settings singleton.
func (s *Store) Settings() model.Settings {
	return s.settings
}

// SyncState returns a copy of the sync bookkeeping.
func (s *Store) SyncState() model.SyncState {
	st := s.syncState
	st.Invoices = append([]string(nil), st.Invoices...)
	st.Expenses = append([]string(nil), st.Expenses...)
	st.AcceptedQuotes = append([]string(nil), st.AcceptedQuotes...)
	st.Payments = append([]string(nil), st.Payments...)
	return st
}

// SetSyncState replaces the in-memory sync bookkeeping without persisting.
func (s *Store) SetSyncState(st model.SyncState) {
	s.syncState = st
}

// PersistSyncState writes the sync bookkeeping. Called by the sync engine
// once after a successful batch; a failure here is non-fatal, the caller
// logs it and the next batch retries naturally.
func (s *Store) PersistSyncState(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	return s.persister.SaveSyncState(ctx, s.syncState)
}

// AddPrevision validates and inserts a prevision, filling id, createdAt,
// status and recurrence defaults. Returns the stored record.
func (s *Store) AddPrevision(ctx context.Context, p model.Prevision) (model.Prevision, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	if p.Status == "" {
		p.Status = model.StatusPrevu
	}
	if p.Recurrence == "" {
		p.Recurrence = model.RecurrenceUnique
	}
	if p.Source == "" {
		p.Source = model.SourceManual
	}

	if errs := model.ValidatePrevision(p); len(errs) > 0 {
		return model.Prevision{}, validationFailed(errs)
	}

	s.previsions = append(s.previsions, p)
	s.enqueueUpsertPrevision(p)
	s.flush(ctx)
	return p, nil
}

// UpdatePrevision replaces the prevision with the same id. The prevu->paye
// transition is one-way: a paid record cannot go back to prevu.
func (s *Store) UpdatePrevision(ctx context.Context, p model.Prevision) (model.Prevision, error) {
	if errs := model.ValidatePrevision(p); len(errs) > 0 {
		return model.Prevision{}, validationFailed(errs)
	}

	for i, cur := range s.previsions {
		if cur.ID != p.ID {
			continue
		}
		if cur.Status == model.StatusPaye && p.Status == model.StatusPrevu {
			return model.Prevision{}, fmt.Errorf("prevision %s: paye is final", p.ID)
		}
		s.previsions[i] = p
		s.enqueueUpsertPrevision(p)
		s.flush(ctx)
		return p, nil
	}
	return model.Prevision{}, fmt.Errorf("prevision %s not found", p.ID)
}

// MarkPrevisionPaid transitions a prevision to paye. Idempotent.
func (s *Store) MarkPrevisionPaid(ctx context.Context, id string) (model.Prevision, error) {
	for i, cur := range s.previsions {
		if cur.ID != id {
			continue
		}
		if cur.Status == model.StatusPaye {
			return cur, nil
		}
		cur.Status = model.StatusPaye
		s.previsions[i] = cur
		s.enqueueUpsertPrevision(cur)
		s.flush(ctx)
		return cur, nil
	}
	return model.Prevision{}, fmt.Errorf("prevision %s not found", id)
}

// DeletePrevision removes a prevision and that record's own recurrence
// children. The cascade never follows further than one level: children
// cannot themselves be recurrence roots.
func (s *Store) DeletePrevision(ctx context.Context, id string) error {
	kept := s.previsions[:0]
	found := false
	for _, p := range s.previsions {
		if p.ID == id {
			found = true
			s.enqueueDeletePrevision(p.ID)
			continue
		}
		if p.RecurrenceParentID == id {
			s.enqueueDeletePrevision(p.ID)
			continue
		}
		kept = append(kept, p)
	}
	s.previsions = kept
	if !found {
		return fmt.Errorf("prevision %s not found", id)
	}
	s.flush(ctx)
	return nil
}

// FindPrevisionBySourceLink returns the prevision materialized from the
// given external record, if any. At most one prevision exists per
// (source, linkedId) pair.
func (s *Store) FindPrevisionBySourceLink(source model.Source, linkedID string) (model.Prevision, bool) {
	for _, p := range s.previsions {
		if p.Source == source && p.LinkedID == linkedID {
			return p, true
		}
	}
	return model.Prevision{}, false
}

// FindPrevisionByLink returns the first prevision claiming linkedID under
// any source, for sync-conflict detection.
func (s *Store) FindPrevisionByLink(linkedID string) (model.Prevision, bool) {
	for _, p := range s.previsions {
		if p.LinkedID != "" && p.LinkedID == linkedID {
			return p, true
		}
	}
	return model.Prevision{}, false
}

// FindMouvementBySourceLink returns the mouvement materialized from the
// given external record, if any.
func (s *Store) FindMouvementBySourceLink(source model.Source, linkedID string) (model.Mouvement, bool) {
	for _, m := range s.mouvements {
		if m.Source == source && m.LinkedID == linkedID {
			return m, true
		}
	}
	return model.Mouvement{}, false
}

// AddMouvement validates and inserts a mouvement. When the HT part is
// absent it is decomposed from the TTC amount at the stored rate
// (default 20%), honoring autoliquidation.
func (s *Store) AddMouvement(ctx context.Context, m model.Mouvement) (model.Mouvement, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	if m.Status == "" {
		m.Status = model.StatusPrevu
	}
	if m.Type == "" {
		m.Type = model.FlowSortie
	}
	if m.VATRate.IsZero() {
		m.VATRate = model.DefaultVATRate
	}
	if m.AmountHT.IsZero() {
		parts := model.WithVAT(m.Amount, m.VATRate, m.Autoliquidation)
		m.AmountHT = parts.HT
		m.AmountVAT = parts.VAT
	}

	if errs := model.ValidateMouvement(m); len(errs) > 0 {
		return model.Mouvement{}, validationFailed(errs)
	}

	s.mouvements = append(s.mouvements, m)
	s.enqueueUpsertMouvement(m)
	s.flush(ctx)
	return m, nil
}

// UpdateMouvement replaces the mouvement with the same id, recomputing the
// VAT decomposition when the TTC amount no longer matches the stored parts.
func (s *Store) UpdateMouvement(ctx context.Context, m model.Mouvement) (model.Mouvement, error) {
	for i, cur := range s.mouvements {
		if cur.ID != m.ID {
			continue
		}
		if m.VATRate.IsZero() {
			m.VATRate = model.DefaultVATRate
		}
		if !m.Amount.Equal(cur.Amount) || m.AmountHT.IsZero() {
			parts := model.WithVAT(m.Amount, m.VATRate, m.Autoliquidation)
			m.AmountHT = parts.HT
			m.AmountVAT = parts.VAT
		}
		if errs := model.ValidateMouvement(m); len(errs) > 0 {
			return model.Mouvement{}, validationFailed(errs)
		}
		s.mouvements[i] = m
		s.enqueueUpsertMouvement(m)
		s.flush(ctx)
		return m, nil
	}
	return model.Mouvement{}, fmt.Errorf("mouvement %s not found", m.ID)
}

// MarkMouvementPaid transitions a mouvement to paye. Idempotent.
func (s *Store) MarkMouvementPaid(ctx context.Context, id string) (model.Mouvement, error) {
	return s.setMouvementStatus(ctx, id, model.StatusPaye)
}

// CancelMouvement transitions a mouvement to annule. Cancelled mouvements
// are excluded from every aggregation.
func (s *Store) CancelMouvement(ctx context.Context, id string) (model.Mouvement, error) {
	return s.setMouvementStatus(ctx, id, model.StatusAnnule)
}

func (s *Store) setMouvementStatus(ctx context.Context, id string, status model.Status) (model.Mouvement, error) {
	for i, cur := range s.mouvements {
		if cur.ID != id {
			continue
		}
		if cur.Status == status {
			return cur, nil
		}
		cur.Status = status
		s.mouvements[i] = cur
		s.enqueueUpsertMouvement(cur)
		s.flush(ctx)
		return cur, nil
	}
	return model.Mouvement{}, fmt.Errorf("mouvement %s not found", id)
}

// DeleteMouvement removes a mouvement and its recurrence children.
func (s *Store) DeleteMouvement(ctx context.Context, id string) error {
	kept := s.mouvements[:0]
	found := false
	for _, m := range s.mouvements {
		if m.ID == id {
			found = true
			s.enqueueDeleteMouvement(m.ID)
			continue
		}
		if m.RecurrenceParentID == id {
			s.enqueueDeleteMouvement(m.ID)
			continue
		}
		kept = append(kept, m)
	}
	s.mouvements = kept
	if !found {
		return fmt.Errorf("mouvement %s not found", id)
	}
	s.flush(ctx)
	return nil
}

// UpdateSettings merge-updates the settings singleton.
func (s *Store) UpdateSettings(ctx context.Context, patch model.SettingsPatch) model.Settings {
	s.settings = patch.Apply(s.settings)
	settings := s.settings
	s.outbox.Add("settings", func(ctx context.Context, p Persister) error {
		return p.SaveSettings(ctx, settings)
	})
	s.flush(ctx)
	return s.settings
}

// PendingWrites returns the number of writes awaiting a successful flush.
func (s *Store) PendingWrites() int {
	return s.outbox.Len()
}

// Flush retries pending writes. Exposed so callers can drain the outbox at
// a natural boundary (end of a sync pass, shutdown).
func (s *Store) Flush(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	return s.outbox.Flush(ctx, s.persister)
}

func (s *Store) enqueueUpsertPrevision(p model.Prevision) {
	s.outbox.Add("prevision "+p.ID, func(ctx context.Context, pr Persister) error {
		return pr.UpsertPrevision(ctx, p)
	})
}

func (s *Store) enqueueDeletePrevision(id string) {
	s.outbox.Add("delete prevision "+id, func(ctx context.Context, pr Persister) error {
		return pr.DeletePrevision(ctx, id)
	})
}

func (s *Store) enqueueUpsertMouvement(m model.Mouvement) {
	s.outbox.Add("mouvement "+m.ID, func(ctx context.Context, pr Persister) error {
		return pr.UpsertMouvement(ctx, m)
	})
}

func (s *Store) enqueueDeleteMouvement(id string) {
	s.outbox.Add("delete mouvement "+id, func(ctx context.Context, pr Persister) error {
		return pr.DeleteMouvement(ctx, id)
	})
}

// flush drains the outbox, logging failures. The optimistic in-memory
// state stays authoritative; queued writes retry on the next mutation.
func (s *Store) flush(ctx context.Context) {
	if s.persister == nil {
		return
	}
	if err := s.outbox.Flush(ctx, s.persister); err != nil {
		log.Printf("tresorerie: persistence deferred: %v", err)
	}
}

func validationFailed(errs []model.ValidationError) error {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}
