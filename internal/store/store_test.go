package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// memPersister is an in-memory Persister that can be told to fail.
type memPersister struct {
	previsions map[string]model.Prevision
	mouvements map[string]model.Mouvement
	settings   *model.Settings
	syncState  model.SyncState
	failing    bool
	writes     int
}

func newMemPersister() *memPersister {
	return &memPersister{
		previsions: make(map[string]model.Prevision),
		mouvements: make(map[string]model.Mouvement),
	}
}

var errUnavailable = errors.New("storage unavailable")

func (m *memPersister) UpsertPrevision(_ context.Context, p model.Prevision) error {
	if m.failing {
		return errUnavailable
	}
	m.writes++
	m.previsions[p.ID] = p
	return nil
}

func (m *memPersister) DeletePrevision(_ context.Context, id string) error {
	if m.failing {
		return errUnavailable
	}
	m.writes++
	delete(m.previsions, id)
	return nil
}

func (m *memPersister) ListPrevisions(context.Context) ([]model.Prevision, error) {
	var out []model.Prevision
	for _, p := range m.previsions {
		out = append(out, p)
	}
	return out, nil
}

func (m *memPersister) UpsertMouvement(_ context.Context, mv model.Mouvement) error {
	if m.failing {
		return errUnavailable
	}
	m.writes++
	m.mouvements[mv.ID] = mv
	return nil
}

func (m *memPersister) DeleteMouvement(_ context.Context, id string) error {
	if m.failing {
		return errUnavailable
	}
	m.writes++
	delete(m.mouvements, id)
	return nil
}

func (m *memPersister) ListMouvements(context.Context) ([]model.Mouvement, error) {
	var out []model.Mouvement
	for _, mv := range m.mouvements {
		out = append(out, mv)
	}
	return out, nil
}

func (m *memPersister) SaveSettings(_ context.Context, s model.Settings) error {
	if m.failing {
		return errUnavailable
	}
	m.settings = &s
	return nil
}

func (m *memPersister) LoadSettings(context.Context) (model.Settings, bool, error) {
	if m.settings == nil {
		return model.Settings{}, false, nil
	}
	return *m.settings, true, nil
}

func (m *memPersister) SaveSyncState(_ context.Context, s model.SyncState) error {
	if m.failing {
		return errUnavailable
	}
	m.syncState = s
	return nil
}

func (m *memPersister) LoadSyncState(context.Context) (model.SyncState, error) {
	return m.syncState, nil
}

func entree(desc string, amount string, d time.Time) model.Prevision {
	return model.Prevision{
		Type:        model.FlowEntree,
		Description: desc,
		Amount:      dec(amount),
		Date:        d,
	}
}

func TestAddPrevision_Defaults(t *testing.T) {
	s := New(newMemPersister())
	s.SetClock(func() time.Time { return date(2025, time.June, 1) })

	p, err := s.AddPrevision(context.Background(), entree("Facture Dupont", "2500", date(2025, time.June, 15)))
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, model.StatusPrevu, p.Status)
	assert.Equal(t, model.RecurrenceUnique, p.Recurrence)
	assert.Equal(t, model.SourceManual, p.Source)
	assert.Equal(t, date(2025, time.June, 1), p.CreatedAt)
	require.Len(t, s.Previsions(), 1)
}

func TestAddPrevision_Validation(t *testing.T) {
	s := New(nil)

	_, err := s.AddPrevision(context.Background(), model.Prevision{
		Type:   model.FlowEntree,
		Amount: dec("-5"),
		Date:   date(2025, time.June, 15),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Empty(t, s.Previsions(), "no partial write")
}

func TestMarkPrevisionPaid_OneWay(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	p, err := s.AddPrevision(ctx, entree("Acompte", "1000", date(2025, time.June, 15)))
	require.NoError(t, err)

	paid, err := s.MarkPrevisionPaid(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaye, paid.Status)

	// Moving back to prevu is rejected.
	paid.Status = model.StatusPrevu
	_, err = s.UpdatePrevision(ctx, paid)
	require.Error(t, err)

	// Marking again is a no-op.
	again, err := s.MarkPrevisionPaid(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaye, again.Status)
}

func TestDeletePrevision_CascadesToOwnChildren(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	root, err := s.AddPrevision(ctx, model.Prevision{
		Type: model.FlowSortie, Description: "Loyer", Amount: dec("1800"),
		Date: date(2025, time.January, 5), Recurrence: model.RecurrenceMensuel,
	})
	require.NoError(t, err)

	child := model.Prevision{
		Type: model.FlowSortie, Description: "Loyer", Amount: dec("1800"),
		Date: date(2025, time.February, 5), Recurrence: model.RecurrenceMensuel,
		RecurrenceParentID: root.ID,
	}
	_, err = s.AddPrevision(ctx, child)
	require.NoError(t, err)

	other, err := s.AddPrevision(ctx, entree("Facture X", "900", date(2025, time.February, 10)))
	require.NoError(t, err)

	require.NoError(t, s.DeletePrevision(ctx, root.ID))

	remaining := s.Previsions()
	require.Len(t, remaining, 1)
	assert.Equal(t, other.ID, remaining[0].ID)
}

func TestAddMouvement_ComputesVAT(t *testing.T) {
	s := New(nil)

	m, err := s.AddMouvement(context.Background(), model.Mouvement{
		Type:        model.FlowSortie,
		Description: "Materiaux",
		Amount:      dec("1200"),
		Date:        date(2025, time.March, 3),
	})
	require.NoError(t, err)

	assert.True(t, m.VATRate.Equal(dec("20")))
	assert.True(t, m.AmountHT.Equal(dec("1000")), "HT = %s", m.AmountHT)
	assert.True(t, m.AmountVAT.Equal(dec("200")), "VAT = %s", m.AmountVAT)
}

func TestAddMouvement_Autoliquidation(t *testing.T) {
	s := New(nil)

	m, err := s.AddMouvement(context.Background(), model.Mouvement{
		Type:            model.FlowSortie,
		Description:     "Sous-traitance gros oeuvre",
		Amount:          dec("5000"),
		Autoliquidation: true,
		Date:            date(2025, time.March, 3),
	})
	require.NoError(t, err)

	assert.True(t, m.AmountHT.Equal(dec("5000")))
	assert.True(t, m.AmountVAT.IsZero())
}

func TestUpdateSettings_Merge(t *testing.T) {
	s := New(nil)
	threshold := dec("12000")

	got := s.UpdateSettings(context.Background(), model.SettingsPatch{AlertThreshold: &threshold})
	assert.True(t, got.AlertThreshold.Equal(dec("12000")))
	assert.Equal(t, model.RegimeTrimestriel, got.VATRegime, "untouched default")
}

func TestOutbox_RetriesFailedWrites(t *testing.T) {
	p := newMemPersister()
	s := New(p)
	ctx := context.Background()

	p.failing = true
	prev, err := s.AddPrevision(ctx, entree("Facture Y", "300", date(2025, time.July, 1)))
	require.NoError(t, err, "persistence failure is not surfaced")

	// Optimistic state is authoritative, write stays queued.
	require.Len(t, s.Previsions(), 1)
	assert.Equal(t, 1, s.PendingWrites())
	assert.Empty(t, p.previsions)

	// Next mutation retries the queued write.
	p.failing = false
	_, err = s.AddPrevision(ctx, entree("Facture Z", "400", date(2025, time.July, 2)))
	require.NoError(t, err)

	assert.Equal(t, 0, s.PendingWrites())
	assert.Contains(t, p.previsions, prev.ID)
	assert.Len(t, p.previsions, 2)
}

func TestOutbox_PreservesOrder(t *testing.T) {
	p := newMemPersister()
	s := New(p)
	ctx := context.Background()

	p.failing = true
	prev, err := s.AddPrevision(ctx, entree("Ephemere", "100", date(2025, time.July, 1)))
	require.NoError(t, err)
	require.NoError(t, s.DeletePrevision(ctx, prev.ID))

	// Upsert then delete replay in order: the record must not survive.
	p.failing = false
	require.NoError(t, s.Flush(ctx))
	assert.Empty(t, p.previsions)
}

func TestLoad_ReplacesState(t *testing.T) {
	p := newMemPersister()
	seed := New(p)
	ctx := context.Background()

	_, err := seed.AddPrevision(ctx, entree("Facture A", "100", date(2025, time.May, 1)))
	require.NoError(t, err)
	seed.UpdateSettings(ctx, model.SettingsPatch{VATRegime: regimePtr(model.RegimeMensuel)})

	fresh := New(p)
	require.NoError(t, fresh.Load(ctx))

	assert.Len(t, fresh.Previsions(), 1)
	assert.Equal(t, model.RegimeMensuel, fresh.Settings().VATRegime)
}

func regimePtr(r model.VATRegime) *model.VATRegime { return &r }
