package forecast

import (
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
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func prevision(typ model.FlowType, desc, amount string, day time.Time, status model.Status) model.Prevision {
	return model.Prevision{
		ID:          desc + day.Format("2006-01-02"),
		Type:        typ,
		Description: desc,
		Amount:      dec(amount),
		Date:        day,
		Status:      status,
		Recurrence:  model.RecurrenceUnique,
	}
}

func settingsWith(initial string) model.Settings {
	s := model.DefaultSettings()
	s.InitialBalance = dec(initial)
	return s
}

func TestCurrentBalance(t *testing.T) {
	now := date(2025, time.March, 15)
	previsions := []model.Prevision{
		prevision(model.FlowEntree, "Acompte", "500", now, model.StatusPaye),
		prevision(model.FlowSortie, "Materiaux", "200", now, model.StatusPaye),
		prevision(model.FlowEntree, "Solde chantier", "9999", now, model.StatusPrevu),
	}

	got := CurrentBalance(previsions, settingsWith("1000"))
	assert.True(t, got.Equal(dec("1300")), "got %s", got)
}

func TestCurrentBalanceCountsDuplicatesOnce(t *testing.T) {
	now := date(2025, time.March, 15)
	p := prevision(model.FlowEntree, "Acompte", "500", now, model.StatusPaye)
	dup := p
	dup.ID = "other-id"

	got := CurrentBalance([]model.Prevision{p, dup}, settingsWith("0"))
	assert.True(t, got.Equal(dec("500")))
}

func TestMonthlyBucketsLayout(t *testing.T) {
	buckets := MonthlyBuckets(nil, settingsWith("0"), 6, date(2025, time.March, 15))
	require.Len(t, buckets, 6)

	assert.Equal(t, time.October, buckets[0].Month)
	assert.Equal(t, 2024, buckets[0].Year)
	assert.Equal(t, time.March, buckets[5].Month)
	assert.True(t, buckets[5].IsCurrent)
	for _, b := range buckets {
		assert.False(t, b.IsFuture)
	}
}

func TestMonthlyBucketsFutureMonths(t *testing.T) {
	buckets := MonthlyBuckets(nil, settingsWith("0"), 9, date(2025, time.March, 15))
	require.Len(t, buckets, 9)
	assert.True(t, buckets[5].IsCurrent)
	assert.True(t, buckets[6].IsFuture)
	assert.Equal(t, time.April, buckets[6].Month)
	assert.Equal(t, time.June, buckets[8].Month)
}

func TestMonthlyBucketsCumulative(t *testing.T) {
	now := date(2025, time.March, 15)
	previsions := []model.Prevision{
		prevision(model.FlowEntree, "Acompte", "500", now, model.StatusPaye),
		prevision(model.FlowSortie, "Materiaux", "200", now, model.StatusPaye),
		prevision(model.FlowEntree, "Facture janvier", "300", date(2025, time.January, 10), model.StatusPaye),
	}

	buckets := MonthlyBuckets(previsions, settingsWith("1000"), 6, now)
	require.Len(t, buckets, 6)

	cumul := dec("1000")
	for _, b := range buckets {
		cumul = cumul.Add(b.Entrees).Sub(b.Sorties)
		assert.True(t, b.CumulBalance.Equal(cumul), "month %s: %s != %s", b.Month, b.CumulBalance, cumul)
	}
	assert.True(t, buckets[5].CumulBalance.Equal(dec("1600")))
}

func TestMouvementKPIs(t *testing.T) {
	now := date(2025, time.March, 15)
	mouvements := []model.Mouvement{
		{ID: "1", Type: model.FlowEntree, Description: "Reglement", Amount: dec("1200"), Date: now, Status: model.StatusPaye},
		{ID: "2", Type: model.FlowSortie, Description: "Carburant", Amount: dec("90"), Date: now, Status: model.StatusPaye},
		{ID: "3", Type: model.FlowEntree, Description: "Ancien reglement", Amount: dec("800"), Date: date(2025, time.January, 5), Status: model.StatusPaye},
		{ID: "4", Type: model.FlowSortie, Description: "Location", Amount: dec("400"), Date: now, Status: model.StatusPrevu},
		{ID: "5", Type: model.FlowSortie, Description: "Annule", Amount: dec("999"), Date: now, Status: model.StatusAnnule},
	}

	k := MouvementKPIs(mouvements, now)
	assert.True(t, k.TotalEntrees.Equal(dec("2000")))
	assert.True(t, k.TotalSorties.Equal(dec("90")))
	assert.True(t, k.EntreesThisMonth.Equal(dec("1200")))
	assert.True(t, k.SortiesPrevu.Equal(dec("400")))
	assert.True(t, k.SoldeNet.Equal(dec("1910")))
}

func TestAlertsNegativeBalance(t *testing.T) {
	now := date(2025, time.March, 15)
	previsions := []model.Prevision{
		prevision(model.FlowSortie, "Gros achat", "8000", now, model.StatusPrevu),
	}

	alerts := Alerts(previsions, nil, settingsWith("1000"), now)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertNegativeBalance, alerts[0].Kind)
}

func TestAlertsLargeInflow(t *testing.T) {
	now := date(2025, time.March, 15)
	invoices := []model.Invoice{
		{
			ID:       "fac-1",
			Number:   "F2025-001",
			Status:   "envoye",
			TotalTTC: dec("12000"),
			DueDate:  date(2025, time.March, 18),
		},
	}

	alerts := Alerts(nil, invoices, settingsWith("50000"), now)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertLargeInflow, alerts[0].Kind)
}

func TestAlertsQuietWhenHealthy(t *testing.T) {
	now := date(2025, time.March, 15)
	assert.Empty(t, Alerts(nil, nil, settingsWith("50000"), now))
}
