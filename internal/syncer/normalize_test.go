package syncer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSnapshotFrenchEnvelope(t *testing.T) {
	data := []byte(`{
		"devis": [{
			"id": "fac-1",
			"numero": "F2025-001",
			"client_nom": "Dupont SARL",
			"statut": "envoye",
			"total_ttc": 1200,
			"montant_paye": 200,
			"tvaRate": 20,
			"date": "2025-02-01",
			"date_echeance": "2025-03-15"
		}],
		"depenses": [{
			"id": "dep-1",
			"description": "Ciment",
			"fournisseur": "Point P",
			"categorie": "Materiaux",
			"montant": 340.5,
			"date": "2025-03-02"
		}],
		"paiements": [{
			"id": "pay-1",
			"montant": 200,
			"date_reglement": "2025-03-05",
			"devisId": "fac-1"
		}]
	}`)

	snap, err := ParseSnapshot(data)
	require.NoError(t, err)

	require.Len(t, snap.Invoices, 1)
	f := snap.Invoices[0]
	assert.Equal(t, "F2025-001", f.Number)
	assert.True(t, f.TotalTTC.Equal(amt("1200")))
	assert.True(t, f.TotalPaid.Equal(amt("200")))
	assert.Equal(t, date(2025, time.March, 15), f.DueDate)

	require.Len(t, snap.Expenses, 1)
	assert.True(t, snap.Expenses[0].Amount.Equal(amt("340.5")))

	require.Len(t, snap.Payments, 1)
	assert.Equal(t, "fac-1", snap.Payments[0].LinkedInvoiceID)
	assert.Equal(t, date(2025, time.March, 5), snap.Payments[0].Date)
}

func TestParseSnapshotEnglishAliases(t *testing.T) {
	data := []byte(`{
		"invoices": [{
			"id": "fac-2",
			"number": "F2025-002",
			"clientName": "Martin",
			"status": "payee",
			"totalTTC": "600",
			"totalPaid": "600",
			"dueDate": "2025-03-20T10:30:00Z"
		}],
		"acceptedQuotes": [{
			"id": "dev-1",
			"numero": "D2025-004",
			"total_ttc": 5000,
			"date_validite": "2025-04-10"
		}]
	}`)

	snap, err := ParseSnapshot(data)
	require.NoError(t, err)

	require.Len(t, snap.Invoices, 1)
	f := snap.Invoices[0]
	assert.True(t, f.TotalTTC.Equal(amt("600")), "string amounts decode")
	// Timestamps are truncated to the day.
	assert.Equal(t, date(2025, time.March, 20), f.DueDate)

	require.Len(t, snap.AcceptedQuotes, 1)
	assert.Equal(t, date(2025, time.April, 10), snap.AcceptedQuotes[0].SyncDate())
}

func TestParseSnapshotRejectsBadJSON(t *testing.T) {
	_, err := ParseSnapshot([]byte(`{"devis": [`))
	require.Error(t, err)
}

func TestNormalizeExpenseAliasPriority(t *testing.T) {
	e := NormalizeExpense(map[string]any{
		"id":         "dep-2",
		"libelle":    "Location nacelle",
		"amount":     float64(980),
		"montant_ht": float64(816.67),
		"tauxTva":    float64(20),
		"created_at": "2025-01-15 08:00:00",
	})
	assert.Equal(t, "Location nacelle", e.Description)
	assert.True(t, e.Amount.Equal(amt("980")))
	assert.True(t, e.VATRate.Equal(amt("20")))
	assert.Equal(t, date(2025, time.January, 15), e.Date)
}
