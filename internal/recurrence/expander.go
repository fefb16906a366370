// Package recurrence materializes future instances of recurring
// previsions: a rolling three-month batch pass, plus a single-step
// shortcut when an instance is marked paid.
package recurrence

import (
	"context"
	"fmt"
	"time"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/model"
	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/store"
)

// batchSteps caps how many instances one family gains per batch pass.
const batchSteps = 4

// Expander generates recurring prevision instances into the store.
type Expander struct {
	store *store.Store
	ran   bool
}

// NewExpander creates an expander over st.
func NewExpander(st *store.Store) *Expander {
	return &Expander{store: st}
}

// Reset re-arms the batch pass, after a data reload.
func (x *Expander) Reset() {
	x.ran = false
}

// ExpandAll runs the batch pass once per arm: for every recurrence
// family it appends the instances falling inside [now, now+3 months),
// stepping from the family's latest date. Roots are never touched;
// duplicate dates within a family and duplicate content anywhere are
// both skipped. Returns the number of instances created.
func (x *Expander) ExpandAll(ctx context.Context, now time.Time) (int, error) {
	if x.ran {
		return 0, nil
	}
	x.ran = true

	previsions := x.store.Previsions()
	horizon := now.AddDate(0, 3, 0)
	globalKeys := make(map[string]bool, len(previsions))
	for _, p := range previsions {
		globalKeys[p.DedupKey()] = true
	}

	created := 0
	for _, root := range previsions {
		if !root.IsRecurrenceRoot() {
			continue
		}
		interval := root.Recurrence.IntervalMonths()

		latest := root.Date
		familyDates := map[time.Time]bool{dateOnly(root.Date): true}
		for _, p := range previsions {
			if p.RecurrenceParentID != root.ID {
				continue
			}
			familyDates[dateOnly(p.Date)] = true
			if p.Date.After(latest) {
				latest = p.Date
			}
		}

		next := latest
		for step := 0; step < batchSteps; step++ {
			next = next.AddDate(0, interval, 0)
			if next.After(horizon) {
				break
			}
			if next.Before(now) {
				continue
			}
			child := instanceOf(root, next)
			if familyDates[dateOnly(next)] || globalKeys[child.DedupKey()] {
				continue
			}
			stored, err := x.store.AddPrevision(ctx, child)
			if err != nil {
				return created, fmt.Errorf("expanding %s: %w", root.ID, err)
			}
			familyDates[dateOnly(next)] = true
			globalKeys[stored.DedupKey()] = true
			created++
		}
	}
	return created, nil
}

// EnsureNextAfterPaid schedules the single next instance of the family
// that id belongs to, one interval after id's own date, so marking a
// recurring prevision paid immediately rolls the plan forward. Instances
// more than twelve months out are not created. Returns the new instance,
// or nil when nothing was needed.
func (x *Expander) EnsureNextAfterPaid(ctx context.Context, id string, now time.Time) (*model.Prevision, error) {
	previsions := x.store.Previsions()

	var paid *model.Prevision
	for i := range previsions {
		if previsions[i].ID == id {
			paid = &previsions[i]
			break
		}
	}
	if paid == nil {
		return nil, fmt.Errorf("prevision %s not found", id)
	}
	if paid.Recurrence == model.RecurrenceUnique || paid.Recurrence == "" {
		return nil, nil
	}

	root := *paid
	if paid.RecurrenceParentID != "" {
		for i := range previsions {
			if previsions[i].ID == paid.RecurrenceParentID {
				root = previsions[i]
				break
			}
		}
	}

	next := paid.Date.AddDate(0, paid.Recurrence.IntervalMonths(), 0)
	if next.After(now.AddDate(0, 12, 0)) {
		return nil, nil
	}

	child := instanceOf(root, next)
	for _, p := range previsions {
		inFamily := p.ID == root.ID || p.RecurrenceParentID == root.ID
		if inFamily && dateOnly(p.Date) == dateOnly(next) {
			return nil, nil
		}
		if p.DedupKey() == child.DedupKey() {
			return nil, nil
		}
	}

	stored, err := x.store.AddPrevision(ctx, child)
	if err != nil {
		return nil, fmt.Errorf("scheduling next instance of %s: %w", root.ID, err)
	}
	return &stored, nil
}

// instanceOf builds a new family instance from the root, dated at.
func instanceOf(root model.Prevision, at time.Time) model.Prevision {
	return model.Prevision{
		Type:               root.Type,
		Description:        root.Description,
		Amount:             root.Amount,
		Date:               at,
		Category:           root.Category,
		Status:             model.StatusPrevu,
		Recurrence:         root.Recurrence,
		RecurrenceParentID: root.ID,
		Source:             root.Source,
		LinkedID:           root.LinkedID,
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
