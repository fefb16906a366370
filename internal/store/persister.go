package store

import (
	"context"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/model"
)

// Persister is the tolerant persistence collaborator. Implementations are
// expected to survive schema drift: unknown fields in stored documents are
// dropped or defaulted on read, never treated as errors.
type Persister interface {
	UpsertPrevision(ctx context.Context, p model.Prevision) error
	DeletePrevision(ctx context.Context, id string) error
	ListPrevisions(ctx context.Context) ([]model.Prevision, error)

	UpsertMouvement(ctx context.Context, m model.Mouvement) error
	DeleteMouvement(ctx context.Context, id string) error
	ListMouvements(ctx context.Context) ([]model.Mouvement, error)

	SaveSettings(ctx context.Context, s model.Settings) error
	LoadSettings(ctx context.Context) (model.Settings, bool, error)

	SaveSyncState(ctx context.Context, s model.SyncState) error
	LoadSyncState(ctx context.Context) (model.SyncState, error)
}

// operation is one pending write in the outbox.
type operation struct {
	label string
	apply func(context.Context, Persister) error
}

// Outbox queues writes that could not yet be confirmed by the Persister.
// The in-memory store is updated optimistically before any write resolves;
// a failed write stays queued and is retried on the next flush, so delivery
// is at-least-once and a failed flush never rolls back engine state.
type Outbox struct {
	pending []operation
}

// Add enqueues a write.
func (o *Outbox) Add(label string, apply func(context.Context, Persister) error) {
	o.pending = append(o.pending, operation{label: label, apply: apply})
}

// Len returns the number of pending writes.
func (o *Outbox) Len() int {
	return len(o.pending)
}

// Flush applies pending writes in order. On the first failure it stops,
// keeps the failed write and everything after it queued, and returns the
// error with the operation's label.
func (o *Outbox) Flush(ctx context.Context, p Persister) error {
	for len(o.pending) > 0 {
		op := o.pending[0]
		if err := op.apply(ctx, p); err != nil {
			return &FlushError{Label: op.label, Err: err}
		}
		o.pending = o.pending[1:]
	}
	return nil
}

// FlushError reports which pending write failed.
type FlushError struct {
	Label string
	Err   error
}

func (e *FlushError) Error() string {
	return "flushing " + e.Label + ": " + e.Err.Error()
}

func (e *FlushError) Unwrap() error {
	return e.Err
}
