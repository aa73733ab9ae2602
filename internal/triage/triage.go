// Package triage changes the review status of violations.
//
// The consistency model is refetch-as-reconciliation: a status change is sent
// to the remote collection and then the whole list is re-read. The local
// snapshot is never patched, so there is exactly one source of truth (the last
// successful poll) at the cost of a visible round trip between the action and
// the updated row.
package triage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/five82/patrol/internal/violations"
)

// Resyncer pulls authoritative state after a write.
type Resyncer interface {
	Resync(ctx context.Context) error
}

// Mutator is the only component that calls the remote Update operation.
type Mutator struct {
	client violations.StatusUpdater
	resync Resyncer
	log    zerolog.Logger
}

// NewMutator builds a Mutator.
func NewMutator(client violations.StatusUpdater, resync Resyncer, log zerolog.Logger) *Mutator {
	return &Mutator{
		client: client,
		resync: resync,
		log:    log.With().Str("component", "triage").Logger(),
	}
}

// SetStatus writes status for the violation id and then resyncs. A failed
// write is logged and returned; the store keeps whatever it held before.
// The returned error of a successful write reflects the resync only.
func (m *Mutator) SetStatus(ctx context.Context, id violations.ID, status violations.Status) error {
	if _, err := violations.ParseStatus(string(status)); err != nil {
		return fmt.Errorf("%w: %w", violations.ErrMutation, err)
	}

	if err := m.client.UpdateStatus(ctx, id, status); err != nil {
		m.log.Error().
			Err(err).
			Str("id", string(id)).
			Str("status", string(status)).
			Msg("status update failed")
		return err
	}
	m.log.Info().
		Str("id", string(id)).
		Str("status", string(status)).
		Msg("status updated")

	if err := m.resync.Resync(ctx); err != nil {
		return fmt.Errorf("resync after update: %w", err)
	}
	return nil
}
