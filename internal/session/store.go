// Package session owns the per-visitor state written when a form is rendered
// and checked when it is submitted: the one-time token, the daily field-name
// map, the form-load timestamp and the ring of recent content hashes.
//
// State is kept behind the Store interface. Memory serves single-process
// deployments and tests; Redis shares state across replicas. Both apply
// read-modify-write updates atomically per session id, which is what makes a
// token single-use under concurrent submissions.
package session

import (
	"context"

	"github.com/tbourn/go-form-gatekeeper/internal/domain"
)

// Store persists FormSessionState by session id.
type Store interface {
	// Get returns the state for sid, or (nil, nil) when none exists.
	Get(ctx context.Context, sid string) (*domain.FormSessionState, error)

	// Set replaces the state for sid.
	Set(ctx context.Context, sid string, st *domain.FormSessionState) error

	// Update applies fn to the current state (an empty state when none
	// exists) atomically. If fn returns an error nothing is written and the
	// error is returned unchanged. A state left empty by fn is deleted.
	Update(ctx context.Context, sid string, fn func(*domain.FormSessionState) error) error

	// Drop deletes the state for sid.
	Drop(ctx context.Context, sid string) error

	// Sweep calls prune on every stored state and writes back the ones it
	// reports as changed, deleting those left empty. It returns the number of
	// sessions changed or deleted.
	Sweep(ctx context.Context, prune func(*domain.FormSessionState) bool) (int, error)
}

// clone deep-copies st so callers never share maps or slices with a store.
func clone(st *domain.FormSessionState) *domain.FormSessionState {
	if st == nil {
		return nil
	}
	out := *st
	if st.Token != nil {
		tok := *st.Token
		out.Token = &tok
	}
	if st.FieldMap != nil {
		out.FieldMap = make(map[string]string, len(st.FieldMap))
		for k, v := range st.FieldMap {
			out.FieldMap[k] = v
		}
	}
	if st.RecentHashes != nil {
		out.RecentHashes = append([]string(nil), st.RecentHashes...)
	}
	return &out
}
