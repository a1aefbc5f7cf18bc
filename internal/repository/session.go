package repository

import (
	"context"

	"github.com/prn-tf/inkstand/internal/domain"
	"github.com/prn-tf/inkstand/internal/kv"
)

// Session returns the persisted session, or nil when none exists.
func (r *Repository) Session(ctx context.Context) *domain.AuthSession {
	session := kv.Get[*domain.AuthSession](ctx, r.store, KeySession, nil)
	if session == nil || session.Token == "" {
		return nil
	}
	return session
}

// SetSession overwrites the session slot.
func (r *Repository) SetSession(ctx context.Context, session domain.AuthSession) {
	r.mutate(ctx, KeySession, func() {
		kv.Set(ctx, r.store, KeySession, session)
	})
}

// ClearSession empties the session slot.
func (r *Repository) ClearSession(ctx context.Context) {
	r.store.Remove(ctx, KeySession)
}

// CSRFToken returns the stored token or "".
func (r *Repository) CSRFToken(ctx context.Context) string {
	return kv.Get(ctx, r.store, KeyCSRFToken, "")
}

// SetCSRFToken overwrites the token slot.
func (r *Repository) SetCSRFToken(ctx context.Context, token string) {
	r.mutate(ctx, KeyCSRFToken, func() {
		kv.Set(ctx, r.store, KeyCSRFToken, token)
	})
}

// ClearCSRFToken empties the token slot.
func (r *Repository) ClearCSRFToken(ctx context.Context) {
	r.store.Remove(ctx, KeyCSRFToken)
}
