package domain

import (
	"context"

	"github.com/google/uuid"
)

// Session identifies the authenticated caller and the tenant it belongs to.
// It is resolved once per request by the auth middleware and consumed by the
// tenant-scoped transaction executor.
type Session struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
}

// Valid reports whether the session carries both a user and a tenant.
func (s Session) Valid() bool {
	return s.UserID != uuid.Nil && s.TenantID != uuid.Nil
}

type sessionContextKey struct{}

// ContextWithSession returns a context carrying the authenticated session.
func ContextWithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// SessionFromContext retrieves the authenticated session, if any.
func SessionFromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	session, ok := ctx.Value(sessionContextKey{}).(Session)
	return session, ok
}
