package tenauth

import "context"

type sessionContextKey struct{}

// ContextWithSession returns a context carrying the effective session.
// A nil session is stored as-is, marking "resolved, unauthenticated" so
// downstream code can distinguish it from "never resolved".
func ContextWithSession(ctx context.Context, session *EffectiveSession) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// SessionFromContext returns the effective session injected by
// [ContextWithSession] (typically via middleware.WithSession). ok is
// false when no middleware ran; a true ok with a nil session means the
// request was resolved as unauthenticated.
func SessionFromContext(ctx context.Context) (*EffectiveSession, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(*EffectiveSession)
	return session, ok
}
