package middleware

import (
	"net/http"

	tenauth "github.com/fixdesk/tenauth"
)

// Guard returns middleware that enforces the manager's route table:
// protected paths require a structurally valid session cookie and a
// current subscription (global admins bypass the subscription check).
// Failing requests are redirected, not rejected, because the guard
// fronts browser navigation rather than an API.
//
// The guard decides from the signed claims alone and never calls the
// credential store; see Manager.CheckRoute for the trust tradeoff.
func Guard(manager *tenauth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			cfg := manager.Config().Guard
			switch manager.CheckRoute(r) {
			case tenauth.RouteRedirectLogin:
				http.Redirect(w, r, cfg.LoginPath, http.StatusFound)
			case tenauth.RouteRedirectSubscription:
				http.Redirect(w, r, cfg.SubscriptionExpiredPath, http.StatusFound)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// WithSession returns middleware that resolves the effective session
// once per request (signature check, revocation check, impersonation
// masking) and injects the result into the request context. Handlers
// read it back with tenauth.SessionFromContext; a nil session means
// the request is unauthenticated.
func WithSession(manager *tenauth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := manager.GetSession(r.Context(), r)
			ctx := tenauth.ContextWithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
