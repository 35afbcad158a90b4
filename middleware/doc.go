// Package middleware exposes HTTP adapters for the tenauth session
// core: the route guard, per-request session injection, and the
// impersonation transition handlers.
//
// # Adapters
//
//   - [Guard] — classifies every request via Manager.CheckRoute and
//     issues the login / subscription-expired redirects.
//   - [WithSession] — resolves the effective session once and injects
//     it into the request context for downstream handlers.
//   - [ImpersonateHandler], [StopImpersonatingHandler] — the admin
//     impersonation entry and exit endpoints.
//   - [LogoutHandler] — clears the session cookie.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Manager calls. It does
// NOT implement session logic itself — every decision is delegated to
// the Manager.
//
// # What this package must NOT do
//
//   - Parse or sign session tokens directly (delegates to Manager).
//   - Touch the credential store (Manager handles I/O).
//   - Make route decisions beyond translating a RouteDecision into a
//     response.
package middleware
