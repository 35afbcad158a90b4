// Package tenauth provides stateless, cookie-based session authentication
// with tenant-scoped authorization and admin impersonation.
//
// The session is a signed HS256 token carried entirely in an HTTP cookie:
// there is no server-side session table. Remote revocation is implemented
// as a compensating control — a per-user token version counter in the
// caller's credential store is compared against the version claim on
// every [Manager.GetSession] call. When the store is unreachable the
// configured [RevocationPolicy] decides between trusting the token
// (fail-open, the default, favoring availability) and treating the
// session as absent (fail-closed).
//
// # Architecture boundaries
//
// tenauth is the public surface. It exposes [Manager], [Builder],
// [Config], and value types ([RawSessionPayload], [EffectiveSession],
// [SecurityReport], audit and metric types). Token signing lives in
// token/, credential hashing in password/, HTTP adapters in middleware/,
// and ready-made [CredentialStore] backends in credstore/.
//
// # Raw vs effective sessions
//
// [RawSessionPayload] is the payload as signed and stored in the cookie.
// [EffectiveSession] is what application code reads: while an admin is
// impersonating an organization, the effective view rewrites the
// organization scope to the impersonated tenant and forces the
// global-admin flag to false. [DeriveEffective] is the single pure
// function that applies this masking; exiting impersonation re-derives
// admin status from the credential store rather than trusting the
// masked view.
//
// # What this package must NOT do
//
//   - Surface session-read failures as errors. A malformed, expired, or
//     revoked cookie is indistinguishable from "not logged in".
//   - Perform I/O outside Manager methods (construction via Builder is
//     allocation-only until Build).
//   - Import any sub-package that re-imports tenauth (no import cycles).
package tenauth
