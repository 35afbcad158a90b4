// Package credstore provides ready-made tenauth.CredentialStore
// implementations: a Redis-backed store for deployments and an
// in-memory store for tests and examples.
//
// # Architecture boundaries
//
// This package owns persistence only. It never inspects passwords
// (it stores opaque hashes), never signs tokens, and never makes
// authorization decisions — those live in the tenauth Manager.
//
// # What this package must NOT do
//
//   - Hash or compare passwords.
//   - Cache user records across calls (the Manager memoizes per
//     request via middleware).
//   - Swallow the sentinel errors; tenauth.ErrUserNotFound and
//     tenauth.ErrAccountExists are part of the contract.
package credstore
