// Package password implements credential hashing and verification with
// Argon2id defaults.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Hasher.NeedsRehash] reports when a stored hash was produced with
// weaker parameters so callers can re-hash on the next successful login.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy
// (minimum length, reuse) is enforced by the session manager.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other tenauth package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
