// Package token signs and verifies the cookie session payload as a
// compact HS256 token with strict validation semantics.
//
// Decrypt never returns an error: any malformed, tampered, expired, or
// wrongly-signed input decodes to nil so that callers can treat every
// failure mode as "no session".
package token
