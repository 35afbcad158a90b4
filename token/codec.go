package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the session lifetime applied when Config.TTL is zero.
// Sessions are re-signed on every mutation, so the clock restarts on
// login, subscription refresh, and impersonation transitions.
const DefaultTTL = 24 * time.Hour

const maxLeeway = 2 * time.Minute

// Claims is the signed session payload carried in the cookie. Field
// names mirror the wire format consumed by existing clients, so they
// must not be renamed without a token version migration.
type Claims struct {
	UserID             int64      `json:"userId,omitempty"`
	Email              string     `json:"email,omitempty"`
	Role               string     `json:"role,omitempty"`
	IsGlobalAdmin      bool       `json:"isGlobalAdmin,omitempty"`
	OrganizationID     string     `json:"organizationId,omitempty"`
	SubscriptionStatus string     `json:"subscriptionStatus,omitempty"`
	SubscriptionExpiry *time.Time `json:"subscriptionExpiry,omitempty"`
	TokenVersion       int64      `json:"tokenVersion,omitempty"`
	ImpersonatedOrgID  string     `json:"impersonatedOrgId,omitempty"`
	Expires            *time.Time `json:"expires,omitempty"`
	jwt.RegisteredClaims
}

// Config holds the symmetric signing parameters for the codec.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Leeway time.Duration
	Issuer string
}

// Codec signs and verifies session payloads with HS256. A Codec is
// immutable after construction and safe for concurrent use.
type Codec struct {
	config Config
}

// NewCodec validates cfg and returns a ready Codec.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("hs256 requires a signing secret")
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.TTL < 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > maxLeeway {
		return nil, errors.New("invalid leeway configuration")
	}
	return &Codec{config: cfg}, nil
}

// TTL reports the configured session lifetime.
func (c *Codec) TTL() time.Duration {
	return c.config.TTL
}

// Encrypt signs claims and returns the compact token string. The exp
// claim is set to now+TTL and mirrored into the payload-level Expires
// field; iat is always set. Any later change to the payload bytes
// invalidates the signature.
func (c *Codec) Encrypt(claims Claims) (string, error) {
	now := time.Now()
	expires := now.Add(c.config.TTL)

	claims.Expires = &expires
	claims.ExpiresAt = jwt.NewNumericDate(expires)
	claims.IssuedAt = jwt.NewNumericDate(now)
	if c.config.Issuer != "" {
		claims.Issuer = c.config.Issuer
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(c.config.Secret)
}

// Decrypt verifies signature and expiry and returns the embedded
// claims, or nil on any failure: bad signature, malformed input, an
// unexpected algorithm, or an expired token. Callers treat nil
// uniformly as "no session"; no error detail is exposed.
func (c *Codec) Decrypt(raw string) *Claims {
	if raw == "" {
		return nil
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	tok, err := parser.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing algorithm")
		}
		return c.config.Secret, nil
	})
	if err != nil {
		return nil
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil
	}
	return claims
}
