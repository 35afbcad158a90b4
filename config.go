package tenauth

import (
	"errors"
	"net/http"
	"os"
	"time"
)

// SecretEnvVar names the environment variable DefaultConfig reads the
// signing secret from.
const SecretEnvVar = "TENAUTH_SECRET"

// DefaultInsecureSecret is the development fallback secret. Build
// rejects it when Security.ProductionMode is set.
const DefaultInsecureSecret = "dev-secret-key-change-me"

// RevocationPolicy controls what GetSession does when the credential
// store cannot answer the token-version check.
type RevocationPolicy uint8

const (
	// RevocationFailOpen trusts the signed token during store outages.
	// Revoked sessions may keep working until the store recovers; the
	// fallback is counted (MetricRevocationFailOpen) and audited so the
	// tradeoff stays observable.
	RevocationFailOpen RevocationPolicy = iota
	// RevocationFailClosed treats store outages as "no session".
	RevocationFailClosed
)

// String returns the policy name used in audit events.
func (p RevocationPolicy) String() string {
	if p == RevocationFailClosed {
		return "fail_closed"
	}
	return "fail_open"
}

// Config is the root configuration tree consumed by Builder.
type Config struct {
	Token      TokenConfig
	Cookie     CookieConfig
	BreakGlass BreakGlassConfig
	Revocation RevocationConfig
	Guard      GuardConfig
	Password   PasswordPolicyConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
	Security   SecurityConfig
}

// TokenConfig holds the signing parameters for the session token.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	Leeway time.Duration
	Issuer string
}

// CookieConfig controls the session cookie attributes. HttpOnly and
// Path=/ are not configurable; Secure follows Security.ProductionMode.
type CookieConfig struct {
	Name     string
	SameSite http.SameSite
}

// BreakGlassConfig names the one identity that is always granted
// global-admin at session-issue time regardless of its stored role.
// An empty AdminEmail disables the override.
type BreakGlassConfig struct {
	AdminEmail string
}

// RevocationConfig selects the store-outage policy for the per-request
// token-version check.
type RevocationConfig struct {
	Policy RevocationPolicy
}

// GuardConfig is the route classification table for the middleware
// guard. HomePath is matched exactly; ProtectedPrefixes by prefix.
type GuardConfig struct {
	HomePath                string
	ProtectedPrefixes       []string
	PublicPaths             []string
	LoginPath               string
	SubscriptionExpiredPath string
	AdminPath               string
}

// PasswordPolicyConfig holds credential policy enforced by the flows
// (hash parameters live in password.Config).
type PasswordPolicyConfig struct {
	MinLength int
}

// AuditConfig controls dispatcher buffering behavior.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig enables the in-process counters and the GetSession
// latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// SecurityConfig holds deployment-wide switches.
type SecurityConfig struct {
	ProductionMode bool
}

// DefaultConfig returns the stock configuration: 24h HS256 sessions in
// a "session" cookie (HttpOnly, SameSite=Lax, Path=/), fail-open
// revocation, and the route table of the ticket application. The
// signing secret is read from TENAUTH_SECRET, falling back to
// DefaultInsecureSecret for development.
func DefaultConfig() Config {
	secret := os.Getenv(SecretEnvVar)
	if secret == "" {
		secret = DefaultInsecureSecret
	}

	return Config{
		Token: TokenConfig{
			Secret: secret,
			TTL:    24 * time.Hour,
		},
		Cookie: CookieConfig{
			Name:     "session",
			SameSite: http.SameSiteLaxMode,
		},
		Revocation: RevocationConfig{
			Policy: RevocationFailOpen,
		},
		Guard: GuardConfig{
			HomePath: "/",
			ProtectedPrefixes: []string{
				"/tickets",
				"/customers",
				"/products",
				"/companies",
				"/settings",
				"/dashboard",
			},
			PublicPaths:             []string{"/login", "/register", "/subscription-expired"},
			LoginPath:               "/login",
			SubscriptionExpiredPath: "/subscription-expired",
			AdminPath:               "/admin",
		},
		Password: PasswordPolicyConfig{
			MinLength: 8,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for internal consistency. Build
// calls it; it is exported for callers that assemble Config by hand.
func (c Config) Validate() error {
	if c.Token.Secret == "" {
		return errors.New("signing secret must not be empty")
	}
	if c.Security.ProductionMode {
		if c.Token.Secret == DefaultInsecureSecret {
			return ErrSecretRequired
		}
		if len(c.Token.Secret) < 32 {
			return errors.New("production signing secret must be at least 32 bytes")
		}
	}
	if c.Token.TTL < 0 {
		return errors.New("token TTL must not be negative")
	}
	if c.Cookie.Name == "" {
		return errors.New("cookie name must not be empty")
	}
	if c.Guard.LoginPath == "" || c.Guard.SubscriptionExpiredPath == "" {
		return errors.New("guard redirect targets must be configured")
	}
	if c.Password.MinLength < 0 {
		return errors.New("password minimum length must not be negative")
	}
	return nil
}
