package tenauth

import (
	"github.com/fixdesk/tenauth/password"
	"github.com/fixdesk/tenauth/token"
)

// Builder assembles a Manager. Options apply in call order on top of
// DefaultConfig; Build validates the result once and the Manager is
// immutable afterwards.
type Builder struct {
	config     Config
	store      CredentialStore
	sink       AuditSink
	passwdCfg  password.Config
	passwdSet  bool
	buildError error
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the entire configuration tree.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithSecret overrides the token signing secret.
func (b *Builder) WithSecret(secret string) *Builder {
	b.config.Token.Secret = secret
	return b
}

// WithCredentialStore sets the credential store. Required.
func (b *Builder) WithCredentialStore(store CredentialStore) *Builder {
	b.store = store
	return b
}

// WithBreakGlassAdmin sets the email that is always granted
// global-admin at session issue.
func (b *Builder) WithBreakGlassAdmin(email string) *Builder {
	b.config.BreakGlass.AdminEmail = email
	return b
}

// WithRevocationPolicy selects the store-outage behavior of GetSession.
func (b *Builder) WithRevocationPolicy(policy RevocationPolicy) *Builder {
	b.config.Revocation.Policy = policy
	return b
}

// WithAuditSink enables auditing into sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the GetSession latency histogram.
// Implies metrics.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	if enabled {
		b.config.Metrics.Enabled = true
	}
	return b
}

// WithPasswordHashing overrides the Argon2id hash parameters.
func (b *Builder) WithPasswordHashing(cfg password.Config) *Builder {
	b.passwdCfg = cfg
	b.passwdSet = true
	return b
}

// WithProductionMode enables the production hardening switches: Secure
// cookies and the strict secret check in Build.
func (b *Builder) WithProductionMode(enabled bool) *Builder {
	b.config.Security.ProductionMode = enabled
	return b
}

// Build validates the configuration and constructs the Manager. The
// returned Manager owns an audit dispatcher goroutine when auditing is
// enabled; call Close to stop it.
func (b *Builder) Build() (*Manager, error) {
	if b.buildError != nil {
		return nil, b.buildError
	}
	if b.store == nil {
		return nil, ErrStoreRequired
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	codec, err := token.NewCodec(token.Config{
		Secret: []byte(b.config.Token.Secret),
		TTL:    b.config.Token.TTL,
		Leeway: b.config.Token.Leeway,
		Issuer: b.config.Token.Issuer,
	})
	if err != nil {
		return nil, err
	}

	passwdCfg := b.passwdCfg
	if !b.passwdSet {
		passwdCfg = password.DefaultConfig()
	}
	hasher, err := password.NewHasher(passwdCfg)
	if err != nil {
		return nil, err
	}

	return &Manager{
		config:  b.config,
		codec:   codec,
		hasher:  hasher,
		store:   b.store,
		audit:   newAuditDispatcher(b.config.Audit, b.sink),
		metrics: NewMetrics(b.config.Metrics),
	}, nil
}
