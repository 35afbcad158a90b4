package tenauth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fixdesk/tenauth/password"
	"github.com/fixdesk/tenauth/token"
)

// Manager is the single source of truth for "who is making this request
// and under what tenant/admin scope". It is immutable after Build and
// safe for concurrent use; the only shared mutable state it touches is
// the caller's CredentialStore.
type Manager struct {
	config  Config
	codec   *token.Codec
	hasher  *password.Hasher
	store   CredentialStore
	audit   *auditDispatcher
	metrics *Metrics
}

// Close flushes and stops the audit dispatcher.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	if m.audit != nil {
		m.audit.Close()
	}
}

// Config returns a copy of the active configuration. The Guard slices
// are shared and must be treated as read-only.
func (m *Manager) Config() Config {
	if m == nil {
		return Config{}
	}
	return m.config
}

// MetricsSnapshot returns a point-in-time copy of all metrics.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.Snapshot()
}

// AuditDropped reports how many audit events were dropped due to
// dispatcher backpressure.
func (m *Manager) AuditDropped() uint64 {
	if m == nil || m.audit == nil {
		return 0
	}
	return m.audit.Dropped()
}

func (m *Manager) metricInc(id MetricID) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.Inc(id)
}

func (m *Manager) emit(ctx context.Context, event AuditEvent) {
	if m == nil || m.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	m.audit.EmitEvent(ctx, event)
}

// SetSession signs payload and writes it as the session cookie:
// HttpOnly, SameSite=Lax, Path=/, Secure in production, expiring with
// the token. It overwrites any prior session cookie — fresh login and
// in-place payload mutation (impersonation transitions) go through the
// same door.
//
// If payload.Email matches the configured break-glass admin email, the
// global-admin flag is forced on before signing, regardless of the
// stored role.
func (m *Manager) SetSession(w http.ResponseWriter, payload RawSessionPayload) error {
	if m == nil || m.codec == nil {
		return ErrManagerNotReady
	}

	if bg := m.config.BreakGlass.AdminEmail; bg != "" && payload.Email == bg && !payload.IsGlobalAdmin {
		payload.IsGlobalAdmin = true
		m.metricInc(MetricBreakGlassOverride)
		m.emit(context.Background(), AuditEvent{
			EventType: EventBreakGlass,
			UserID:    payload.UserID,
			Email:     payload.Email,
			Success:   true,
		})
	}

	expires := time.Now().Add(m.codec.TTL())
	payload.Expires = expires

	signed, err := m.codec.Encrypt(claimsFromPayload(payload))
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.config.Cookie.Name,
		Value:    signed,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.config.Security.ProductionMode,
		SameSite: m.cookieSameSite(),
	})

	m.metricInc(MetricSessionIssued)
	return nil
}

// GetSession reads the session cookie and returns the effective
// (post-impersonation) identity, or nil when there is none. Nil covers
// every failure mode uniformly: absent cookie, bad signature, expired
// token, missing userId claim, and a failed revocation check.
//
// The revocation check compares the tokenVersion claim against the
// credential store's current value for the user (a missing claim reads
// as 0 for legacy tokens). When the store is unreachable the configured
// RevocationPolicy applies; the fail-open fallback is counted and
// audited rather than silent.
//
// GetSession performs one signature verification and at most one store
// read per call. Call sites inside a single request should go through
// middleware.WithSession / SessionFromContext instead of calling this
// repeatedly.
func (m *Manager) GetSession(ctx context.Context, r *http.Request) *EffectiveSession {
	if m == nil || m.codec == nil {
		return nil
	}
	start := time.Now()
	defer func() {
		if m.metrics != nil {
			m.metrics.Observe(MetricGetSessionLatency, time.Since(start))
		}
	}()

	raw := m.DecodeSessionCookie(r)
	if raw == nil || raw.UserID == 0 {
		return nil
	}

	stored, err := m.store.TokenVersion(ctx, raw.UserID)
	switch {
	case err == nil:
		if stored != raw.TokenVersion {
			m.rejectRevoked(ctx, raw, stored)
			return nil
		}
	case errors.Is(err, ErrUserNotFound):
		// No user record means no valid version either.
		m.rejectRevoked(ctx, raw, -1)
		return nil
	default:
		if m.config.Revocation.Policy == RevocationFailClosed {
			return nil
		}
		m.metricInc(MetricRevocationFailOpen)
		m.emit(ctx, AuditEvent{
			EventType: EventRevocationFallback,
			UserID:    raw.UserID,
			Email:     raw.Email,
			Success:   true,
			Error:     err.Error(),
			Metadata:  map[string]string{"policy": m.config.Revocation.Policy.String()},
		})
	}

	eff := DeriveEffective(*raw)
	return &eff
}

func (m *Manager) rejectRevoked(ctx context.Context, raw *RawSessionPayload, stored int64) {
	m.metricInc(MetricSessionRevoked)
	m.emit(ctx, AuditEvent{
		EventType: EventSessionRevoked,
		UserID:    raw.UserID,
		Email:     raw.Email,
		Success:   false,
		Metadata: map[string]string{
			"token_version":  formatInt(raw.TokenVersion),
			"stored_version": formatInt(stored),
		},
	})
}

// ClearSession deletes the session cookie. Used by logout.
func (m *Manager) ClearSession(w http.ResponseWriter) {
	if m == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.Cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.config.Security.ProductionMode,
		SameSite: m.cookieSameSite(),
	})
	m.metricInc(MetricSessionCleared)
}

// DecodeSessionCookie verifies the cookie's signature and expiry and
// returns the raw payload without the revocation check or the
// impersonation masking. This is the cheap routing path used by the
// route guard; business logic must use GetSession instead.
func (m *Manager) DecodeSessionCookie(r *http.Request) *RawSessionPayload {
	if m == nil || m.codec == nil || r == nil {
		return nil
	}
	cookie, err := r.Cookie(m.config.Cookie.Name)
	if err != nil || cookie.Value == "" {
		return nil
	}
	claims := m.codec.Decrypt(cookie.Value)
	if claims == nil {
		return nil
	}
	raw := payloadFromClaims(claims)
	return &raw
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func (m *Manager) cookieSameSite() http.SameSite {
	if m.config.Cookie.SameSite == 0 {
		return http.SameSiteLaxMode
	}
	return m.config.Cookie.SameSite
}

func claimsFromPayload(p RawSessionPayload) token.Claims {
	return token.Claims{
		UserID:             p.UserID,
		Email:              p.Email,
		Role:               string(p.Role),
		IsGlobalAdmin:      p.IsGlobalAdmin,
		OrganizationID:     p.OrganizationID,
		SubscriptionStatus: string(p.SubscriptionStatus),
		SubscriptionExpiry: p.SubscriptionExpiry,
		TokenVersion:       p.TokenVersion,
		ImpersonatedOrgID:  p.ImpersonatedOrgID,
	}
}

func payloadFromClaims(c *token.Claims) RawSessionPayload {
	p := RawSessionPayload{
		UserID:             c.UserID,
		Email:              c.Email,
		Role:               Role(c.Role),
		IsGlobalAdmin:      c.IsGlobalAdmin,
		OrganizationID:     c.OrganizationID,
		SubscriptionStatus: SubscriptionStatus(c.SubscriptionStatus),
		SubscriptionExpiry: c.SubscriptionExpiry,
		TokenVersion:       c.TokenVersion,
		ImpersonatedOrgID:  c.ImpersonatedOrgID,
	}
	if c.Expires != nil {
		p.Expires = *c.Expires
	} else if c.ExpiresAt != nil {
		p.Expires = c.ExpiresAt.Time
	}
	return p
}
