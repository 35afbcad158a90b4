package tenauth

import (
	"time"

	"github.com/fixdesk/tenauth/password"
)

// SecurityReport is a static snapshot of the security-relevant
// configuration, intended for startup logging and operational review.
type SecurityReport struct {
	ProductionMode     bool
	SigningAlgorithm   string
	SessionTTL         time.Duration
	CookieName         string
	SecureCookie       bool
	RevocationPolicy   string
	BreakGlassActive   bool
	GuardActive        bool
	Argon2             password.Config
	AuditingActive     bool
	MetricsActive      bool
	UsingDefaultSecret bool
}

// SecurityReport summarizes the Manager's effective security posture.
func (m *Manager) SecurityReport() SecurityReport {
	if m == nil {
		return SecurityReport{}
	}

	report := SecurityReport{
		ProductionMode:     m.config.Security.ProductionMode,
		SigningAlgorithm:   "HS256",
		SessionTTL:         m.config.Token.TTL,
		CookieName:         m.config.Cookie.Name,
		SecureCookie:       m.config.Security.ProductionMode,
		RevocationPolicy:   m.config.Revocation.Policy.String(),
		BreakGlassActive:   m.config.BreakGlass.AdminEmail != "",
		GuardActive:        len(m.config.Guard.ProtectedPrefixes) > 0 || m.config.Guard.HomePath != "",
		AuditingActive:     m.audit != nil,
		MetricsActive:      m.metrics.Enabled(),
		UsingDefaultSecret: m.config.Token.Secret == DefaultInsecureSecret,
	}
	if m.hasher != nil {
		report.Argon2 = m.hasher.Config()
	}
	return report
}
