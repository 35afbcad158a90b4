package tenauth

import (
	"net/http"
	"strings"
	"time"
)

// CheckRoute classifies a request against the guard route table and the
// raw session cookie. It decides from the signed claims alone — no
// credential store round trip — so a revoked-but-unexpired token still
// routes as authenticated until it reaches a handler that calls
// GetSession. That window is bounded by the token TTL and is the price
// of keeping the guard on every request essentially free.
//
// Decision order:
//
//  1. public paths and unclassified paths pass;
//  2. no valid cookie on a protected path redirects to login;
//  3. a lapsed subscription redirects to the subscription-expired page,
//     unless the raw payload carries the global-admin flag.
func (m *Manager) CheckRoute(r *http.Request) RouteDecision {
	if m == nil || r == nil {
		return RouteAllow
	}

	path := r.URL.Path
	if m.isPublicPath(path) || !m.isProtectedPath(path) {
		return RouteAllow
	}

	raw := m.DecodeSessionCookie(r)
	if raw == nil || raw.UserID == 0 {
		m.metricInc(MetricGuardRedirectLogin)
		return RouteRedirectLogin
	}

	if !raw.IsGlobalAdmin && !raw.SubscriptionStatus.Current(raw.SubscriptionExpiry, time.Now()) {
		m.metricInc(MetricGuardRedirectSubscription)
		return RouteRedirectSubscription
	}

	m.metricInc(MetricGuardAllowed)
	return RouteAllow
}

func (m *Manager) isPublicPath(path string) bool {
	for _, p := range m.config.Guard.PublicPaths {
		if path == p {
			return true
		}
	}
	return false
}

func (m *Manager) isProtectedPath(path string) bool {
	if path == m.config.Guard.HomePath {
		return true
	}
	for _, prefix := range m.config.Guard.ProtectedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
