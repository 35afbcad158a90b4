package internaldefs

import (
	tenauth "github.com/fixdesk/tenauth"
)

// CounterDef binds a core metric ID to its stable exported name.
type CounterDef struct {
	ID   tenauth.MetricID
	Name string
	Help string
}

// HistogramDef binds a core histogram ID to its stable exported name.
type HistogramDef struct {
	ID   tenauth.MetricID
	Name string
	Help string
}

// CounterDefs enumerates every exported counter in snapshot order.
var CounterDefs = []CounterDef{
	{ID: tenauth.MetricLoginSuccess, Name: "tenauth_login_success_total", Help: "Successful login attempts."},
	{ID: tenauth.MetricLoginFailure, Name: "tenauth_login_failure_total", Help: "Failed login attempts."},
	{ID: tenauth.MetricAccountCreated, Name: "tenauth_account_created_total", Help: "Successful registrations."},
	{ID: tenauth.MetricAccountDuplicate, Name: "tenauth_account_duplicate_total", Help: "Registrations rejected as duplicate."},
	{ID: tenauth.MetricSessionIssued, Name: "tenauth_session_issued_total", Help: "Session cookies issued."},
	{ID: tenauth.MetricSessionCleared, Name: "tenauth_session_cleared_total", Help: "Session cookies cleared."},
	{ID: tenauth.MetricSessionRevoked, Name: "tenauth_session_revoked_total", Help: "Sessions rejected by the token-version check."},
	{ID: tenauth.MetricRevocationFailOpen, Name: "tenauth_revocation_fail_open_total", Help: "Revocation checks skipped under the fail-open policy."},
	{ID: tenauth.MetricBreakGlassOverride, Name: "tenauth_break_glass_override_total", Help: "Sessions issued with the break-glass admin override."},
	{ID: tenauth.MetricGuardAllowed, Name: "tenauth_guard_allowed_total", Help: "Protected requests passed through the route guard."},
	{ID: tenauth.MetricGuardRedirectLogin, Name: "tenauth_guard_redirect_login_total", Help: "Guard redirects to the login page."},
	{ID: tenauth.MetricGuardRedirectSubscription, Name: "tenauth_guard_redirect_subscription_total", Help: "Guard redirects to the subscription-expired page."},
	{ID: tenauth.MetricImpersonationStart, Name: "tenauth_impersonation_start_total", Help: "Entered impersonation views."},
	{ID: tenauth.MetricImpersonationStop, Name: "tenauth_impersonation_stop_total", Help: "Exited impersonation views."},
	{ID: tenauth.MetricImpersonationDenied, Name: "tenauth_impersonation_denied_total", Help: "Rejected impersonation attempts."},
	{ID: tenauth.MetricPasswordChangeSuccess, Name: "tenauth_password_change_success_total", Help: "Successful password changes."},
	{ID: tenauth.MetricPasswordChangeInvalidOld, Name: "tenauth_password_change_invalid_old_total", Help: "Password change attempts with invalid old password."},
}

// HistogramDefs enumerates every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: tenauth.MetricGetSessionLatency, Name: "tenauth_get_session_latency_seconds", Help: "GetSession latency histogram."},
}

// HistogramBounds holds the upper bucket bounds in seconds, matching
// the core histogram layout.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix holds the bound spellings usable in instrument
// names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets widens a snapshot bucket slice to the fixed layout,
// tolerating short or absent slices.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form
// both exporters emit.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
