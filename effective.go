package tenauth

// DeriveEffective computes the post-impersonation view of a raw session
// payload. It is the single place the masking rule lives:
//
//   - while ImpersonatedOrgID is set, the effective organization scope
//     is the impersonated tenant and the effective global-admin flag is
//     always false, so an impersonating admin never retains
//     cross-tenant powers inside the impersonated view;
//   - otherwise the payload passes through unchanged.
//
// The function is pure; exiting impersonation must NOT invert it
// (masked data cannot prove the caller was an admin) — see
// [Manager.StopImpersonating], which re-derives admin status from the
// credential store instead.
func DeriveEffective(raw RawSessionPayload) EffectiveSession {
	eff := EffectiveSession{
		UserID:             raw.UserID,
		Email:              raw.Email,
		Role:               raw.Role,
		IsGlobalAdmin:      raw.IsGlobalAdmin,
		OrganizationID:     raw.OrganizationID,
		SubscriptionStatus: raw.SubscriptionStatus,
		SubscriptionExpiry: raw.SubscriptionExpiry,
		TokenVersion:       raw.TokenVersion,
		Expires:            raw.Expires,
	}

	if raw.ImpersonatedOrgID != "" {
		eff.OrganizationID = raw.ImpersonatedOrgID
		eff.IsGlobalAdmin = false
		eff.IsImpersonating = true
	}

	return eff
}
