package tenauth

import (
	"context"
	"time"
)

// Role is the coarse application role carried in the session, distinct
// from any per-tenant membership role.
type Role string

const (
	// RoleUser is the default role for self-registered accounts.
	RoleUser Role = "USER"
	// RoleAdmin marks application operators.
	RoleAdmin Role = "ADMIN"
)

// SubscriptionStatus is the billing state of the active organization,
// mirrored into the session at issue time.
type SubscriptionStatus string

const (
	// SubscriptionTrial grants access until the trial expiry passes.
	SubscriptionTrial SubscriptionStatus = "TRIAL"
	// SubscriptionActive grants access until the paid expiry passes.
	SubscriptionActive SubscriptionStatus = "ACTIVE"
	// SubscriptionPastDue blocks access for non-admins.
	SubscriptionPastDue SubscriptionStatus = "PAST_DUE"
	// SubscriptionCanceled blocks access for non-admins.
	SubscriptionCanceled SubscriptionStatus = "CANCELED"
)

// Current reports whether the subscription grants access at the given
// instant: the status must be ACTIVE or TRIAL and the expiry, when set,
// must be in the future. An absent or unknown status is blocked.
func (s SubscriptionStatus) Current(expiry *time.Time, now time.Time) bool {
	if s != SubscriptionActive && s != SubscriptionTrial {
		return false
	}
	if expiry != nil && !expiry.After(now) {
		return false
	}
	return true
}

// RawSessionPayload is the session exactly as signed and stored in the
// cookie. Application code should not scope queries by it directly;
// call [DeriveEffective] (or [Manager.GetSession], which applies it)
// to obtain the post-impersonation view.
type RawSessionPayload struct {
	UserID             int64
	Email              string
	Role               Role
	IsGlobalAdmin      bool
	OrganizationID     string
	SubscriptionStatus SubscriptionStatus
	SubscriptionExpiry *time.Time

	// TokenVersion must equal the credential store's current value for
	// UserID; incrementing the stored counter remotely invalidates all
	// outstanding sessions for that user.
	TokenVersion int64

	// ImpersonatedOrgID is set only while a global admin is viewing the
	// system as a chosen tenant. It overrides OrganizationID in the
	// effective view and forces the effective global-admin flag off.
	ImpersonatedOrgID string

	// Expires mirrors the token's own exp claim.
	Expires time.Time
}

// EffectiveSession is the identity application code authorizes against.
// It is immutable per request; mutation happens only by re-issuing the
// cookie through [Manager.SetSession].
type EffectiveSession struct {
	UserID             int64
	Email              string
	Role               Role
	IsGlobalAdmin      bool
	OrganizationID     string
	SubscriptionStatus SubscriptionStatus
	SubscriptionExpiry *time.Time
	TokenVersion       int64
	IsImpersonating    bool
	Expires            time.Time
}

// UserRecord is the minimal account record the session core consumes
// from a [CredentialStore]. Organization fields describe the user's
// active membership; the relational shape behind them stays external.
type UserRecord struct {
	UserID             int64
	Email              string
	Name               string
	PasswordHash       string
	Role               Role
	IsGlobalAdmin      bool
	TokenVersion       int64
	OrganizationID     string
	OrganizationName   string
	SubscriptionStatus SubscriptionStatus
	SubscriptionExpiry *time.Time
}

// CreateUserInput is the input for [CredentialStore.CreateUser]. The
// store persists the user together with its freshly created
// organization and must reject duplicate emails with [ErrAccountExists].
type CreateUserInput struct {
	Name               string
	Email              string
	PasswordHash       string
	Role               Role
	OrganizationID     string
	OrganizationName   string
	OrganizationSlug   string
	SubscriptionStatus SubscriptionStatus
	SubscriptionExpiry *time.Time
}

// CredentialStore is the interface callers implement to integrate
// tenauth with their user database. GetSession only ever calls
// TokenVersion (the revocation check); the remaining methods back the
// login, registration, password-change, and impersonation-exit flows.
//
// Implementations must return [ErrUserNotFound] for missing users and
// [ErrAccountExists] for duplicate emails. Any other error is treated
// as "store unreachable" and handled per [RevocationPolicy].
type CredentialStore interface {
	TokenVersion(ctx context.Context, userID int64) (int64, error)
	UserByID(ctx context.Context, userID int64) (UserRecord, error)
	UserByEmail(ctx context.Context, email string) (UserRecord, error)
	CreateUser(ctx context.Context, input CreateUserInput) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, userID int64, hash string) error
	IncrementTokenVersion(ctx context.Context, userID int64) (int64, error)
}

// RegisterInput is the input for [Manager.Register]. OrganizationName
// defaults to "<Name>'s Organization" when empty.
type RegisterInput struct {
	Name             string
	Email            string
	Password         string
	OrganizationName string
}

// RouteDecision is the outcome of the route guard for one request.
type RouteDecision uint8

const (
	// RouteAllow passes the request through unmodified.
	RouteAllow RouteDecision = iota
	// RouteRedirectLogin sends the caller to the login page.
	RouteRedirectLogin
	// RouteRedirectSubscription sends the caller to the
	// subscription-expired page.
	RouteRedirectSubscription
)
