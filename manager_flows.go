package tenauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const trialPeriod = 30 * 24 * time.Hour

// Login verifies credentials against the credential store and, on
// success, issues a fresh session cookie built from the user's active
// organization membership. Unknown email and wrong password both
// resolve to ErrInvalidCredentials; store I/O failures are wrapped in
// ErrStoreUnavailable and never issue a partial session.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, email, plaintext string) error {
	if m == nil || m.store == nil {
		return ErrManagerNotReady
	}

	user, err := m.store.UserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		m.rejectLogin(ctx, email, "unknown email")
		return ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	ok, err := m.hasher.Verify(plaintext, user.PasswordHash)
	if err != nil || !ok {
		m.rejectLogin(ctx, email, "password mismatch")
		return ErrInvalidCredentials
	}

	if err := m.SetSession(w, payloadFromUser(user)); err != nil {
		return err
	}

	m.metricInc(MetricLoginSuccess)
	m.emit(ctx, AuditEvent{
		EventType: EventLoginSuccess,
		UserID:    user.UserID,
		Email:     user.Email,
		OrgID:     user.OrganizationID,
		Success:   true,
	})
	return nil
}

func (m *Manager) rejectLogin(ctx context.Context, email, reason string) {
	m.metricInc(MetricLoginFailure)
	m.emit(ctx, AuditEvent{
		EventType: EventLoginFailure,
		Email:     email,
		Success:   false,
		Error:     reason,
	})
}

// Register creates a user together with a fresh organization on a
// 30-day trial, then issues the first session. Duplicate emails map to
// ErrAccountExists; session issuance is all-or-nothing after the store
// write succeeds.
func (m *Manager) Register(ctx context.Context, w http.ResponseWriter, input RegisterInput) error {
	if m == nil || m.store == nil {
		return ErrManagerNotReady
	}
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return ErrInvalidCredentials
	}
	if len(input.Password) < m.config.Password.MinLength {
		return ErrPasswordPolicy
	}

	hash, err := m.hasher.Hash(input.Password)
	if err != nil {
		return err
	}

	orgName := input.OrganizationName
	if orgName == "" {
		orgName = input.Name + "'s Organization"
	}
	expiry := time.Now().Add(trialPeriod)

	user, err := m.store.CreateUser(ctx, CreateUserInput{
		Name:               input.Name,
		Email:              input.Email,
		PasswordHash:       hash,
		Role:               RoleUser,
		OrganizationID:     uuid.NewString(),
		OrganizationName:   orgName,
		OrganizationSlug:   slugify(orgName),
		SubscriptionStatus: SubscriptionTrial,
		SubscriptionExpiry: &expiry,
	})
	if errors.Is(err, ErrAccountExists) {
		m.metricInc(MetricAccountDuplicate)
		return ErrAccountExists
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := m.SetSession(w, payloadFromUser(user)); err != nil {
		return err
	}

	m.metricInc(MetricAccountCreated)
	m.emit(ctx, AuditEvent{
		EventType: EventAccountCreated,
		UserID:    user.UserID,
		Email:     user.Email,
		OrgID:     user.OrganizationID,
		Success:   true,
	})
	return nil
}

// Logout clears the session cookie.
func (m *Manager) Logout(w http.ResponseWriter) {
	m.ClearSession(w)
}

// ChangePassword verifies the old password, stores the new hash, and
// increments the user's token version so every outstanding session for
// that user is remotely invalidated (including the caller's own — the
// user must log in again).
func (m *Manager) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if m == nil || m.store == nil {
		return ErrManagerNotReady
	}
	if len(newPassword) < m.config.Password.MinLength {
		return ErrPasswordPolicy
	}

	user, err := m.store.UserByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	ok, err := m.hasher.Verify(oldPassword, user.PasswordHash)
	if err != nil || !ok {
		m.metricInc(MetricPasswordChangeInvalidOld)
		return ErrInvalidCredentials
	}

	hash, err := m.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := m.store.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	version, err := m.store.IncrementTokenVersion(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	m.metricInc(MetricPasswordChangeSuccess)
	m.emit(ctx, AuditEvent{
		EventType: EventPasswordChanged,
		UserID:    userID,
		Email:     user.Email,
		Success:   true,
		Metadata:  map[string]string{"token_version": formatInt(version)},
	})
	return nil
}

func payloadFromUser(user UserRecord) RawSessionPayload {
	return RawSessionPayload{
		UserID:             user.UserID,
		Email:              user.Email,
		Role:               user.Role,
		IsGlobalAdmin:      user.IsGlobalAdmin,
		OrganizationID:     user.OrganizationID,
		SubscriptionStatus: user.SubscriptionStatus,
		SubscriptionExpiry: user.SubscriptionExpiry,
		TokenVersion:       user.TokenVersion,
	}
}

// slugify lowercases name, collapses anything outside [a-z0-9] into
// dashes, and appends a short random suffix for uniqueness.
func slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 9)
	lastDash := true
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	if slug == "" {
		return suffix
	}
	return slug + "-" + suffix
}
