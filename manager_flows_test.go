package tenauth

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func registerTestUser(t *testing.T, m *Manager, email, pass string) *EffectiveSession {
	t.Helper()

	rec := httptest.NewRecorder()
	err := m.Register(context.Background(), rec, RegisterInput{
		Name:     "Jo Smith",
		Email:    email,
		Password: pass,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	session := m.GetSession(context.Background(), requestWithCookie(rec.Result().Cookies()[0]))
	if session == nil {
		t.Fatal("expected session after registration")
	}
	return session
}

func TestRegisterStartsTrial(t *testing.T) {
	store := newStubStore()
	m := newTestManager(t, store, nil)

	session := registerTestUser(t, m, "jo@example.com", "correct horse battery")
	if session.SubscriptionStatus != SubscriptionTrial {
		t.Fatalf("expected TRIAL, got %s", session.SubscriptionStatus)
	}
	if session.SubscriptionExpiry == nil {
		t.Fatal("expected trial expiry set")
	}
	if until := time.Until(*session.SubscriptionExpiry); until < 29*24*time.Hour {
		t.Fatalf("expected ~30 day trial, got %v", until)
	}
	if session.OrganizationID == "" {
		t.Fatal("expected a fresh organization id")
	}
	if session.Role != RoleUser {
		t.Fatalf("expected USER role, got %s", session.Role)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newStubStore()
	m := newTestManager(t, store, nil)

	registerTestUser(t, m, "dup@example.com", "correct horse battery")

	rec := httptest.NewRecorder()
	err := m.Register(context.Background(), rec, RegisterInput{
		Name:     "Other",
		Email:    "dup@example.com",
		Password: "another password!",
	})
	if !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("failed registration must not issue a session")
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	store := newStubStore()
	m := newTestManager(t, store, nil)

	rec := httptest.NewRecorder()
	err := m.Register(context.Background(), rec, RegisterInput{
		Name:     "Jo",
		Email:    "jo@example.com",
		Password: "short",
	})
	if !errors.Is(err, ErrPasswordPolicy) {
		t.Fatalf("expected ErrPasswordPolicy, got %v", err)
	}
}

func TestLoginWrongPasswordAndUnknownEmailIndistinguishable(t *testing.T) {
	store := newStubStore()
	m := newTestManager(t, store, nil)

	registerTestUser(t, m, "jo@example.com", "correct horse battery")

	rec := httptest.NewRecorder()
	errWrong := m.Login(context.Background(), rec, "jo@example.com", "not the password")
	errUnknown := m.Login(context.Background(), rec, "nobody@example.com", "whatever pass")

	if !errors.Is(errWrong, ErrInvalidCredentials) || !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", errWrong, errUnknown)
	}
	if errWrong.Error() != errUnknown.Error() {
		t.Fatal("failure modes must be indistinguishable to the caller")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("failed login must not issue a session")
	}
	if got := m.MetricsSnapshot().Counters[MetricLoginFailure]; got != 2 {
		t.Fatalf("expected 2 failure metrics, got %d", got)
	}
}

func TestLoginIssuesSession(t *testing.T) {
	store := newStubStore()
	m := newTestManager(t, store, nil)

	registerTestUser(t, m, "jo@example.com", "correct horse battery")

	rec := httptest.NewRecorder()
	if err := m.Login(context.Background(), rec, "jo@example.com", "correct horse battery"); err != nil {
		t.Fatalf("login: %v", err)
	}
	session := m.GetSession(context.Background(), requestWithCookie(rec.Result().Cookies()[0]))
	if session == nil || session.Email != "jo@example.com" {
		t.Fatalf("expected session for jo@example.com, got %+v", session)
	}
}

func TestChangePasswordRevokesOutstandingSessions(t *testing.T) {
	store := newStubStore()
	m := newTestManager(t, store, nil)

	rec := httptest.NewRecorder()
	if err := m.Register(context.Background(), rec, RegisterInput{
		Name:     "Jo",
		Email:    "jo@example.com",
		Password: "correct horse battery",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	oldCookie := rec.Result().Cookies()[0]

	session := m.GetSession(context.Background(), requestWithCookie(oldCookie))
	if session == nil {
		t.Fatal("expected session before change")
	}

	err := m.ChangePassword(context.Background(), session.UserID, "correct horse battery", "even better password")
	if err != nil {
		t.Fatalf("change password: %v", err)
	}

	// The old cookie carries the stale token version and must die.
	if still := m.GetSession(context.Background(), requestWithCookie(oldCookie)); still != nil {
		t.Fatalf("expected old session revoked after password change, got %+v", still)
	}

	// The new password works on a fresh login.
	rec2 := httptest.NewRecorder()
	if err := m.Login(context.Background(), rec2, "jo@example.com", "even better password"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if fresh := m.GetSession(context.Background(), requestWithCookie(rec2.Result().Cookies()[0])); fresh == nil {
		t.Fatal("expected fresh session to be valid")
	}
}

func TestChangePasswordWrongOldPassword(t *testing.T) {
	store := newStubStore()
	m := newTestManager(t, store, nil)

	session := registerTestUser(t, m, "jo@example.com", "correct horse battery")

	err := m.ChangePassword(context.Background(), session.UserID, "wrong old", "even better password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if got := m.MetricsSnapshot().Counters[MetricPasswordChangeInvalidOld]; got != 1 {
		t.Fatalf("expected invalid-old metric, got %d", got)
	}
}

func TestLoginStoreOutageSurfacesStoreError(t *testing.T) {
	store := newStubStore()
	m := newTestManager(t, store, nil)
	store.setFailure(errStoreDown)

	rec := httptest.NewRecorder()
	err := m.Login(context.Background(), rec, "jo@example.com", "correct horse battery")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in     string
		prefix string
	}{
		{"Jo's Organization", "jo-s-organization-"},
		{"ACME Corp!", "acme-corp-"},
		{"  ", ""},
	}
	for _, tc := range cases {
		got := slugify(tc.in)
		if tc.prefix != "" && !strings.HasPrefix(got, tc.prefix) {
			t.Fatalf("slugify(%q) = %q, want prefix %q", tc.in, got, tc.prefix)
		}
		if got == "" {
			t.Fatalf("slugify(%q) must not be empty", tc.in)
		}
		if strings.Contains(got, " ") || strings.Contains(got, "'") {
			t.Fatalf("slugify(%q) = %q contains invalid characters", tc.in, got)
		}
	}
}
