package tenauth

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Token.TTL != 24*time.Hour {
		t.Fatalf("expected 24h TTL, got %v", cfg.Token.TTL)
	}
	if cfg.Cookie.Name != "session" {
		t.Fatalf("expected cookie name session, got %s", cfg.Cookie.Name)
	}
	if cfg.Cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("expected SameSite=Lax, got %v", cfg.Cookie.SameSite)
	}
	if cfg.Revocation.Policy != RevocationFailOpen {
		t.Fatalf("expected fail-open default, got %v", cfg.Revocation.Policy)
	}
	if cfg.Guard.LoginPath != "/login" || cfg.Guard.SubscriptionExpiredPath != "/subscription-expired" {
		t.Fatalf("unexpected guard redirect targets: %+v", cfg.Guard)
	}
	if len(cfg.Guard.ProtectedPrefixes) == 0 {
		t.Fatal("expected default protected prefixes")
	}
}

func TestValidateRejectsEmptySecret(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Token.Secret = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestValidateProductionRejectsDefaultSecret(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Token.Secret = DefaultInsecureSecret
	cfg.Security.ProductionMode = true
	if err := cfg.Validate(); !errors.Is(err, ErrSecretRequired) {
		t.Fatalf("expected ErrSecretRequired, got %v", err)
	}
}

func TestValidateProductionRejectsShortSecret(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Token.Secret = "short-secret"
	cfg.Security.ProductionMode = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short production secret")
	}
}

func TestBuildRequiresStore(t *testing.T) {
	_, err := New().WithSecret(testSecret).Build()
	if !errors.Is(err, ErrStoreRequired) {
		t.Fatalf("expected ErrStoreRequired, got %v", err)
	}
}

func TestBuildRejectsEmptyConfigTree(t *testing.T) {
	_, err := New().
		WithSecret(testSecret).
		WithCredentialStore(newStubStore()).
		WithPasswordHashing(fastPasswordConfig()).
		WithConfig(Config{}).
		Build()
	if err == nil {
		t.Fatal("expected build to fail on an empty config tree")
	}
}

func TestRevocationPolicyString(t *testing.T) {
	if RevocationFailOpen.String() != "fail_open" {
		t.Fatalf("unexpected name %s", RevocationFailOpen.String())
	}
	if RevocationFailClosed.String() != "fail_closed" {
		t.Fatalf("unexpected name %s", RevocationFailClosed.String())
	}
}

func TestSecurityReportReflectsConfig(t *testing.T) {
	store := newStubStore()
	m := newTestManager(t, store, func(b *Builder) {
		b.WithBreakGlassAdmin("root@example.com")
	})

	report := m.SecurityReport()
	if report.SigningAlgorithm != "HS256" {
		t.Fatalf("expected HS256, got %s", report.SigningAlgorithm)
	}
	if !report.BreakGlassActive {
		t.Fatal("expected break-glass to be reported active")
	}
	if report.RevocationPolicy != "fail_open" {
		t.Fatalf("expected fail_open, got %s", report.RevocationPolicy)
	}
	if report.UsingDefaultSecret {
		t.Fatal("test secret must not be reported as the default")
	}
	if report.Argon2.Memory != fastPasswordConfig().Memory {
		t.Fatalf("expected hash params in report, got %+v", report.Argon2)
	}
}
