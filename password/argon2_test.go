package password

import (
	"strings"
	"testing"
)

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	return h
}

func TestHashVerifyRoundTrip(t *testing.T) {
	h := newTestHasher(t)

	encoded, err := h.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("unexpected encoding: %q", encoded)
	}

	ok, err := h.Verify("correct-horse-battery", encoded)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("correct password rejected")
	}

	ok, err = h.Verify("wrong-password-here", encoded)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatal("wrong password accepted")
	}
}

func TestHashesAreSalted(t *testing.T) {
	h := newTestHasher(t)

	a, err := h.Hash("same-password-twice")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := h.Hash("same-password-twice")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password are identical")
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	h := newTestHasher(t)

	for _, encoded := range []string{
		"",
		"plain-bcrypt-looking-string",
		"$argon2id$v=19$m=8192,t=1$short",
		"$argon2i$v=19$m=8192,t=1,p=1$AAAAAAAAAAAAAAAAAAAAAA==$AAAA",
		"$argon2id$v=18$m=8192,t=1,p=1$AAAAAAAAAAAAAAAAAAAAAA==$AAAA",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$AAAA",
	} {
		if _, err := h.Verify("whatever", encoded); err == nil {
			t.Fatalf("malformed hash %q accepted", encoded)
		}
	}
}

func TestNeedsRehash(t *testing.T) {
	weak := newTestHasher(t)

	encoded, err := weak.Hash("some-password-value")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	strong, err := NewHasher(Config{
		Memory:      64 * 1024,
		Time:        2,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}

	upgrade, err := strong.NeedsRehash(encoded)
	if err != nil {
		t.Fatalf("needs rehash: %v", err)
	}
	if !upgrade {
		t.Fatal("stronger config should request rehash")
	}

	same, err := weak.NeedsRehash(encoded)
	if err != nil {
		t.Fatalf("needs rehash: %v", err)
	}
	if same {
		t.Fatal("identical config should not request rehash")
	}
}

func TestNewHasherValidation(t *testing.T) {
	base := Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

	bad := base
	bad.Memory = 1024
	if _, err := NewHasher(bad); err == nil {
		t.Fatal("expected low memory to be rejected")
	}

	bad = base
	bad.SaltLength = 8
	if _, err := NewHasher(bad); err == nil {
		t.Fatal("expected short salt to be rejected")
	}

	bad = base
	bad.KeyLength = 8
	if _, err := NewHasher(bad); err == nil {
		t.Fatal("expected short key to be rejected")
	}
}
