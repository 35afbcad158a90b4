package tenauth

import "errors"

var (
	// ErrUnauthorized is returned when a non-global-admin attempts an
	// impersonation transition. It is the only session-layer failure
	// surfaced as an error; everything else resolves to a nil session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is returned by Login for an unknown email or
	// a wrong password, deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned by credential stores for missing users.
	ErrUserNotFound = errors.New("user not found")
	// ErrAccountExists is returned when registration hits a duplicate email.
	ErrAccountExists = errors.New("account already exists")
	// ErrPasswordPolicy is returned when a password is below the
	// configured minimum length.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrStoreUnavailable wraps credential store I/O failures surfaced
	// by the login, registration, and password-change flows.
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrSecretRequired is returned by Build when production mode is on
	// and the signing secret is missing or still the insecure default.
	ErrSecretRequired = errors.New("production requires an explicit signing secret")
	// ErrStoreRequired is returned by Build without a credential store.
	ErrStoreRequired = errors.New("credential store required")
	// ErrManagerNotReady marks calls on an unbuilt Manager.
	ErrManagerNotReady = errors.New("manager not initialized")
)
