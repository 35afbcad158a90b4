package credstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	tenauth "github.com/fixdesk/tenauth"
)

// Key layout, under the configured prefix:
//
//	<prefix>:user:<id>   hash with the account fields
//	<prefix>:uid:<email> email -> user id index
//	<prefix>:ver:<id>    token version counter (absent reads as 0)
//	<prefix>:seq         user id sequence

const createUserScript = `
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
local id = redis.call("INCR", KEYS[2])
redis.call("SET", KEYS[1], id)
local user_key = ARGV[1] .. ":user:" .. id
redis.call("HSET", user_key,
  "email", ARGV[2],
  "name", ARGV[3],
  "password_hash", ARGV[4],
  "role", ARGV[5],
  "is_global_admin", ARGV[6],
  "org_id", ARGV[7],
  "org_name", ARGV[8],
  "org_slug", ARGV[9],
  "sub_status", ARGV[10],
  "sub_expiry", ARGV[11])
return id
`

const tokenVersionScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return -1
end
return tonumber(redis.call("GET", KEYS[2]) or "0")
`

const incrVersionScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return -1
end
return redis.call("INCR", KEYS[2])
`

const updateHashScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], "password_hash", ARGV[1])
return 1
`

var (
	createUserLua   = redis.NewScript(createUserScript)
	tokenVersionLua = redis.NewScript(tokenVersionScript)
	incrVersionLua  = redis.NewScript(incrVersionScript)
	updateHashLua   = redis.NewScript(updateHashScript)
)

// RedisStore is a Redis-backed credential store. The token-version
// counter lives in its own key so the revocation hot path is a single
// Lua EVALSHA rather than a full record read.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore creates a RedisStore on the given client. prefix
// namespaces all keys; it defaults to "ta".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ta"
	}
	return &RedisStore{redis: client, prefix: prefix}
}

func (s *RedisStore) userKey(id int64) string {
	return s.prefix + ":user:" + strconv.FormatInt(id, 10)
}

func (s *RedisStore) emailKey(email string) string {
	return s.prefix + ":uid:" + email
}

func (s *RedisStore) versionKey(id int64) string {
	return s.prefix + ":ver:" + strconv.FormatInt(id, 10)
}

func (s *RedisStore) seqKey() string {
	return s.prefix + ":seq"
}

// TokenVersion returns the current token version for userID, treating
// an absent counter on an existing user as 0.
//
//	Performance: 1 Lua EVALSHA.
func (s *RedisStore) TokenVersion(ctx context.Context, userID int64) (int64, error) {
	version, err := tokenVersionLua.Run(
		ctx, s.redis,
		[]string{s.userKey(userID), s.versionKey(userID)},
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", tenauth.ErrStoreUnavailable, err)
	}
	if version < 0 {
		return 0, tenauth.ErrUserNotFound
	}
	return version, nil
}

// UserByID loads the full account record.
func (s *RedisStore) UserByID(ctx context.Context, userID int64) (tenauth.UserRecord, error) {
	fields, err := s.redis.HGetAll(ctx, s.userKey(userID)).Result()
	if err != nil {
		return tenauth.UserRecord{}, fmt.Errorf("%w: %v", tenauth.ErrStoreUnavailable, err)
	}
	if len(fields) == 0 {
		return tenauth.UserRecord{}, tenauth.ErrUserNotFound
	}

	version, err := s.TokenVersion(ctx, userID)
	if err != nil {
		return tenauth.UserRecord{}, err
	}

	return recordFromFields(userID, version, fields)
}

// UserByEmail resolves the email index and loads the record.
func (s *RedisStore) UserByEmail(ctx context.Context, email string) (tenauth.UserRecord, error) {
	id, err := s.redis.Get(ctx, s.emailKey(email)).Int64()
	if errors.Is(err, redis.Nil) {
		return tenauth.UserRecord{}, tenauth.ErrUserNotFound
	}
	if err != nil {
		return tenauth.UserRecord{}, fmt.Errorf("%w: %v", tenauth.ErrStoreUnavailable, err)
	}
	return s.UserByID(ctx, id)
}

// CreateUser atomically claims the email and writes the account record
// via a Lua script, so two concurrent registrations for the same email
// cannot both succeed.
func (s *RedisStore) CreateUser(ctx context.Context, input tenauth.CreateUserInput) (tenauth.UserRecord, error) {
	expiry := ""
	if input.SubscriptionExpiry != nil {
		expiry = strconv.FormatInt(input.SubscriptionExpiry.Unix(), 10)
	}

	id, err := createUserLua.Run(
		ctx, s.redis,
		[]string{s.emailKey(input.Email), s.seqKey()},
		s.prefix,
		input.Email,
		input.Name,
		input.PasswordHash,
		string(input.Role),
		boolField(false),
		input.OrganizationID,
		input.OrganizationName,
		input.OrganizationSlug,
		string(input.SubscriptionStatus),
		expiry,
	).Int64()
	if err != nil {
		return tenauth.UserRecord{}, fmt.Errorf("%w: %v", tenauth.ErrStoreUnavailable, err)
	}
	if id == 0 {
		return tenauth.UserRecord{}, tenauth.ErrAccountExists
	}

	return tenauth.UserRecord{
		UserID:             id,
		Email:              input.Email,
		Name:               input.Name,
		PasswordHash:       input.PasswordHash,
		Role:               input.Role,
		OrganizationID:     input.OrganizationID,
		OrganizationName:   input.OrganizationName,
		SubscriptionStatus: input.SubscriptionStatus,
		SubscriptionExpiry: input.SubscriptionExpiry,
	}, nil
}

// UpdatePasswordHash replaces the stored hash for an existing user.
func (s *RedisStore) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	ok, err := updateHashLua.Run(
		ctx, s.redis,
		[]string{s.userKey(userID)},
		hash,
	).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", tenauth.ErrStoreUnavailable, err)
	}
	if ok == 0 {
		return tenauth.ErrUserNotFound
	}
	return nil
}

// IncrementTokenVersion bumps the revocation counter and returns the
// new value, invalidating every outstanding session for the user.
//
//	Performance: 1 Lua EVALSHA.
func (s *RedisStore) IncrementTokenVersion(ctx context.Context, userID int64) (int64, error) {
	version, err := incrVersionLua.Run(
		ctx, s.redis,
		[]string{s.userKey(userID), s.versionKey(userID)},
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", tenauth.ErrStoreUnavailable, err)
	}
	if version < 0 {
		return 0, tenauth.ErrUserNotFound
	}
	return version, nil
}

// SetGlobalAdmin flips the stored global-admin flag. Operator tooling
// uses it; the session flows never do.
func (s *RedisStore) SetGlobalAdmin(ctx context.Context, userID int64, admin bool) error {
	exists, err := s.redis.Exists(ctx, s.userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", tenauth.ErrStoreUnavailable, err)
	}
	if exists == 0 {
		return tenauth.ErrUserNotFound
	}
	if err := s.redis.HSet(ctx, s.userKey(userID), "is_global_admin", boolField(admin)).Err(); err != nil {
		return fmt.Errorf("%w: %v", tenauth.ErrStoreUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", tenauth.ErrStoreUnavailable, err)
	}
	return time.Since(start), nil
}

func recordFromFields(id, version int64, fields map[string]string) (tenauth.UserRecord, error) {
	record := tenauth.UserRecord{
		UserID:             id,
		Email:              fields["email"],
		Name:               fields["name"],
		PasswordHash:       fields["password_hash"],
		Role:               tenauth.Role(fields["role"]),
		IsGlobalAdmin:      fields["is_global_admin"] == "1",
		TokenVersion:       version,
		OrganizationID:     fields["org_id"],
		OrganizationName:   fields["org_name"],
		SubscriptionStatus: tenauth.SubscriptionStatus(fields["sub_status"]),
	}

	if raw := fields["sub_expiry"]; raw != "" {
		unix, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return tenauth.UserRecord{}, fmt.Errorf("%w: corrupt sub_expiry for user %d", tenauth.ErrStoreUnavailable, id)
		}
		t := time.Unix(unix, 0)
		record.SubscriptionExpiry = &t
	}

	return record, nil
}

func boolField(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
