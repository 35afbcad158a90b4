// Command tenauth-loadtest measures session hot-path throughput against
// a Redis-backed credential store: a get-session phase (signature check
// plus one token-version read per request) and a revocation phase
// (IncrementTokenVersion write path).
//
// With no -redis-addr flag and no REDIS_ADDR env it starts an embedded
// miniredis, so it runs standalone.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	tenauth "github.com/fixdesk/tenauth"
	"github.com/fixdesk/tenauth/credstore"
)

type seededSession struct {
	userID int64
	cookie *http.Cookie
}

func main() {
	var (
		users       = flag.Int("users", 10000, "number of users to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "ta", "credential store key prefix")
	)
	flag.Parse()

	if *users <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "users, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	store := credstore.NewRedisStore(client, *prefix)

	manager, err := tenauth.New().
		WithSecret("loadtest-secret-0123456789abcdef0123456789abcdef").
		WithCredentialStore(store).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build manager: %v\n", err)
		os.Exit(1)
	}
	defer manager.Close()

	fmt.Printf("seeding %d users...\n", *users)
	startSeed := time.Now()
	sessions := make([]seededSession, *users)
	trialEnd := time.Now().Add(30 * 24 * time.Hour)
	for i := 0; i < *users; i++ {
		user, err := store.CreateUser(ctx, tenauth.CreateUserInput{
			Name:               fmt.Sprintf("Load User %d", i),
			Email:              fmt.Sprintf("load-%d@example.com", i),
			PasswordHash:       "$argon2id$opaque",
			Role:               tenauth.RoleUser,
			OrganizationID:     fmt.Sprintf("org-%d", i),
			OrganizationName:   fmt.Sprintf("Org %d", i),
			OrganizationSlug:   fmt.Sprintf("org-%d", i),
			SubscriptionStatus: tenauth.SubscriptionTrial,
			SubscriptionExpiry: &trialEnd,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}

		rec := httptest.NewRecorder()
		if err := manager.SetSession(rec, tenauth.RawSessionPayload{
			UserID:             user.UserID,
			Email:              user.Email,
			Role:               user.Role,
			OrganizationID:     user.OrganizationID,
			SubscriptionStatus: user.SubscriptionStatus,
			SubscriptionExpiry: user.SubscriptionExpiry,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "issue session failed: %v\n", err)
			os.Exit(1)
		}
		sessions[i] = seededSession{userID: user.UserID, cookie: rec.Result().Cookies()[0]}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	getStats := runGetSessionPhase(ctx, manager, sessions, *ops, *concurrency)
	revokeStats := runRevocationPhase(ctx, store, sessions, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("get-session", getStats)
	printStats("revoke", revokeStats)
}

func runGetSessionPhase(ctx context.Context, manager *tenauth.Manager, sessions []seededSession, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(sessions))

				req := httptest.NewRequest(http.MethodGet, "/tickets", nil)
				req.AddCookie(sessions[idx].cookie)

				t0 := time.Now()
				session := manager.GetSession(ctx, req)
				d := time.Since(t0)
				if session == nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runRevocationPhase(ctx context.Context, store *credstore.RedisStore, sessions []seededSession, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(sessions))

				t0 := time.Now()
				_, err := store.IncrementTokenVersion(ctx, sessions[idx].userID)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
