package tenauth

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram in the in-process
// metrics system.
type MetricID uint16

const (
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected credential checks.
	MetricLoginFailure
	// MetricAccountCreated counts successful registrations.
	MetricAccountCreated
	// MetricAccountDuplicate counts registrations rejected as duplicate.
	MetricAccountDuplicate
	// MetricSessionIssued counts cookie issues (login, registration,
	// and impersonation re-signs alike).
	MetricSessionIssued
	// MetricSessionCleared counts explicit cookie deletions.
	MetricSessionCleared
	// MetricSessionRevoked counts sessions rejected by the
	// token-version check.
	MetricSessionRevoked
	// MetricRevocationFailOpen counts revocation checks skipped because
	// the credential store was unreachable under the fail-open policy.
	MetricRevocationFailOpen
	// MetricBreakGlassOverride counts sessions where the break-glass
	// email forced the global-admin flag on.
	MetricBreakGlassOverride
	// MetricGuardAllowed counts protected requests passed through.
	MetricGuardAllowed
	// MetricGuardRedirectLogin counts guard redirects to the login page.
	MetricGuardRedirectLogin
	// MetricGuardRedirectSubscription counts guard redirects to the
	// subscription-expired page.
	MetricGuardRedirectSubscription
	// MetricImpersonationStart counts entered impersonation views.
	MetricImpersonationStart
	// MetricImpersonationStop counts exited impersonation views.
	MetricImpersonationStop
	// MetricImpersonationDenied counts rejected impersonation attempts.
	MetricImpersonationDenied
	// MetricPasswordChangeSuccess counts completed password changes.
	MetricPasswordChangeSuccess
	// MetricPasswordChangeInvalidOld counts password changes rejected
	// on the old-password check.
	MetricPasswordChangeInvalidOld
	// MetricGetSessionLatency is the GetSession latency histogram.
	MetricGetSessionLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters and an optional latency histogram.
// Counters live in cache-line-padded slots; the write path is
// allocation-free.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a Metrics instance configured by cfg. When Enabled
// is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency sample for id. Only MetricGetSessionLatency
// carries a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricGetSessionLatency {
		return
	}
	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value reads a single counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a deep copy of all counters and histograms.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricGetSessionLatency].buckets[i])
		}
		s.Histograms[MetricGetSessionLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
