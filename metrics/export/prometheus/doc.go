// Package prometheus provides Prometheus collectors for tenauth metrics.
//
// [NewPrometheusExporter] accepts a [tenauth.Manager] and exposes an [http.Handler]
// that renders all tenauth counters and histograms in Prometheus text exposition
// format. Counter names are prefixed tenauth_*_total; the single histogram is
// tenauth_get_session_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate manager state.
package prometheus
