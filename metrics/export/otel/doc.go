// Package otel provides OpenTelemetry metric exporter bindings for tenauth counters
// and histograms.
//
// [NewOTelExporter] registers Int64ObservableCounter instruments for each tenauth
// metric and Int64ObservableGauge per histogram bucket. A single callback reads
// [tenauth.Manager.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate manager state.
package otel
