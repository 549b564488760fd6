// Package prometheus renders goToken metrics in Prometheus text exposition
// format.
//
// Counters are named gotoken_*_total; the single histogram is
// gotoken_parse_latency_seconds. Mount [PrometheusExporter.Handler] on the
// scrape path.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry.
//   - Mutate engine state.
package prometheus
