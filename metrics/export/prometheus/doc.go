// Package prometheus exposes otpAuth engine counters through
// github.com/prometheus/client_golang.
//
// [Collector] reads a snapshot on every scrape; nothing is copied between
// scrapes. Register it on any prometheus.Registerer, or use [Handler] for a
// dedicated registry.
package prometheus
