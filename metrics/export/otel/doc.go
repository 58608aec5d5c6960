// Package otel exports otpAuth engine counters as OpenTelemetry observable
// instruments.
//
// [NewOTelExporter] creates one Int64ObservableCounter per engine counter and
// one Int64ObservableGauge per histogram bucket, plus a sample-count gauge. A
// single registered callback reads one engine snapshot per collection.
package otel
