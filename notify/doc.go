// Package notify provides [otpAuth.Notifier] implementations: SMTP delivery
// for real deployments and a structured-log sink for development.
package notify
