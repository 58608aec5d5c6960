package internaldefs

import (
	otpAuth "github.com/MrEthical07/otpAuth"
)

// CounterDef maps an engine counter to its exported name.
type CounterDef struct {
	ID   otpAuth.MetricID
	Name string
	Help string
}

// HistogramDef maps an engine histogram to its exported name.
type HistogramDef struct {
	ID   otpAuth.MetricID
	Name string
	Help string
}

// MailDroppedName is the counter fed from Engine.MailDropped.
const (
	MailDroppedName = "otpauth_mail_queue_dropped_total"
	MailDroppedHelp = "Notifications dropped by the mail queue when full."
)

// CounterDefs lists every exported counter in output order.
var CounterDefs = []CounterDef{
	{ID: otpAuth.MetricRegisterSuccess, Name: "otpauth_register_success_total", Help: "Accounts created."},
	{ID: otpAuth.MetricRegisterDuplicate, Name: "otpauth_register_duplicate_total", Help: "Registrations rejected because the email is taken."},
	{ID: otpAuth.MetricRegisterRejected, Name: "otpauth_register_rejected_total", Help: "Registrations rejected by input validation."},
	{ID: otpAuth.MetricLoginSuccess, Name: "otpauth_login_success_total", Help: "Successful logins."},
	{ID: otpAuth.MetricLoginFailure, Name: "otpauth_login_failure_total", Help: "Logins rejected with invalid credentials."},
	{ID: otpAuth.MetricLogout, Name: "otpauth_logout_total", Help: "Logouts."},
	{ID: otpAuth.MetricSessionRejected, Name: "otpauth_session_rejected_total", Help: "Session tokens that failed authentication."},
	{ID: otpAuth.MetricOTPIssuedVerify, Name: "otpauth_otp_issued_verify_total", Help: "Email verification codes issued."},
	{ID: otpAuth.MetricOTPIssuedReset, Name: "otpauth_otp_issued_reset_total", Help: "Password reset codes issued."},
	{ID: otpAuth.MetricEmailVerificationSuccess, Name: "otpauth_email_verification_success_total", Help: "Accounts marked verified."},
	{ID: otpAuth.MetricEmailVerificationFailure, Name: "otpauth_email_verification_failure_total", Help: "Rejected verification codes."},
	{ID: otpAuth.MetricPasswordResetSuccess, Name: "otpauth_password_reset_success_total", Help: "Completed password resets."},
	{ID: otpAuth.MetricPasswordResetFailure, Name: "otpauth_password_reset_failure_total", Help: "Rejected password reset attempts."},
	{ID: otpAuth.MetricOTPExpired, Name: "otpauth_otp_expired_total", Help: "Correct codes presented after expiry."},
	{ID: otpAuth.MetricRateLimitHit, Name: "otpauth_rate_limit_hit_total", Help: "Requests denied by the rate gate."},
	{ID: otpAuth.MetricMailSent, Name: "otpauth_mail_sent_total", Help: "Notifications delivered."},
	{ID: otpAuth.MetricMailFailed, Name: "otpauth_mail_failed_total", Help: "Notifications the notifier rejected."},
	{ID: otpAuth.MetricMailDropped, Name: "otpauth_mail_dropped_total", Help: "Notifications the engine could not queue."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: otpAuth.MetricHashLatency, Name: "otpauth_password_hash_seconds", Help: "Password hashing latency."},
}

// HistogramBounds are the bucket labels, matching the engine's bucket layout.
var HistogramBounds = []string{
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"+Inf",
}

// HistogramUpperBounds are the finite bounds of HistogramBounds in seconds.
var HistogramUpperBounds = []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// HistogramBoundSuffix names each bucket in instrument names.
var HistogramBoundSuffix = []string{
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling missing
// buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets turns per-bucket counts into running totals; the last
// element is the sample count.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
