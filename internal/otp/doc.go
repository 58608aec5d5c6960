// Package otp generates and checks the numeric one-time codes embedded in user
// records for email verification and password reset.
//
// The package is pure: it never touches storage. Callers run [Check] and the
// clearing of the challenge inside the same atomic record update so a code can
// be consumed at most once.
//
// # What this package must NOT do
//
//   - Persist challenges or read the clock on its own.
//   - Be imported outside the otpAuth module.
package otp
