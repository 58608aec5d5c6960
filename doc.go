// Package otpAuth provides the credential and verification engine behind the
// /api/auth endpoints: registration, password login, stateless session tokens,
// email ownership checks through one-time codes, and self-service password
// reset.
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// otpAuth is the public surface. It exposes [Engine], [Builder], [Config], the
// [UserStore] and [Notifier] collaborator contracts, and value types. Code
// generation, rate windows and mail dispatch live under internal/ and are never
// exported. Storage engines live in store/ and HTTP wiring in httpapi/ and
// middleware/.
//
// # Atomicity contract
//
// Every read-modify-write of a user record goes through [UserStore.Update].
// OTP consumption and the state change it authorizes happen inside a single
// Update call, so a code is accepted at most once even under concurrent
// requests. Password hashing never runs inside Update.
//
// # What this package must NOT do
//
//   - Hold a server-side session table. Tokens are verified by signature and expiry only.
//   - Fail a request because a notification could not be delivered.
//   - Import any sub-package that re-imports otpAuth (no import cycles).
package otpAuth
