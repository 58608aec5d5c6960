// Package middleware exposes HTTP adapters over otpAuth.Engine: session
// resolution, per-class rate limiting and client IP extraction.
//
// # Middleware
//
//   - [ClientIP] - stores the caller's address in the request context.
//   - [RequireSession] - resolves the session cookie to a user id.
//   - [RateLimit] - admits the request through Engine.Admit for one class.
//
// Every rejection is written with [Fail] as {"success":false,"message":...}.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT parse
// tokens or count requests itself; those decisions belong to the Engine.
package middleware
