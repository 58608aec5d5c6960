// Package jwt mints and verifies the HS256 session tokens carried in the
// session cookie. Tokens are stateless: the server keeps no session table and
// trusts only the signature and the expiry.
//
// Every verification failure surfaces as [ErrInvalidToken] so callers cannot
// leak forgery diagnostics.
package jwt
