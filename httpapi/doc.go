// Package httpapi serves the account lifecycle as JSON over HTTP.
//
// Every endpoint is a POST under /api/auth and answers with
// {"success":bool,"message":string}. Sessions travel in an HTTP-only cookie
// named "token". Errors from the Engine are classified with otpAuth.KindOf;
// internal failures are logged and reported with a generic message.
package httpapi
