// Package redisstore implements [otpAuth.UserStore] on Redis.
//
// # Key layout
//
//	<prefix>:user:<id>      JSON-encoded record
//	<prefix>:email:<email>  user id (unique index)
//
// Create and Update run as WATCH/MULTI optimistic transactions and retry a
// bounded number of times when a watched key changes underneath them.
package redisstore
