// Package rate implements the fixed-window request gate applied per endpoint
// class and client key.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. The window
// starts on the first admitted request for a key and resets when it elapses.
// Keys are "<prefix>:<class>:<client>", so classes never share a counter.
//
// Two gates satisfy [Gate]: [RedisGate] for deployments with several replicas
// and [MemoryGate] for a single process.
//
// # What this package must NOT do
//
//   - Read or write user records.
//   - Be imported outside the otpAuth module.
package rate
