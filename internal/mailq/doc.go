// Package mailq delivers outbound messages on a background goroutine so mail
// latency and failures never reach the request path.
//
// The queue is bounded. When DropIfFull is set, a full queue drops the
// message and counts it; otherwise Enqueue waits for room or for ctx.
// Close stops accepting work and drains what is already queued.
package mailq
