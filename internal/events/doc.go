// Package events carries the router's structured event feed.
//
// The decoder and emitter publish taps (decoded message summaries, send
// attempts, drops, errors) that external monitors consume without sitting
// on the hot path. Delivery is best-effort: each subscriber owns a bounded
// queue, and when a subscriber falls behind its oldest events are dropped,
// never the router's time.
package events
