// Package capture passively records eHuB traffic for commissioning.
//
// During installation the mapping table rarely matches the venue on the
// first try: fixtures get addressed out of order, whole bars go missing.
// The capture store answers "what did the wire actually carry?" without a
// packet sniffer: per-universe message/entity counts and every entity ID
// that arrived unmapped, with hit counts and last-seen times.
//
// Recording is fed by the routing core through non-blocking calls; a
// bounded queue decouples SQLite from the hot path and sheds records
// under load. The store is diagnostics only; the router never reads it
// back.
package capture
