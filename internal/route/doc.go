// Package route is the routing core: it consumes decoded eHuB updates,
// writes them into per-universe DMX buffers through the mapping and patch
// tables, and drains dirty universes to Art-Net under a send-rate budget.
//
// # Tasks
//
// A running Service owns three goroutines sharing heap state:
//
//   - the receiver reads the eHuB UDP socket, decodes datagrams and pushes
//     update messages onto a bounded queue (oldest dropped on overflow);
//   - the router drains the queue and applies updates to universe buffers;
//   - the emitter wakes on a fixed cadence and sends at most one Art-Net
//     packet per dirty universe per tick, governed by a global token
//     bucket and an optional per-universe minimum interval.
//
// # Consistency
//
// Universe buffers are guarded by per-universe locks; there is no global
// lock on the hot path. The router holds a universe's lock for all of one
// update's writes to it, so the emitter's copy-out sees a frame consistent
// with a prefix of applied updates, never a torn update. Mapping and patch
// snapshots are immutable and published through atomic pointers the router
// reads once per update message.
//
// The router never allocates on the hot path once snapshots are resident
// and universe buffers exist: resolution is index lookups, projection
// writes into fixed frames, and the emitter reuses one scratch packet.
package route
