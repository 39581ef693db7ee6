// Package mapping holds the entity → DMX channel mapping table.
//
// A mapping is declared as a list of entity-ID ranges, each placing a
// contiguous run of entities onto a controller's universe starting at a
// channel. Validate builds an immutable Snapshot from the declared ranges;
// the router resolves tens of thousands of entity IDs per update against
// the snapshot, so resolution is allocation free: a binary search over
// ranges sorted by their first ID, short-circuited by a dense direct-array
// index when the entity ID space is compact enough to afford one.
//
// Snapshots are never mutated after Validate returns. Swapping in a new
// mapping is a pointer publication performed by the control plane.
package mapping
