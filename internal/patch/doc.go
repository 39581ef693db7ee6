// Package patch implements channel-level DMX rewrites.
//
// A patch compensates for field failures such as a cut cable or a dead run
// by copying one channel's byte onto another within the same universe just
// before emission. Rules are declared as (universe, src_channel,
// dst_channel) triples and applied in declaration order, so a rule may read
// a byte written by an earlier rule; cyclic rule chains are rejected at
// load time because they have no well-defined result.
//
// The patch is applied by the emitter to a transient send-copy of the
// frame. The authoritative universe buffers never contain patched bytes,
// which keeps disabling the patch an exact no-op.
package patch
