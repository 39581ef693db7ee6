package route

import "sync/atomic"

// Stats are the router's operational counters. All fields are atomic; the
// hot path only increments, never formats.
type Stats struct {
	MessagesDecoded   atomic.Uint64 // update messages decoded
	ConfigMessages    atomic.Uint64 // config messages decoded
	InputMalformed    atomic.Uint64 // datagrams dropped as malformed
	UnknownType       atomic.Uint64 // datagrams dropped for unknown type
	MessagesFiltered  atomic.Uint64 // messages dropped by the universe filter
	BackpressureDrops atomic.Uint64 // receiver→router queue overflows
	UpdatesRouted     atomic.Uint64 // entity colour writes applied
	UnmappedEntities  atomic.Uint64 // entity IDs outside the mapping
	PacketsSent       atomic.Uint64 // Art-Net packets emitted
	SendFailures      atomic.Uint64 // outbound UDP errors
}

// StatsSnapshot is a point-in-time copy of the counters for reporting.
type StatsSnapshot struct {
	MessagesDecoded   uint64
	ConfigMessages    uint64
	InputMalformed    uint64
	UnknownType       uint64
	MessagesFiltered  uint64
	BackpressureDrops uint64
	UpdatesRouted     uint64
	UnmappedEntities  uint64
	PacketsSent       uint64
	SendFailures      uint64
	ActiveUniverses   int
}

// snapshot loads every counter once.
func (s *Stats) snapshot() StatsSnapshot {
	return StatsSnapshot{
		MessagesDecoded:   s.MessagesDecoded.Load(),
		ConfigMessages:    s.ConfigMessages.Load(),
		InputMalformed:    s.InputMalformed.Load(),
		UnknownType:       s.UnknownType.Load(),
		MessagesFiltered:  s.MessagesFiltered.Load(),
		BackpressureDrops: s.BackpressureDrops.Load(),
		UpdatesRouted:     s.UpdatesRouted.Load(),
		UnmappedEntities:  s.UnmappedEntities.Load(),
		PacketsSent:       s.PacketsSent.Load(),
		SendFailures:      s.SendFailures.Load(),
	}
}
