package patch

import (
	"fmt"
)

// Channel space constraints, matching the DMX frame.
const (
	frameSize   = 512
	maxUniverse = 0x7FFF
)

// Rule copies one channel's byte onto another within the same universe.
// Channels are 1-based, as printed on patch panels.
type Rule struct {
	Universe   int `json:"universe"`
	SrcChannel int `json:"src_channel"`
	DstChannel int `json:"dst_channel"`
}

// rewrite is a validated rule with 0-based frame offsets.
type rewrite struct {
	src uint16
	dst uint16
}

// Snapshot is an immutable, validated patch table. Rules are grouped by
// universe at load time so Apply is a linear pass over that universe's
// rules. All methods are safe for concurrent use.
type Snapshot struct {
	byUniverse map[uint16][]rewrite
	enabled    bool
	ruleCount  int
}

// Validate checks the declared rules and builds a Snapshot.
//
// enabled is the snapshot's initial toggle state; the control plane may
// flip it at runtime without a new snapshot.
//
// Cycle detection models the rules of each universe as a directed graph on
// channels (src → dst) and rejects any cycle, self-loops included. Acyclic
// rules applied in declaration order give a well-defined result.
func Validate(rules []Rule, enabled bool) (*Snapshot, error) {
	snap := &Snapshot{
		byUniverse: make(map[uint16][]rewrite),
		enabled:    enabled,
		ruleCount:  len(rules),
	}

	edges := make(map[uint16]map[uint16][]uint16) // universe → src → dsts
	for i, r := range rules {
		if r.Universe < 0 || r.Universe > maxUniverse {
			return nil, fmt.Errorf("rule %d: %w: universe %d", i, ErrOutOfRange, r.Universe)
		}
		if r.SrcChannel < 1 || r.SrcChannel > frameSize {
			return nil, fmt.Errorf("rule %d: %w: src_channel %d", i, ErrOutOfRange, r.SrcChannel)
		}
		if r.DstChannel < 1 || r.DstChannel > frameSize {
			return nil, fmt.Errorf("rule %d: %w: dst_channel %d", i, ErrOutOfRange, r.DstChannel)
		}

		u := uint16(r.Universe)
		src, dst := uint16(r.SrcChannel-1), uint16(r.DstChannel-1)
		snap.byUniverse[u] = append(snap.byUniverse[u], rewrite{src: src, dst: dst})

		if edges[u] == nil {
			edges[u] = make(map[uint16][]uint16)
		}
		edges[u][src] = append(edges[u][src], dst)
	}

	for u, g := range edges {
		if ch, ok := findCycle(g); ok {
			return nil, fmt.Errorf("%w: universe %d, channel %d", ErrCycle, u, ch+1)
		}
	}

	return snap, nil
}

// findCycle runs an iterative three-colour DFS over the channel graph.
// Returns a channel on a cycle when one exists.
func findCycle(g map[uint16][]uint16) (uint16, bool) {
	const (
		white = 0 // unvisited
		grey  = 1 // on the current DFS path
		black = 2 // fully explored
	)
	colour := make(map[uint16]uint8, len(g))

	var stack []uint16
	for start := range g {
		if colour[start] != white {
			continue
		}
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			if colour[n] == white {
				colour[n] = grey
				for _, next := range g[n] {
					switch colour[next] {
					case grey:
						return next, true
					case white:
						stack = append(stack, next)
					}
				}
			} else {
				// Children done; n may appear twice on the stack when it
				// is reachable along two acyclic paths.
				if colour[n] == grey {
					colour[n] = black
				}
				stack = stack[:len(stack)-1]
			}
		}
	}
	return 0, false
}

// Apply rewrites frame in place with the universe's rules, in declaration
// order. Frames for universes without rules are untouched.
func (s *Snapshot) Apply(universe uint16, frame []byte) {
	for _, rw := range s.byUniverse[universe] {
		frame[rw.dst] = frame[rw.src]
	}
}

// Enabled reports the snapshot's initial toggle state.
func (s *Snapshot) Enabled() bool {
	return s.enabled
}

// RuleCount returns the number of declared rules.
func (s *Snapshot) RuleCount() int {
	return s.ruleCount
}

// Empty returns a disabled, rule-less snapshot, the default when no patch
// configuration is supplied.
func Empty() *Snapshot {
	return &Snapshot{byUniverse: map[uint16][]rewrite{}, enabled: false}
}
