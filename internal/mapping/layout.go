package mapping

import (
	"fmt"
	"strings"

	"github.com/nerrad567/lumen-route/internal/ehub"
)

// Component selects one colour channel of an entity.
type Component uint8

const (
	CompR Component = iota
	CompG
	CompB
	CompW
)

// maxLayoutSize is the largest layout: one output channel per component.
const maxLayoutSize = 4

// Layout is an ordered selection of colour components, e.g. RGB, RGBW or a
// single R for monochrome fixtures. The component set is small and closed,
// so Layout is a value type the router can project through without
// allocation or dynamic dispatch.
type Layout struct {
	n     uint8
	comps [maxLayoutSize]Component
}

// Common layouts.
var (
	LayoutRGB  = Layout{n: 3, comps: [maxLayoutSize]Component{CompR, CompG, CompB}}
	LayoutRGBW = Layout{n: 4, comps: [maxLayoutSize]Component{CompR, CompG, CompB, CompW}}
)

// ParseLayout parses a layout string such as "RGB", "RGBW", "GRB" or "R".
// Parsing is case-insensitive. A letter may appear at most once.
func ParseLayout(s string) (Layout, error) {
	if s == "" {
		return Layout{}, fmt.Errorf("%w: empty", ErrBadLayout)
	}
	if len(s) > maxLayoutSize {
		return Layout{}, fmt.Errorf("%w: %q has more than %d channels", ErrBadLayout, s, maxLayoutSize)
	}

	var l Layout
	var seen [maxLayoutSize]bool
	for _, r := range strings.ToUpper(s) {
		var c Component
		switch r {
		case 'R':
			c = CompR
		case 'G':
			c = CompG
		case 'B':
			c = CompB
		case 'W':
			c = CompW
		default:
			return Layout{}, fmt.Errorf("%w: letter %q in %q", ErrBadLayout, r, s)
		}
		if seen[c] {
			return Layout{}, fmt.Errorf("%w: repeated letter %q in %q", ErrBadLayout, r, s)
		}
		seen[c] = true
		l.comps[l.n] = c
		l.n++
	}
	return l, nil
}

// Size returns the number of DMX channels one entity occupies.
func (l Layout) Size() int {
	return int(l.n)
}

// Project writes the layout's projection of colour c into dst, which must
// hold at least Size() bytes. The order follows the declared layout:
// R→c.R, G→c.G, B→c.B, W→c.W.
func (l Layout) Project(c ehub.Color, dst []byte) {
	for i := uint8(0); i < l.n; i++ {
		switch l.comps[i] {
		case CompR:
			dst[i] = c.R
		case CompG:
			dst[i] = c.G
		case CompB:
			dst[i] = c.B
		case CompW:
			dst[i] = c.W
		}
	}
}

// String returns the layout letters, e.g. "RGB".
func (l Layout) String() string {
	var sb strings.Builder
	for i := uint8(0); i < l.n; i++ {
		sb.WriteByte("RGBW"[l.comps[i]])
	}
	return sb.String()
}
