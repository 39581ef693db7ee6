package ehub

import (
	"encoding/binary"
	"fmt"

	"github.com/sugawarayuuta/sonnet"
)

// Datagram size and layout constants.
const (
	// MaxDatagramSize is the largest datagram Decode will accept.
	// Anything larger is rejected before per-entity allocation.
	MaxDatagramSize = 64 << 10

	// binaryHeaderSize is the fixed header of a legacy binary frame:
	// magic(4) + type(1) + universe(1) + reserved(4).
	binaryHeaderSize = 10

	// binaryRecordSize is one legacy entity record:
	// id(2, big-endian) + r + g + b + padding.
	binaryRecordSize = 6

	// binaryTypeUpdate is the only message type legacy hosts emit.
	binaryTypeUpdate = 0x01
)

// binaryMagic prefixes every legacy binary frame.
var binaryMagic = [4]byte{'e', 'H', 'u', 'B'}

// wireMessage mirrors the JSON encoding. Unknown keys are ignored by the
// JSON decoder; unknown type strings are mapped to ErrUnknownType.
type wireMessage struct {
	Type     string       `json:"type"`
	Universe *int         `json:"universe"`
	Entities []wireEntity `json:"entities"`
}

// universe unwraps the optional universe field.
func (w *wireMessage) universe() (int, bool) {
	if w.Universe == nil {
		return 0, false
	}
	return *w.Universe, true
}

type wireEntity struct {
	ID    int64      `json:"id"`
	Color *wireColor `json:"color"`
	Label string     `json:"label"`
	Group string     `json:"group"`
}

type wireColor struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
	W int `json:"w"`
}

// Decode parses a raw eHuB datagram into a Message.
//
// The encoding is auto-detected: frames starting with the "eHuB" magic are
// parsed as legacy binary, everything else as JSON. Decode is stateless and
// safe for concurrent use.
//
// Returns ErrOversized for datagrams over MaxDatagramSize, ErrUnknownType
// for unrecognised message types, and ErrMalformed (wrapped with detail)
// for anything else that cannot be decoded.
func Decode(data []byte) (Message, error) {
	if len(data) > MaxDatagramSize {
		return Message{}, fmt.Errorf("%w: %d bytes", ErrOversized, len(data))
	}
	if len(data) == 0 {
		return Message{}, fmt.Errorf("%w: empty datagram", ErrMalformed)
	}

	if len(data) >= len(binaryMagic) && [4]byte(data[:4]) == binaryMagic {
		return decodeBinary(data)
	}
	return decodeJSON(data)
}

// decodeJSON parses the JSON encoding.
func decodeJSON(data []byte) (Message, error) {
	var wire wireMessage
	if err := sonnet.Unmarshal(data, &wire); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch wire.Type {
	case "update":
		return decodeUpdate(wire)
	case "config":
		return decodeConfig(wire)
	default:
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownType, wire.Type)
	}
}

func decodeUpdate(wire wireMessage) (Message, error) {
	universe, hasUniverse := wire.universe()
	msg := Message{
		Type:        TypeUpdate,
		Universe:    universe,
		HasUniverse: hasUniverse,
		Entities:    make([]EntityState, 0, len(wire.Entities)),
	}
	for i := range wire.Entities {
		e := &wire.Entities[i]
		if e.ID <= 0 {
			return Message{}, fmt.Errorf("%w: entity id %d", ErrMalformed, e.ID)
		}
		var c Color
		if e.Color != nil {
			var err error
			if c, err = e.Color.clamp(); err != nil {
				return Message{}, fmt.Errorf("%w: entity %d: %v", ErrMalformed, e.ID, err)
			}
		}
		msg.Entities = append(msg.Entities, EntityState{ID: uint32(e.ID), Color: c})
	}
	return msg, nil
}

func decodeConfig(wire wireMessage) (Message, error) {
	universe, hasUniverse := wire.universe()
	msg := Message{
		Type:        TypeConfig,
		Universe:    universe,
		HasUniverse: hasUniverse,
		Configs:     make([]EntityConfig, 0, len(wire.Entities)),
	}
	for i := range wire.Entities {
		e := &wire.Entities[i]
		if e.ID <= 0 {
			return Message{}, fmt.Errorf("%w: entity id %d", ErrMalformed, e.ID)
		}
		msg.Configs = append(msg.Configs, EntityConfig{
			ID:    uint32(e.ID),
			Label: e.Label,
			Group: e.Group,
		})
	}
	return msg, nil
}

// clamp validates the wire colour and narrows it to 8-bit components.
func (c *wireColor) clamp() (Color, error) {
	for _, v := range [4]int{c.R, c.G, c.B, c.W} {
		if v < 0 || v > 255 {
			return Color{}, fmt.Errorf("colour component %d out of range", v)
		}
	}
	return Color{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), W: uint8(c.W)}, nil
}

// decodeBinary parses a legacy binary frame.
//
// Entity records start at byte 10 and are 6 bytes each; a trailing partial
// record is ignored. Binary frames never carry a W component.
func decodeBinary(data []byte) (Message, error) {
	if len(data) < binaryHeaderSize {
		return Message{}, fmt.Errorf("%w: binary frame %d bytes, need %d",
			ErrMalformed, len(data), binaryHeaderSize)
	}
	if data[4] != binaryTypeUpdate {
		return Message{}, fmt.Errorf("%w: binary type 0x%02x", ErrUnknownType, data[4])
	}

	body := data[binaryHeaderSize:]
	msg := Message{
		Type:        TypeUpdate,
		Universe:    int(data[5]),
		HasUniverse: true,
		Entities:    make([]EntityState, 0, len(body)/binaryRecordSize),
	}
	for i := 0; i+binaryRecordSize <= len(body); i += binaryRecordSize {
		rec := body[i : i+binaryRecordSize]
		id := binary.BigEndian.Uint16(rec[0:2])
		if id == 0 {
			return Message{}, fmt.Errorf("%w: entity id 0", ErrMalformed)
		}
		msg.Entities = append(msg.Entities, EntityState{
			ID:    uint32(id),
			Color: Color{R: rec[2], G: rec[3], B: rec[4]},
		})
	}
	return msg, nil
}
