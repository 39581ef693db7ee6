package ehub

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    Message
		wantErr error
	}{
		{
			name: "update single entity RGB",
			data: []byte(`{"type":"update","universe":0,"entities":[{"id":1,"color":{"r":255,"g":128,"b":64}}]}`),
			want: Message{
				Type:     TypeUpdate,
				Universe: 0,
				Entities: []EntityState{{ID: 1, Color: Color{R: 255, G: 128, B: 64}}},
			},
		},
		{
			name: "update with w component",
			data: []byte(`{"type":"update","universe":3,"entities":[{"id":10,"color":{"r":1,"g":2,"b":3,"w":4}}]}`),
			want: Message{
				Type:     TypeUpdate,
				Universe: 3,
				Entities: []EntityState{{ID: 10, Color: Color{R: 1, G: 2, B: 3, W: 4}}},
			},
		},
		{
			name: "update missing colour defaults to black",
			data: []byte(`{"type":"update","universe":0,"entities":[{"id":7}]}`),
			want: Message{
				Type:     TypeUpdate,
				Entities: []EntityState{{ID: 7}},
			},
		},
		{
			name: "unknown keys ignored",
			data: []byte(`{"type":"update","universe":0,"ts":123,"entities":[{"id":1,"color":{"r":9,"g":0,"b":0},"brightness":50}]}`),
			want: Message{
				Type:     TypeUpdate,
				Entities: []EntityState{{ID: 1, Color: Color{R: 9}}},
			},
		},
		{
			name: "config message",
			data: []byte(`{"type":"config","universe":2,"entities":[{"id":5,"label":"bar-left","group":"bar"}]}`),
			want: Message{
				Type:     TypeConfig,
				Universe: 2,
				Configs:  []EntityConfig{{ID: 5, Label: "bar-left", Group: "bar"}},
			},
		},
		{
			name:    "unknown type",
			data:    []byte(`{"type":"telemetry","universe":0,"entities":[]}`),
			wantErr: ErrUnknownType,
		},
		{
			name:    "missing type",
			data:    []byte(`{"universe":0,"entities":[]}`),
			wantErr: ErrUnknownType,
		},
		{
			name:    "colour component out of range",
			data:    []byte(`{"type":"update","universe":0,"entities":[{"id":1,"color":{"r":300,"g":0,"b":0}}]}`),
			wantErr: ErrMalformed,
		},
		{
			name:    "negative colour component",
			data:    []byte(`{"type":"update","universe":0,"entities":[{"id":1,"color":{"r":-1,"g":0,"b":0}}]}`),
			wantErr: ErrMalformed,
		},
		{
			name:    "zero entity id",
			data:    []byte(`{"type":"update","universe":0,"entities":[{"id":0,"color":{"r":1,"g":1,"b":1}}]}`),
			wantErr: ErrMalformed,
		},
		{
			name:    "negative entity id",
			data:    []byte(`{"type":"update","universe":0,"entities":[{"id":-4}]}`),
			wantErr: ErrMalformed,
		},
		{
			name:    "truncated JSON",
			data:    []byte(`{"type":"update","universe":0,"ent`),
			wantErr: ErrMalformed,
		},
		{
			name:    "not JSON at all",
			data:    []byte("\x00\x01\x02\x03"),
			wantErr: ErrMalformed,
		},
		{
			name:    "empty datagram",
			data:    nil,
			wantErr: ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.data)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() unexpected error: %v", err)
			}
			assertMessageEqual(t, got, tt.want)
		})
	}
}

func TestDecodeBinary(t *testing.T) {
	frame := func(msgType, universe byte, records ...byte) []byte {
		b := []byte{'e', 'H', 'u', 'B', msgType, universe, 0, 0, 0, 0}
		return append(b, records...)
	}

	tests := []struct {
		name    string
		data    []byte
		want    Message
		wantErr error
	}{
		{
			name: "single entity",
			data: frame(0x01, 2, 0x00, 0x01, 255, 128, 64, 0x00),
			want: Message{
				Type:     TypeUpdate,
				Universe: 2,
				Entities: []EntityState{{ID: 1, Color: Color{R: 255, G: 128, B: 64}}},
			},
		},
		{
			name: "two entities big-endian ids",
			data: frame(0x01, 0,
				0x03, 0xE9, 10, 20, 30, 0x00, // id 1001
				0x03, 0xEA, 40, 50, 60, 0x00, // id 1002
			),
			want: Message{
				Type: TypeUpdate,
				Entities: []EntityState{
					{ID: 1001, Color: Color{R: 10, G: 20, B: 30}},
					{ID: 1002, Color: Color{R: 40, G: 50, B: 60}},
				},
			},
		},
		{
			name: "trailing partial record ignored",
			data: frame(0x01, 0,
				0x00, 0x05, 1, 2, 3, 0x00,
				0x00, 0x06, 9, // truncated
			),
			want: Message{
				Type:     TypeUpdate,
				Entities: []EntityState{{ID: 5, Color: Color{R: 1, G: 2, B: 3}}},
			},
		},
		{
			name: "header only means no entities",
			data: frame(0x01, 7),
			want: Message{
				Type:     TypeUpdate,
				Universe: 7,
				Entities: []EntityState{},
			},
		},
		{
			name:    "unknown binary type",
			data:    frame(0x02, 0),
			wantErr: ErrUnknownType,
		},
		{
			name:    "magic but truncated header",
			data:    []byte{'e', 'H', 'u', 'B', 0x01},
			wantErr: ErrMalformed,
		},
		{
			name:    "entity id zero",
			data:    frame(0x01, 0, 0x00, 0x00, 1, 2, 3, 0x00),
			wantErr: ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.data)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() unexpected error: %v", err)
			}
			assertMessageEqual(t, got, tt.want)
		})
	}
}

func TestDecodeUniversePresence(t *testing.T) {
	withUniverse, err := Decode([]byte(`{"type":"update","universe":0,"entities":[]}`))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !withUniverse.HasUniverse {
		t.Error("HasUniverse = false for a message carrying universe 0")
	}

	withoutUniverse, err := Decode([]byte(`{"type":"update","entities":[{"id":1}]}`))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if withoutUniverse.HasUniverse {
		t.Error("HasUniverse = true for a message without the field")
	}

	binary, err := Decode([]byte{'e', 'H', 'u', 'B', 0x01, 0x07, 0, 0, 0, 0})
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !binary.HasUniverse || binary.Universe != 7 {
		t.Errorf("binary universe = (%d,%v), want (7,true)", binary.Universe, binary.HasUniverse)
	}
}

func TestDecodeOversized(t *testing.T) {
	data := bytes.Repeat([]byte{'x'}, MaxDatagramSize+1)
	if _, err := Decode(data); !errors.Is(err, ErrOversized) {
		t.Fatalf("Decode() error = %v, want %v", err, ErrOversized)
	}
}

func assertMessageEqual(t *testing.T, got, want Message) {
	t.Helper()
	if got.Type != want.Type {
		t.Errorf("Type = %v, want %v", got.Type, want.Type)
	}
	if got.Universe != want.Universe {
		t.Errorf("Universe = %d, want %d", got.Universe, want.Universe)
	}
	if len(got.Entities) != len(want.Entities) {
		t.Fatalf("len(Entities) = %d, want %d", len(got.Entities), len(want.Entities))
	}
	for i := range want.Entities {
		if got.Entities[i] != want.Entities[i] {
			t.Errorf("Entities[%d] = %+v, want %+v", i, got.Entities[i], want.Entities[i])
		}
	}
	if len(got.Configs) != len(want.Configs) {
		t.Fatalf("len(Configs) = %d, want %d", len(got.Configs), len(want.Configs))
	}
	for i := range want.Configs {
		if got.Configs[i] != want.Configs[i] {
			t.Errorf("Configs[%d] = %+v, want %+v", i, got.Configs[i], want.Configs[i])
		}
	}
}
