package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/sugawarayuuta/sonnet"

	"github.com/nerrad567/lumen-route/internal/mapping"
	"github.com/nerrad567/lumen-route/internal/patch"
)

// rawRange is one mapping entry as written by installers. Tabular exports
// use "ip" for the controller column; hand-written files use
// "controller_ip". Channels may be a string ("RGB") or a letter list
// (["R","G","B"]).
type rawRange struct {
	From         uint32      `json:"from"`
	To           uint32      `json:"to"`
	ControllerIP string      `json:"controller_ip"`
	IP           string      `json:"ip"`
	Universe     int         `json:"universe"`
	ChannelStart int         `json:"channel_start"`
	Channels     channelList `json:"channels"`
}

// channelList accepts both channel spellings.
type channelList string

func (c *channelList) UnmarshalJSON(data []byte) error {
	var s string
	if err := sonnet.Unmarshal(data, &s); err == nil {
		*c = channelList(s)
		return nil
	}
	var letters []string
	if err := sonnet.Unmarshal(data, &letters); err != nil {
		return fmt.Errorf("channels must be a string or a list of letters")
	}
	*c = channelList(strings.Join(letters, ""))
	return nil
}

// LoadMapping reads and validates a mapping JSON file.
//
// The file is a list of range objects:
//
//	[{"from":1,"to":170,"controller_ip":"10.0.0.1","universe":0,
//	  "channel_start":1,"channels":["R","G","B"]}]
//
// allowed, when non-empty, is the controller allow-list forwarded to
// mapping validation.
func LoadMapping(path string, allowed []string) (*mapping.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mapping file: %w", err)
	}

	var raw []rawRange
	if err := sonnet.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing mapping file: %w", err)
	}

	configs := make([]mapping.RangeConfig, 0, len(raw))
	for _, r := range raw {
		controller := r.ControllerIP
		if controller == "" {
			controller = r.IP
		}
		configs = append(configs, mapping.RangeConfig{
			From:         r.From,
			To:           r.To,
			ControllerIP: controller,
			Universe:     r.Universe,
			ChannelStart: r.ChannelStart,
			Channels:     string(r.Channels),
		})
	}

	snap, err := mapping.Validate(configs, allowed)
	if err != nil {
		return nil, fmt.Errorf("validating mapping: %w", err)
	}
	return snap, nil
}

// rawPatch is the patch file structure.
type rawPatch struct {
	Enabled bool         `json:"enabled"`
	Rules   []patch.Rule `json:"rules"`
}

// LoadPatch reads and validates a patch JSON file:
//
//	{"enabled":true,"rules":[{"universe":0,"src_channel":1,"dst_channel":4}]}
//
// An empty path returns the empty patch.
func LoadPatch(path string) (*patch.Snapshot, error) {
	if path == "" {
		return patch.Empty(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading patch file: %w", err)
	}

	var raw rawPatch
	if err := sonnet.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing patch file: %w", err)
	}

	snap, err := patch.Validate(raw.Rules, raw.Enabled)
	if err != nil {
		return nil, fmt.Errorf("validating patch: %w", err)
	}
	return snap, nil
}
