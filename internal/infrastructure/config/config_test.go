package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", "listen:\n  port: 5568\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Listen.Addr() != "0.0.0.0:5568" {
		t.Errorf("Listen.Addr() = %q", cfg.Listen.Addr())
	}
	if cfg.Router.EmitInterval() != 25*time.Millisecond {
		t.Errorf("EmitInterval() = %v, want 25ms", cfg.Router.EmitInterval())
	}
	if cfg.Router.MaxPPS != 1000 {
		t.Errorf("MaxPPS = %d, want 1000", cfg.Router.MaxPPS)
	}
	if cfg.Listen.FilterUniverse != nil {
		t.Error("FilterUniverse must default to unset")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", `
listen:
  host: 127.0.0.1
  port: 6000
  filter_universe: 3
router:
  emit_interval_ms: 40
  max_pps: 200
mapping:
  file: /etc/lumenroute/mapping.json
  allowed_controllers: ["10.0.0.1"]
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Listen.Addr() != "127.0.0.1:6000" {
		t.Errorf("Listen.Addr() = %q", cfg.Listen.Addr())
	}
	if cfg.Listen.FilterUniverse == nil || *cfg.Listen.FilterUniverse != 3 {
		t.Errorf("FilterUniverse = %v, want 3", cfg.Listen.FilterUniverse)
	}
	if cfg.Router.EmitInterval() != 40*time.Millisecond {
		t.Errorf("EmitInterval() = %v, want 40ms", cfg.Router.EmitInterval())
	}
	if len(cfg.Mapping.AllowedControllers) != 1 {
		t.Errorf("AllowedControllers = %v", cfg.Mapping.AllowedControllers)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LUMENROUTE_LISTEN_PORT", "7777")
	t.Setenv("LUMENROUTE_LOGGING_LEVEL", "debug")

	path := writeFile(t, "config.yaml", "listen:\n  port: 5568\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Listen.Port != 7777 {
		t.Errorf("Listen.Port = %d, want env override 7777", cfg.Listen.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad port", yaml: "listen:\n  port: 70000\n"},
		{name: "bad qos", yaml: "mqtt:\n  qos: 3\n"},
		{name: "zero emit interval", yaml: "router:\n  emit_interval_ms: 0\n"},
		{name: "zero max pps", yaml: "router:\n  max_pps: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "config.yaml", tt.yaml)
			if _, err := Load(path); err == nil {
				t.Error("Load() accepted invalid configuration")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() succeeded on a missing file")
	}
}

func TestLoadMapping(t *testing.T) {
	path := writeFile(t, "mapping.json", `[
		{"from":1,"to":170,"controller_ip":"10.0.0.1","universe":0,"channels":["R","G","B"]},
		{"from":171,"to":180,"ip":"10.0.0.2","universe":1,"channel_start":10,"channels":"RGBW"}
	]`)

	snap, err := LoadMapping(path, nil)
	if err != nil {
		t.Fatalf("LoadMapping() error: %v", err)
	}
	if got := snap.EntityCount(); got != 180 {
		t.Errorf("EntityCount() = %d, want 180", got)
	}

	target, ok := snap.Resolve(171)
	if !ok {
		t.Fatal("Resolve(171) unmapped, want mapped via ip alias")
	}
	if target.Key.Controller != "10.0.0.2" {
		t.Errorf("controller = %q, want 10.0.0.2", target.Key.Controller)
	}
	if target.Layout.String() != "RGBW" {
		t.Errorf("layout = %q, want RGBW", target.Layout.String())
	}
}

func TestLoadMappingRejectsOverlap(t *testing.T) {
	path := writeFile(t, "mapping.json", `[
		{"from":1,"to":100,"controller_ip":"10.0.0.1","universe":0},
		{"from":50,"to":60,"controller_ip":"10.0.0.2","universe":1}
	]`)
	if _, err := LoadMapping(path, nil); err == nil {
		t.Error("LoadMapping() accepted overlapping ranges")
	}
}

func TestLoadPatch(t *testing.T) {
	path := writeFile(t, "patch.json", `{
		"enabled": true,
		"rules": [{"universe":0,"src_channel":1,"dst_channel":4}]
	}`)

	snap, err := LoadPatch(path)
	if err != nil {
		t.Fatalf("LoadPatch() error: %v", err)
	}
	if !snap.Enabled() {
		t.Error("Enabled() = false, want true")
	}
	if snap.RuleCount() != 1 {
		t.Errorf("RuleCount() = %d, want 1", snap.RuleCount())
	}
}

func TestLoadPatchEmptyPath(t *testing.T) {
	snap, err := LoadPatch("")
	if err != nil {
		t.Fatalf("LoadPatch(\"\") error: %v", err)
	}
	if snap.Enabled() || snap.RuleCount() != 0 {
		t.Error("empty path must yield the empty, disabled patch")
	}
}

func TestLoadPatchRejectsCycle(t *testing.T) {
	path := writeFile(t, "patch.json", `{
		"enabled": true,
		"rules": [
			{"universe":0,"src_channel":1,"dst_channel":2},
			{"universe":0,"src_channel":2,"dst_channel":1}
		]
	}`)
	if _, err := LoadPatch(path); err == nil {
		t.Error("LoadPatch() accepted a rule cycle")
	}
}
