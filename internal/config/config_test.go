package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/comalice/metrosim"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"METROSIM_DWELL", "METROSIM_TIMEOUT", "METROSIM_STALL_TIMEOUT", "METROSIM_SEED", "METROSIM_ADDR", "GIN_MODE"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Dwell != metrosim.DefaultDwell {
		t.Errorf("Dwell = %v, want %v", cfg.Dwell, metrosim.DefaultDwell)
	}
	if cfg.Timeout != 0 || cfg.StallTimeout != 0 || cfg.Seed != 0 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if got := len(cfg.Options()); got != 1 {
		t.Errorf("default options = %d, want only the dwell", got)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("METROSIM_DWELL", "5ms")
	t.Setenv("METROSIM_TIMEOUT", "2s")
	t.Setenv("METROSIM_STALL_TIMEOUT", "500ms")
	t.Setenv("METROSIM_SEED", "42")
	t.Setenv("METROSIM_ADDR", "127.0.0.1:9000")
	t.Setenv("GIN_MODE", "test")

	cfg := Load()
	want := &Config{
		Dwell:        5 * time.Millisecond,
		Timeout:      2 * time.Second,
		StallTimeout: 500 * time.Millisecond,
		Seed:         42,
		Addr:         "127.0.0.1:9000",
		GinMode:      "test",
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
	if got := len(cfg.Options()); got != 4 {
		t.Errorf("options = %d, want 4", got)
	}
}

func TestLoadInvalidFallsBack(t *testing.T) {
	t.Setenv("METROSIM_DWELL", "soon")
	t.Setenv("METROSIM_SEED", "lucky")
	cfg := Load()
	if cfg.Dwell != metrosim.DefaultDwell || cfg.Seed != 0 {
		t.Errorf("invalid values should fall back: %+v", cfg)
	}
}

const metroYAML = `lines:
  Red: [Shady Grove, Metro Center]
  Blue: [Metro Center, Stadium]
trains:
  Red: 2
  Blue: 1
passengers:
  alice: [Shady Grove, Metro Center, Stadium]
`

func TestDecodeTopologyYAML(t *testing.T) {
	topo, err := DecodeTopology(strings.NewReader(metroYAML), YAML)
	if err != nil {
		t.Fatal(err)
	}
	if got := topo.Lines["Red"]; !reflect.DeepEqual(got, []string{"Shady Grove", "Metro Center"}) {
		t.Errorf("Red = %v", got)
	}
	if topo.Trains["Red"] != 2 {
		t.Errorf("Red trains = %d", topo.Trains["Red"])
	}
	if len(topo.Passengers["alice"]) != 3 {
		t.Errorf("alice = %v", topo.Passengers["alice"])
	}
}

func TestDecodeTopologyErrors(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		format Format
		target error
	}{
		{"unknown yaml key", "lines: {L: [A, B]}\ntrains: {L: 1}\ntrams: 3\n", YAML, nil},
		{"unknown json key", `{"lines":{"L":["A","B"]},"trains":{"L":1},"x":1}`, JSON, nil},
		{"invalid topology", `{"lines":{"L":["A"]},"trains":{"L":1}}`, JSON, metrosim.ErrInvalidTopology},
		{"bad format", `{}`, Format("toml"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTopology(strings.NewReader(tt.doc), tt.format)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("error %v does not wrap %v", err, tt.target)
			}
		})
	}
}

func TestLoadTopologyFiles(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "metro.yml")
	if err := os.WriteFile(yamlPath, []byte(metroYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	fromYAML, err := LoadTopology(yamlPath)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := EncodeTopology(&buf, fromYAML, JSON); err != nil {
		t.Fatal(err)
	}
	jsonPath := filepath.Join(dir, "metro.json")
	if err := os.WriteFile(jsonPath, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	fromJSON, err := LoadTopology(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(fromYAML, fromJSON) {
		t.Errorf("YAML and JSON differ:\n%+v\n%+v", fromYAML, fromJSON)
	}

	if _, err := LoadTopology(filepath.Join(dir, "metro.toml")); err == nil {
		t.Error("unsupported extension should fail")
	}
	if _, err := LoadTopology(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: %v", err)
	}
}

func TestEncodeTopologyYAML(t *testing.T) {
	topo, err := DecodeTopology(strings.NewReader(metroYAML), YAML)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := EncodeTopology(&buf, topo, YAML); err != nil {
		t.Fatal(err)
	}
	back, err := DecodeTopology(&buf, YAML)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(topo, back) {
		t.Errorf("round trip differs:\n%+v\n%+v", topo, back)
	}
}
