// Package config loads runtime settings from the environment and topology
// files from disk.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/comalice/metrosim"
)

// Format is a topology file encoding.
type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	}
	return "", fmt.Errorf("topology %s: unsupported extension %q", path, filepath.Ext(path))
}

// LoadTopology reads and validates a topology file.
func LoadTopology(path string) (*metrosim.Topology, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open topology: %w", err)
	}
	defer f.Close()

	topo, err := DecodeTopology(f, format)
	if err != nil {
		return nil, fmt.Errorf("topology %s: %w", path, err)
	}
	return topo, nil
}

// DecodeTopology decodes and validates a topology. Unknown keys are rejected.
func DecodeTopology(r io.Reader, format Format) (*metrosim.Topology, error) {
	var topo metrosim.Topology
	switch format {
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&topo); err != nil {
			return nil, fmt.Errorf("yaml decode: %w", err)
		}
	case JSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&topo); err != nil {
			return nil, fmt.Errorf("json decode: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown topology format %q", format)
	}
	if err := topo.Validate(); err != nil {
		return nil, err
	}
	return &topo, nil
}

// EncodeTopology writes topo in the given format.
func EncodeTopology(w io.Writer, topo *metrosim.Topology, format Format) error {
	var buf bytes.Buffer
	switch format {
	case YAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(topo); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
	case JSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(topo); err != nil {
			return fmt.Errorf("json encode: %w", err)
		}
	default:
		return fmt.Errorf("unknown topology format %q", format)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
