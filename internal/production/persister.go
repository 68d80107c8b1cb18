// Package production provides production integrations: trace persistence,
// event publishing, visualization.
package production

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/comalice/metrosim"
	"github.com/comalice/metrosim/verify"
)

// Trace is a saved run: the topology it ran on, its event log and, when it
// has been checked, the verification report.
type Trace struct {
	ID        string             `json:"id" yaml:"id"`
	Topology  *metrosim.Topology `json:"topology" yaml:"topology"`
	Events    []metrosim.Event   `json:"events" yaml:"events"`
	Report    *verify.Report     `json:"report,omitempty" yaml:"report,omitempty"`
	Timestamp time.Time          `json:"timestamp" yaml:"timestamp"`
}

// TraceStore saves and loads traces by ID.
type TraceStore interface {
	Save(ctx context.Context, trace Trace) error
	Load(ctx context.Context, id string) (Trace, error)
}

// JSONTraceStore is a file-based store with one JSON document per trace.
type JSONTraceStore struct {
	dir string
}

// NewJSONTraceStore creates a JSONTraceStore, ensuring the directory exists.
func NewJSONTraceStore(dir string) (*JSONTraceStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &JSONTraceStore{dir: dir}, nil
}

func (s *JSONTraceStore) Save(ctx context.Context, trace Trace) error {
	if err := checkID(trace.ID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(trace, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	fn := filepath.Join(s.dir, trace.ID+".json")
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

func (s *JSONTraceStore) Load(ctx context.Context, id string) (Trace, error) {
	data, err := readTrace(filepath.Join(s.dir, id+".json"), id)
	if err != nil {
		return Trace{}, err
	}
	var trace Trace
	if err := json.Unmarshal(data, &trace); err != nil {
		return Trace{}, fmt.Errorf("json unmarshal: %w", err)
	}
	return finishLoad(trace, id)
}

// YAMLTraceStore is a file-based store with one YAML document per trace.
type YAMLTraceStore struct {
	dir string
}

// NewYAMLTraceStore creates a YAMLTraceStore, ensuring the directory exists.
func NewYAMLTraceStore(dir string) (*YAMLTraceStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &YAMLTraceStore{dir: dir}, nil
}

func (s *YAMLTraceStore) Save(ctx context.Context, trace Trace) error {
	if err := checkID(trace.ID); err != nil {
		return err
	}
	data, err := yaml.Marshal(trace)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}
	fn := filepath.Join(s.dir, trace.ID+".yaml")
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

func (s *YAMLTraceStore) Load(ctx context.Context, id string) (Trace, error) {
	data, err := readTrace(filepath.Join(s.dir, id+".yaml"), id)
	if err != nil {
		return Trace{}, err
	}
	var trace Trace
	if err := yaml.Unmarshal(data, &trace); err != nil {
		return Trace{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return finishLoad(trace, id)
}

// checkID rejects IDs that would escape the store directory.
func checkID(id string) error {
	if id == "" || id != filepath.Base(id) || id == "." || id == ".." {
		return fmt.Errorf("invalid trace id %q", id)
	}
	return nil
}

func readTrace(fn, id string) ([]byte, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("trace %q: %w", id, os.ErrNotExist)
		}
		return nil, fmt.Errorf("read %s: %w", fn, err)
	}
	return data, nil
}

func finishLoad(trace Trace, id string) (Trace, error) {
	trace.ID = id
	if trace.Topology == nil {
		return Trace{}, fmt.Errorf("trace %q has no topology", id)
	}
	if err := trace.Topology.Validate(); err != nil {
		return Trace{}, fmt.Errorf("topology validation after load: %w", err)
	}
	return trace, nil
}
