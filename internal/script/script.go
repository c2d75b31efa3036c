package script

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Script errors.
var (
	ErrInvalidScript = errors.New("invalid script")
	ErrFileNotFound  = errors.New("script file not found")
)

// Script is a named sequence of edit steps.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one operation of a script. Which fields are used depends on Op.
type Step struct {
	Op      string `yaml:"op"`
	Circuit string `yaml:"circuit,omitempty"`
	Gate    string `yaml:"gate,omitempty"`
	Pin     string `yaml:"pin,omitempty"`
	Name    string `yaml:"name,omitempty"`
	Kind    string `yaml:"kind,omitempty"`
	Dir     string `yaml:"dir,omitempty"`

	// From and To address pins as "gate.pin".
	From string `yaml:"from,omitempty"`
	To   string `yaml:"to,omitempty"`

	// Expect is the error kind the step must fail with.
	Expect string `yaml:"expect,omitempty"`
}

// required lists the fields each operation needs.
var required = map[string][]string{
	"begin":          nil,
	"commit":         nil,
	"rollback":       nil,
	"undo":           nil,
	"redo":           nil,
	"add_circuit":    {"name"},
	"add_gate":       {"circuit", "name"},
	"add_pin":        {"circuit", "gate", "name"},
	"connect":        {"circuit", "from", "to"},
	"delete_circuit": {"circuit"},
	"delete_gate":    {"circuit", "gate"},
	"delete_pin":     {"circuit", "gate", "pin"},
	"delete_wire":    {"circuit", "from", "to"},
	"rename_circuit": {"circuit", "name"},
	"rename_gate":    {"circuit", "gate", "name"},
	"rename_pin":     {"circuit", "gate", "pin", "name"},
}

func (s Step) field(name string) string {
	switch name {
	case "circuit":
		return s.Circuit
	case "gate":
		return s.Gate
	case "pin":
		return s.Pin
	case "name":
		return s.Name
	case "from":
		return s.From
	case "to":
		return s.To
	default:
		return ""
	}
}

//go:embed demo.yaml
var demo []byte

// Demo returns the built-in demonstration script.
func Demo() (*Script, error) {
	return Parse(demo)
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a script and validates its steps.
func Parse(data []byte) (*Script, error) {
	var sc Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScript)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks that every step names a known operation, carries the
// fields it needs and expects a known error kind.
func (sc *Script) Validate() error {
	var errs []error
	if sc.Name == "" {
		errs = append(errs, fmt.Errorf("%w: name is required", ErrInvalidScript))
	}
	if len(sc.Steps) == 0 {
		errs = append(errs, fmt.Errorf("%w: no steps", ErrInvalidScript))
	}
	for i, step := range sc.Steps {
		fields, ok := required[step.Op]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: step %d: unknown op %q", ErrInvalidScript, i+1, step.Op))
			continue
		}
		for _, f := range fields {
			if step.field(f) == "" {
				errs = append(errs, fmt.Errorf("%w: step %d (%s): missing %s", ErrInvalidScript, i+1, step.Op, f))
			}
		}
		for _, f := range []string{step.From, step.To} {
			if f == "" {
				continue
			}
			if _, _, err := splitPin(f); err != nil {
				errs = append(errs, fmt.Errorf("%w: step %d (%s): %v", ErrInvalidScript, i+1, step.Op, err))
			}
		}
		if step.Expect != "" && !knownKind(step.Expect) {
			errs = append(errs, fmt.Errorf("%w: step %d (%s): unknown error kind %q", ErrInvalidScript, i+1, step.Op, step.Expect))
		}
	}
	return errors.Join(errs...)
}

// splitPin splits a "gate.pin" address.
func splitPin(addr string) (gate, pin string, err error) {
	gate, pin, ok := strings.Cut(addr, ".")
	if !ok || gate == "" || pin == "" || strings.Contains(pin, ".") {
		return "", "", fmt.Errorf("pin address %q is not gate.pin", addr)
	}
	return gate, pin, nil
}
