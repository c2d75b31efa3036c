package script

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/KilimcininKorOglu/snapstore/internal/circuit"
)

// Trace is the record of one script run.
type Trace struct {
	Script       string       `json:"script"`
	Steps        []StepResult `json:"steps"`
	FinalVersion int          `json:"final_version"`
}

// StepResult is the outcome of one step. Version and Changes are set when
// the step published a version.
type StepResult struct {
	Index   int              `json:"index"`
	Op      string           `json:"op"`
	Outcome string           `json:"outcome"`
	Version int              `json:"version,omitempty"`
	Changes []circuit.Change `json:"changes,omitempty"`
}

// Write renders t in format, "text" or "json".
func Write(w io.Writer, t *Trace, format string) error {
	switch format {
	case "json":
		return WriteJSON(w, t)
	case "text", "":
		return WriteText(w, t)
	default:
		return fmt.Errorf("unknown trace format %q", format)
	}
}

// WriteText renders t one step per line, followed by the changes of any
// version the step published.
func WriteText(w io.Writer, t *Trace) error {
	ew := &errWriter{w: w}
	ew.printf("script %s\n", t.Script)
	for _, s := range t.Steps {
		if s.Version > 0 {
			ew.printf("%3d %s: version %d\n", s.Index, s.Op, s.Version)
		} else {
			ew.printf("%3d %s: %s\n", s.Index, s.Op, s.Outcome)
		}
		for _, c := range s.Changes {
			ew.printf("      %s\n", c)
		}
	}
	ew.printf("final version %d\n", t.FinalVersion)
	return ew.err
}

// WriteJSON renders t as indented JSON.
func WriteJSON(w io.Writer, t *Trace) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

// errWriter keeps the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
