package script

import (
	"errors"
	"fmt"

	"github.com/KilimcininKorOglu/snapstore/internal/circuit"
	"github.com/KilimcininKorOglu/snapstore/internal/logging"
	"github.com/KilimcininKorOglu/snapstore/internal/store"
)

// ErrExpectation reports a step whose outcome differs from its expect key.
var ErrExpectation = errors.New("unexpected step outcome")

// StepError is returned by Run when a step fails unexpectedly or does not
// fail as expected.
type StepError struct {
	Index    int
	Op       string
	Expected string
	Err      error
}

func (e *StepError) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("step %d (%s): expected %s error, got none", e.Index, e.Op, e.Expected)
	case e.Expected != "":
		return fmt.Sprintf("step %d (%s): expected %s error, got %s: %v", e.Index, e.Op, e.Expected, ErrorKind(e.Err), e.Err)
	default:
		return fmt.Sprintf("step %d (%s): %v", e.Index, e.Op, e.Err)
	}
}

func (e *StepError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExpectation}
	}
	if e.Expected != "" {
		return []error{ErrExpectation, e.Err}
	}
	return []error{e.Err}
}

// Runner executes scripts against fresh circuit models.
type Runner struct {
	logger logging.Logger
	opts   []store.Option
}

// NewRunner creates a runner. opts are passed to every store it opens.
func NewRunner(logger logging.Logger, opts ...store.Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{logger: logger, opts: opts}
}

// run is the state of one script execution.
type run struct {
	m      *circuit.Model
	logger logging.Logger

	// published collects versions announced by the model snapshot while a
	// step runs.
	published []int
}

// Run executes sc and returns its trace. On a failing step the trace up
// to that step is returned together with a *StepError.
func (r *Runner) Run(sc *Script) (*Trace, error) {
	opts := append([]store.Option{store.WithLogger(r.logger)}, r.opts...)
	m, err := circuit.Open(opts...)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	x := &run{m: m, logger: r.logger.WithFields("script", sc.Name)}
	m.Snapshot().OnVersionChanged(func(_, newVersion int) {
		x.published = append(x.published, newVersion)
	})

	trace := &Trace{Script: sc.Name}
	for i, step := range sc.Steps {
		x.published = x.published[:0]
		res := StepResult{Index: i + 1, Op: step.Op}

		outcome, err := x.exec(step)
		kind := ErrorKind(err)
		switch {
		case step.Expect == "" && err != nil:
			x.logger.Warn("step failed", "step", res.Index, "op", step.Op, "error", err)
			return trace, &StepError{Index: res.Index, Op: step.Op, Err: err}
		case step.Expect != "" && kind != step.Expect:
			return trace, &StepError{Index: res.Index, Op: step.Op, Expected: step.Expect, Err: err}
		case err != nil:
			res.Outcome = kind + " (expected)"
		default:
			res.Outcome = outcome
		}

		for _, v := range x.published {
			changes, err := m.Changes(v)
			if err != nil {
				return trace, &StepError{Index: res.Index, Op: step.Op, Err: err}
			}
			res.Version = v
			res.Changes = changes
		}
		x.logger.Debug("step done", "step", res.Index, "op", step.Op, "outcome", res.Outcome)
		trace.Steps = append(trace.Steps, res)
	}
	trace.FinalVersion = m.Snapshot().Version()
	return trace, nil
}

// exec runs one step and returns its outcome text.
func (x *run) exec(step Step) (string, error) {
	m := x.m
	s := m.Snapshot()

	switch step.Op {
	case "begin":
		ok, err := s.StartTransaction()
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("%w: a transaction is already open", store.ErrUsage)
		}
		return "ok", nil
	case "commit":
		return "ok", s.Commit()
	case "rollback":
		return "rolled back", s.Rollback()
	case "undo":
		ok, err := s.Undo()
		return noop(ok, "nothing to undo"), err
	case "redo":
		ok, err := s.Redo()
		return noop(ok, "nothing to redo"), err

	case "add_circuit":
		_, err := m.AddCircuit(step.Name)
		return "ok", err
	case "add_gate":
		c, err := m.ResolveCircuit(step.Circuit)
		if err != nil {
			return "", err
		}
		_, err = m.AddGate(c, step.Name, step.Kind)
		return "ok", err
	case "add_pin":
		g, err := m.ResolveGate(step.Circuit, step.Gate)
		if err != nil {
			return "", err
		}
		_, err = m.AddPin(g, step.Name, step.Dir)
		return "ok", err
	case "connect":
		from, to, err := x.ends(step)
		if err != nil {
			return "", err
		}
		_, err = m.Connect(from, to)
		return "ok", err

	case "delete_circuit":
		c, err := m.ResolveCircuit(step.Circuit)
		if err != nil {
			return "", err
		}
		return "ok", m.DeleteCircuit(c)
	case "delete_gate":
		g, err := m.ResolveGate(step.Circuit, step.Gate)
		if err != nil {
			return "", err
		}
		return "ok", m.DeleteGate(g)
	case "delete_pin":
		p, err := m.ResolvePin(step.Circuit, step.Gate, step.Pin)
		if err != nil {
			return "", err
		}
		return "ok", m.DeletePin(p)
	case "delete_wire":
		return x.deleteWires(step)

	case "rename_circuit":
		c, err := m.ResolveCircuit(step.Circuit)
		if err != nil {
			return "", err
		}
		ok, err := m.RenameCircuit(c, step.Name)
		return noop(ok, "unchanged"), err
	case "rename_gate":
		g, err := m.ResolveGate(step.Circuit, step.Gate)
		if err != nil {
			return "", err
		}
		ok, err := m.RenameGate(g, step.Name)
		return noop(ok, "unchanged"), err
	case "rename_pin":
		p, err := m.ResolvePin(step.Circuit, step.Gate, step.Pin)
		if err != nil {
			return "", err
		}
		ok, err := m.RenamePin(p, step.Name)
		return noop(ok, "unchanged"), err
	}
	return "", fmt.Errorf("%w: unknown op %q", ErrInvalidScript, step.Op)
}

func noop(ok bool, msg string) string {
	if ok {
		return "ok"
	}
	return msg
}

// ends resolves the From and To pins of step.
func (x *run) ends(step Step) (from, to store.RowHandle, err error) {
	fromGate, fromPin, err := splitPin(step.From)
	if err != nil {
		return store.Empty, store.Empty, err
	}
	toGate, toPin, err := splitPin(step.To)
	if err != nil {
		return store.Empty, store.Empty, err
	}
	if from, err = x.m.ResolvePin(step.Circuit, fromGate, fromPin); err != nil {
		return store.Empty, store.Empty, err
	}
	if to, err = x.m.ResolvePin(step.Circuit, toGate, toPin); err != nil {
		return store.Empty, store.Empty, err
	}
	return from, to, nil
}

// deleteWires removes every wire between the From and To pins of step.
func (x *run) deleteWires(step Step) (string, error) {
	from, to, err := x.ends(step)
	if err != nil {
		return "", err
	}
	wires, err := x.m.WiresBetween(from, to)
	if err != nil {
		return "", err
	}
	var found []store.RowHandle
	for w := range wires {
		found = append(found, w)
	}
	if len(found) == 0 {
		return "", fmt.Errorf("%w: no wire from %s to %s", store.ErrStaleReference, step.From, step.To)
	}
	for _, w := range found {
		if err := x.m.DeleteWire(w); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%d removed", len(found)), nil
}
