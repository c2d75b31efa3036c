package circuit

import (
	"fmt"

	"github.com/KilimcininKorOglu/snapstore/internal/store"
)

// Change is one net row change of a version, rendered for display.
type Change struct {
	Table  string `json:"table"`
	Action string `json:"action"`
	Row    int    `json:"row"`
	Old    string `json:"old,omitempty"`
	New    string `json:"new,omitempty"`
}

func (c Change) String() string {
	switch {
	case c.Old == "":
		return fmt.Sprintf("%s %s #%d {%s}", c.Table, c.Action, c.Row, c.New)
	case c.New == "":
		return fmt.Sprintf("%s %s #%d {%s}", c.Table, c.Action, c.Row, c.Old)
	default:
		return fmt.Sprintf("%s %s #%d {%s} -> {%s}", c.Table, c.Action, c.Row, c.Old, c.New)
	}
}

// Changes returns the net changes of version in table order: circuits,
// gates, pins, wires.
func (m *Model) Changes(version int) ([]Change, error) {
	var out []Change
	var err error
	if out, err = appendChanges(out, m.Circuits, version); err != nil {
		return nil, err
	}
	if out, err = appendChanges(out, m.Gates, version); err != nil {
		return nil, err
	}
	if out, err = appendChanges(out, m.Pins, version); err != nil {
		return nil, err
	}
	if out, err = appendChanges(out, m.Wires, version); err != nil {
		return nil, err
	}
	return out, nil
}

func appendChanges[R fmt.Stringer](out []Change, ts *store.TableSnapshot[R], version int) ([]Change, error) {
	seq, err := ts.GetChanges(version)
	if err != nil {
		return nil, fmt.Errorf("%s changes at version %d: %w", ts.Name(), version, err)
	}
	if seq == nil {
		return out, nil
	}
	for c := range seq {
		ch := Change{Table: ts.Name(), Action: c.Action.String(), Row: int(c.Handle)}
		if old, ok := c.Old(); ok {
			ch.Old = old.String()
		}
		if cur, ok := c.New(); ok {
			ch.New = cur.String()
		}
		out = append(out, ch)
	}
	return out, nil
}
