package circuit

import (
	"errors"
	"fmt"

	"github.com/KilimcininKorOglu/snapstore/internal/store"
)

// Pin directions.
const (
	DirIn  = "in"
	DirOut = "out"
)

// Table names.
const (
	TableCircuits = "circuits"
	TableGates    = "gates"
	TablePins     = "pins"
	TableWires    = "wires"
)

// Circuit errors.
var (
	// ErrInvalidWire reports a wire between pins of different circuits, or
	// one that does not run from an output to an input.
	ErrInvalidWire = errors.New("invalid wire")

	// ErrInvalidDirection reports a pin direction other than in or out.
	ErrInvalidDirection = errors.New("invalid pin direction")
)

// Circuit is a named schematic.
type Circuit struct {
	ID          int
	Name        string
	Description string
}

func (c Circuit) String() string {
	return fmt.Sprintf("id=%d name=%s", c.ID, c.Name)
}

// Gate is a logic element placed in a circuit.
type Gate struct {
	ID        int
	CircuitID int
	Name      string
	Kind      string
}

func (g Gate) String() string {
	return fmt.Sprintf("id=%d circuit=%d name=%s kind=%s", g.ID, g.CircuitID, g.Name, g.Kind)
}

// Pin is a connection point of a gate.
type Pin struct {
	ID        int
	GateID    int
	Name      string
	Direction string
}

func (p Pin) String() string {
	return fmt.Sprintf("id=%d gate=%d name=%s dir=%s", p.ID, p.GateID, p.Name, p.Direction)
}

// Wire connects an output pin to an input pin. FromPin is 0 once its
// driver was deleted.
type Wire struct {
	ID        int
	CircuitID int
	FromPin   int
	ToPin     int
}

func (w Wire) String() string {
	return fmt.Sprintf("id=%d circuit=%d from=%d to=%d", w.ID, w.CircuitID, w.FromPin, w.ToPin)
}

// fields holds the column descriptors of one schema instance.
type fields struct {
	circuitID   *store.Field[Circuit, int]
	circuitName *store.Field[Circuit, string]
	circuitDesc *store.Field[Circuit, string]

	gateID      *store.Field[Gate, int]
	gateCircuit *store.Field[Gate, int]
	gateName    *store.Field[Gate, string]
	gateKind    *store.Field[Gate, string]

	pinID   *store.Field[Pin, int]
	pinGate *store.Field[Pin, int]
	pinName *store.Field[Pin, string]
	pinDir  *store.Field[Pin, string]

	wireID      *store.Field[Wire, int]
	wireCircuit *store.Field[Wire, int]
	wireFrom    *store.Field[Wire, int]
	wireTo      *store.Field[Wire, int]
}

func newFields() *fields {
	return &fields{
		circuitID:   store.NewField("ID", func(r *Circuit) int { return r.ID }, func(r *Circuit, v int) { r.ID = v }),
		circuitName: store.NewField("Name", func(r *Circuit) string { return r.Name }, func(r *Circuit, v string) { r.Name = v }),
		circuitDesc: store.NewField("Description", func(r *Circuit) string { return r.Description }, func(r *Circuit, v string) { r.Description = v }),

		gateID:      store.NewField("ID", func(r *Gate) int { return r.ID }, func(r *Gate, v int) { r.ID = v }),
		gateCircuit: store.NewField("CircuitID", func(r *Gate) int { return r.CircuitID }, func(r *Gate, v int) { r.CircuitID = v }),
		gateName:    store.NewField("Name", func(r *Gate) string { return r.Name }, func(r *Gate, v string) { r.Name = v }),
		gateKind:    store.NewField("Kind", func(r *Gate) string { return r.Kind }, func(r *Gate, v string) { r.Kind = v }).WithDefault("buf"),

		pinID:   store.NewField("ID", func(r *Pin) int { return r.ID }, func(r *Pin, v int) { r.ID = v }),
		pinGate: store.NewField("GateID", func(r *Pin) int { return r.GateID }, func(r *Pin, v int) { r.GateID = v }),
		pinName: store.NewField("Name", func(r *Pin) string { return r.Name }, func(r *Pin, v string) { r.Name = v }),
		pinDir:  store.NewField("Direction", func(r *Pin) string { return r.Direction }, func(r *Pin, v string) { r.Direction = v }).WithDefault(DirIn),

		wireID:      store.NewField("ID", func(r *Wire) int { return r.ID }, func(r *Wire, v int) { r.ID = v }),
		wireCircuit: store.NewField("CircuitID", func(r *Wire) int { return r.CircuitID }, func(r *Wire, v int) { r.CircuitID = v }),
		wireFrom:    store.NewField("FromPin", func(r *Wire) int { return r.FromPin }, func(r *Wire, v int) { r.FromPin = v }),
		wireTo:      store.NewField("ToPin", func(r *Wire) int { return r.ToPin }, func(r *Wire, v int) { r.ToPin = v }),
	}
}

// Model is the circuit schema seen through one store snapshot.
type Model struct {
	snap *store.StoreSnapshot
	f    *fields

	Circuits *store.TableSnapshot[Circuit]
	Gates    *store.TableSnapshot[Gate]
	Pins     *store.TableSnapshot[Pin]
	Wires    *store.TableSnapshot[Wire]
}

// Open creates a store, declares the circuit schema and freezes it.
func Open(opts ...store.Option) (*Model, error) {
	s := store.New(opts...)
	f := newFields()
	m := &Model{snap: s, f: f}

	var err error
	if m.Circuits, err = store.CreateTable[Circuit](s, TableCircuits, f.circuitID, f.circuitName, f.circuitDesc); err != nil {
		return nil, err
	}
	if m.Gates, err = store.CreateTable[Gate](s, TableGates, f.gateID, f.gateCircuit, f.gateName, f.gateKind); err != nil {
		return nil, err
	}
	if m.Pins, err = store.CreateTable[Pin](s, TablePins, f.pinID, f.pinGate, f.pinName, f.pinDir); err != nil {
		return nil, err
	}
	if m.Wires, err = store.CreateTable[Wire](s, TableWires, f.wireID, f.wireCircuit, f.wireFrom, f.wireTo); err != nil {
		return nil, err
	}

	steps := []func() error{
		func() error { return store.MakeAutoUnique(m.Circuits, "pk_circuit", f.circuitID) },
		func() error { return store.MakeUnique(m.Circuits, "ux_circuit_name", f.circuitName) },

		func() error { return store.MakeAutoUnique(m.Gates, "pk_gate", f.gateID) },
		func() error { return store.MakeUnique2(m.Gates, "ux_gate_name", f.gateCircuit, f.gateName) },
		func() error { return store.CreateIndex2(m.Gates, "ix_gate_kind", f.gateCircuit, f.gateKind) },

		func() error { return store.MakeAutoUnique(m.Pins, "pk_pin", f.pinID) },
		func() error { return store.MakeUnique2(m.Pins, "ux_pin_name", f.pinGate, f.pinName) },

		func() error { return store.MakeAutoUnique(m.Wires, "pk_wire", f.wireID) },
		func() error { return store.CreateIndex2(m.Wires, "ix_wire_ends", f.wireFrom, f.wireTo) },

		func() error {
			return store.CreateForeignKey("gate_circuit", m.Gates, f.gateCircuit, m.Circuits, store.Cascade, false)
		},
		func() error {
			return store.CreateForeignKey("wire_circuit", m.Wires, f.wireCircuit, m.Circuits, store.Cascade, false)
		},
		func() error {
			return store.CreateForeignKey("pin_gate", m.Pins, f.pinGate, m.Gates, store.Cascade, false)
		},
		func() error {
			return store.CreateForeignKey("wire_from", m.Wires, f.wireFrom, m.Pins, store.SetDefault, true)
		},
		func() error {
			return store.CreateForeignKey("wire_to", m.Wires, f.wireTo, m.Pins, store.Restrict, false)
		},
		s.FreezeShape,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, fmt.Errorf("declare circuit schema: %w", err)
		}
	}
	return m, nil
}

// Reader returns a model over a new snapshot pinned at the version of m.
func (m *Model) Reader() (*Model, error) {
	s, err := store.NewSnapshot(m.snap)
	if err != nil {
		return nil, err
	}
	return bind(s, m.f)
}

func bind(s *store.StoreSnapshot, f *fields) (*Model, error) {
	m := &Model{snap: s, f: f}
	var err error
	if m.Circuits, err = store.OpenTable[Circuit](s, TableCircuits); err != nil {
		return nil, err
	}
	if m.Gates, err = store.OpenTable[Gate](s, TableGates); err != nil {
		return nil, err
	}
	if m.Pins, err = store.OpenTable[Pin](s, TablePins); err != nil {
		return nil, err
	}
	if m.Wires, err = store.OpenTable[Wire](s, TableWires); err != nil {
		return nil, err
	}
	return m, nil
}

// Snapshot returns the underlying store snapshot.
func (m *Model) Snapshot() *store.StoreSnapshot {
	return m.snap
}

// Transact runs fn in a transaction; see store.Transact.
func (m *Model) Transact(fn func() error) error {
	return store.Transact(m.snap, fn)
}

// Close closes the underlying snapshot.
func (m *Model) Close() error {
	return m.snap.Close()
}
