package circuit

import (
	"fmt"
	"iter"

	"github.com/KilimcininKorOglu/snapstore/internal/store"
)

// CircuitByName returns the circuit called name, or store.Empty.
func (m *Model) CircuitByName(name string) (store.RowHandle, error) {
	return store.Find(m.Circuits, m.f.circuitName, name)
}

// GateByName returns the gate called name in circuit c, or store.Empty.
func (m *Model) GateByName(c store.RowHandle, name string) (store.RowHandle, error) {
	id, err := store.GetField(m.Circuits, c, m.f.circuitID)
	if err != nil {
		return store.Empty, err
	}
	return store.Find2(m.Gates, m.f.gateCircuit, id, m.f.gateName, name)
}

// PinByName returns the pin called name on gate g, or store.Empty.
func (m *Model) PinByName(g store.RowHandle, name string) (store.RowHandle, error) {
	id, err := store.GetField(m.Gates, g, m.f.gateID)
	if err != nil {
		return store.Empty, err
	}
	return store.Find2(m.Pins, m.f.pinGate, id, m.f.pinName, name)
}

// ResolvePin finds a pin from a circuit name, gate name and pin name.
// Missing elements are reported as stale references.
func (m *Model) ResolvePin(circuitName, gateName, pinName string) (store.RowHandle, error) {
	g, err := m.ResolveGate(circuitName, gateName)
	if err != nil {
		return store.Empty, err
	}
	p, err := m.PinByName(g, pinName)
	if err != nil {
		return store.Empty, err
	}
	if p == store.Empty {
		return store.Empty, fmt.Errorf("%w: no pin %s.%s in %s", store.ErrStaleReference, gateName, pinName, circuitName)
	}
	return p, nil
}

// ResolveGate finds a gate from a circuit name and gate name.
func (m *Model) ResolveGate(circuitName, gateName string) (store.RowHandle, error) {
	c, err := m.ResolveCircuit(circuitName)
	if err != nil {
		return store.Empty, err
	}
	g, err := m.GateByName(c, gateName)
	if err != nil {
		return store.Empty, err
	}
	if g == store.Empty {
		return store.Empty, fmt.Errorf("%w: no gate %s in %s", store.ErrStaleReference, gateName, circuitName)
	}
	return g, nil
}

// ResolveCircuit finds a circuit by name.
func (m *Model) ResolveCircuit(name string) (store.RowHandle, error) {
	c, err := m.CircuitByName(name)
	if err != nil {
		return store.Empty, err
	}
	if c == store.Empty {
		return store.Empty, fmt.Errorf("%w: no circuit %s", store.ErrStaleReference, name)
	}
	return c, nil
}

// GatesOf returns the gates of circuit c.
func (m *Model) GatesOf(c store.RowHandle) (iter.Seq[store.RowHandle], error) {
	id, err := store.GetField(m.Circuits, c, m.f.circuitID)
	if err != nil {
		return nil, err
	}
	return store.Select(m.Gates, m.f.gateCircuit, id), nil
}

// GatesOfKind returns the gates of circuit c with the given kind.
func (m *Model) GatesOfKind(c store.RowHandle, kind string) (iter.Seq[store.RowHandle], error) {
	id, err := store.GetField(m.Circuits, c, m.f.circuitID)
	if err != nil {
		return nil, err
	}
	return store.Select2(m.Gates, m.f.gateCircuit, id, m.f.gateKind, kind), nil
}

// PinsOf returns the pins of gate g.
func (m *Model) PinsOf(g store.RowHandle) (iter.Seq[store.RowHandle], error) {
	id, err := store.GetField(m.Gates, g, m.f.gateID)
	if err != nil {
		return nil, err
	}
	return store.Select(m.Pins, m.f.pinGate, id), nil
}

// WiresOf returns the wires of circuit c.
func (m *Model) WiresOf(c store.RowHandle) (iter.Seq[store.RowHandle], error) {
	id, err := store.GetField(m.Circuits, c, m.f.circuitID)
	if err != nil {
		return nil, err
	}
	return store.Select(m.Wires, m.f.wireCircuit, id), nil
}

// Fanout returns the wires driven by pin p.
func (m *Model) Fanout(p store.RowHandle) (iter.Seq[store.RowHandle], error) {
	id, err := store.GetField(m.Pins, p, m.f.pinID)
	if err != nil {
		return nil, err
	}
	return store.Select(m.Wires, m.f.wireFrom, id), nil
}

// WiresBetween returns the wires from pin from to pin to.
func (m *Model) WiresBetween(from, to store.RowHandle) (iter.Seq[store.RowHandle], error) {
	fromID, err := store.GetField(m.Pins, from, m.f.pinID)
	if err != nil {
		return nil, err
	}
	toID, err := store.GetField(m.Pins, to, m.f.pinID)
	if err != nil {
		return nil, err
	}
	return store.Select2(m.Wires, m.f.wireFrom, fromID, m.f.wireTo, toID), nil
}

// Dangling returns the wires whose driver was deleted.
func (m *Model) Dangling() iter.Seq[store.RowHandle] {
	return store.Select(m.Wires, m.f.wireFrom, 0)
}
