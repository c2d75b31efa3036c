package circuit

import (
	"fmt"

	"github.com/KilimcininKorOglu/snapstore/internal/store"
)

// AddCircuit inserts a circuit named name.
func (m *Model) AddCircuit(name string) (store.RowHandle, error) {
	return m.Circuits.Insert(Circuit{Name: name})
}

// AddGate inserts a gate into circuit c. An empty kind becomes "buf".
func (m *Model) AddGate(c store.RowHandle, name, kind string) (store.RowHandle, error) {
	id, err := store.GetField(m.Circuits, c, m.f.circuitID)
	if err != nil {
		return store.Empty, err
	}
	return m.Gates.Insert(Gate{CircuitID: id, Name: name, Kind: kind})
}

// AddPin inserts a pin on gate g. An empty direction becomes "in".
func (m *Model) AddPin(g store.RowHandle, name, dir string) (store.RowHandle, error) {
	if dir != "" && dir != DirIn && dir != DirOut {
		return store.Empty, fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}
	id, err := store.GetField(m.Gates, g, m.f.gateID)
	if err != nil {
		return store.Empty, err
	}
	return m.Pins.Insert(Pin{GateID: id, Name: name, Direction: dir})
}

// Connect wires output pin from to input pin to. Both pins must belong to
// gates of the same circuit.
func (m *Model) Connect(from, to store.RowHandle) (store.RowHandle, error) {
	src, err := m.Pins.GetData(from)
	if err != nil {
		return store.Empty, err
	}
	dst, err := m.Pins.GetData(to)
	if err != nil {
		return store.Empty, err
	}
	if src.Direction != DirOut || dst.Direction != DirIn {
		return store.Empty, fmt.Errorf("%w: %s pin %s cannot drive %s pin %s", ErrInvalidWire, src.Direction, src.Name, dst.Direction, dst.Name)
	}

	srcCircuit, err := m.circuitOfGate(src.GateID)
	if err != nil {
		return store.Empty, err
	}
	dstCircuit, err := m.circuitOfGate(dst.GateID)
	if err != nil {
		return store.Empty, err
	}
	if srcCircuit != dstCircuit {
		return store.Empty, fmt.Errorf("%w: pins %s and %s are in different circuits", ErrInvalidWire, src.Name, dst.Name)
	}
	return m.Wires.Insert(Wire{CircuitID: srcCircuit, FromPin: src.ID, ToPin: dst.ID})
}

func (m *Model) circuitOfGate(gateID int) (int, error) {
	g, err := store.Find(m.Gates, m.f.gateID, gateID)
	if err != nil {
		return 0, err
	}
	if g == store.Empty {
		return 0, fmt.Errorf("%w: gate %d", store.ErrStaleReference, gateID)
	}
	return store.GetField(m.Gates, g, m.f.gateCircuit)
}

// DeleteCircuit removes circuit c with its gates, pins and wires.
func (m *Model) DeleteCircuit(c store.RowHandle) error {
	return m.Circuits.Delete(c)
}

// DeleteGate removes gate g and its pins.
func (m *Model) DeleteGate(g store.RowHandle) error {
	return m.Gates.Delete(g)
}

// DeletePin removes pin p. Wires it drives keep a FromPin of 0; it fails
// while a wire ends at p.
func (m *Model) DeletePin(p store.RowHandle) error {
	return m.Pins.Delete(p)
}

// DeleteWire removes wire w.
func (m *Model) DeleteWire(w store.RowHandle) error {
	return m.Wires.Delete(w)
}

// RenameCircuit renames circuit c. It returns false when the name is
// unchanged.
func (m *Model) RenameCircuit(c store.RowHandle, name string) (bool, error) {
	return store.SetField(m.Circuits, c, m.f.circuitName, name)
}

// RenameGate renames gate g within its circuit.
func (m *Model) RenameGate(g store.RowHandle, name string) (bool, error) {
	return store.SetField(m.Gates, g, m.f.gateName, name)
}

// RenamePin renames pin p within its gate.
func (m *Model) RenamePin(p store.RowHandle, name string) (bool, error) {
	return store.SetField(m.Pins, p, m.f.pinName, name)
}

// Describe sets the description of circuit c.
func (m *Model) Describe(c store.RowHandle, text string) (bool, error) {
	return store.SetField(m.Circuits, c, m.f.circuitDesc, text)
}
