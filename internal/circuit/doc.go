// Package circuit declares the circuit editor schema on top of the store
// package and wraps it in typed helpers.
//
// The schema has four tables:
//
//	circuits  ID (auto), Name (unique)
//	gates     ID (auto), CircuitID -> circuits (cascade), Name, Kind
//	          unique (CircuitID, Name), index (CircuitID, Kind)
//	pins      ID (auto), GateID -> gates (cascade), Name, Direction
//	          unique (GateID, Name)
//	wires     ID (auto), CircuitID -> circuits (cascade),
//	          FromPin -> pins (set default, 0 allowed),
//	          ToPin -> pins (restrict), index (FromPin, ToPin)
//
// Deleting a circuit removes its gates, pins and wires. Deleting a pin
// leaves wires it drives dangling with FromPin 0, and is refused while a
// wire still ends at it.
//
// # Usage
//
//	m, err := circuit.Open()
//	if err != nil {
//	    return err
//	}
//	err = m.Transact(func() error {
//	    c, err := m.AddCircuit("half-adder")
//	    if err != nil {
//	        return err
//	    }
//	    _, err = m.AddGate(c, "xor1", "xor")
//	    return err
//	})
package circuit
