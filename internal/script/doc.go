// Package script runs YAML edit scripts against a circuit model and
// records the net changes of every version they publish.
//
// A script is a named list of steps:
//
//	name: half-adder
//	steps:
//	  - op: begin
//	  - op: add_circuit
//	    name: half-adder
//	  - op: add_gate
//	    circuit: half-adder
//	    name: sum
//	    kind: xor
//	  - op: commit
//	  - op: undo
//
// Steps that are meant to fail name the error kind they expect with
// "expect". Unknown keys are rejected when the script is parsed.
package script
