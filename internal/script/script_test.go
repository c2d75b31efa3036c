package script

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KilimcininKorOglu/snapstore/internal/circuit"
	"github.com/KilimcininKorOglu/snapstore/internal/store"
)

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("name: x\nsteps:\n  - op: begin\n    colour: red\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidScript)
	assert.Contains(t, err.Error(), "colour")
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(nil)
	require.ErrorIs(t, err, ErrInvalidScript)
	assert.Contains(t, err.Error(), "empty document")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		script Script
		want   []string
	}{
		{
			name:   "no name or steps",
			script: Script{},
			want:   []string{"name is required", "no steps"},
		},
		{
			name:   "unknown op",
			script: Script{Name: "x", Steps: []Step{{Op: "explode"}}},
			want:   []string{`step 1: unknown op "explode"`},
		},
		{
			name: "missing fields",
			script: Script{Name: "x", Steps: []Step{
				{Op: "begin"},
				{Op: "add_pin", Circuit: "c"},
			}},
			want: []string{"step 2 (add_pin): missing gate", "step 2 (add_pin): missing name"},
		},
		{
			name: "bad pin address",
			script: Script{Name: "x", Steps: []Step{
				{Op: "connect", Circuit: "c", From: "g", To: "g.a.b"},
			}},
			want: []string{`pin address "g" is not gate.pin`, `pin address "g.a.b" is not gate.pin`},
		},
		{
			name: "unknown error kind",
			script: Script{Name: "x", Steps: []Step{
				{Op: "commit", Expect: "boom"},
			}},
			want: []string{`unknown error kind "boom"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.script.Validate()
			require.ErrorIs(t, err, ErrInvalidScript)
			for _, w := range tt.want {
				assert.Contains(t, err.Error(), w)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	sc, err := Load(filepath.Join("testdata", "scripts", "duplicate.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "duplicate", sc.Name)
	assert.Len(t, sc.Steps, 6)
	assert.Equal(t, KindUnique, sc.Steps[4].Expect)

	_, err = Load(filepath.Join("testdata", "scripts", "missing.yaml"))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestDemoParses(t *testing.T) {
	sc, err := Demo()
	require.NoError(t, err)
	assert.Equal(t, "half-adder", sc.Name)
	assert.Len(t, sc.Steps, 21)
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{store.ErrVersionRange, KindVersionRange},
		{fmt.Errorf("wrapped: %w", store.ErrUniqueConstraint), KindUnique},
		{store.ErrForeignKey, KindForeignKey},
		{store.ErrStaleReference, KindStaleReference},
		{circuit.ErrInvalidWire, KindInvalidWire},
		{circuit.ErrInvalidDirection, KindInvalidDirection},
		{store.ErrUsage, KindUsage},
		{errors.New("other"), KindOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorKind(tt.err), "%v", tt.err)
	}
}

func TestRunner_Demo(t *testing.T) {
	sc, err := Demo()
	require.NoError(t, err)

	trace, err := NewRunner(nil).Run(sc)
	require.NoError(t, err)
	assert.Equal(t, 6, trace.FinalVersion)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, trace))
	golden(t).Assert(t, "demo", buf.Bytes())
}

func TestRunner_JSONTrace(t *testing.T) {
	sc, err := Load(filepath.Join("testdata", "scripts", "duplicate.yaml"))
	require.NoError(t, err)

	trace, err := NewRunner(nil).Run(sc)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, trace, "json"))
	golden(t).Assert(t, "duplicate", buf.Bytes())
}

func TestRunner_UnexpectedError(t *testing.T) {
	sc := &Script{Name: "broken", Steps: []Step{
		{Op: "begin"},
		{Op: "add_gate", Circuit: "nowhere", Name: "g"},
		{Op: "commit"},
	}}

	trace, err := NewRunner(nil).Run(sc)
	require.Error(t, err)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 2, stepErr.Index)
	assert.Equal(t, "add_gate", stepErr.Op)
	assert.ErrorIs(t, err, store.ErrStaleReference)
	assert.NotErrorIs(t, err, ErrExpectation)

	require.NotNil(t, trace)
	assert.Len(t, trace.Steps, 1)
}

func TestRunner_MissingExpectedError(t *testing.T) {
	sc := &Script{Name: "calm", Steps: []Step{
		{Op: "begin"},
		{Op: "add_circuit", Name: "c", Expect: KindUnique},
	}}

	_, err := NewRunner(nil).Run(sc)
	require.ErrorIs(t, err, ErrExpectation)
	assert.Contains(t, err.Error(), "expected unique error, got none")
}

func TestRunner_WrongErrorKind(t *testing.T) {
	sc := &Script{Name: "wrong", Steps: []Step{
		{Op: "begin"},
		{Op: "add_gate", Circuit: "nowhere", Name: "g", Expect: KindUnique},
	}}

	_, err := NewRunner(nil).Run(sc)
	require.ErrorIs(t, err, ErrExpectation)
	assert.ErrorIs(t, err, store.ErrStaleReference)
}

func TestRunner_Outcomes(t *testing.T) {
	sc := &Script{Name: "outcomes", Steps: []Step{
		{Op: "undo"},
		{Op: "begin"},
		{Op: "begin", Expect: KindUsage},
		{Op: "add_circuit", Name: "c"},
		{Op: "add_gate", Circuit: "c", Name: "src"},
		{Op: "add_gate", Circuit: "c", Name: "dst"},
		{Op: "add_pin", Circuit: "c", Gate: "src", Name: "q", Dir: "out"},
		{Op: "add_pin", Circuit: "c", Gate: "dst", Name: "d"},
		{Op: "add_pin", Circuit: "c", Gate: "dst", Name: "x", Dir: "sideways", Expect: KindInvalidDirection},
		{Op: "connect", Circuit: "c", From: "dst.d", To: "src.q", Expect: KindInvalidWire},
		{Op: "connect", Circuit: "c", From: "src.q", To: "dst.d"},
		{Op: "connect", Circuit: "c", From: "src.q", To: "dst.d"},
		{Op: "rename_gate", Circuit: "c", Gate: "src", Name: "src"},
		{Op: "rename_pin", Circuit: "c", Gate: "dst", Pin: "d", Name: "in"},
		{Op: "delete_wire", Circuit: "c", From: "src.q", To: "dst.in"},
		{Op: "delete_wire", Circuit: "c", From: "src.q", To: "dst.in", Expect: KindStaleReference},
		{Op: "commit"},
		{Op: "redo"},
	}}

	trace, err := NewRunner(nil).Run(sc)
	require.NoError(t, err)

	outcomes := make([]string, len(trace.Steps))
	for i, s := range trace.Steps {
		outcomes[i] = s.Outcome
	}
	assert.Equal(t, []string{
		"nothing to undo",
		"ok",
		"usage (expected)",
		"ok", "ok", "ok", "ok", "ok",
		"invalid-direction (expected)",
		"invalid-wire (expected)",
		"ok", "ok",
		"unchanged",
		"ok",
		"2 removed",
		"stale-reference (expected)",
		"ok",
		"nothing to redo",
	}, outcomes)

	last := trace.Steps[16]
	assert.Equal(t, 1, last.Version)
	assert.Equal(t, 1, trace.FinalVersion)
}
