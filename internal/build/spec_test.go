// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package build

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/buildgrid/internal/command"
	"github.com/specialistvlad/buildgrid/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// modeRecorder records the mode it was converted in.
type modeRecorder struct {
	mu   sync.Mutex
	seen []schema.Mode
}

func (p *modeRecorder) ToSchema(sc schema.Scope) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, sc.Mode())
	return sc.Mode().String(), nil
}

func (p *modeRecorder) last() schema.Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seen[len(p.seen)-1]
}

// region converts its value in a fixed mode, the way a spec converts a field
// group, and records the mode of the scope it was given after the nested
// conversion returned.
type region struct {
	mode  schema.Mode
	value any
	after schema.Mode
}

func (r *region) ToSchema(sc schema.Scope) (any, error) {
	inner := sc.WithMode(r.mode)
	v, err := inner.Convert(r.value)
	r.after = inner.Mode()
	return v, err
}

type errConverter struct{ err error }

func (e errConverter) ToSchema(schema.Scope) (any, error) { return nil, e.err }

func convert(t *testing.T, s *Spec) map[string]any {
	t.Helper()
	doc, err := schema.ConvertRoot(s)
	require.NoError(t, err)
	obj, ok := doc.Root.(map[string]any)
	require.True(t, ok, "root should be an object, got %T", doc.Root)
	return obj
}

func TestSpec_ModeScoping(t *testing.T) {
	// --- Arrange ---
	inP, outP, inoutP, readyP := &modeRecorder{}, &modeRecorder{}, &modeRecorder{}, &modeRecorder{}
	s := NewSpec(Args{
		Inp:   map[string]any{"p": inP},
		Out:   map[string]any{"p": outP},
		InOut: map[string]any{"p": inoutP},
		Ready: map[string]any{"p": readyP},
	})

	// --- Act ---
	obj := convert(t, s)

	// --- Assert ---
	assert.Equal(t, schema.Input, inP.last())
	assert.Equal(t, schema.Output, outP.last())
	assert.Equal(t, schema.Output, inoutP.last(), "in/out values are converted as outputs")
	assert.Equal(t, schema.Output, readyP.last(), "preconditions are converted as outputs")
	assert.Equal(t, map[string]any{"p": "input"}, obj["inp"])
	assert.Equal(t, map[string]any{"p": "output"}, obj["ready"])
}

func TestSpec_ModeRestoration(t *testing.T) {
	// --- Arrange ---
	cmdP, inP := &modeRecorder{}, &modeRecorder{}
	inner := NewSpec(Args{Inp: map[string]any{"p": inP}}).
		Command(func(x command.Invocation) *command.Command {
			return x.Cmd("run", cmdP)
		})
	outer := &region{mode: schema.Input, value: inner}

	// --- Act ---
	_, err := schema.ConvertRoot(outer)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, schema.Input, outer.after, "the enclosing region keeps its mode")
	assert.Equal(t, schema.Input, cmdP.last(), "the command is converted in the enclosing mode")
	assert.Equal(t, schema.Input, inP.last())
}

func TestSpec_CommandUsesCallerMode(t *testing.T) {
	t.Run("top level", func(t *testing.T) {
		s := NewSpec(Args{
			Inp: map[string]any{"src": NewFile("main.c")},
			Out: map[string]any{"bin": NewFile("main")},
		}).Command(func(x command.Invocation) *command.Command {
			return x.Cmd("cc", "-o", NewFile("main"), x.Inp)
		})

		obj := convert(t, s)

		assert.Equal(t, map[string]any{"src": map[string]any{"file": "main.c"}}, obj["inp"])
		assert.Equal(t, map[string]any{"bin": map[string]any{"output": "main"}}, obj["out"])
		assert.Equal(t, map[string]any{
			"exec": []any{"cc", "-o", "main", map[string]any{"$ref": "inp"}},
		}, obj["command"])
	})

	t.Run("nested in an input region", func(t *testing.T) {
		s := NewSpec(Args{}).Command(func(x command.Invocation) *command.Command {
			return x.Cmd("cat", NewFile("notes.txt"))
		})
		outer := &region{mode: schema.Input, value: s}

		doc, err := schema.ConvertRoot(outer)

		require.NoError(t, err)
		obj := doc.Root.(map[string]any)
		assert.Equal(t, map[string]any{
			"exec": []any{"cat", map[string]any{"file": "notes.txt"}},
		}, obj["command"])
		assert.Equal(t, schema.Input, outer.after)
	})
}

func TestSpec_SparseOmission(t *testing.T) {
	s := NewSpec(Args{Inp: map[string]any{"a": 0, "b": "", "c": "x", "d": nil, "e": false}})

	obj := convert(t, s)

	assert.Equal(t, map[string]any{"c": "x"}, obj["inp"])
}

func TestSpec_OptionalFieldOmission(t *testing.T) {
	obj := convert(t, NewSpec(Args{}))

	_, hasCommand := obj["command"]
	_, hasRuntime := obj["runtime"]
	assert.False(t, hasCommand)
	assert.False(t, hasRuntime)

	obj = convert(t, NewSpec(Args{}).Runtime("./runtime/exec.so"))
	assert.Equal(t, "./runtime/exec.so", obj["runtime"])
}

func TestSpec_EndToEnd(t *testing.T) {
	s := NewSpec(Args{
		Key: []string{"build", "foo"},
		Inp: map[string]any{"src": "main.x"},
		Out: map[string]any{"bin": "main.out"},
	})

	obj := convert(t, s)

	expected := map[string]any{
		"key":   []string{"build", "foo"},
		"inp":   map[string]any{"src": "main.x"},
		"out":   map[string]any{"bin": "main.out"},
		"inout": map[string]any{},
		"ready": map[string]any{},
	}
	if diff := cmp.Diff(expected, obj); diff != "" {
		t.Errorf("unexpected document (-want +got):\n%s", diff)
	}
}

func TestSpec_IdempotentShape(t *testing.T) {
	s := NewSpec(Args{
		Key:   []string{"pkg", "lib"},
		Inp:   map[string]any{"src": NewFile("lib.c"), "opt": 2},
		Out:   map[string]any{"obj": NewFile("lib.o")},
		InOut: map[string]any{"db": NewFile("state.db")},
		Ready: map[string]any{"online": true},
	}).Runtime("rt").Command(func(x command.Invocation) *command.Command {
		return x.Sh("cc -c $1 -o $2", x.Inp, x.Out)
	})

	first := convert(t, s)
	second := convert(t, s)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("conversions differ (-first +second):\n%s", diff)
	}
}

func TestSpec_BuilderMergesLastWriteWins(t *testing.T) {
	s := NewSpec(Args{Inp: map[string]any{"a": "1", "b": "2"}})

	same := s.In(map[string]any{"b": "3", "c": "4"}).
		Out(map[string]any{"o": "x"}).
		InOut(map[string]any{"io": "y"}).
		Ready(map[string]any{"r": "z"})

	require.Same(t, s, same)
	obj := convert(t, s)
	assert.Equal(t, map[string]any{"a": "1", "b": "3", "c": "4"}, obj["inp"])
	assert.Equal(t, map[string]any{"o": "x"}, obj["out"])
	assert.Equal(t, map[string]any{"io": "y"}, obj["inout"])
	assert.Equal(t, map[string]any{"r": "z"}, obj["ready"])
}

func TestSpec_NewSpecCopiesArgs(t *testing.T) {
	in := map[string]any{"a": "1"}
	s := NewSpec(Args{Inp: in, Key: []string{"k"}})

	in["a"] = "changed"

	obj := convert(t, s)
	assert.Equal(t, map[string]any{"a": "1"}, obj["inp"])
	assert.Equal(t, []string{"k"}, s.Key())
}

func TestSpec_NestedErrorPropagates(t *testing.T) {
	boom := errors.New("malformed command")
	s := NewSpec(Args{Out: map[string]any{"x": errConverter{err: boom}}})

	doc, err := schema.ConvertRoot(s)

	assert.Nil(t, doc)
	assert.Same(t, boom, err)
}

func TestSpec_EmptyCommandFailsConversion(t *testing.T) {
	s := NewSpec(Args{}).Command(func(x command.Invocation) *command.Command {
		return x.Cmd()
	})

	_, err := schema.ConvertRoot(s)

	require.ErrorIs(t, err, command.ErrEmptyCommand)
	assert.True(t, s.HasCommand())
}

func TestSpec_NilValuesOutsideFieldGroups(t *testing.T) {
	// --- Arrange ---
	var missing *File
	s := NewSpec(Args{}).Command(func(x command.Invocation) *command.Command {
		return x.Cmd("cc", missing).Env("CFLAGS", missing)
	})

	// --- Act ---
	var doc *schema.Schema
	var err error
	require.NotPanics(t, func() { doc, err = schema.ConvertRoot(s) })

	// --- Assert ---
	require.NoError(t, err)
	root := doc.Root.(map[string]any)
	assert.Equal(t, map[string]any{
		"exec": []any{"cc", nil},
		"env":  map[string]any{"CFLAGS": nil},
	}, root["command"])

	var nilSpec *Spec
	_, err = schema.ConvertRoot(nilSpec)
	require.ErrorIs(t, err, schema.ErrNilRoot)
}

func TestSpec_SelfContainmentIsACycle(t *testing.T) {
	s := NewSpec(Args{})
	s.In(map[string]any{"self": s})

	_, err := schema.ConvertRoot(s)

	require.ErrorIs(t, err, schema.ErrCycle)
}

func TestSpec_ConcurrentConversionsAndBuilders(t *testing.T) {
	s := NewSpec(Args{Inp: map[string]any{"src": NewFile("a.c")}})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := schema.ConvertRoot(s)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			s.Out(map[string]any{"bin": NewFile("a.out")})
		}()
	}
	wg.Wait()

	obj := convert(t, s)
	assert.Equal(t, map[string]any{"bin": map[string]any{"output": "a.out"}}, obj["out"])
}
