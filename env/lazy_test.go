package env_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/javabind/env"
)

func TestCompound_LeftmostWins(t *testing.T) {
	a := env.NewSimple(map[string]int{"x": 1})
	b := env.NewSimple(map[string]int{"x": 2, "y": 9})
	c := env.NewCompound[string, int](a, b)

	v, ok, err := c.Get("x")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok, err = c.Get("y")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 9, v)

	_, ok, err = c.Get("z")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestLazy_MemoizesAfterFirstCompletion(t *testing.T) {
	calls := 0
	completers := map[string]env.Completer[string, int]{
		"a": func(sym string) (int, error) {
			calls++
			return 42, nil
		},
	}
	l := env.NewLazy[string, int](completers, nil)

	v, ok, err := l.Get("a")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	v, ok, err = l.Get("a")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
}

func TestLazy_DelegatesUnownedSymbolsToBase(t *testing.T) {
	base := env.NewSimple(map[string]int{"b": 7})
	l := env.NewLazy[string, int](map[string]env.Completer[string, int]{}, base)

	v, ok, err := l.Get("b")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestLazy_SelfReferenceRaisesCycle(t *testing.T) {
	var l *env.Lazy[string, int]
	completers := map[string]env.Completer[string, int]{
		"a": func(sym string) (int, error) {
			_, _, err := l.Get("a")
			if err != nil {
				return 0, err
			}
			return 1, nil
		},
	}
	l = env.NewLazy[string, int](completers, nil)

	_, ok, err := l.Get("a")
	assert.False(t, ok)
	assert.True(t, errors.Is(err, env.ErrCycle))
}

func TestLazy_MutualCycleDetected(t *testing.T) {
	var l *env.Lazy[string, int]
	completers := map[string]env.Completer[string, int]{
		"a": func(sym string) (int, error) {
			v, _, err := l.Get("b")
			if err != nil {
				return 0, err
			}
			return v + 1, nil
		},
		"b": func(sym string) (int, error) {
			v, _, err := l.Get("a")
			if err != nil {
				return 0, err
			}
			return v + 1, nil
		},
	}
	l = env.NewLazy[string, int](completers, nil)

	_, ok, err := l.Get("a")
	assert.False(t, ok)
	assert.True(t, errors.Is(err, env.ErrCycle))
}

func TestLazy_OtherSymbolsRemainBindableAfterCycleFailure(t *testing.T) {
	var l *env.Lazy[string, int]
	completers := map[string]env.Completer[string, int]{
		"a": func(sym string) (int, error) {
			_, _, err := l.Get("a")
			return 0, err
		},
		"c": func(sym string) (int, error) {
			return 99, nil
		},
	}
	l = env.NewLazy[string, int](completers, nil)

	_, _, err := l.Get("a")
	assert.Error(t, err)

	v, ok, err := l.Get("c")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 99, v)
}
