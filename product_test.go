// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import (
	"math/rand"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(t testing.TB, d *Diagram) bool {
	t.Helper()
	v, ok := d.Constant()
	require.True(t, ok, "diagram is not a constant")
	return v
}

func TestProductSameFile(t *testing.T) {
	e := newEngine(t)
	a := ithvar(t, e, 0)
	na, err := e.Not(a)
	require.NoError(t, err)

	assert.False(t, constant(t, apply(t, e, a, na, OPand)))
	assert.True(t, constant(t, apply(t, e, a, na, OPxor)))
	assert.True(t, constant(t, apply(t, e, na, a, OPor)))
	assert.True(t, constant(t, apply(t, e, a, a, OPbiimp)))

	d := apply(t, e, a, a, OPor)
	assert.Equal(t, a.File().ID(), d.File().ID())
	assert.False(t, d.Negated())

	d = apply(t, e, a, a, OPnand)
	assert.Equal(t, a.File().ID(), d.File().ID())
	assert.True(t, d.Negated())
}

func TestProductTerminalRoot(t *testing.T) {
	e := newEngine(t)
	a := ithvar(t, e, 2)
	var tests = []struct {
		left     *Diagram
		op       Operator
		constant bool
		value    bool
		negated  bool
	}{
		{e.True(), OPand, false, false, false},
		{e.False(), OPand, true, false, false},
		{e.True(), OPor, true, true, false},
		{e.False(), OPor, false, false, false},
		{e.True(), OPxor, false, false, true},
		{e.False(), OPimp, true, true, false},
		{e.True(), OPimp, false, false, false},
	}
	for _, tt := range tests {
		d := apply(t, e, tt.left, a, tt.op)
		v, ok := d.Constant()
		assert.Equal(t, tt.constant, ok, "%s with a constant", tt.op)
		if ok {
			assert.Equal(t, tt.value, v, "%s with a constant", tt.op)
			continue
		}
		assert.Equal(t, a.File().ID(), d.File().ID())
		assert.Equal(t, tt.negated, d.Negated(), "%s with a constant", tt.op)
	}
}

func TestProductXor(t *testing.T) {
	e := newEngine(t)
	a := build(t, e, MakeNode(0, 0, F, T))
	b := build(t, e, MakeNode(0, 0, T, F))

	u, err := e.Product(a, b, OPxor)
	require.NoError(t, err)
	require.NotNil(t, u.Arcs())
	assert.Equal(t, []LevelInfo{{0, 1}}, u.Arcs().LevelInfo())
	d, err := e.Reduce(u)
	require.NoError(t, err)
	assert.True(t, constant(t, d))

	ok, err := e.IsHomomorphic(a, b, false, true)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = e.IsHomomorphic(a, b, false, false)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProductDuplicates(t *testing.T) {
	e := newEngine(t)
	// an unreduced file where both arcs of the root reach the same node
	a := build(t, e, MakeNode(0, 0, NodePtr(1, 0), NodePtr(1, 0)), MakeNode(1, 0, F, T))
	b := ithvar(t, e, 1)

	u, err := e.Product(a, b, OPand)
	require.NoError(t, err)
	arcs := u.Arcs()
	require.Equal(t, []LevelInfo{{0, 1}, {1, 1}}, arcs.LevelInfo())

	fd, err := os.Open(arcs.path)
	require.NoError(t, err)
	var internal []Arc
	for _, arc := range arcs.readLevel(fd, 1) {
		if arc.Target.IsNode() {
			internal = append(internal, arc)
		}
	}
	require.NoError(t, fd.Close())
	want := []Arc{
		{Source: NodePtr(0, 0), High: false, Target: NodePtr(1, 0)},
		{Source: NodePtr(0, 0), High: true, Target: NodePtr(1, 0)},
	}
	lowFirst := cmpopts.SortSlices(func(a, b Arc) bool { return !a.High && b.High })
	if diff := cmp.Diff(want, internal, ptrComparer, lowFirst); diff != "" {
		t.Errorf("arcs mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, e.LastSweep().Requests, "duplicate request folded into the first one")

	d, err := e.Reduce(u)
	require.NoError(t, err)
	ok, err := e.Equal(d, b)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProductSharedTarget(t *testing.T) {
	e := newEngine(t)
	// 1:0 and 1:1 are two parents of the shared node 2:0
	a := build(t, e,
		MakeNode(0, 0, NodePtr(1, 0), NodePtr(1, 1)),
		MakeNode(1, 0, NodePtr(2, 0), F),
		MakeNode(1, 1, NodePtr(2, 0), T),
		MakeNode(2, 0, F, T),
	)
	b := build(t, e, MakeNode(0, 0, NodePtr(2, 0), NodePtr(2, 0)), MakeNode(2, 0, F, T))

	u, err := e.Product(a, b, OPand)
	require.NoError(t, err)
	arcs := u.Arcs()
	require.Equal(t, []LevelInfo{{0, 1}, {1, 2}, {2, 2}}, arcs.LevelInfo())

	fd, err := os.Open(arcs.path)
	require.NoError(t, err)
	var internal []Arc
	for _, arc := range arcs.readLevel(fd, 2) {
		if arc.Target.IsNode() {
			internal = append(internal, arc)
		}
	}
	require.NoError(t, fd.Close())
	// one node for the pair (2:0, 2:0) with an arc from each parent, and one
	// node for (T, 2:0)
	want := []Arc{
		{Source: NodePtr(1, 0), High: false, Target: NodePtr(2, 0)},
		{Source: NodePtr(1, 1), High: false, Target: NodePtr(2, 0)},
		{Source: NodePtr(1, 1), High: true, Target: NodePtr(2, 1)},
	}
	bySource := cmpopts.SortSlices(func(x, y Arc) bool {
		if c := Compare(x.Source, y.Source); c != 0 {
			return c < 0
		}
		return !x.High && y.High
	})
	if diff := cmp.Diff(want, internal, ptrComparer, bySource); diff != "" {
		t.Errorf("arcs mismatch (-want +got):\n%s", diff)
	}

	d, err := e.Reduce(u)
	require.NoError(t, err)
	ta, tb := truthTable(t, e, a, 3), truthTable(t, e, b, 3)
	for k, v := range truthTable(t, e, d, 3) {
		assert.Equal(t, ta[k] && tb[k], v, "assignment %03b", k)
	}
}

// xorPair returns x0 xor x1 and x0 <=> x1, whose nodes on level 1 are
// numbered in opposite orders, so that their product needs forwarding.
func xorPair(t testing.TB, e *Engine) (*Diagram, *Diagram) {
	a := build(t, e,
		MakeNode(0, 0, NodePtr(1, 0), NodePtr(1, 1)),
		MakeNode(1, 0, F, T),
		MakeNode(1, 1, T, F),
	)
	b := build(t, e,
		MakeNode(0, 0, NodePtr(1, 1), NodePtr(1, 0)),
		MakeNode(1, 0, F, T),
		MakeNode(1, 1, T, F),
	)
	return a, b
}

func TestProductForwarding(t *testing.T) {
	e := newEngine(t)
	a, b := xorPair(t, e)

	d := apply(t, e, a, b, OPand)
	assert.False(t, constant(t, d))
	d = apply(t, e, a, b, OPor)
	assert.True(t, constant(t, d))

	u, err := e.Product(a, b, OPimp)
	require.NoError(t, err)
	stats := e.LastSweep()
	assert.Equal(t, "product", stats.Kind)
	assert.Equal(t, 2, stats.Forwarded)
	assert.Equal(t, 4, stats.Requests)
	assert.Equal(t, 2, stats.Levels)
	assert.Equal(t, [2]int{3, 3}, stats.Pulled)
	d, err = e.Reduce(u)
	require.NoError(t, err)
	for k := 0; k < 4; k++ {
		x := assignment(k, 2)
		v, err := e.Eval(d, x)
		require.NoError(t, err)
		assert.Equal(t, x[0] == x[1], v)
	}
}

func TestProductOperator(t *testing.T) {
	e := newEngine(t)
	a, b := xorPair(t, e)
	_, err := e.Product(a, b, Operator(42))
	require.ErrorIs(t, err, ErrOperator)
}

func TestProductReleased(t *testing.T) {
	e := newEngine(t)
	a, b := xorPair(t, e)
	require.NoError(t, b.Release())
	_, err := e.Apply(a, b, OPand)
	require.ErrorIs(t, err, ErrReleased)
}

func TestProductRandom(t *testing.T) {
	const varnum = 5
	r := rand.New(rand.NewSource(2021))
	engines := map[string]*Engine{
		"default": newEngine(t),
		"spill":   newEngine(t, Memory(1)),
	}
	for name, e := range engines {
		t.Run(name, func(t *testing.T) {
			for k := 0; k < 25; k++ {
				f := randomFormula(r, varnum, 5)
				d := f.diagram(t, e)
				for i, v := range truthTable(t, e, d, varnum) {
					require.Equal(t, f.eval(assignment(i, varnum)), v, "formula %d on assignment %d", k, i)
				}
				require.NoError(t, d.Release())
			}
		})
	}
}

func TestProductCommutes(t *testing.T) {
	const varnum = 6
	e := newEngine(t)
	r := rand.New(rand.NewSource(11))
	for _, op := range []Operator{OPand, OPor, OPxor, OPnand, OPnor, OPbiimp} {
		a := randomFormula(r, varnum, 4).diagram(t, e)
		b := randomFormula(r, varnum, 4).diagram(t, e)
		ab := apply(t, e, a, b, op)
		ba := apply(t, e, b, a, op)
		ok, err := e.Equal(ab, ba)
		require.NoError(t, err)
		assert.True(t, ok, "%s does not commute", op)
		if diff := cmp.Diff(nodesOf(t, e, ab), nodesOf(t, e, ba), ptrComparer); diff != "" {
			t.Errorf("%s: files differ (-ab +ba):\n%s", op, diff)
		}
	}
}

func TestProductDeterministic(t *testing.T) {
	const varnum = 6
	e := newEngine(t)
	r := rand.New(rand.NewSource(5))
	a := randomFormula(r, varnum, 5).diagram(t, e)
	b := randomFormula(r, varnum, 5).diagram(t, e)

	var cuts []Cuts
	var levels [][]LevelInfo
	for k := 0; k < 2; k++ {
		u, err := e.Product(a, b, OPxor)
		require.NoError(t, err)
		if u.Arcs() == nil {
			t.Skip("product decided without a sweep")
		}
		cuts = append(cuts, u.Arcs().Cuts())
		info := u.Arcs().LevelInfo()
		for i := 1; i < len(info); i++ {
			assert.Less(t, info[i-1].Label, info[i].Label, "levels of the arc file must increase")
		}
		levels = append(levels, info)
		require.NoError(t, u.Release())
	}
	assert.Equal(t, cuts[0], cuts[1])
	assert.Equal(t, levels[0], levels[1])
}
