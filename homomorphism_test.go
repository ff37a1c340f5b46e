// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ladder returns a chain over the variables 0..n-1 where the low child of
// the root is leaf.
func ladder(t testing.TB, e *Engine, n int, leaf Ptr) *Diagram {
	return ladderAt(t, e, n, 0, leaf)
}

// ladderAt returns a chain over the variables 0..n-1 where the low child of
// the node on level at is leaf, and the other low children are False.
func ladderAt(t testing.TB, e *Engine, n, at int, leaf Ptr) *Diagram {
	var nodes []Node
	for i := 0; i < n-1; i++ {
		low := F
		if i == at {
			low = leaf
		}
		nodes = append(nodes, MakeNode(Label(i), 0, low, NodePtr(Label(i+1), 0)))
	}
	nodes = append(nodes, MakeNode(Label(n-1), 0, F, T))
	return build(t, e, nodes...)
}

func TestHomomorphicSelf(t *testing.T) {
	e := newEngine(t)
	a, _ := xorPair(t, e)
	ok, err := e.Equal(a, a)
	require.NoError(t, err)
	assert.True(t, ok)

	na, err := e.Not(a)
	require.NoError(t, err)
	ok, err = e.Equal(a, na)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = e.IsHomomorphic(a, na, true, false)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHomomorphicCopies(t *testing.T) {
	e := newEngine(t)
	a := ladder(t, e, 8, F)
	b := ladder(t, e, 8, F)
	ok, err := e.Equal(a, b)
	require.NoError(t, err)
	assert.True(t, ok)
	stats := e.LastSweep()
	assert.Equal(t, "homomorphism", stats.Kind)
	assert.Equal(t, [2]int{8, 8}, stats.Pulled)
	assert.Equal(t, 8, stats.Levels)
}

func TestHomomorphicEarlyExit(t *testing.T) {
	e := newEngine(t)
	a := ladder(t, e, 10, F)
	b := ladder(t, e, 10, T)
	ok, err := e.Equal(a, b)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, [2]int{1, 1}, e.LastSweep().Pulled, "difference at the root")
}

func TestHomomorphicEarlyExitDeep(t *testing.T) {
	e := newEngine(t)
	for _, at := range []int{1, 5, 8} {
		a := ladderAt(t, e, 10, at, F)
		b := ladderAt(t, e, 10, at, T)
		ok, err := e.Equal(a, b)
		require.NoError(t, err)
		assert.False(t, ok, "difference on level %d", at)
		pulled := e.LastSweep().Pulled
		for side, n := range pulled {
			assert.LessOrEqual(t, n, at+1, "side %d, difference on level %d", side, at)
			assert.Greater(t, n, at-1, "side %d, difference on level %d", side, at)
		}
	}
}

func TestHomomorphicForwarding(t *testing.T) {
	e := newEngine(t)
	// the same function with the nodes of level 1 numbered differently
	a, _ := xorPair(t, e)
	b := build(t, e,
		MakeNode(0, 0, NodePtr(1, 1), NodePtr(1, 0)),
		MakeNode(1, 0, T, F),
		MakeNode(1, 1, F, T),
	)
	ok, err := e.Equal(a, b)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, e.LastSweep().Forwarded)

	c := build(t, e,
		MakeNode(0, 0, NodePtr(1, 1), NodePtr(1, 0)),
		MakeNode(1, 0, T, F),
		MakeNode(1, 1, F, F),
	)
	ok, err = e.Equal(a, c)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHomomorphicShortcuts(t *testing.T) {
	e := newEngine(t)
	a := ladder(t, e, 4, F)
	b := ladder(t, e, 5, F)
	ok, err := e.Equal(a, b)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, [2]int{0, 0}, e.LastSweep().Pulled, "decided on the number of levels")

	ok, err = e.Equal(e.True(), e.True())
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = e.Equal(e.True(), e.False())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEqualRandom(t *testing.T) {
	const varnum = 5
	e := newEngine(t, Memory(1))
	r := rand.New(rand.NewSource(3))
	for k := 0; k < 20; k++ {
		f := randomFormula(r, varnum, 4)
		g := randomFormula(r, varnum, 4)
		a := f.diagram(t, e)
		b := g.diagram(t, e)
		same := true
		for i := 0; i < 1<<varnum; i++ {
			x := assignment(i, varnum)
			if f.eval(x) != g.eval(x) {
				same = false
				break
			}
		}
		ok, err := e.Equal(a, b)
		require.NoError(t, err)
		assert.Equal(t, same, ok, "formula %d", k)
	}
}
