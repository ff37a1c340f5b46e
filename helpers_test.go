// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import (
	"io"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var (
	F = Terminal(false)
	T = Terminal(true)
)

// ptrComparer lets cmp look inside pointers, whose fields are unexported.
var ptrComparer = cmp.Comparer(func(a, b Ptr) bool { return a == b })

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newEngine(t testing.TB, options ...func(*configs)) *Engine {
	t.Helper()
	opts := append([]func(*configs){TempDir(t.TempDir()), Logger(quietLogger())}, options...)
	e, err := New(opts...)
	require.NoError(t, err)
	return e
}

// build writes the nodes, given in any order of levels, to a new file.
func build(t testing.TB, e *Engine, nodes ...Node) *Diagram {
	t.Helper()
	w, err := e.NewWriter()
	require.NoError(t, err)
	for _, n := range nodes {
		require.NoError(t, w.Push(n))
	}
	d, err := w.Close()
	require.NoError(t, err)
	return d
}

func apply(t testing.TB, e *Engine, a, b *Diagram, op Operator) *Diagram {
	t.Helper()
	d, err := e.Apply(a, b, op)
	require.NoError(t, err)
	return d
}

func ithvar(t testing.TB, e *Engine, i int) *Diagram {
	t.Helper()
	d, err := e.Ithvar(i)
	require.NoError(t, err)
	return d
}

// truthTable evaluates d on every assignment of varnum variables.
func truthTable(t testing.TB, e *Engine, d *Diagram, varnum int) []bool {
	t.Helper()
	res := make([]bool, 1<<varnum)
	for k := range res {
		v, err := e.Eval(d, assignment(k, varnum))
		require.NoError(t, err)
		res[k] = v
	}
	return res
}

// assignment gives the value of variable i as bit i of k.
func assignment(k, varnum int) []bool {
	res := make([]bool, varnum)
	for i := range res {
		res[i] = k&(1<<i) != 0
	}
	return res
}

func nodesOf(t testing.TB, e *Engine, d *Diagram) []Node {
	t.Helper()
	var res []Node
	require.NoError(t, e.Allnodes(d, func(n Node) error {
		res = append(res, n)
		return nil
	}))
	return res
}

// formula is a random Boolean expression used as an oracle for sweeps.
type formula struct {
	op          Operator
	variable    int
	left, right *formula
}

func randomFormula(r *rand.Rand, varnum, depth int) *formula {
	if depth == 0 || r.Intn(4) == 0 {
		return &formula{variable: r.Intn(varnum)}
	}
	return &formula{
		op:    Operator(r.Intn(int(OPinvimp) + 1)),
		left:  randomFormula(r, varnum, depth-1),
		right: randomFormula(r, varnum, depth-1),
	}
}

func (f *formula) eval(x []bool) bool {
	if f.left == nil {
		return x[f.variable]
	}
	return f.op.eval(f.left.eval(x), f.right.eval(x))
}

// diagram builds f with Apply, releasing intermediate results.
func (f *formula) diagram(t testing.TB, e *Engine) *Diagram {
	t.Helper()
	if f.left == nil {
		return ithvar(t, e, f.variable)
	}
	l := f.left.diagram(t, e)
	r := f.right.diagram(t, e)
	d := apply(t, e, l, r, f.op)
	require.NoError(t, l.Release())
	require.NoError(t, r.Release())
	return d
}
