// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import (
	"runtime"
	"sort"

	"github.com/pkg/errors"
)

func checkvar(i int) error {
	if i < 0 || i > int(MaxLabel) {
		return errors.Wrapf(ErrVarcount, "variable %d not in [0..%d]", i, MaxLabel)
	}
	return nil
}

// Ithvar returns a diagram representing the i'th variable on success. The
// requested variable must be in the range [0..MaxLabel].
func (e *Engine) Ithvar(i int) (*Diagram, error) {
	return e.literal(i, false)
}

// NIthvar returns a diagram representing the negation of the i'th variable.
// See Ithvar for further info.
func (e *Engine) NIthvar(i int) (*Diagram, error) {
	return e.literal(i, true)
}

func (e *Engine) literal(i int, negated bool) (*Diagram, error) {
	if err := checkvar(i); err != nil {
		return nil, err
	}
	w, err := e.NewWriter()
	if err != nil {
		return nil, err
	}
	if err := w.Push(MakeNode(Label(i), 0, Terminal(negated), Terminal(!negated))); err != nil {
		return nil, err
	}
	return w.Close()
}

// Makeset returns a diagram corresponding to the conjunction (the cube) of all
// the variable in varset, in their positive form. It is such that
// Scanset(Makeset(a)) == a, for sorted sets a without duplicates.
func (e *Engine) Makeset(varset []int) (*Diagram, error) {
	vars := normalize(varset)
	if len(vars) == 0 {
		return e.True(), nil
	}
	for _, v := range vars {
		if err := checkvar(v); err != nil {
			return nil, err
		}
	}
	return e.chain(vars, Terminal(false), Terminal(true))
}

// chain writes the diagram with a node for every variable in vars, whose
// branch not taken goes to off.
func (e *Engine) chain(vars []int, off, last Ptr) (*Diagram, error) {
	w, err := e.NewWriter()
	if err != nil {
		return nil, err
	}
	for k, v := range vars {
		next := last
		if k+1 < len(vars) {
			next = NodePtr(Label(vars[k+1]), 0)
		}
		if err := w.Push(MakeNode(Label(v), 0, off, next)); err != nil {
			return nil, err
		}
	}
	return w.Close()
}

// normalize returns a sorted copy of vars without duplicates.
func normalize(vars []int) []int {
	res := append([]int(nil), vars...)
	sort.Ints(res)
	n := 0
	for k, v := range res {
		if k == 0 || v != res[n-1] {
			res[n] = v
			n++
		}
	}
	return res[:n]
}

// Scanset returns the set of variables (levels) found when following the high
// branch of d. This is the dual of function Makeset. The result is nil for a
// constant diagram.
func (e *Engine) Scanset(d *Diagram) (res []int, err error) {
	defer catch(&err)
	defer runtime.KeepAlive(d)
	d.check()
	in := d.file.mustOpen(d.negate)
	defer in.Close()
	v := in.Pull()
	for !v.IsTerminal() {
		res = append(res, int(v.Label()))
		if v.High.IsTerminal() {
			break
		}
		next := v.High
		v = in.seek(v, next)
		expect(v, next)
	}
	return res, nil
}

// Not returns the negation of d. The result shares the file of d: it is
// computed in constant time.
func (e *Engine) Not(d *Diagram) (res *Diagram, err error) {
	defer catch(&err)
	d.check()
	return e.diagram(d.file, !d.negate), nil
}

// Clone returns a new handle on the file of d, that can be released
// independently of d.
func (e *Engine) Clone(d *Diagram) (res *Diagram, err error) {
	defer catch(&err)
	d.check()
	return e.diagram(d.file, d.negate), nil
}

// Apply performs all of the basic operations with two operands, such as AND, OR
// etc. It is a product sweep followed by Reduce. Left and right are the
// operands and op is the requested operation and must be one of the following:
//
//	Identifier    Description            Truth table
//
//	OPand         logical and            [0,0,0,1]
//	OPxor         logical xor            [0,1,1,0]
//	OPor          logical or             [0,1,1,1]
//	OPnand        logical not-and        [1,1,1,0]
//	OPnor         logical not-or         [1,0,0,0]
//	OPimp         implication            [1,1,0,1]
//	OPbiimp       equivalence            [1,0,0,1]
//	OPdiff        set difference         [0,0,1,0]
//	OPless        less than              [0,1,0,0]
//	OPinvimp      reverse implication    [1,0,1,1]
func (e *Engine) Apply(left, right *Diagram, op Operator) (*Diagram, error) {
	u, err := e.Product(left, right, op)
	if err != nil {
		return nil, err
	}
	return e.Reduce(u)
}

// Eval returns the value of d for the given assignment, where assignment[i] is
// the value of variable i.
func (e *Engine) Eval(d *Diagram, assignment []bool) (res bool, err error) {
	defer catch(&err)
	defer runtime.KeepAlive(d)
	d.check()
	in := d.file.mustOpen(d.negate)
	defer in.Close()
	v := in.Pull()
	for !v.IsTerminal() {
		label := int(v.Label())
		if label >= len(assignment) {
			return false, errors.Wrapf(ErrVarcount, "no value for variable %d", label)
		}
		next := v.Low
		if assignment[label] {
			next = v.High
		}
		if next.IsTerminal() {
			return next.Value(), nil
		}
		v = in.seek(v, next)
		expect(v, next)
	}
	return v.Value(), nil
}

// Allnodes applies function f over all the nodes of d, by increasing labels.
// For a constant diagram, f is called once with a terminal node. We stop the
// computation and return an error if f returns an error at some point.
//
// The following is an example of a callback handler that counts the number of
// nodes in a diagram:
//
//	acc := new(int)
//	e.Allnodes(d, func(n sweepdd.Node) error {
//		*acc++
//		return nil
//	})
func (e *Engine) Allnodes(d *Diagram, f func(Node) error) (err error) {
	defer catch(&err)
	defer runtime.KeepAlive(d)
	d.check()
	in := d.file.mustOpen(d.negate)
	defer in.Close()
	for in.CanPull() {
		if err := f(in.Pull()); err != nil {
			return err
		}
	}
	return nil
}
