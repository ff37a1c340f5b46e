// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

// prodPolicy captures what differs between BDD and ZDD in a product sweep and
// in Reduce.
type prodPolicy interface {
	// resolveSameFile computes the product of two handles on the same file.
	resolveSameFile(e *Engine, a, b *Diagram, op Operator) *Diagram
	// resolveTerminalRoot is called when one of the roots is a terminal. It
	// returns false when a sweep is needed.
	resolveTerminalRoot(e *Engine, v1 Node, a *Diagram, v2 Node, b *Diagram, op Operator) (*Diagram, bool)
	// resolveRequest returns the terminal result of the pair (r1, r2) when it
	// can be decided without visiting r1 and r2.
	resolveRequest(op Operator, r1, r2 Ptr) (Ptr, bool)
	// skip returns the children of p on a level where p has no node.
	skip(p Ptr) (low, high Ptr)
	// reduceRule returns the pointer replacing a node with the given children,
	// if the node must be removed.
	reduceRule(low, high Ptr) (Ptr, bool)
	String() string
}

func (e *Engine) constant(v bool) *Diagram {
	return e.diagram(e.terminalFile(v), false)
}

// ************************************************************

type bddPolicy struct{}

func (bddPolicy) String() string { return "bdd" }

func (bddPolicy) resolveSameFile(e *Engine, a, b *Diagram, op Operator) *Diagram {
	// a = u xor a.negate and b = u xor b.negate, for the function u stored in
	// the file. We evaluate the result for both values of u.
	r0 := op.eval(a.negate, b.negate)
	r1 := op.eval(!a.negate, !b.negate)
	if r0 == r1 {
		return e.constant(r0)
	}
	return e.diagram(a.file, !r1)
}

func (bddPolicy) resolveTerminalRoot(e *Engine, v1 Node, a *Diagram, v2 Node, b *Diagram, op Operator) (*Diagram, bool) {
	switch {
	case v1.IsTerminal() && v2.IsTerminal():
		return e.constant(op.eval(v1.Value(), v2.Value())), true
	case v1.IsTerminal():
		x := v1.Value()
		if op.leftShortcut(x) {
			return e.constant(op.eval(x, false)), true
		}
		return e.diagram(b.file, b.negate != !op.eval(x, true)), true
	case v2.IsTerminal():
		y := v2.Value()
		if op.rightShortcut(y) {
			return e.constant(op.eval(false, y)), true
		}
		return e.diagram(a.file, a.negate != !op.eval(true, y)), true
	}
	return nil, false
}

func (bddPolicy) resolveRequest(op Operator, r1, r2 Ptr) (Ptr, bool) {
	switch {
	case r1.IsTerminal() && r2.IsTerminal():
		return Terminal(op.eval(r1.Value(), r2.Value())), true
	case r1.IsTerminal() && op.leftShortcut(r1.Value()):
		return Terminal(op.eval(r1.Value(), false)), true
	case r2.IsTerminal() && op.rightShortcut(r2.Value()):
		return Terminal(op.eval(false, r2.Value())), true
	}
	return NilPtr, false
}

func (bddPolicy) skip(p Ptr) (Ptr, Ptr) {
	return p, p
}

func (bddPolicy) reduceRule(low, high Ptr) (Ptr, bool) {
	if low == high {
		return low, true
	}
	return NilPtr, false
}

// ************************************************************

// zddPolicy interprets diagrams as families of sets: False is the empty family
// and True the family containing only the empty set. Operators must map
// (false, false) to false.
type zddPolicy struct{}

func (zddPolicy) String() string { return "zdd" }

func (zddPolicy) resolveSameFile(e *Engine, a, b *Diagram, op Operator) *Diagram {
	if op.eval(true, true) {
		return e.diagram(a.file, a.negate)
	}
	return e.constant(false)
}

func (zddPolicy) resolveTerminalRoot(e *Engine, v1 Node, a *Diagram, v2 Node, b *Diagram, op Operator) (*Diagram, bool) {
	switch {
	case v1.IsTerminal() && v2.IsTerminal():
		return e.constant(op.eval(v1.Value(), v2.Value())), true
	case v1.IsTerminal() && !v1.Value():
		if op.eval(false, true) {
			return e.diagram(b.file, b.negate), true
		}
		return e.constant(false), true
	case v2.IsTerminal() && !v2.Value():
		if op.eval(true, false) {
			return e.diagram(a.file, a.negate), true
		}
		return e.constant(false), true
	}
	return nil, false
}

func (zddPolicy) resolveRequest(op Operator, r1, r2 Ptr) (Ptr, bool) {
	switch {
	case r1.IsTerminal() && r2.IsTerminal():
		return Terminal(op.eval(r1.Value(), r2.Value())), true
	case r1.IsTerminal() && !r1.Value() && !op.eval(false, true):
		return Terminal(false), true
	case r2.IsTerminal() && !r2.Value() && !op.eval(true, false):
		return Terminal(false), true
	}
	return NilPtr, false
}

func (zddPolicy) skip(p Ptr) (Ptr, Ptr) {
	return p, Terminal(false)
}

func (zddPolicy) reduceRule(low, high Ptr) (Ptr, bool) {
	if high == Terminal(false) {
		return low, true
	}
	return NilPtr, false
}
