// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

// Set provides additional functions to ease the computation of arbitrary
// Boolean expressions. Errors are sticky: after the first error, every
// operation returns nil and the error can be retrieved with Error.
type Set struct {
	engine *Engine
	error  error
}

// Set returns a new Set working with e.
func (e *Engine) Set() *Set {
	return &Set{engine: e}
}

func (s *Set) ok(n ...*Diagram) bool {
	if s.error != nil {
		return false
	}
	for _, d := range n {
		if d == nil {
			s.seterror(ErrReleased)
			return false
		}
	}
	return true
}

// Ithvar returns the i'th variable.
func (s *Set) Ithvar(i int) *Diagram {
	if !s.ok() {
		return nil
	}
	d, err := s.engine.Ithvar(i)
	if err != nil {
		return s.seterror(err)
	}
	return d
}

// NIthvar returns the negation of the i'th variable.
func (s *Set) NIthvar(i int) *Diagram {
	if !s.ok() {
		return nil
	}
	d, err := s.engine.NIthvar(i)
	if err != nil {
		return s.seterror(err)
	}
	return d
}

// Not returns the negation of n.
func (s *Set) Not(n *Diagram) *Diagram {
	if !s.ok(n) {
		return nil
	}
	d, err := s.engine.Not(n)
	if err != nil {
		return s.seterror(err)
	}
	return d
}

// Apply is the sticky version of Engine.Apply.
func (s *Set) Apply(n1, n2 *Diagram, op Operator) *Diagram {
	if !s.ok(n1, n2) {
		return nil
	}
	d, err := s.engine.Apply(n1, n2, op)
	if err != nil {
		return s.seterror(err)
	}
	return d
}

// fold combines a sequence of diagrams with op, releasing the intermediate
// results.
func (s *Set) fold(op Operator, unit bool, n []*Diagram) *Diagram {
	if len(n) == 0 {
		return s.From(unit)
	}
	if !s.ok(n...) {
		return nil
	}
	if len(n) == 1 {
		d, err := s.engine.Clone(n[0])
		if err != nil {
			return s.seterror(err)
		}
		return d
	}
	acc := s.Apply(n[0], n[1], op)
	for _, d := range n[2:] {
		next := s.Apply(acc, d, op)
		if acc != nil {
			acc.Release()
		}
		acc = next
	}
	return acc
}

// And returns the logical 'and' of a sequence of diagrams.
func (s *Set) And(n ...*Diagram) *Diagram {
	return s.fold(OPand, true, n)
}

// Or returns the logical 'or' of a sequence of diagrams.
func (s *Set) Or(n ...*Diagram) *Diagram {
	return s.fold(OPor, false, n)
}

// Imp returns the logical 'implication' between two diagrams.
func (s *Set) Imp(n1, n2 *Diagram) *Diagram {
	return s.Apply(n1, n2, OPimp)
}

// Equiv returns the logical 'bi-implication' between two diagrams.
func (s *Set) Equiv(n1, n2 *Diagram) *Diagram {
	return s.Apply(n1, n2, OPbiimp)
}

// Equal tests equivalence between diagrams.
func (s *Set) Equal(n1, n2 *Diagram) bool {
	if !s.ok(n1, n2) {
		return false
	}
	res, err := s.engine.Equal(n1, n2)
	if err != nil {
		s.seterror(err)
		return false
	}
	return res
}

// True returns the constant true diagram.
func (s *Set) True() *Diagram {
	return s.engine.True()
}

// False returns the constant false diagram.
func (s *Set) False() *Diagram {
	return s.engine.False()
}

// From returns a constant diagram from a boolean value.
func (s *Set) From(v bool) *Diagram {
	return s.engine.From(v)
}
