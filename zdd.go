// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import (
	"runtime"
	"sort"

	"github.com/pkg/errors"
)

// Zero-suppressed decision diagrams (ZDD) share the files, streams and sweeps
// of BDD. Only the interpretation of a missing level changes: a variable
// skipped on a path is absent from the corresponding set. Diagrams built with
// the Zdd functions should only be combined with Zdd functions.

// ZddEmpty returns the empty family.
func (e *Engine) ZddEmpty() *Diagram {
	return e.constant(false)
}

// ZddNull returns the family containing only the empty set.
func (e *Engine) ZddNull() *Diagram {
	return e.constant(true)
}

// ZddSingleton returns the family {{i}}.
func (e *Engine) ZddSingleton(i int) (*Diagram, error) {
	return e.ZddSet([]int{i})
}

// ZddSet returns the family containing only the set vars.
func (e *Engine) ZddSet(vars []int) (*Diagram, error) {
	vars = normalize(vars)
	if len(vars) == 0 {
		return e.ZddNull(), nil
	}
	for _, v := range vars {
		if err := checkvar(v); err != nil {
			return nil, err
		}
	}
	return e.chain(vars, Terminal(false), Terminal(true))
}

// ZddProduct computes the product of two families with an operator that maps
// (false, false) to false, as an unreduced diagram.
func (e *Engine) ZddProduct(a, b *Diagram, op Operator) (*Unreduced, error) {
	if !op.zddCompatible() {
		return nil, errors.Wrapf(ErrOperator, "%s on ZDD", op)
	}
	return e.product(a, b, op, zddPolicy{})
}

func (e *Engine) zddApply(a, b *Diagram, op Operator) (*Diagram, error) {
	u, err := e.ZddProduct(a, b, op)
	if err != nil {
		return nil, err
	}
	return e.Reduce(u)
}

// ZddUnion returns the union of two families.
func (e *Engine) ZddUnion(a, b *Diagram) (*Diagram, error) {
	return e.zddApply(a, b, OPor)
}

// ZddIntsec returns the intersection of two families.
func (e *Engine) ZddIntsec(a, b *Diagram) (*Diagram, error) {
	return e.zddApply(a, b, OPand)
}

// ZddDiff returns the sets of a that are not in b.
func (e *Engine) ZddDiff(a, b *Diagram) (*Diagram, error) {
	return e.zddApply(a, b, OPdiff)
}

// ZddEqual reports whether two reduced families are equal.
func (e *Engine) ZddEqual(a, b *Diagram) (bool, error) {
	return e.Equal(a, b)
}

// ZddCount returns the number of sets in the family d.
func (e *Engine) ZddCount(d *Diagram) (uint64, error) {
	return e.PathCount(d)
}

// ZddContains reports whether the set vars belongs to the family d.
func (e *Engine) ZddContains(d *Diagram, vars []int) (res bool, err error) {
	defer catch(&err)
	defer runtime.KeepAlive(d)
	d.check()
	set := normalize(vars)
	in := d.file.mustOpen(d.negate)
	defer in.Close()
	v := in.Pull()
	k := 0 // set[:k] are the elements already seen on the path
	for !v.IsTerminal() {
		label := int(v.Label())
		if k < len(set) && set[k] < label {
			// set[k] was skipped, hence absent from every set on this path
			return false, nil
		}
		next := v.Low
		if k < len(set) && set[k] == label {
			next = v.High
			k++
		}
		if next.IsTerminal() {
			return next.Value() && k == len(set), nil
		}
		v = in.seek(v, next)
		expect(v, next)
	}
	return v.Value() && len(set) == 0, nil
}

// ZddSets returns the sets of the family d, each sorted, in lexicographic
// order. It is meant for small families.
func (e *Engine) ZddSets(d *Diagram) (res [][]int, err error) {
	defer catch(&err)
	defer runtime.KeepAlive(d)
	d.check()
	nodes := make(map[Ptr]Node)
	var root Ptr
	in := d.file.mustOpen(d.negate)
	defer in.Close()
	for in.CanPull() {
		n := in.Pull()
		if root.IsNil() {
			root = n.UID
		}
		nodes[n.UID] = n
	}
	var walk func(p Ptr, prefix []int)
	walk = func(p Ptr, prefix []int) {
		if p.IsTerminal() {
			if p.Value() {
				res = append(res, append([]int(nil), prefix...))
			}
			return
		}
		n := nodes[p]
		walk(n.Low, prefix)
		walk(n.High, append(prefix, int(n.Label())))
	}
	walk(root, nil)
	sort.Slice(res, func(i, j int) bool {
		a, b := res[i], res[j]
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
	return res, nil
}
