// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import (
	"math/big"
	"runtime"

	"github.com/pkg/errors"
)

// countRequest carries the number of paths (or of assignments) reaching
// Target from a parent.
type countRequest struct {
	_      struct{} `cbor:",toarray"`
	Target Ptr
	Sum    *big.Int
}

// PathCount returns the number of paths from the root of d to True. For a ZDD,
// this is the number of sets in the family.
func (e *Engine) PathCount(d *Diagram) (n uint64, err error) {
	defer catch(&err)
	defer runtime.KeepAlive(d)
	d.check()
	res := e.count(d, 0, false)
	if !res.IsUint64() {
		return 0, errors.Errorf("path count %s overflows uint64", res)
	}
	return res.Uint64(), nil
}

// SatCount computes the number of satisfying variable assignments for the
// function denoted by d, over variables [0..varcount). We return a result
// using arbitrary-precision arithmetic to avoid possible overflows.
func (e *Engine) SatCount(d *Diagram, varcount int) (res *big.Int, err error) {
	defer catch(&err)
	defer runtime.KeepAlive(d)
	d.check()
	if varcount < 0 {
		return nil, errors.Wrapf(ErrVarcount, "%d variables", varcount)
	}
	if n := len(d.file.levels); n > 0 && int(d.file.levels[n-1].Label) >= varcount {
		return nil, errors.Wrapf(ErrVarcount, "variable %d used with %d variables", d.file.levels[n-1].Label, varcount)
	}
	return e.count(d, varcount, true), nil
}

// count is a top-down sweep with a single priority queue. When sat is set,
// each arc skipping k levels multiplies the count by 2^k.
func (e *Engine) count(d *Diagram, varcount int, sat bool) *big.Int {
	in := d.file.mustOpen(d.negate)
	defer in.Close()
	stats := SweepStats{Kind: "count"}
	res := new(big.Int)
	v := in.Pull()
	if v.IsTerminal() {
		if v.Value() {
			res.SetInt64(1)
			if sat {
				res.Lsh(res, uint(varcount))
			}
		}
		e.last = stats
		return res
	}

	pq := newQueue(e, 100, d.file.cuts[CutInternal]+1,
		func(a, b countRequest) bool { return a.Target.Less(b.Target) })
	defer pq.Close()
	visit := func(v Node, sum *big.Int) {
		for _, child := range [2]Ptr{v.Low, v.High} {
			c := sum
			if sat {
				next := Label(varcount)
				if child.IsNode() {
					next = child.label
				}
				c = new(big.Int).Lsh(sum, uint(next-v.UID.label-1))
			}
			if child.IsTerminal() {
				if child.Value() {
					res.Add(res, c)
				}
				continue
			}
			pq.Push(countRequest{Target: child, Sum: c})
		}
	}

	start := big.NewInt(1)
	if sat {
		start.Lsh(start, uint(v.Label()))
	}
	visit(v, start)
	for !pq.Empty() {
		t := pq.Top().Target
		sum := new(big.Int)
		for !pq.Empty() && pq.Top().Target == t {
			sum.Add(sum, pq.Pop().Sum)
			stats.Requests++
		}
		v = in.seek(v, t)
		if v.UID != t {
			throwf(ErrInvariant, "node %s not found in input", t)
		}
		visit(v, sum)
	}
	stats.Pulled = [2]int{in.Pulled(), 0}
	stats.Spilled = pq.spilled
	e.record(stats)
	return res
}
