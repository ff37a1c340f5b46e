// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import (
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// reduction gives the reduced pointer Child of the arc of Source labelled
// High.
type reduction struct {
	_      struct{} `cbor:",toarray"`
	Source Ptr
	High   bool
	Child  Ptr
}

// reductionLess orders reductions by decreasing sources, low arcs first.
func reductionLess(a, b reduction) bool {
	if c := Compare(a.Source, b.Source); c != 0 {
		return c > 0
	}
	return !a.High && b.High
}

// Unreduced is the result of a product sweep. It is either a diagram, when
// the product could be decided without a sweep, or an arc file.
type Unreduced struct {
	diagram  *Diagram
	arcs     *ArcFile
	policy   prodPolicy
	released int32
}

// Arcs returns the arc file of u, or nil when the product did not need a
// sweep.
func (u *Unreduced) Arcs() *ArcFile {
	return u.arcs
}

// Reduce computes the canonical diagram of u. Two unreduced diagrams denoting
// the same function give identical files, up to their identity. The arc file
// of u is released.
func (e *Engine) Reduce(u *Unreduced) (d *Diagram, err error) {
	defer catch(&err)
	if u == nil || u.released != 0 {
		throw(ErrReleased)
	}
	defer u.Release()
	if u.diagram != nil {
		u.diagram.check()
		return e.diagram(u.diagram.file, u.diagram.negate), nil
	}
	return e.reduce(u.arcs, u.policy), nil
}

// reducer holds the state of a bottom-up reduction.
type reducer struct {
	policy  prodPolicy
	rq      *spillQueue[reduction]
	pending [3]uint64 // pending reductions to nodes, to False, to True
	cuts    Cuts
	label   Label
	lows    []Ptr
	highs   []Ptr
}

func (r *reducer) push(x reduction) {
	r.rq.Push(x)
	r.pending[childKind(x.Child)]++
}

func (r *reducer) pop() reduction {
	x := r.rq.Pop()
	r.pending[childKind(x.Child)]--
	return x
}

func childKind(p Ptr) int {
	if p.IsTerminal() {
		return 1 + b2i(p.Value())
	}
	return 0
}

// set records the child of a node of the current level.
func (r *reducer) set(src Ptr, high bool, child Ptr) {
	if !src.IsNode() || src.label != r.label || src.id >= ID(len(r.lows)) {
		throwf(ErrInvariant, "arc from %s while reducing level %d", src, r.label)
	}
	if high {
		r.highs[src.id] = child
	} else {
		r.lows[src.id] = child
	}
}

func (e *Engine) reduce(arcs *ArcFile, pol prodPolicy) *Diagram {
	fd, err := os.Open(arcs.path)
	if err != nil {
		throw(errors.Wrapf(err, "opening %s", arcs.path))
	}
	defer fd.Close()
	w, err := e.NewWriter()
	if err != nil {
		throw(err)
	}
	done := false
	defer func() {
		if !done {
			w.w.close()
			os.Remove(w.file.path)
		}
	}()

	r := &reducer{
		policy: pol,
		rq:     newQueue(e, 100, arcs.cuts[CutAll], reductionLess),
	}
	defer r.rq.Close()
	stats := SweepStats{Kind: "reduce", Arcs: arcs.arcs}

	var root Ptr
	for i := len(arcs.levels) - 1; i >= 0; i-- {
		level := arcs.levels[i]
		r.label = level.Label
		r.lows = make([]Ptr, level.Width)
		r.highs = make([]Ptr, level.Width)

		var in []Arc
		for _, a := range arcs.readLevel(fd, i) {
			if a.Target.IsTerminal() {
				r.set(a.Source, a.High, a.Target)
				continue
			}
			if a.Target.label != r.label || a.Target.id >= ID(level.Width) {
				throwf(ErrInvariant, "arc to %s stored on level %d", a.Target, r.label)
			}
			in = append(in, a)
		}
		for !r.rq.Empty() && r.rq.Top().Source.Label() >= r.label {
			x := r.pop()
			r.set(x.Source, x.High, x.Child)
			stats.Requests++
		}
		out := r.level(w)
		for _, a := range in {
			r.push(reduction{Source: a.Source, High: a.High, Child: out[a.Target.id]})
		}
		r.cuts.update(r.pending[0], r.pending[1], r.pending[2])
		stats.Levels++
		if i == 0 {
			if len(out) != 1 {
				throwf(ErrInvariant, "root level %d has %d nodes", r.label, len(out))
			}
			root = out[0]
		}
	}
	if !r.rq.Empty() {
		throwf(ErrInvariant, "%d arcs without a source", r.rq.Len())
	}
	if root.IsTerminal() {
		if err := w.Push(TerminalNode(root.Value())); err != nil {
			throw(err)
		}
	}
	f, err := w.finish()
	if err != nil {
		throw(err)
	}
	done = true
	if !f.IsTerminal() {
		f.cuts = r.cuts
	}
	stats.Spilled = r.rq.spilled
	stats.Cuts = f.cuts
	e.record(stats)
	e.log.WithFields(logrus.Fields{
		"sweep":  "reduce",
		"levels": stats.Levels,
		"nodes":  f.size,
	}).Debug("sweep done")
	return e.diagram(f, false)
}

// level applies the reduction rule to the nodes of the current level, merges
// the duplicates and writes the remaining nodes with canonical ids. It returns
// the new pointer of every node of the level.
func (r *reducer) level(w *NodeWriter) []Ptr {
	out := make([]Ptr, len(r.lows))
	var keep []int
	for k := range r.lows {
		if r.lows[k].IsNil() || r.highs[k].IsNil() {
			throwf(ErrInvariant, "node %d:%d is missing a child", r.label, k)
		}
		if p, ok := r.policy.reduceRule(r.lows[k], r.highs[k]); ok {
			out[k] = p
			continue
		}
		keep = append(keep, k)
	}
	sort.Slice(keep, func(i, j int) bool {
		a, b := keep[i], keep[j]
		if c := Compare(r.lows[a], r.lows[b]); c != 0 {
			return c < 0
		}
		return Compare(r.highs[a], r.highs[b]) < 0
	})
	var next ID
	var cur Ptr
	for i, k := range keep {
		if i == 0 || r.lows[k] != r.lows[keep[i-1]] || r.highs[k] != r.highs[keep[i-1]] {
			cur = NodePtr(r.label, next)
			next++
			if err := w.Push(Node{UID: cur, Low: r.lows[k], High: r.highs[k]}); err != nil {
				throw(err)
			}
		}
		out[k] = cur
	}
	return out
}
