// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import (
	"runtime"

	"github.com/sirupsen/logrus"
)

// pairRequest asks to compare the sub-diagrams rooted at T1 and T2.
type pairRequest struct {
	_  struct{} `cbor:",toarray"`
	T1 Ptr
	T2 Ptr
}

// homForward carries the children of the target of a pairRequest that was
// already passed in its stream: T1 if From1, T2 otherwise.
type homForward struct {
	_     struct{} `cbor:",toarray"`
	T1    Ptr
	T2    Ptr
	Low   Ptr
	High  Ptr
	From1 bool
}

type homSweep struct {
	pq    *levelQueue[pairRequest]
	data  *spillQueue[homForward]
	stats SweepStats
}

// IsHomomorphic reports whether the files of a and b, negated when negate1
// (respectively negate2) is set, have the same structure up to the
// identifiers of their nodes. The negation flags are combined with the ones of
// the handles. For reduced diagrams, this is the same as checking that the
// two functions are equal.
func (e *Engine) IsHomomorphic(a, b *Diagram, negate1, negate2 bool) (ok bool, err error) {
	defer catch(&err)
	defer runtime.KeepAlive(a)
	defer runtime.KeepAlive(b)
	a.check()
	b.check()
	return e.homomorphic(a.file, b.file, a.negate != negate1, b.negate != negate2), nil
}

// Equal reports whether a and b denote the same function (or the same family
// of sets). Both diagrams must be reduced.
func (e *Engine) Equal(a, b *Diagram) (bool, error) {
	return e.IsHomomorphic(a, b, false, false)
}

func (e *Engine) homomorphic(f1, f2 *NodeFile, negate1, negate2 bool) bool {
	e.last = SweepStats{Kind: "homomorphism"}
	if f1.id == f2.id {
		return negate1 == negate2
	}
	if f1.Levels() != f2.Levels() || f1.Size() != f2.Size() {
		return false
	}
	in1 := f1.mustOpen(negate1)
	defer in1.Close()
	in2 := f2.mustOpen(negate2)
	defer in2.Close()

	v1, v2 := in1.Pull(), in2.Pull()
	if v1.IsTerminal() || v2.IsTerminal() {
		e.last.Pulled = [2]int{in1.Pulled(), in2.Pulled()}
		return v1.IsTerminal() && v2.IsTerminal() && v1.Value() == v2.Value()
	}
	if v1.Label() != v2.Label() {
		e.last.Pulled = [2]int{in1.Pulled(), in2.Pulled()}
		return false
	}

	sw := &homSweep{
		pq: newLevelQueue(e, e.queueratio, productBound(f1.cuts, f2.cuts),
			func(a, b pairRequest) bool { return pairLess(a.T1, a.T2, b.T1, b.T2) },
			func(r pairRequest) Label { return fst(r.T1, r.T2).Label() }),
		data: newQueue(e, 100-e.queueratio, productBound(f1.cuts, f2.cuts),
			func(a, b homForward) bool { return pairSndLess(a.T1, a.T2, b.T1, b.T2) }),
		stats: SweepStats{Kind: "homomorphism", Levels: 1},
	}
	defer sw.pq.Close()
	defer sw.data.Close()
	ok := sw.run(in1, in2, v1, v2)
	sw.stats.Pulled = [2]int{in1.Pulled(), in2.Pulled()}
	sw.stats.Spilled = sw.pq.spilled + sw.data.spilled
	e.record(sw.stats)
	e.log.WithFields(logrus.Fields{
		"sweep":    "homomorphism",
		"result":   ok,
		"requests": sw.stats.Requests,
		"pulled":   sw.stats.Pulled,
	}).Debug("sweep done")
	return ok
}

func (sw *homSweep) run(in1, in2 *NodeStream, v1, v2 Node) bool {
	if sw.violates(v1.Low, v2.Low) || sw.violates(v1.High, v2.High) {
		return false
	}
	sw.pq.setLevel(v1.Label())

	for !sw.pq.Empty() || !sw.data.Empty() {
		if !sw.pq.CanPull() && sw.data.Empty() {
			sw.pq.SetupNextLevel()
			sw.stats.Levels++
		}

		var t1, t2 Ptr
		var fwd homForward
		withData := false
		if sw.pq.CanPull() && (sw.data.Empty() || sw.primaryFirst()) {
			r := sw.pq.Pop()
			t1, t2 = r.T1, r.T2
		} else {
			fwd = sw.data.Pop()
			withData = true
			t1, t2 = fwd.T1, fwd.T2
		}
		sw.stats.Requests++

		tseek := fst(t1, t2)
		if withData {
			tseek = snd(t1, t2)
		}
		v1 = in1.seek(v1, tseek)
		v2 = in2.seek(v2, tseek)

		if !withData && (v1.UID != t1 || v2.UID != t2) {
			from1 := v1.UID == t1
			v0 := v1
			if !from1 {
				v0 = v2
				if v2.UID != t2 {
					throwf(ErrInvariant, "neither %s nor %s found in input", t1, t2)
				}
			}
			sw.data.Push(homForward{T1: t1, T2: t2, Low: v0.Low, High: v0.High, From1: from1})
			sw.stats.Forwarded++
			sw.skip(t1, t2)
			continue
		}

		var low1, high1, low2, high2 Ptr
		switch {
		case withData && fwd.From1:
			low1, high1 = fwd.Low, fwd.High
			low2, high2 = expect(v2, t2)
		case withData:
			low1, high1 = expect(v1, t1)
			low2, high2 = fwd.Low, fwd.High
		default:
			low1, high1 = expect(v1, t1)
			low2, high2 = expect(v2, t2)
		}
		if sw.violates(low1, low2) || sw.violates(high1, high2) {
			return false
		}
		sw.skip(t1, t2)
	}
	return true
}

func (sw *homSweep) primaryFirst() bool {
	p, s := sw.pq.Top(), sw.data.Top()
	return primaryFirst(p.T1, p.T2, s.T1, s.T2)
}

// skip drops the duplicates of the pair (t1, t2).
func (sw *homSweep) skip(t1, t2 Ptr) {
	for sw.pq.CanPull() {
		top := sw.pq.Top()
		if top.T1 != t1 || top.T2 != t2 {
			return
		}
		sw.pq.Pop()
	}
}

// violates returns true when r1 and r2 cannot be homomorphic. Otherwise it
// asks for a later comparison of the two nodes.
func (sw *homSweep) violates(r1, r2 Ptr) bool {
	if r1.IsTerminal() || r2.IsTerminal() {
		return !(r1.IsTerminal() && r2.IsTerminal() && r1.Value() == r2.Value())
	}
	if r1.label != r2.label {
		return true
	}
	sw.pq.Push(pairRequest{T1: r1, T2: r2})
	return false
}
