// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import (
	"runtime"

	"github.com/sirupsen/logrus"
)

// prodRequest asks for the node of the product of T1 (from the left input)
// and T2 (from the right input), reached by the arc of Source labelled High.
type prodRequest struct {
	_      struct{} `cbor:",toarray"`
	T1     Ptr
	T2     Ptr
	Source Ptr
	High   bool
}

// prodForward is a request together with the children of the smallest of its
// two targets, that has already been passed in its input stream.
type prodForward struct {
	_       struct{} `cbor:",toarray"`
	T1      Ptr
	T2      Ptr
	Low     Ptr
	High    Ptr
	Source  Ptr
	SrcHigh bool
}

// pairLess orders pairs by their smallest element, then by their largest one,
// then by their first element. Identical pairs are therefore adjacent.
func pairLess(a1, a2, b1, b2 Ptr) bool {
	if c := Compare(fst(a1, a2), fst(b1, b2)); c != 0 {
		return c < 0
	}
	if c := Compare(snd(a1, a2), snd(b1, b2)); c != 0 {
		return c < 0
	}
	return Compare(a1, b1) < 0
}

// pairSndLess orders pairs by their largest element first.
func pairSndLess(a1, a2, b1, b2 Ptr) bool {
	if c := Compare(snd(a1, a2), snd(b1, b2)); c != 0 {
		return c < 0
	}
	if c := Compare(fst(a1, a2), fst(b1, b2)); c != 0 {
		return c < 0
	}
	return Compare(a1, b1) < 0
}

// primaryFirst is the merge rule shared by all the sweeps with two queues: the
// primary queue is served first iff its smallest target comes strictly before
// the largest target of the top of the secondary queue.
func primaryFirst(p1, p2, s1, s2 Ptr) bool {
	return Compare(fst(p1, p2), snd(s1, s2)) < 0
}

// productSweep holds the state of a product construction.
type productSweep struct {
	engine *Engine
	op     Operator
	policy prodPolicy
	pq1    *levelQueue[prodRequest]
	pq2    *spillQueue[prodForward]
	arcs   *arcWriter
	log    *logrus.Entry
	stats  SweepStats
	done   bool
}

// Product computes the product of a and b with operator op, as an unreduced
// diagram. The result must be given to Reduce to obtain a diagram.
func (e *Engine) Product(a, b *Diagram, op Operator) (*Unreduced, error) {
	return e.product(a, b, op, bddPolicy{})
}

func (e *Engine) product(a, b *Diagram, op Operator, pol prodPolicy) (res *Unreduced, err error) {
	defer catch(&err)
	defer runtime.KeepAlive(a)
	defer runtime.KeepAlive(b)
	a.check()
	b.check()
	if !op.valid() {
		throwf(ErrOperator, "%d", int(op))
	}
	e.last = SweepStats{Kind: "product"}
	if a.file.id == b.file.id {
		return &Unreduced{diagram: pol.resolveSameFile(e, a, b, op)}, nil
	}

	in1 := a.file.mustOpen(a.negate)
	defer in1.Close()
	in2 := b.file.mustOpen(b.negate)
	defer in2.Close()
	v1, v2 := in1.Pull(), in2.Pull()
	if v1.IsTerminal() || v2.IsTerminal() {
		if d, ok := pol.resolveTerminalRoot(e, v1, a, v2, b, op); ok {
			e.last.Pulled = [2]int{in1.Pulled(), in2.Pulled()}
			return &Unreduced{diagram: d}, nil
		}
	}

	sw := e.newProductSweep(op, pol, productBound(a.file.cuts, b.file.cuts))
	defer sw.close()
	sw.run(in1, in2, v1, v2)
	sw.stats.Pulled = [2]int{in1.Pulled(), in2.Pulled()}
	arcs := sw.arcs.close()
	sw.done = true
	sw.stats.Arcs = arcs.arcs
	sw.stats.Cuts = arcs.cuts
	sw.stats.Spilled = sw.pq1.spilled + sw.pq2.spilled
	e.record(sw.stats)
	return e.unreduced(arcs, pol), nil
}

func (e *Engine) newProductSweep(op Operator, pol prodPolicy, bound uint64) *productSweep {
	pq1 := newLevelQueue(e, e.queueratio, bound,
		func(a, b prodRequest) bool { return pairLess(a.T1, a.T2, b.T1, b.T2) },
		func(r prodRequest) Label { return fst(r.T1, r.T2).Label() })
	pq2 := newQueue(e, 100-e.queueratio, bound,
		func(a, b prodForward) bool { return pairSndLess(a.T1, a.T2, b.T1, b.T2) })
	return &productSweep{
		engine: e,
		op:     op,
		policy: pol,
		pq1:    pq1,
		pq2:    pq2,
		arcs:   e.newArcWriter(),
		log:    e.log.WithFields(logrus.Fields{"sweep": "product", "op": op, "policy": pol}),
		stats:  SweepStats{Kind: "product"},
	}
}

func (sw *productSweep) close() {
	sw.pq1.Close()
	sw.pq2.Close()
	if !sw.done {
		sw.arcs.abort()
	}
}

func (sw *productSweep) run(in1, in2 *NodeStream, v1, v2 Node) {
	sw.log.Debug("sweep started")
	outLabel := fst(v1.UID, v2.UID).Label()
	low1, high1 := sw.children(v1, outLabel)
	low2, high2 := sw.children(v2, outLabel)
	root := NodePtr(outLabel, 0)
	outID := ID(1)
	sw.resolve(root, false, low1, low2)
	sw.resolve(root, true, high1, high2)
	sw.pq1.setLevel(outLabel)

	for !sw.pq1.Empty() || !sw.pq2.Empty() {
		if !sw.pq1.CanPull() && sw.pq2.Empty() {
			sw.closeLevel(outLabel, outID)
			sw.pq1.SetupNextLevel()
			outLabel = sw.pq1.CurrentLevel()
			outID = 0
		}

		var req prodRequest
		var data prodForward
		withData := false
		if sw.pq1.CanPull() && (sw.pq2.Empty() || sw.primaryFirst()) {
			req = sw.pq1.Pop()
		} else {
			data = sw.pq2.Pop()
			withData = true
			req = prodRequest{T1: data.T1, T2: data.T2, Source: data.Source, High: data.SrcHigh}
		}
		sw.stats.Requests++
		t1, t2 := req.T1, req.T2

		tseek := fst(t1, t2)
		if withData {
			tseek = snd(t1, t2)
		}
		v1 = in1.seek(v1, tseek)
		v2 = in2.seek(v2, tseek)

		if !withData && t1.IsNode() && t2.IsNode() && t1.label == t2.label && (v1.UID != t1 || v2.UID != t2) {
			sw.forward(req, v1, v2)
			continue
		}

		switch {
		case t1.IsTerminal() || t2.IsTerminal() || t1.label != t2.label:
			if t1.Less(t2) {
				low1, high1 = expect(v1, t1)
				low2, high2 = sw.policy.skip(t2)
			} else {
				low1, high1 = sw.policy.skip(t1)
				low2, high2 = expect(v2, t2)
			}
		case withData && t1.Less(tseek):
			low1, high1 = data.Low, data.High
			low2, high2 = expect(v2, t2)
		case withData:
			low1, high1 = expect(v1, t1)
			low2, high2 = data.Low, data.High
		default:
			low1, high1 = expect(v1, t1)
			low2, high2 = expect(v2, t2)
		}

		if outID > MaxID {
			throwf(ErrIDSpace, "level %d", outLabel)
		}
		out := NodePtr(outLabel, outID)
		outID++
		sw.resolve(out, false, low1, low2)
		sw.resolve(out, true, high1, high2)

		// every request for (t1, t2) ends up on the same output node
		sw.arcs.pushArc(Arc{Source: req.Source, High: req.High, Target: out})
		for {
			if sw.pq1.CanPull() && sw.pq1.Top().T1 == t1 && sw.pq1.Top().T2 == t2 {
				r := sw.pq1.Pop()
				sw.arcs.pushArc(Arc{Source: r.Source, High: r.High, Target: out})
				continue
			}
			if !sw.pq2.Empty() && sw.pq2.Top().T1 == t1 && sw.pq2.Top().T2 == t2 {
				r := sw.pq2.Pop()
				sw.arcs.pushArc(Arc{Source: r.Source, High: r.SrcHigh, Target: out})
				continue
			}
			break
		}
	}
	sw.closeLevel(outLabel, outID)
	sw.log.WithFields(logrus.Fields{
		"levels":    sw.stats.Levels,
		"requests":  sw.stats.Requests,
		"forwarded": sw.stats.Forwarded,
	}).Debug("sweep done")
}

func (sw *productSweep) primaryFirst() bool {
	p, s := sw.pq1.Top(), sw.pq2.Top()
	return primaryFirst(p.T1, p.T2, s.T1, s.T2)
}

// children returns the children of v on the level with the given label.
func (sw *productSweep) children(v Node, label Label) (Ptr, Ptr) {
	if v.IsTerminal() || v.Label() != label {
		return sw.policy.skip(v.UID)
	}
	return v.Low, v.High
}

// expect returns the children of v, which must be the node t.
func expect(v Node, t Ptr) (Ptr, Ptr) {
	if v.UID != t {
		throwf(ErrInvariant, "node %s not found in input, stopped at %s", t, v.UID)
	}
	return v.Low, v.High
}

// forward moves all the requests for (req.T1, req.T2) to the secondary queue,
// with the children of the target found in its stream.
func (sw *productSweep) forward(req prodRequest, v1, v2 Node) {
	v0 := v1
	if v1.UID != req.T1 {
		v0 = v2
		if v2.UID != req.T2 {
			throwf(ErrInvariant, "neither %s nor %s found in input", req.T1, req.T2)
		}
	}
	push := func(r prodRequest) {
		sw.pq2.Push(prodForward{
			T1: r.T1, T2: r.T2,
			Low: v0.Low, High: v0.High,
			Source: r.Source, SrcHigh: r.High,
		})
		sw.stats.Forwarded++
	}
	push(req)
	for sw.pq1.CanPull() {
		top := sw.pq1.Top()
		if top.T1 != req.T1 || top.T2 != req.T2 {
			break
		}
		push(sw.pq1.Pop())
	}
}

// resolve either writes a terminal arc from src, or asks for the product of r1
// and r2 on a lower level.
func (sw *productSweep) resolve(src Ptr, high bool, r1, r2 Ptr) {
	if t, ok := sw.policy.resolveRequest(sw.op, r1, r2); ok {
		sw.arcs.pushTerminal(Arc{Source: src, High: high, Target: t})
		return
	}
	sw.pq1.Push(prodRequest{T1: r1, T2: r2, Source: src, High: high})
}

func (sw *productSweep) closeLevel(label Label, width ID) {
	sw.arcs.pushLevel(label, width)
	sw.arcs.cut(uint64(sw.pq1.Len() + sw.pq2.Len()))
	sw.stats.Levels++
	sw.logLevel(label, width)
}
