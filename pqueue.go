// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import (
	"bufio"
	"os"
	"sort"
	"unsafe"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// spillQueue is a priority queue with a bounded number of elements in memory.
// When the in-memory heap is full, its content is sorted and written to disk
// as a run; the minimum of the queue is then the smallest of the top of the
// heap and of the heads of the runs.
type spillQueue[T any] struct {
	engine  *Engine
	less    func(a, b T) bool
	heap    []T
	limit   int
	runs    []*spillRun[T]
	best    int // cached result of source, -2 when unknown
	size    int
	spilled int
	merges  int
}

// newQueue returns a queue that can use ratio% of the memory budget of e. The
// hint is an upper bound on the number of elements, when known, used to avoid
// allocating more than needed.
func newQueue[T any](e *Engine, ratio int, hint uint64, less func(a, b T) bool) *spillQueue[T] {
	var zero T
	limit := e.queueItems(ratio, unsafe.Sizeof(zero))
	capacity := limit
	if hint < uint64(capacity) {
		capacity = int(hint)
	}
	if capacity < _MINQUEUEITEMS {
		capacity = _MINQUEUEITEMS
	}
	return &spillQueue[T]{
		engine: e,
		less:   less,
		heap:   make([]T, 0, capacity),
		limit:  limit,
		best:   -2,
	}
}

// Len is the number of elements in the queue.
func (q *spillQueue[T]) Len() int {
	return q.size
}

// Empty reports whether the queue has no elements.
func (q *spillQueue[T]) Empty() bool {
	return q.size == 0
}

// Push adds x to the queue.
func (q *spillQueue[T]) Push(x T) {
	if len(q.heap) >= q.limit {
		if !q.engine.spill {
			throwf(ErrQueueCapacity, "%d elements in memory", len(q.heap))
		}
		q.flush()
	}
	q.heap = append(q.heap, x)
	q.up(len(q.heap) - 1)
	q.size++
	q.best = -2
}

// source returns the index of the run holding the minimum, or -1 for the heap.
func (q *spillQueue[T]) source() int {
	if q.best != -2 {
		return q.best
	}
	best := -1
	var top T
	has := len(q.heap) > 0
	if has {
		top = q.heap[0]
	}
	for k, r := range q.runs {
		if !has || q.less(r.head, top) {
			best, top, has = k, r.head, true
		}
	}
	q.best = best
	return best
}

// Top returns the minimum of the queue without removing it.
func (q *spillQueue[T]) Top() T {
	if q.size == 0 {
		throwf(ErrExhausted, "top of an empty queue")
	}
	if k := q.source(); k >= 0 {
		return q.runs[k].head
	}
	return q.heap[0]
}

// Pop removes and returns the minimum of the queue.
func (q *spillQueue[T]) Pop() T {
	if q.size == 0 {
		throwf(ErrExhausted, "pop on an empty queue")
	}
	var x T
	if k := q.source(); k >= 0 {
		r := q.runs[k]
		x = r.head
		if !r.next() {
			r.close()
			q.runs = append(q.runs[:k], q.runs[k+1:]...)
		}
	} else {
		x = q.heap[0]
		n := len(q.heap) - 1
		q.swap(0, n)
		q.heap = q.heap[:n]
		q.down(0, n)
	}
	q.size--
	q.best = -2
	return x
}

// Close removes the runs still on disk.
func (q *spillQueue[T]) Close() {
	for _, r := range q.runs {
		r.close()
	}
	q.runs = nil
	q.heap = q.heap[:0]
	q.size = 0
	q.best = -2
}

func (q *spillQueue[T]) swap(i, j int) { q.heap[i], q.heap[j] = q.heap[j], q.heap[i] }

func (q *spillQueue[T]) up(j int) {
	for {
		i := (j - 1) / 2 // parent
		if i == j || !q.less(q.heap[j], q.heap[i]) {
			break
		}
		q.swap(i, j)
		j = i
	}
}

func (q *spillQueue[T]) down(i0, n int) {
	i := i0
	for {
		j1 := 2*i + 1
		if j1 >= n || j1 < 0 {
			break
		}
		j := j1 // left child
		if j2 := j1 + 1; j2 < n && q.less(q.heap[j2], q.heap[j1]) {
			j = j2 // right child
		}
		if !q.less(q.heap[j], q.heap[i]) {
			break
		}
		q.swap(i, j)
		i = j
	}
}

// flush writes the content of the heap to a new sorted run. When the queue
// reaches _MAXRUNS runs, they are merged into a single one so that the number
// of open files stays bounded.
func (q *spillQueue[T]) flush() {
	sort.Slice(q.heap, func(i, j int) bool { return q.less(q.heap[i], q.heap[j]) })
	k := 0
	r := q.writeRun(len(q.heap), func() T {
		k++
		return q.heap[k-1]
	})
	q.runs = append(q.runs, r)
	q.best = -2
	q.spilled++
	q.engine.metrics.spilled.Inc()
	q.engine.log.WithField("elements", len(q.heap)).Debug("priority queue spilled to disk")
	q.heap = q.heap[:0]
	if len(q.runs) >= _MAXRUNS {
		q.merge()
	}
}

// merge replaces all the runs of q with a single sorted run.
func (q *spillQueue[T]) merge() {
	runs := append([]*spillRun[T](nil), q.runs...)
	n := 0
	for _, r := range runs {
		n += r.left + 1
	}
	merged := q.writeRun(n, func() T {
		k := 0
		for j := 1; j < len(runs); j++ {
			if q.less(runs[j].head, runs[k].head) {
				k = j
			}
		}
		r := runs[k]
		x := r.head
		if !r.next() {
			r.close()
			runs = append(runs[:k], runs[k+1:]...)
		}
		return x
	})
	q.runs = append(q.runs[:0], merged)
	q.best = -2
	q.merges++
	q.engine.log.WithField("elements", n).Debug("priority queue runs merged")
}

// writeRun writes the n elements returned by next, in order, to a new run and
// opens it for reading.
func (q *spillQueue[T]) writeRun(n int, next func() T) *spillRun[T] {
	f, err := q.engine.createTemp("sweepdd-*.run")
	if err != nil {
		throw(err)
	}
	w := newRecordWriter(f)
	for k := 0; k < n; k++ {
		if err := w.write(next()); err != nil {
			w.close()
			os.Remove(f.Name())
			throw(err)
		}
	}
	if err := w.close(); err != nil {
		os.Remove(f.Name())
		throw(err)
	}
	fd, err := os.Open(f.Name())
	if err != nil {
		os.Remove(f.Name())
		throw(errors.Wrapf(err, "opening run %s", f.Name()))
	}
	r := &spillRun[T]{f: fd, dec: cbor.NewDecoder(bufio.NewReader(fd)), left: n}
	r.next()
	return r
}

// spillRun is a sorted sequence of elements on disk. head is the smallest
// element not yet consumed and left the number of elements after it.
type spillRun[T any] struct {
	f    *os.File
	dec  *cbor.Decoder
	left int
	head T
}

func (r *spillRun[T]) next() bool {
	if r.left == 0 {
		return false
	}
	var x T
	if err := r.dec.Decode(&x); err != nil {
		throw(errors.Wrapf(err, "reading run %s", r.f.Name()))
	}
	r.head = x
	r.left--
	return true
}

func (r *spillRun[T]) close() {
	r.f.Close()
	os.Remove(r.f.Name())
}

// *************************************************************************

// levelQueue is a priority queue of requests synchronized with the level being
// produced by a sweep. Requests are ordered first by the label they target,
// given by the label function.
type levelQueue[T any] struct {
	*spillQueue[T]
	label   func(T) Label
	current Label
}

func newLevelQueue[T any](e *Engine, ratio int, hint uint64, less func(a, b T) bool, label func(T) Label) *levelQueue[T] {
	return &levelQueue[T]{spillQueue: newQueue(e, ratio, hint, less), label: label}
}

// setLevel sets the current level, usually the level of the root.
func (q *levelQueue[T]) setLevel(l Label) {
	q.current = l
}

// CurrentLevel is the level being produced.
func (q *levelQueue[T]) CurrentLevel() Label {
	return q.current
}

// CanPull reports whether the top of the queue is a request for the current
// level. A request for a level above the current one is a fatal violation of
// the ordering of the sweep.
func (q *levelQueue[T]) CanPull() bool {
	if q.Empty() {
		return false
	}
	l := q.label(q.Top())
	if l < q.current {
		throwf(ErrInvariant, "request for level %d while producing level %d", l, q.current)
	}
	return l == q.current
}

// HasNextLevel reports whether there are requests for a level below the
// current one.
func (q *levelQueue[T]) HasNextLevel() bool {
	return !q.Empty() && q.label(q.Top()) > q.current
}

// SetupNextLevel moves to the level of the top of the queue.
func (q *levelQueue[T]) SetupNextLevel() {
	if !q.HasNextLevel() {
		throwf(ErrExhausted, "no level after %d", q.current)
	}
	q.current = q.label(q.Top())
}
