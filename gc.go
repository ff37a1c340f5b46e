// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import (
	"os"
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// gcstat stores status information about the files reclaimed by the engine.
// Files are shared between diagram handles and removed when the last handle
// is released, either explicitly or by the Go garbage collector.
type gcstat struct {
	setfinalizers    uint64 // Total number of handles with a finalizer
	calledfinalizers uint64 // Number of handles released by the garbage collector
	removedfiles     uint64 // Number of files removed from disk
}

// fileRef is the identity and reference count of a levelized file. Files that
// are not backed by disk (constant diagrams) have an empty path.
type fileRef struct {
	id    uuid.UUID
	path  string
	refs  int32
	stats *gcstat
}

func newFileRef(path string, stats *gcstat) fileRef {
	return fileRef{id: uuid.New(), path: path, stats: stats}
}

// ID returns the opaque identity of the file. Two handles refer to the same
// file if and only if they have the same ID.
func (r *fileRef) ID() uuid.UUID {
	return r.id
}

func (r *fileRef) acquire() {
	atomic.AddInt32(&r.refs, 1)
}

// release decreases the reference count and removes the file from disk when
// it reaches zero.
func (r *fileRef) release() error {
	if atomic.AddInt32(&r.refs, -1) > 0 || r.path == "" {
		return nil
	}
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing %s", r.path)
	}
	if r.stats != nil {
		atomic.AddUint64(&r.stats.removedfiles, 1)
	}
	return nil
}

// *************************************************************************

// diagram returns a new handle on file f. The handle holds a reference on the
// file until it is released.
func (e *Engine) diagram(f *NodeFile, negate bool) *Diagram {
	f.acquire()
	d := &Diagram{file: f, negate: negate}
	atomic.AddUint64(&e.gcstat.setfinalizers, 1)
	stats := &e.gcstat
	runtime.SetFinalizer(d, func(d *Diagram) {
		atomic.AddUint64(&stats.calledfinalizers, 1)
		d.release()
	})
	return d
}

// Release drops the reference of d on its file. The diagram cannot be used
// afterwards. Calling Release more than once is harmless.
func (d *Diagram) Release() error {
	runtime.SetFinalizer(d, nil)
	return d.release()
}

func (d *Diagram) release() error {
	if !atomic.CompareAndSwapInt32(&d.released, 0, 1) {
		return nil
	}
	return d.file.release()
}

// check panics with ErrReleased if d cannot be used.
func (d *Diagram) check() {
	if d == nil {
		throwf(ErrInvariant, "nil diagram")
	}
	if atomic.LoadInt32(&d.released) != 0 {
		throw(ErrReleased)
	}
}

func (e *Engine) unreduced(arcs *ArcFile, pol prodPolicy) *Unreduced {
	arcs.acquire()
	u := &Unreduced{arcs: arcs, policy: pol}
	runtime.SetFinalizer(u, (*Unreduced).Release)
	return u
}

// Release removes the arc file of u, if any, and releases the diagram it may
// hold.
func (u *Unreduced) Release() error {
	runtime.SetFinalizer(u, nil)
	if !atomic.CompareAndSwapInt32(&u.released, 0, 1) {
		return nil
	}
	if u.diagram != nil {
		return u.diagram.Release()
	}
	return u.arcs.release()
}
