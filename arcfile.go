// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import (
	"os"

	"github.com/pkg/errors"
)

// Arc is an edge of an unreduced diagram, from the low (or high) child of
// Source to Target.
type Arc struct {
	Source Ptr
	High   bool
	Target Ptr
}

type arcRecord struct {
	_      struct{} `cbor:",toarray"`
	Source Ptr
	High   bool
	Target Ptr
}

type arcChunk struct {
	LevelInfo
	offset int64
	length int64
	count  uint64
}

// ArcFile is the output of a product sweep: the arcs of an unreduced diagram,
// grouped by level. The chunk of a level holds the arcs to the nodes of this
// level and the arcs from the nodes of this level to terminals. Levels are
// stored by increasing labels and the root is the only node of the first one.
type ArcFile struct {
	fileRef
	levels    []arcChunk
	cuts      Cuts
	terminals [2]uint64
	arcs      uint64
}

// Levels is the number of levels of the unreduced diagram.
func (f *ArcFile) Levels() int {
	return len(f.levels)
}

// Cuts returns the maximal 1-level cuts measured while writing the file.
func (f *ArcFile) Cuts() Cuts {
	return f.cuts
}

// LevelInfo returns the levels of the file, in increasing order of labels.
func (f *ArcFile) LevelInfo() []LevelInfo {
	res := make([]LevelInfo, len(f.levels))
	for k, c := range f.levels {
		res[k] = c.LevelInfo
	}
	return res
}

// readLevel returns the arcs of the i-th level, in the order they were
// written. The file must have been opened by the caller.
func (f *ArcFile) readLevel(fd *os.File, i int) []Arc {
	c := f.levels[i]
	dec := chunkDecoder(fd, c.offset, c.length)
	res := make([]Arc, 0, c.count)
	for k := uint64(0); k < c.count; k++ {
		var rec arcRecord
		if err := dec.Decode(&rec); err != nil {
			throw(errors.Wrapf(err, "reading %s", f.path))
		}
		res = append(res, Arc{Source: rec.Source, High: rec.High, Target: rec.Target})
	}
	return res
}

// *************************************************************************

type arcWriter struct {
	file  *ArcFile
	w     *recordWriter
	start int64
	count uint64
}

func (e *Engine) newArcWriter() *arcWriter {
	f, err := e.createTemp("sweepdd-*.arcs")
	if err != nil {
		throw(err)
	}
	return &arcWriter{
		file: &ArcFile{fileRef: newFileRef(f.Name(), &e.gcstat)},
		w:    newRecordWriter(f),
	}
}

func (w *arcWriter) write(a Arc) {
	if err := w.w.write(arcRecord{Source: a.Source, High: a.High, Target: a.Target}); err != nil {
		throw(err)
	}
	w.count++
	w.file.arcs++
}

// pushArc writes an arc to a node of the level being produced.
func (w *arcWriter) pushArc(a Arc) {
	if !a.Target.IsNode() || !a.Source.IsNode() {
		throwf(ErrInvariant, "bad internal arc %s -> %s", a.Source, a.Target)
	}
	w.write(a)
}

// pushTerminal writes an arc from a node of the level being produced to a
// terminal.
func (w *arcWriter) pushTerminal(a Arc) {
	if !a.Target.IsTerminal() {
		throwf(ErrInvariant, "bad terminal arc %s -> %s", a.Source, a.Target)
	}
	w.write(a)
	w.file.terminals[b2i(a.Target.Value())]++
}

// pushLevel closes the level with the given label and width. Levels must be
// closed by increasing labels.
func (w *arcWriter) pushLevel(label Label, width ID) {
	if n := len(w.file.levels); n > 0 && w.file.levels[n-1].Label >= label {
		throwf(ErrInvariant, "level %d closed after level %d", label, w.file.levels[n-1].Label)
	}
	end := w.w.offset()
	w.file.levels = append(w.file.levels, arcChunk{
		LevelInfo: LevelInfo{Label: label, Width: uint64(width)},
		offset:    w.start,
		length:    end - w.start,
		count:     w.count,
	})
	w.start = end
	w.count = 0
}

// cut records a 1-level cut below the last closed level.
func (w *arcWriter) cut(internal uint64) {
	w.file.cuts.update(internal, w.file.terminals[0], w.file.terminals[1])
}

func (w *arcWriter) close() *ArcFile {
	if err := w.w.close(); err != nil {
		throw(err)
	}
	return w.file
}

// abort removes a file that will never be used.
func (w *arcWriter) abort() {
	w.w.close()
	os.Remove(w.file.path)
}
