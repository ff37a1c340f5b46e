// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import (
	"os"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// LevelInfo gives the label and the number of nodes of a level.
type LevelInfo struct {
	Label Label
	Width uint64
}

type levelChunk struct {
	LevelInfo
	offset int64
	length int64
}

// NodeFile is an immutable levelized file: the nodes of a diagram grouped by
// level, with the levels ordered by label and the nodes of a level ordered by
// id. A file stores either a single terminal, or internal nodes only.
type NodeFile struct {
	fileRef
	levels    []levelChunk
	size      uint64
	cuts      Cuts
	terminals [2]uint64
	sink      Ptr
}

// Levels is the number of levels in the file.
func (f *NodeFile) Levels() int {
	return len(f.levels)
}

// Size is the number of internal nodes in the file.
func (f *NodeFile) Size() uint64 {
	return f.size
}

// Cuts returns the maximal 1-level cuts of the diagram stored in f. For files
// written by hand, the values are upper bounds.
func (f *NodeFile) Cuts() Cuts {
	return f.cuts
}

// Terminals returns the number of arcs to False and to True.
func (f *NodeFile) Terminals() [2]uint64 {
	return f.terminals
}

// LevelInfo returns the levels of the file, in increasing order of labels.
func (f *NodeFile) LevelInfo() []LevelInfo {
	res := make([]LevelInfo, len(f.levels))
	for k, c := range f.levels {
		res[k] = c.LevelInfo
	}
	return res
}

// IsTerminal reports whether f stores a constant diagram.
func (f *NodeFile) IsTerminal() bool {
	return f.sink.IsTerminal()
}

func (e *Engine) terminalFile(v bool) *NodeFile {
	return &NodeFile{fileRef: newFileRef("", &e.gcstat), sink: Terminal(v)}
}

// *************************************************************************

// NodeWriter builds a NodeFile. The nodes of a level must be pushed
// contiguously and by increasing ids, but levels can come in any order. The
// children of a node must be terminals or nodes with a larger label.
type NodeWriter struct {
	engine   *Engine
	file     *NodeFile
	w        *recordWriter
	chunk    int
	last     Ptr
	seen     map[Label]bool
	internal uint64
	closed   bool
}

// NewWriter returns a writer for a new levelized file.
func (e *Engine) NewWriter() (*NodeWriter, error) {
	f, err := e.createTemp("sweepdd-*.nodes")
	if err != nil {
		return nil, err
	}
	return &NodeWriter{
		engine: e,
		file:   &NodeFile{fileRef: newFileRef(f.Name(), &e.gcstat)},
		w:      newRecordWriter(f),
		chunk:  -1,
		seen:   make(map[Label]bool),
	}, nil
}

// Push appends a node to the file.
func (w *NodeWriter) Push(n Node) error {
	if w.closed {
		return errors.Wrap(ErrLevelizedFile, "push on a closed writer")
	}
	if w.file.sink.IsTerminal() {
		return errors.Wrapf(ErrLevelizedFile, "push of %s after a terminal", n)
	}
	if n.IsTerminal() {
		if w.file.size != 0 {
			return errors.Wrapf(ErrLevelizedFile, "terminal %s pushed after internal nodes", n)
		}
		w.file.sink = n.UID
		return nil
	}
	if !n.UID.IsNode() {
		return errors.Wrapf(ErrLevelizedFile, "bad node %s", n)
	}
	for _, child := range [2]Ptr{n.Low, n.High} {
		switch {
		case child.IsNil():
			return errors.Wrapf(ErrLevelizedFile, "node %s with a nil child", n)
		case child.IsNode() && child.label <= n.UID.label:
			return errors.Wrapf(ErrLevelizedFile, "node %s points to a lower or equal level", n)
		}
	}
	label := n.UID.label
	if w.chunk < 0 || w.file.levels[w.chunk].Label != label {
		if w.seen[label] {
			return errors.Wrapf(ErrLevelizedFile, "level %d is not contiguous", label)
		}
		w.endChunk()
		w.seen[label] = true
		w.file.levels = append(w.file.levels, levelChunk{
			LevelInfo: LevelInfo{Label: label},
			offset:    w.w.offset(),
		})
		w.chunk = len(w.file.levels) - 1
	} else if n.UID.id <= w.last.id {
		return errors.Wrapf(ErrLevelizedFile, "node %s pushed after %s", n.UID, w.last)
	}
	if err := w.w.write(nodeRecord{UID: n.UID, Low: n.Low, High: n.High}); err != nil {
		return err
	}
	w.last = n.UID
	w.file.levels[w.chunk].Width++
	w.file.size++
	for _, child := range [2]Ptr{n.Low, n.High} {
		if child.IsTerminal() {
			w.file.terminals[b2i(child.Value())]++
		} else {
			w.internal++
		}
	}
	return nil
}

func (w *NodeWriter) endChunk() {
	if w.chunk >= 0 {
		c := &w.file.levels[w.chunk]
		c.length = w.w.offset() - c.offset
	}
}

// finish closes the writer and returns the file.
func (w *NodeWriter) finish() (*NodeFile, error) {
	if w.closed {
		return nil, errors.Wrap(ErrLevelizedFile, "writer already closed")
	}
	w.closed = true
	w.endChunk()
	if err := w.w.close(); err != nil {
		return nil, err
	}
	f := w.file
	if f.sink.IsTerminal() {
		// nothing was written on disk
		if err := os.Remove(f.path); err != nil {
			return nil, errors.Wrapf(err, "removing %s", f.path)
		}
		f.path = ""
		return f, nil
	}
	if f.size == 0 {
		os.Remove(f.path)
		return nil, errors.Wrap(ErrLevelizedFile, "empty file")
	}
	sort.Slice(f.levels, func(i, j int) bool {
		return f.levels[i].Label < f.levels[j].Label
	})
	f.cuts.update(w.internal, f.terminals[0], f.terminals[1])
	return f, nil
}

// Close terminates the file and returns a diagram whose root is the first
// node of the level with the smallest label.
func (w *NodeWriter) Close() (*Diagram, error) {
	f, err := w.finish()
	if err != nil {
		return nil, err
	}
	return w.engine.diagram(f, false), nil
}

// *************************************************************************

// NodeStream reads the nodes of a file by increasing labels and ids. When the
// stream is negated, the value of every terminal is flipped.
type NodeStream struct {
	file     *NodeFile
	f        *os.File
	negate   bool
	chunk    int
	left     uint64
	dec      *cbor.Decoder
	peek     Node
	hasPeek  bool
	sinkRead bool
	pulled   int
}

func (f *NodeFile) open(negate bool) (*NodeStream, error) {
	s := &NodeStream{file: f, negate: negate, chunk: -1}
	if f.path == "" {
		return s, nil
	}
	fd, err := os.Open(f.path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", f.path)
	}
	s.f = fd
	return s, nil
}

// Stream returns a new stream over the nodes of d.
func (d *Diagram) Stream() (s *NodeStream, err error) {
	defer catch(&err)
	d.check()
	return d.file.open(d.negate)
}

// mustOpen is open for drivers, which throw on errors.
func (f *NodeFile) mustOpen(negate bool) *NodeStream {
	s, err := f.open(negate)
	if err != nil {
		throw(err)
	}
	return s
}

func (s *NodeStream) fill() {
	if s.hasPeek {
		return
	}
	if s.file.sink.IsTerminal() {
		if !s.sinkRead {
			s.sinkRead = true
			s.peek = Node{UID: s.file.sink}
			if s.negate {
				s.peek = s.peek.Negate()
			}
			s.hasPeek = true
		}
		return
	}
	for s.left == 0 {
		if s.chunk+1 >= len(s.file.levels) {
			return
		}
		s.chunk++
		c := s.file.levels[s.chunk]
		s.dec = chunkDecoder(s.f, c.offset, c.length)
		s.left = c.Width
	}
	var rec nodeRecord
	if err := s.dec.Decode(&rec); err != nil {
		throw(errors.Wrapf(err, "reading %s", s.file.path))
	}
	s.left--
	s.peek = Node{UID: rec.UID, Low: rec.Low, High: rec.High}
	if s.negate {
		s.peek = s.peek.Negate()
	}
	s.hasPeek = true
}

// CanPull reports whether there are nodes left in the stream.
func (s *NodeStream) CanPull() bool {
	s.fill()
	return s.hasPeek
}

// Peek returns the next node without consuming it.
func (s *NodeStream) Peek() Node {
	if !s.CanPull() {
		throwf(ErrExhausted, "%s", s.file.path)
	}
	return s.peek
}

// Pull consumes the next node. Pulling from an exhausted stream is a contract
// violation (ErrExhausted).
func (s *NodeStream) Pull() Node {
	n := s.Peek()
	s.hasPeek = false
	s.pulled++
	return n
}

// Pulled is the number of nodes consumed so far.
func (s *NodeStream) Pulled() int {
	return s.pulled
}

// CurrentLevel is the label of the next node in the stream.
func (s *NodeStream) CurrentLevel() Label {
	return s.Peek().Label()
}

// HasNextLevel reports whether there is a level after the one of the next
// node.
func (s *NodeStream) HasNextLevel() bool {
	if !s.CanPull() || s.peek.IsTerminal() {
		return false
	}
	return s.chunk+1 < len(s.file.levels)
}

// SetupNextLevel skips the remaining nodes of the current level.
func (s *NodeStream) SetupNextLevel() {
	if !s.HasNextLevel() {
		throwf(ErrExhausted, "no level after %d", s.CurrentLevel())
	}
	s.hasPeek = false
	s.left = 0
}

// seek pulls nodes until reaching one whose UID is not smaller than t, or the
// end of the stream. It returns the last node pulled, or v if none.
func (s *NodeStream) seek(v Node, t Ptr) Node {
	for v.UID.Less(t) && s.CanPull() {
		v = s.Pull()
	}
	return v
}

// Close releases the file descriptor of the stream.
func (s *NodeStream) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
