// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Engine creates and combines decision diagrams stored in levelized files.
// All the operations of an Engine are sweeps over files, with priority queues
// whose memory is bounded by the configuration (see Memory). An Engine is not
// safe for concurrent use.
type Engine struct {
	*configs
	log     *logrus.Entry
	metrics *metrics
	last    SweepStats
	totals  SweepStats
	sweeps  int
	gcstat  gcstat
}

// SweepStats gives information on the last sweep performed by an Engine.
type SweepStats struct {
	Kind      string // product, homomorphism, reduce or count
	Pulled    [2]int // nodes pulled from each input stream
	Requests  int    // requests processed
	Forwarded int    // requests sent through the secondary queue
	Levels    int    // levels processed
	Arcs      uint64 // arcs written (product) or read (reduce)
	Spilled   int    // runs written to disk by the priority queues
	Cuts      Cuts   // 1-level cuts of the result
}

// Diagram is a handle on a levelized file, possibly negated. Handles are cheap
// to copy with Not, and several handles can share the same file. A file is
// removed from disk when all its handles are released, either explicitly with
// Release or by the garbage collector.
type Diagram struct {
	file     *NodeFile
	negate   bool
	released int32
}

// New returns a new Engine configured with the given options, for instance:
//
//	e, err := sweepdd.New(sweepdd.Memory(1<<20), sweepdd.TempDir("/tmp"))
func New(options ...func(*configs)) (*Engine, error) {
	c := makeconfigs()
	for _, f := range options {
		f(c)
	}
	if info, err := os.Stat(c.tmpdir); err != nil || !info.IsDir() {
		return nil, errors.Errorf("bad temporary directory %q", c.tmpdir)
	}
	m, err := newMetrics(c.registerer)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		configs: c,
		log:     c.logger.WithField("component", "sweepdd"),
		metrics: m,
	}
	if _DEBUG && c.logger.GetLevel() < logrus.DebugLevel {
		c.logger.SetLevel(logrus.DebugLevel)
	}
	e.log.WithFields(logrus.Fields{
		"memory": c.memory,
		"ratio":  c.queueratio,
		"spill":  c.spill,
		"tmpdir": c.tmpdir,
	}).Debug("engine created")
	return e, nil
}

// LastSweep returns the statistics of the last operation of e.
func (e *Engine) LastSweep() SweepStats {
	return e.last
}

func (e *Engine) record(s SweepStats) {
	e.last = s
	e.sweeps++
	e.totals.Requests += s.Requests
	e.totals.Forwarded += s.Forwarded
	e.totals.Levels += s.Levels
	e.totals.Arcs += s.Arcs
	e.totals.Spilled += s.Spilled
	e.metrics.observe(s)
}

// File returns the levelized file of d.
func (d *Diagram) File() *NodeFile {
	return d.file
}

// Negated reports whether d is the negation of the function stored in its
// file.
func (d *Diagram) Negated() bool {
	return d.negate
}

// Constant returns the value of d when d is a constant diagram.
func (d *Diagram) Constant() (value bool, ok bool) {
	if !d.file.IsTerminal() {
		return false, false
	}
	return d.file.sink.Value() != d.negate, true
}

// True returns the constant diagram true.
func (e *Engine) True() *Diagram {
	return e.constant(true)
}

// False returns the constant diagram false.
func (e *Engine) False() *Diagram {
	return e.constant(false)
}

// From returns a constant diagram from a boolean value.
func (e *Engine) From(v bool) *Diagram {
	return e.constant(v)
}
