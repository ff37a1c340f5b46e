// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// configs is used to store the values of the different parameters of an Engine
type configs struct {
	memory     int                   // memory budget (bytes) of the priority queues of a sweep
	queueratio int                   // share (%) of the budget given to the primary queue
	spill      bool                  // whether queues can spill sorted runs to disk
	tmpdir     string                // directory of levelized files and spilled runs
	logger     *logrus.Logger        // destination of the engine logs
	registerer prometheus.Registerer // where to register metrics, nil if none
}

func makeconfigs() *configs {
	c := &configs{
		memory:     _DEFAULTMEMORY,
		queueratio: _DEFAULTQUEUERATIO,
		spill:      true,
		tmpdir:     os.TempDir(),
		logger:     logrus.StandardLogger(),
	}
	return c
}

// Memory is a configuration option (function). Used as a parameter in New it
// sets the number of bytes that the priority queues of a single sweep can keep
// in memory. When a queue grows past its share, it spills sorted runs to disk
// (see Spill). The default value is 64 MiB. Values that are not positive are
// ignored.
func Memory(bytes int) func(*configs) {
	return func(c *configs) {
		if bytes > 0 {
			c.memory = bytes
		}
	}
}

// QueueRatio is a configuration option (function). Used as a parameter in New
// it sets the share (%) of the memory budget given to the primary queue of a
// sweep, the one holding requests. The secondary queue, holding forwarded
// data, gets the rest. The default value is 75. Values outside of [1..99] are
// ignored.
func QueueRatio(ratio int) func(*configs) {
	return func(c *configs) {
		if ratio > 0 && ratio < 100 {
			c.queueratio = ratio
		}
	}
}

// Spill is a configuration option (function). With Spill(false), a sweep
// whose queues exceed their memory budget fails with ErrQueueCapacity instead
// of writing sorted runs to disk. Spilling is enabled by default.
func Spill(enabled bool) func(*configs) {
	return func(c *configs) {
		c.spill = enabled
	}
}

// TempDir is a configuration option (function). Used as a parameter in New it
// sets the directory where levelized files and spilled runs are created. The
// default is os.TempDir().
func TempDir(dir string) func(*configs) {
	return func(c *configs) {
		if dir != "" {
			c.tmpdir = dir
		}
	}
}

// Logger is a configuration option (function). It sets the logrus logger used
// by the engine. The default is the standard logger of logrus.
func Logger(l *logrus.Logger) func(*configs) {
	return func(c *configs) {
		if l != nil {
			c.logger = l
		}
	}
}

// Metrics is a configuration option (function). It registers the counters of
// the engine with reg. Without this option, counters are still maintained but
// not exported.
func Metrics(reg prometheus.Registerer) func(*configs) {
	return func(c *configs) {
		c.registerer = reg
	}
}

// queueItems returns the number of elements of size itemsize that a queue can
// keep in memory when it is given ratio% of the memory budget.
func (c *configs) queueItems(ratio int, itemsize uintptr) int {
	if itemsize == 0 {
		itemsize = 1
	}
	n := int(uintptr(c.memory/100*ratio) / itemsize)
	if n < _MINQUEUEITEMS {
		return _MINQUEUEITEMS
	}
	return n
}
