// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvariant is returned when an internal contract of a sweep is
	// violated, for instance when a request points to a level above the one
	// being produced. Such an error means the input files are corrupted.
	ErrInvariant = errors.New("sweep invariant violated")
	// ErrTerminalLabel is returned when asking for the label of a terminal.
	ErrTerminalLabel = errors.New("label of a terminal")
	// ErrExhausted is returned when pulling from an empty stream.
	ErrExhausted = errors.New("stream exhausted")
	// ErrIDSpace is returned when a level needs more than MaxID+1 nodes.
	ErrIDSpace = errors.New("no more identifiers on level")
	// ErrQueueCapacity is returned when a priority queue is full and spilling
	// to disk is disabled.
	ErrQueueCapacity = errors.New("priority queue capacity exceeded")
	// ErrReplaceOrder is returned by Replace when the renaming does not
	// preserve the order of the variables.
	ErrReplaceOrder = errors.New("replacer does not preserve the variable order")
	// ErrOperator is returned when an operator is unknown or cannot be used
	// with a ZDD.
	ErrOperator = errors.New("unsupported operator")
	// ErrVarcount is returned when counting assignments over a number of
	// variables that does not cover the labels of a diagram.
	ErrVarcount = errors.New("bad number of variables")
	// ErrReleased is returned when using a diagram after calling Release.
	ErrReleased = errors.New("diagram already released")
	// ErrLevelizedFile is returned when writing a node that breaks the layout
	// of a levelized file.
	ErrLevelizedFile = errors.New("malformed levelized file")
)

// sweepError is the value of the panics used to abort a sweep on a contract
// violation. They are turned back into errors by catch.
type sweepError struct {
	err error
}

func (e *sweepError) Error() string {
	return e.err.Error()
}

func throw(err error) {
	panic(&sweepError{err: err})
}

func throwf(err error, format string, a ...interface{}) {
	panic(&sweepError{err: errors.Wrapf(err, format, a...)})
}

// catch is deferred in every exported operation that can reach a throw. Other
// panics are propagated.
func catch(err *error) {
	if r := recover(); r != nil {
		se, ok := r.(*sweepError)
		if !ok {
			panic(r)
		}
		*err = se.err
	}
}

// Error returns the error status of the Set.
func (s *Set) Error() string {
	if s.error == nil {
		return ""
	}
	return s.error.Error()
}

// Errored returns true if there was an error during a computation.
func (s *Set) Errored() bool {
	return s.error != nil
}

func (s *Set) seterror(err error) *Diagram {
	if s.error != nil {
		s.error = errors.Wrap(err, s.error.Error())
		return nil
	}
	s.error = err
	s.engine.log.WithError(err).Debug("set operation failed")
	return nil
}
