// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

/*
Package sweepdd defines decision diagrams (BDD and ZDD) that live in files
rather than in a node table, and whose operations are implemented as sweeps over
these files with priority queues of bounded size. It is meant for diagrams too
large to fit in memory.

Basics

A diagram is stored in a levelized file: its nodes are grouped by level (the
label of their variable) and the levels are read by increasing labels, so that
the root comes first. A node is referenced by a pointer made of its label and of
an identifier in its level. The two constants are terminal pointers that come
after every node.

Most operations return a *Diagram, which is a handle on a file together with a
negation flag. Negation is therefore done in constant time (see Not). Files are
immutable and shared between handles; they are removed when their last handle is
released, or when the handles are collected by the Go runtime.

Sweeps

Binary operations are computed in two steps. Product performs a top-down sweep
over the two inputs, level by level, and writes the arcs of an unreduced result.
Requests for pairs of nodes are kept in a priority queue sorted by level; when
one of the two nodes of a pair was already passed in its input, its children are
forwarded through a second queue. Then Reduce performs a bottom-up sweep over
the arcs and writes a canonical diagram. Apply chains the two steps. Equality
of reduced diagrams is decided by a similar two-queue sweep (IsHomomorphic) that
stops at the first difference.

Memory management

The memory used by the priority queues of a sweep is bounded by the Memory
option of New. When a queue is full, its content is sorted and written to disk
as a run, unless spilling is disabled (see Spill). Logs go through logrus and
counters can be exported to Prometheus (see Logger and Metrics).

Use of build tags

To unlock logging of every level closed by a product sweep, you can compile
your executable with the build tag `debug`.
*/
package sweepdd
