// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

type ptrKind uint8

const (
	kindNil ptrKind = iota
	kindNode
	kindTerminal
)

// Ptr is a reference to a node of a diagram, to one of the two terminals, or
// the nil pointer (the zero value). Pointers are totally ordered: first by
// label, then by id. Terminals come after all the nodes, with False before
// True, and nil comes last.
type Ptr struct {
	kind  ptrKind
	label Label
	id    ID
}

// NilPtr is the nil pointer. It is also the zero value of Ptr.
var NilPtr = Ptr{}

// Terminal returns a pointer to the terminal with value v.
func Terminal(v bool) Ptr {
	if v {
		return Ptr{kind: kindTerminal, id: 1}
	}
	return Ptr{kind: kindTerminal}
}

// NodePtr returns a pointer to the node with the given label and id. It panics
// if one of the values is out of range.
func NodePtr(label Label, id ID) Ptr {
	if label > MaxLabel {
		throwf(ErrInvariant, "label %d larger than %d", label, MaxLabel)
	}
	if id > MaxID {
		throwf(ErrIDSpace, "id %d larger than %d", id, MaxID)
	}
	return Ptr{kind: kindNode, label: label, id: id}
}

// IsNil reports whether p is the nil pointer.
func (p Ptr) IsNil() bool {
	return p.kind == kindNil
}

// IsNode reports whether p points to an internal node.
func (p Ptr) IsNode() bool {
	return p.kind == kindNode
}

// IsTerminal reports whether p points to one of the two terminals.
func (p Ptr) IsTerminal() bool {
	return p.kind == kindTerminal
}

// Value returns the value of a terminal. Calling Value on a pointer that is not
// a terminal is a contract violation.
func (p Ptr) Value() bool {
	if p.kind != kindTerminal {
		throwf(ErrInvariant, "value of non-terminal %s", p)
	}
	return p.id == 1
}

// Label returns the label of a node. Calling Label on a terminal (or on nil) is
// a contract violation.
func (p Ptr) Label() Label {
	if p.kind != kindNode {
		throwf(ErrTerminalLabel, "%s", p)
	}
	return p.label
}

// ID returns the id of a node in its level.
func (p Ptr) ID() ID {
	return p.id
}

// Negate flips the value of a terminal. Other pointers are unchanged.
func (p Ptr) Negate() Ptr {
	if p.kind == kindTerminal {
		p.id ^= 1
	}
	return p
}

// level is the label used for ordering, with sentinels for terminals and nil.
func (p Ptr) level() Label {
	switch p.kind {
	case kindNode:
		return p.label
	case kindTerminal:
		return terminalLabel
	}
	return nilLabel
}

// Compare returns -1, 0 or +1 depending on whether a is smaller, equal or
// larger than b.
func Compare(a, b Ptr) int {
	la, lb := a.level(), b.level()
	switch {
	case la < lb:
		return -1
	case la > lb:
		return 1
	case a.id < b.id:
		return -1
	case a.id > b.id:
		return 1
	}
	return 0
}

// Less reports whether p comes strictly before q.
func (p Ptr) Less(q Ptr) bool {
	return Compare(p, q) < 0
}

// fst returns the smallest of two pointers and snd the largest.
func fst(a, b Ptr) Ptr {
	if Compare(a, b) <= 0 {
		return a
	}
	return b
}

func snd(a, b Ptr) Ptr {
	if Compare(a, b) <= 0 {
		return b
	}
	return a
}

// String returns "T" or "F" for terminals, "nil" for the nil pointer, and
// "label:id" for nodes. ParsePtr reads back this format.
func (p Ptr) String() string {
	switch p.kind {
	case kindTerminal:
		if p.id == 1 {
			return "T"
		}
		return "F"
	case kindNode:
		return fmt.Sprintf("%d:%d", p.label, p.id)
	}
	return "nil"
}

// ParsePtr is the inverse of Ptr.String.
func ParsePtr(s string) (Ptr, error) {
	switch strings.TrimSpace(s) {
	case "T", "true", "1":
		return Terminal(true), nil
	case "F", "false", "0":
		return Terminal(false), nil
	case "nil", "":
		return NilPtr, nil
	}
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return NilPtr, errors.Errorf("bad pointer %q, expected label:id", s)
	}
	label, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil || Label(label) > MaxLabel {
		return NilPtr, errors.Errorf("bad label in pointer %q", s)
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil || ID(id) > MaxID {
		return NilPtr, errors.Errorf("bad id in pointer %q", s)
	}
	return Ptr{kind: kindNode, label: Label(label), id: ID(id)}, nil
}

// MarshalCBOR encodes a pointer as a three elements array.
func (p Ptr) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal([3]uint64{uint64(p.kind), uint64(p.label), uint64(p.id)})
}

// UnmarshalCBOR decodes a pointer written by MarshalCBOR.
func (p *Ptr) UnmarshalCBOR(data []byte) error {
	var raw [3]uint64
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw[0] > uint64(kindTerminal) || raw[1] > uint64(MaxLabel) || raw[2] > uint64(MaxID) {
		return errors.Errorf("corrupted pointer record %v", raw)
	}
	*p = Ptr{kind: ptrKind(raw[0]), label: Label(raw[1]), id: ID(raw[2])}
	return nil
}
