// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import "fmt"

// Node is a vertex of a diagram: its own pointer (UID) and the pointers to its
// low and high children. A diagram reduced to a constant is stored as a single
// node whose UID is a terminal, in which case Low and High are nil.
type Node struct {
	UID  Ptr
	Low  Ptr
	High Ptr
}

// MakeNode returns the node with the given label, id and children.
func MakeNode(label Label, id ID, low, high Ptr) Node {
	return Node{UID: NodePtr(label, id), Low: low, High: high}
}

// TerminalNode returns the node used to store a constant diagram.
func TerminalNode(v bool) Node {
	return Node{UID: Terminal(v)}
}

// IsTerminal reports whether n stands for a constant diagram.
func (n Node) IsTerminal() bool {
	return n.UID.IsTerminal()
}

// Label is the label of the node; see Ptr.Label.
func (n Node) Label() Label {
	return n.UID.Label()
}

// Value is the value of a terminal node; see Ptr.Value.
func (n Node) Value() bool {
	return n.UID.Value()
}

// Negate flips the terminal children of n (or n itself when it is a terminal).
func (n Node) Negate() Node {
	return Node{UID: n.UID.Negate(), Low: n.Low.Negate(), High: n.High.Negate()}
}

func (n Node) String() string {
	if n.IsTerminal() {
		return n.UID.String()
	}
	return fmt.Sprintf("(%s, %s, %s)", n.UID, n.Low, n.High)
}

// nodeRecord is the on-disk form of a node.
type nodeRecord struct {
	_    struct{} `cbor:",toarray"`
	UID  Ptr
	Low  Ptr
	High Ptr
}
