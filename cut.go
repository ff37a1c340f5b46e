// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

// CutType selects which arcs are counted in a 1-level cut.
type CutType int

const (
	CutInternal      CutType = iota // arcs between internal nodes
	CutInternalFalse                // internal arcs and arcs to False
	CutInternalTrue                 // internal arcs and arcs to True
	CutAll                          // every arc
)

var cutnames = [4]string{
	CutInternal:      "internal",
	CutInternalFalse: "internal+false",
	CutInternalTrue:  "internal+true",
	CutAll:           "all",
}

func (t CutType) String() string {
	return cutnames[t]
}

// Cuts stores, for each type of cut, the maximal number of arcs crossing the
// space between two consecutive levels of a diagram.
type Cuts [4]uint64

// Get returns the cut of type t.
func (c Cuts) Get(t CutType) uint64 {
	return c[t]
}

// update takes into account a new cut, with internal arcs and arcs to the
// False and True terminals.
func (c *Cuts) update(internal, falses, trues uint64) {
	values := [4]uint64{
		CutInternal:      internal,
		CutInternalFalse: internal + falses,
		CutInternalTrue:  internal + trues,
		CutAll:           internal + falses + trues,
	}
	for k, v := range values {
		if v > c[k] {
			c[k] = v
		}
	}
}

// productBound is an upper bound on the number of pending requests of a
// product between diagrams with cuts a and b.
func productBound(a, b Cuts) uint64 {
	x, y := a[CutAll]+1, b[CutAll]+1
	if y != 0 && x > ^uint64(0)/y {
		return ^uint64(0)
	}
	return x * y
}
