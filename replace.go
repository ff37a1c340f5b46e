// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import (
	"fmt"
	"runtime"

	"github.com/pkg/errors"
)

// Replacer is the type of association lists used to replace variables in a
// diagram.
type Replacer interface {
	Replace(Label) (Label, bool)
}

type replacer struct {
	image []Label // map the level of old variables to the level of new variables
	last  Label   // last index in the Replacer, to speed up computations
}

func (r *replacer) String() string {
	res := fmt.Sprintf("replacer(last: %d)[", r.last)
	first := true
	for k, v := range r.image {
		if Label(k) != v {
			if !first {
				res += ", "
			}
			first = false
			res += fmt.Sprintf("%d<-%d", k, v)
		}
	}
	return res + "]"
}

func (r *replacer) Replace(level Label) (Label, bool) {
	if level > r.last {
		return level, false
	}
	return r.image[level], true
}

// NewReplacer returns a Replacer for substituting variable oldvars[k] with
// newvars[k]. We return an error if the two slices do not have the same length
// or if we find the same index twice in either of them. All values must be in
// [0..MaxLabel].
func NewReplacer(oldvars []int, newvars []int) (Replacer, error) {
	res := &replacer{}
	if len(oldvars) != len(newvars) {
		return nil, errors.Errorf("unmatched length of slices")
	}
	if len(oldvars) == 0 {
		res.image = []Label{0}
		return res, nil
	}
	support := make(map[int]bool)
	for _, v := range oldvars {
		if err := checkvar(v); err != nil {
			return nil, err
		}
		if support[v] {
			return nil, errors.Errorf("duplicate variable (%d) in oldvars", v)
		}
		support[v] = true
		if Label(v) > res.last {
			res.last = Label(v)
		}
	}
	image := make(map[int]bool)
	for _, v := range newvars {
		if err := checkvar(v); err != nil {
			return nil, err
		}
		if image[v] {
			return nil, errors.Errorf("duplicate variable (%d) in newvars", v)
		}
		image[v] = true
	}
	res.image = make([]Label, res.last+1)
	for k := range res.image {
		res.image[k] = Label(k)
	}
	for k, v := range oldvars {
		res.image[v] = Label(newvars[k])
	}
	return res, nil
}

// Replace computes the result of d after replacing old variables with new
// ones, in a single pass over its file. The renaming must preserve the order
// of the variables of d, otherwise we return ErrReplaceOrder.
func (e *Engine) Replace(d *Diagram, r Replacer) (res *Diagram, err error) {
	defer catch(&err)
	defer runtime.KeepAlive(d)
	d.check()
	if d.file.IsTerminal() {
		return e.diagram(d.file, d.negate), nil
	}
	rename := func(l Label) Label {
		if v, ok := r.Replace(l); ok {
			return v
		}
		return l
	}
	levels := d.file.LevelInfo()
	for k := 1; k < len(levels); k++ {
		if rename(levels[k-1].Label) >= rename(levels[k].Label) {
			return nil, errors.Wrapf(ErrReplaceOrder, "%d and %d swapped", levels[k-1].Label, levels[k].Label)
		}
	}
	ptr := func(p Ptr) Ptr {
		if p.IsNode() {
			return NodePtr(rename(p.label), p.id)
		}
		return p
	}
	in := d.file.mustOpen(false)
	defer in.Close()
	w, err := e.NewWriter()
	if err != nil {
		return nil, err
	}
	for in.CanPull() {
		n := in.Pull()
		if err := w.Push(Node{UID: ptr(n.UID), Low: ptr(n.Low), High: ptr(n.High)}); err != nil {
			return nil, err
		}
	}
	f, err := w.finish()
	if err != nil {
		return nil, err
	}
	f.cuts = d.file.cuts
	return e.diagram(f, d.negate), nil
}
