// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package main

import (
	"io"
	"os"

	"github.com/dalzilio/sweepdd"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// diagramFile is the YAML description of a diagram. A constant diagram has no
// levels and a Constant field. Pointers are written "label:id", "T" or "F".
type diagramFile struct {
	Constant *bool       `yaml:"constant,omitempty"`
	Negate   bool        `yaml:"negate,omitempty"`
	Levels   []levelDesc `yaml:"levels,omitempty"`
}

type levelDesc struct {
	Label uint32     `yaml:"label"`
	Nodes []nodeDesc `yaml:"nodes"`
}

type nodeDesc struct {
	ID   uint64 `yaml:"id"`
	Low  string `yaml:"low"`
	High string `yaml:"high"`
}

func readDiagram(e *sweepdd.Engine, r io.Reader) (*sweepdd.Diagram, error) {
	var desc diagramFile
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := yaml.UnmarshalStrict(data, &desc); err != nil {
		return nil, errors.Wrap(err, "decoding diagram")
	}
	if desc.Constant != nil {
		if len(desc.Levels) != 0 {
			return nil, errors.New("constant diagram with levels")
		}
		return e.From(*desc.Constant != desc.Negate), nil
	}
	if len(desc.Levels) == 0 {
		return nil, errors.New("diagram without levels")
	}
	w, err := e.NewWriter()
	if err != nil {
		return nil, err
	}
	for _, l := range desc.Levels {
		if l.Label > uint32(sweepdd.MaxLabel) {
			return nil, errors.Errorf("label %d out of range", l.Label)
		}
		for _, n := range l.Nodes {
			low, err := sweepdd.ParsePtr(n.Low)
			if err != nil {
				return nil, errors.Wrapf(err, "node %d:%d", l.Label, n.ID)
			}
			high, err := sweepdd.ParsePtr(n.High)
			if err != nil {
				return nil, errors.Wrapf(err, "node %d:%d", l.Label, n.ID)
			}
			if n.ID > uint64(sweepdd.MaxID) {
				return nil, errors.Errorf("id %d out of range", n.ID)
			}
			if err := w.Push(sweepdd.MakeNode(sweepdd.Label(l.Label), sweepdd.ID(n.ID), low, high)); err != nil {
				return nil, err
			}
		}
	}
	d, err := w.Close()
	if err != nil {
		return nil, err
	}
	if desc.Negate {
		defer d.Release()
		return e.Not(d)
	}
	return d, nil
}

func loadDiagram(e *sweepdd.Engine, filename string) (*sweepdd.Diagram, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := readDiagram(e, f)
	return d, errors.Wrapf(err, "loading %s", filename)
}

func writeDiagram(e *sweepdd.Engine, w io.Writer, d *sweepdd.Diagram) error {
	var desc diagramFile
	if v, ok := d.Constant(); ok {
		desc.Constant = &v
	} else {
		err := e.Allnodes(d, func(n sweepdd.Node) error {
			if n.IsTerminal() {
				return nil
			}
			label := uint32(n.Label())
			if k := len(desc.Levels); k == 0 || desc.Levels[k-1].Label != label {
				desc.Levels = append(desc.Levels, levelDesc{Label: label})
			}
			l := &desc.Levels[len(desc.Levels)-1]
			l.Nodes = append(l.Nodes, nodeDesc{ID: uint64(n.UID.ID()), Low: n.Low.String(), High: n.High.String()})
			return nil
		})
		if err != nil {
			return err
		}
	}
	data, err := yaml.Marshal(&desc)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
