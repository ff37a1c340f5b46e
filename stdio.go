// Copyright 2021. Silvano DAL ZILIO.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package sweepdd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"text/tabwriter"
)

// stats returns information about the sweeps of the engine
func (e *Engine) stats() string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Sweeps:\t%d\n", e.sweeps)
	fmt.Fprintf(w, "Requests:\t%d\n", e.totals.Requests)
	fmt.Fprintf(w, "Forwarded:\t%d\n", e.totals.Forwarded)
	fmt.Fprintf(w, "Levels:\t%d\n", e.totals.Levels)
	fmt.Fprintf(w, "Arcs:\t%d\n", e.totals.Arcs)
	fmt.Fprintf(w, "Spilled runs:\t%d\n", e.totals.Spilled)
	fmt.Fprintf(w, "Last sweep:\t%s\n", e.last.Kind)
	w.Flush()
	return strings.TrimRight(sb.String(), "\n")
}

func (e *Engine) gcstats() string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Handles:\t%d\n", atomic.LoadUint64(&e.gcstat.setfinalizers))
	fmt.Fprintf(w, "Reclaimed:\t%d\n", atomic.LoadUint64(&e.gcstat.calledfinalizers))
	fmt.Fprintf(w, "Removed files:\t%d\n", atomic.LoadUint64(&e.gcstat.removedfiles))
	w.Flush()
	return strings.TrimRight(sb.String(), "\n")
}

// Stats returns information about the engine.
func (e *Engine) Stats() string {
	return e.stats() + "\n" + e.gcstats()
}

// PrintStats outputs a textual representation of the engine statistics.
func (e *Engine) PrintStats() {
	fmt.Println("==============")
	fmt.Println(e.stats())
	fmt.Println("==============")
	fmt.Println(e.gcstats())
	fmt.Println("==============")
}

// ******************************************************************************************************

// Print outputs a textual representation of d, one node per line and one
// block per level.
func (e *Engine) Print(w io.Writer, d *Diagram) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	current := nilLabel
	err := e.Allnodes(d, func(n Node) error {
		if n.IsTerminal() {
			_, err := fmt.Fprintln(tw, n.UID)
			return err
		}
		if n.UID.label != current {
			current = n.UID.label
			fmt.Fprintf(tw, "level %d:\n", current)
		}
		_, err := fmt.Fprintf(tw, "\t%s\t? %s\t: %s\n", n.UID, n.High, n.Low)
		return err
	})
	if err != nil {
		return err
	}
	return tw.Flush()
}

// PrintDot prints a graph-like description of d on the standard output using
// the DOT format.
func (e *Engine) PrintDot(d *Diagram) error {
	return e.printDot(bufio.NewWriter(os.Stdout), d)
}

// FPrintDot writes the DOT description of d to filename, or to the standard
// output if filename is "-".
func (e *Engine) FPrintDot(filename string, d *Diagram) error {
	var out *os.File
	var err error
	if filename == "-" {
		out = os.Stdout
	} else {
		out, err = os.Create(filename)
		if err != nil {
			return err
		}
		defer out.Close()
	}
	return e.printDot(bufio.NewWriter(out), d)
}

// WriteDot writes the DOT description of d to w.
func (e *Engine) WriteDot(w io.Writer, d *Diagram) error {
	return e.printDot(bufio.NewWriter(w), d)
}

// printDot returns a GraphViz DOT file. We do not draw arcs that go to the
// constant false.
func (e *Engine) printDot(w *bufio.Writer, d *Diagram) error {
	fmt.Fprintln(w, "digraph G {")
	fmt.Fprintln(w, "T [shape=box, label=\"1\", style=filled, shape=box, height=0.3, width=0.3];")
	err := e.Allnodes(d, func(n Node) error {
		if n.IsTerminal() {
			if !n.Value() {
				fmt.Fprintln(w, "F [shape=box, label=\"0\", style=filled, shape=box, height=0.3, width=0.3];")
			}
			return nil
		}
		fmt.Fprintf(w, "%q %s\n", n.UID.String(), dotlabel(n.UID))
		if n.Low != Terminal(false) {
			fmt.Fprintf(w, "%q -> %q [style=dotted];\n", n.UID.String(), n.Low.String())
		}
		if n.High != Terminal(false) {
			fmt.Fprintf(w, "%q -> %q [style=filled];\n", n.UID.String(), n.High.String())
		}
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "}")
	return w.Flush()
}

func dotlabel(p Ptr) string {
	return fmt.Sprintf(`[label=<
	<FONT POINT-SIZE="20">%d</FONT>
	<FONT POINT-SIZE="10">[%d]</FONT>
>];`, p.label, p.id)
}
