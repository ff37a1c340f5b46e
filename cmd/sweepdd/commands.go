// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dalzilio/sweepdd"
)

// output returns the destination named by the --output flag.
func output(cmd *cobra.Command, filename string) (io.Writer, func() error, error) {
	if filename == "" || filename == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(filename)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func newApplyCmd(o *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "apply OPERATOR LEFT RIGHT",
		Short: "Compute the product of two diagrams and reduce it",
		Long: `The sweepdd apply command computes LEFT OPERATOR RIGHT, where
        OPERATOR is one of and, xor, or, nand, nor, imp, biimp, diff, less
        and invimp, and writes the reduced result in YAML.

        $ sweepdd apply and a.yaml b.yaml -o result.yaml
        `,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, ok := sweepdd.ParseOperator(args[0])
			if !ok {
				return errors.Errorf("unknown operator %q", args[0])
			}
			e, err := o.engine()
			if err != nil {
				return err
			}
			defer o.done(e)
			left, err := loadDiagram(e, args[1])
			if err != nil {
				return err
			}
			defer left.Release()
			right, err := loadDiagram(e, args[2])
			if err != nil {
				return err
			}
			defer right.Release()

			var u *sweepdd.Unreduced
			if o.zdd {
				u, err = e.ZddProduct(left, right, op)
			} else {
				u, err = e.Product(left, right, op)
			}
			if err != nil {
				return err
			}
			o.logger.WithFields(log.Fields{
				"op":        op,
				"requests":  e.LastSweep().Requests,
				"forwarded": e.LastSweep().Forwarded,
			}).Debug("product done")
			d, err := e.Reduce(u)
			if err != nil {
				return err
			}
			defer d.Release()
			w, closer, err := output(cmd, out)
			if err != nil {
				return err
			}
			if err := writeDiagram(e, w, d); err != nil {
				closer()
				return err
			}
			return closer()
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "file where the result is written (default stdout)")
	return cmd
}

func newEqualCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "equal LEFT RIGHT",
		Short: "Check that two reduced diagrams are equal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.engine()
			if err != nil {
				return err
			}
			defer o.done(e)
			left, err := loadDiagram(e, args[0])
			if err != nil {
				return err
			}
			defer left.Release()
			right, err := loadDiagram(e, args[1])
			if err != nil {
				return err
			}
			defer right.Release()
			ok, err := e.Equal(left, right)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	}
}

func newCountCmd(o *options) *cobra.Command {
	var varcount int
	cmd := &cobra.Command{
		Use:   "count DIAGRAM",
		Short: "Count the paths to True, or the satisfying assignments",
		Long: `The sweepdd count command prints the number of paths from the root
        of DIAGRAM to True (the number of sets of a ZDD). With --vars, it
        prints the number of satisfying assignments over that many variables.
        `,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.engine()
			if err != nil {
				return err
			}
			defer o.done(e)
			d, err := loadDiagram(e, args[0])
			if err != nil {
				return err
			}
			defer d.Release()
			if cmd.Flags().Changed("vars") {
				if o.zdd {
					return errors.New("--vars cannot be used with --zdd")
				}
				n, err := e.SatCount(d, varcount)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			}
			n, err := e.PathCount(d)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	cmd.Flags().IntVar(&varcount, "vars", 0, "number of variables for counting satisfying assignments")
	return cmd
}

func newDotCmd(o *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "dot DIAGRAM",
		Short: "Print a diagram in Graphviz DOT format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.engine()
			if err != nil {
				return err
			}
			defer o.done(e)
			d, err := loadDiagram(e, args[0])
			if err != nil {
				return err
			}
			defer d.Release()
			w, closer, err := output(cmd, out)
			if err != nil {
				return err
			}
			if err := e.WriteDot(w, d); err != nil {
				closer()
				return err
			}
			return closer()
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "file where the graph is written (default stdout)")
	return cmd
}
