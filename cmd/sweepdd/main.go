// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

// Command sweepdd applies the operations of package sweepdd to diagrams
// described in YAML files.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dalzilio/sweepdd"
)

type options struct {
	memory  int
	tmpdir  string
	noSpill bool
	verbose bool
	stats   bool
	zdd     bool
	logger  *log.Logger
}

func (o *options) addFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.memory, "memory", 64<<20, "memory budget (bytes) of the priority queues of a sweep")
	fs.StringVar(&o.tmpdir, "tmpdir", os.TempDir(), "directory of levelized files and spilled runs")
	fs.BoolVar(&o.noSpill, "no-spill", false, "fail instead of spilling priority queues to disk")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "use debug log level")
	fs.BoolVar(&o.stats, "stats", false, "print engine statistics on stderr when done")
	fs.BoolVar(&o.zdd, "zdd", false, "interpret diagrams as zero-suppressed decision diagrams")
}

// engine returns a new engine configured from the command line.
func (o *options) engine() (*sweepdd.Engine, error) {
	o.logger = log.New()
	o.logger.SetOutput(os.Stderr)
	if o.verbose {
		o.logger.SetLevel(log.DebugLevel)
	}
	return sweepdd.New(
		sweepdd.Memory(o.memory),
		sweepdd.TempDir(o.tmpdir),
		sweepdd.Spill(!o.noSpill),
		sweepdd.Logger(o.logger),
	)
}

func (o *options) done(e *sweepdd.Engine) {
	if o.stats {
		os.Stderr.WriteString(e.Stats() + "\n")
	}
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:          "sweepdd",
		Short:        "Operations on decision diagrams stored in files",
		Long:         `A CLI tool to compute products, equality checks and counts over BDD and ZDD described in YAML files.`,
		SilenceUsage: true,
	}
	o.addFlags(cmd.PersistentFlags())
	cmd.AddCommand(
		newApplyCmd(o),
		newEqualCmd(o),
		newCountCmd(o),
		newDotCmd(o),
	)
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
