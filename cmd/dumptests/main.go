// Package main filters fixture files down to the records named in a
// harness log.
//
//	./test opcode-*.dat | dumptests opcode-*.dat > failing.dat
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sarchlab/sst88/filter"
	"github.com/sarchlab/sst88/fixture"
	"github.com/sarchlab/sst88/logging"
)

var (
	verbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dumptests [fixture...]",
	Short: "Extract the fixture records named in a harness log",
	Long: `dumptests reads harness output on standard input and collects the
identifiers of every [PASS] and [FAIL] line. It then copies the matching
records of the given fixture files to standard output, in file order.

Pipe the harness through grep FAIL first to keep only failing tests.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.New(logging.Options{Verbose: verbose, Output: cmd.ErrOrStderr()})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDump(cmd.InOrStdin(), cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func runDump(in io.Reader, out io.Writer, paths []string) error {
	ids, err := filter.CollectIDs(in)
	if err != nil {
		return fmt.Errorf("failed to read log: %w", err)
	}
	logger.Debug("Collected identifiers", zap.Int("count", ids.Len()))

	x := filter.NewExtractor(ids, out)
	x.OnUnterminated = func(open, next fixture.ID) {
		logger.Warn("Record not terminated by a blank line",
			zap.String("record", string(open)),
			zap.String("next", string(next)))
	}

	for _, path := range paths {
		before := x.Emitted()
		if err := x.ExtractFile(path); err != nil {
			_ = x.Flush()
			return err
		}
		logger.Debug("Scanned fixture",
			zap.String("path", path),
			zap.Int("records", x.Emitted()-before))
	}

	return x.Flush()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
