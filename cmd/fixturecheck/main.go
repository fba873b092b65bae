// Package main parses fixture files and reports record counts and
// identifiers that appear in more than one file.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sarchlab/sst88/fixture"
	"github.com/sarchlab/sst88/logging"
)

var (
	verbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "fixturecheck fixture...",
	Short:         "Validate fixture files",
	Args:          cobra.MinimumNArgs(1),
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
		return runCheck(cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func countRecords(path string, seen map[fixture.ID]string) (n, dups int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open fixture file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := fixture.NewReader(f)
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return n, dups, nil
		}
		if err != nil {
			return n, dups, fmt.Errorf("%s: %w", path, err)
		}
		n++

		if first, ok := seen[rec.ID]; ok {
			logger.Warn("Duplicate identifier",
				zap.String("id", string(rec.ID)),
				zap.String("first", first),
				zap.String("again", path))
			dups++
			continue
		}
		seen[rec.ID] = path
	}
}

func runCheck(out io.Writer, paths []string) error {
	seen := make(map[fixture.ID]string)
	total, dups := 0, 0

	for _, path := range paths {
		n, d, err := countRecords(path, seen)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d records\n", path, n)
		total += n
		dups += d
	}

	fmt.Fprintf(out, "Total: %d records, %d duplicate identifiers\n", total, dups)
	if dups > 0 {
		return fmt.Errorf("%d duplicate identifiers", dups)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
