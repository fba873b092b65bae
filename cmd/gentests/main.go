// Package main converts the upstream 8088 single-step tests into harness
// fixture files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sarchlab/sst88/encoder"
	"github.com/sarchlab/sst88/logging"
)

var (
	configPath  string
	sourceRoot  string
	outputDir   string
	opcodes     []string
	writeConfig string
	verbose     bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gentests",
	Short: "Generate harness fixtures from the 8088 single-step tests",
	Long: `gentests reads the summary document of an upstream checkout
(ProcessorTests/8088/v1/8088.json by default) and writes one fixture file,
opcode-<opcode>.dat, for every opcode whose status is "normal".

Collections that are missing or unreadable are reported and skipped.

With --write-config the merged configuration is saved to the given file
(JSON, or YAML for .yaml/.yml) and nothing is generated.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.New(logging.Options{Verbose: verbose, Output: cmd.OutOrStdout()})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runGenerate,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "encoder config file (JSON or YAML)")
	rootCmd.Flags().StringVarP(&sourceRoot, "source", "s", "", "upstream test directory (overrides config)")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "fixture output directory (overrides config)")
	rootCmd.Flags().StringSliceVar(&opcodes, "opcode", nil, "only generate the given encoded opcodes")
	rootCmd.Flags().StringVar(&writeConfig, "write-config", "", "save the effective config to this file and exit")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig merges the config file and the command-line overrides.
func loadConfig() (*encoder.Config, error) {
	config := encoder.DefaultConfig()
	if configPath != "" {
		var err error
		config, err = encoder.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
	}

	if sourceRoot != "" {
		config.SourceRoot = sourceRoot
	}
	if outputDir != "" {
		config.OutputDir = outputDir
	}
	if len(opcodes) > 0 {
		config.Opcodes = opcodes
	}

	return config, config.Validate()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	if writeConfig != "" {
		if err := config.SaveConfig(writeConfig); err != nil {
			return err
		}
		logger.Info("Wrote config", zap.String("path", writeConfig))
		return nil
	}

	summary, err := encoder.New(config, logger).Run()
	if err != nil {
		return err
	}

	logger.Info("Done",
		zap.Int("opcodes", len(summary.Processed)),
		zap.Int("records", summary.Records),
		zap.Int("skipped", len(summary.Skipped)),
		zap.Int("failed", len(summary.Failed)))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
