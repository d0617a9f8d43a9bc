// =============================================================================
// EDI 944 Mapper - Root Command
// =============================================================================
//
// The root command for the Cobra CLI. All other commands ('process',
// 'validate', 'version') attach to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (edimapper)
//   ├── processCmd  (edimapper process)
//   ├── validateCmd (edimapper validate)
//   └── versionCmd  (edimapper version)
//
// The root command owns the global flags (--config, --verbose) and the
// logger setup; commands load the configuration themselves because they
// need the config path flag resolved first.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cfgFile is the path to the main configuration file, set via --config.
var cfgFile string

// verbose enables debug logging.
var verbose bool

// logger is the process-wide structured logger, built in initLogger.
var logger *zap.SugaredLogger

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "edimapper",
	Short: "EDI 944 Mapper - Convert warehouse receipt extracts to EDI 944 documents",
	Long: `EDI 944 Mapper converts tabular warehouse-receipt extracts (pipe-delimited
system exports and XLSX receipt workbooks) into ANSI X12 EDI 944 Warehouse
Stock Transfer Receipt Advice documents.

Conversion is fully deterministic and runs offline: the EDI segment stream
is generated from an explicit grammar, so the same input always produces a
byte-identical document.

Key Features:
  - Per-partner configuration: dialects, file patterns, interchange IDs
  - Standard and Synapse output dialects
  - Strict input validation with row-level error reporting
  - Concurrent batch processing with automatic archival

Example Usage:
  edimapper process                    # Convert all files in the input directory
  edimapper process --dry-run          # Encode without writing output
  edimapper validate                   # Check inputs without converting`,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the CLI. Called once from main.
func Execute() {
	defer func() {
		if logger != nil {
			logger.Sync()
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	cobra.OnInitialize(initLogger)
}

// initLogger builds the process logger. --verbose switches to the
// development config with debug level enabled.
func initLogger() {
	var base *zap.Logger
	var err error
	if verbose {
		base, err = zap.NewDevelopment()
	} else {
		base, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger = base.Sugar()
}
