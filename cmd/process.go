// =============================================================================
// EDI 944 Mapper - Process Command
// =============================================================================
//
// The 'process' command converts every receipt extract in the input
// directory to an EDI 944 document.
//
// PROCESSING PIPELINE:
//   1. Load the main and partner configurations
//   2. Discover input files
//   3. Match each file to a partner configuration
//   4. Convert files concurrently (bounded by max_concurrency), each with
//      its own interchange control number
//   5. Archive processed files and print a summary
//
// FLAGS:
//   --dry-run   : encode without writing output or archiving
//   --file      : process only the named file
//   --partner   : restrict processing to one partner code
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/outsourceai/edi-mapper/internal/config"
	"github.com/outsourceai/edi-mapper/internal/converter"
	"github.com/outsourceai/edi-mapper/pkg/utils"
)

// inputExtensions are the file extensions scanned in the input directory.
var inputExtensions = []string{".txt", ".csv", ".dat", ".xlsx"}

// Process command flags.
var (
	dryRun      bool
	onlyFile    string
	onlyPartner string
)

// processCmd converts the input directory.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert receipt extracts to EDI 944 documents",
	Long: `The process command scans the input directory for receipt extracts, matches
them to the appropriate partner configuration, and converts them to EDI 944
documents.

Files are processed concurrently and independently: an error in one file
does not affect the others. On success the generated document is placed in
the output directory and the input file moves to the input archive; on
failure the input file stays put and the error appears in the summary.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess()
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Encode without writing output files or archiving")
	processCmd.Flags().StringVar(&onlyFile, "file", "",
		"Process only the named file")
	processCmd.Flags().StringVar(&onlyPartner, "partner", "",
		"Process only files for the given partner code")
}

// runProcess orchestrates the batch conversion.
func runProcess() error {
	startTime := time.Now()

	mainConfig, partnerConfigs, err := loadConfiguration()
	if err != nil {
		return err
	}

	fm := utils.NewFileManager(
		mainConfig.InputDir,
		mainConfig.OutputDir,
		mainConfig.InputArchiveDir,
		mainConfig.OutputArchiveDir,
	)
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	inputFiles, err := discoverFiles(fm)
	if err != nil {
		return err
	}
	if len(inputFiles) == 0 {
		fmt.Println("No input files found.")
		return nil
	}
	logger.Infow("starting batch", "files", len(inputFiles), "dry_run", dryRun)

	// Fan the files out over a bounded worker pool. Every file gets its
	// own interchange control number, assigned up front so numbering does
	// not depend on scheduling order.
	var wg sync.WaitGroup
	results := make(chan converter.Result, len(inputFiles))
	semaphore := make(chan struct{}, mainConfig.MaxConcurrency)

	for i, file := range inputFiles {
		partner := config.FindMatchingPartner(file, partnerConfigs)
		// --partner scopes the whole batch: files outside the chosen
		// partner are skipped silently, matched or not.
		if onlyPartner != "" && (partner == nil || partner.PartnerCode != onlyPartner) {
			continue
		}
		if partner == nil {
			results <- converter.Result{
				FilePath: file,
				Error:    fmt.Errorf("no matching partner configuration found"),
			}
			continue
		}

		wg.Add(1)
		go func(filePath string, partner *config.PartnerConfig, controlNumber int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			conv := converter.New(filePath, partner, mainConfig, controlNumber, logger)
			conv.DryRun = dryRun
			results <- conv.Run()
		}(file, partner, mainConfig.ControlNumberSeed+i)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results and print the summary.
	var successCount, errorCount, totalItems int
	for result := range results {
		if result.Success {
			successCount++
			totalItems += result.Stats.LineItems
			fmt.Printf("  ok   %s -> %s\n", filepath.Base(result.FilePath), result.OutputFile)
		} else {
			errorCount++
			fmt.Printf("  FAIL %s: %v\n", filepath.Base(result.FilePath), result.Error)
		}
	}

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total files:     %d\n", successCount+errorCount)
	fmt.Printf("Successful:      %d\n", successCount)
	fmt.Printf("Errors:          %d\n", errorCount)
	fmt.Printf("Line items:      %d\n", totalItems)
	fmt.Printf("Time elapsed:    %s\n", time.Since(startTime))

	if errorCount > 0 && !mainConfig.ContinueOnError {
		return fmt.Errorf("%d file(s) failed", errorCount)
	}
	return nil
}

// loadConfiguration loads the main and partner configurations.
func loadConfiguration() (*config.MainConfig, map[string]*config.PartnerConfig, error) {
	mainConfig, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load main config: %w", err)
	}

	partnerConfigs, err := config.LoadPartnerConfigs(mainConfig.ConfigsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load partner configs: %w", err)
	}
	if len(partnerConfigs) == 0 {
		return nil, nil, fmt.Errorf("no partner configurations found in %s", mainConfig.ConfigsDir)
	}

	logger.Infow("loaded configuration", "partners", len(partnerConfigs))
	return mainConfig, partnerConfigs, nil
}

// discoverFiles resolves the file set to process, honoring --file.
func discoverFiles(fm *utils.FileManager) ([]string, error) {
	if onlyFile != "" {
		if !utils.FileExists(onlyFile) {
			return nil, fmt.Errorf("file not found: %s", onlyFile)
		}
		return []string{onlyFile}, nil
	}
	return fm.DiscoverInputFiles(inputExtensions...)
}
