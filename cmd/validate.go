// =============================================================================
// EDI 944 Mapper - Validate Command
// =============================================================================
//
// The 'validate' command runs the parse and validation stages of the
// pipeline without encoding or writing anything. It is the pre-flight
// check operators run after changing a partner configuration or when a
// partner starts sending new extracts.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/outsourceai/edi-mapper/internal/config"
	"github.com/outsourceai/edi-mapper/internal/converter"
	"github.com/outsourceai/edi-mapper/pkg/utils"
)

// validateCmd checks inputs without converting them.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate input files and partner configurations without converting",
	Long: `The validate command loads the configuration, parses every input file and
runs the receipt validator, reporting problems with row-level detail. No
output is written and nothing is archived.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// runValidate checks every discoverable input file.
func runValidate() error {
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
	inputFiles, err := fm.DiscoverInputFiles(inputExtensions...)
	if err != nil {
		return err
	}
	if len(inputFiles) == 0 {
		fmt.Println("No input files found; configuration is valid.")
		return nil
	}

	invalid := 0
	for i, file := range inputFiles {
		partner := config.FindMatchingPartner(file, partnerConfigs)
		if partner == nil {
			invalid++
			fmt.Printf("  FAIL %s: no matching partner configuration\n", filepath.Base(file))
			continue
		}

		conv := converter.New(file, partner, mainConfig, mainConfig.ControlNumberSeed+i, logger)
		conv.ValidateOnly = true
		result := conv.Run()
		if result.Success {
			fmt.Printf("  ok   %s (%d item(s), partner %s)\n",
				filepath.Base(file), result.Stats.LineItems, partner.PartnerCode)
		} else {
			invalid++
			fmt.Printf("  FAIL %s: %v\n", filepath.Base(file), result.Error)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d file(s) failed validation", invalid, len(inputFiles))
	}
	fmt.Printf("All %d file(s) valid.\n", len(inputFiles))
	return nil
}
