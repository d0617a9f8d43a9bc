// =============================================================================
// EDI 944 Mapper - Main Entry Point
// =============================================================================
//
// CLI tool that converts tabular warehouse-receipt extracts into ANSI X12
// EDI 944 (Warehouse Stock Transfer Receipt Advice) documents.
//
// USAGE:
//   edimapper process       - Convert all extracts in the input directory
//   edimapper validate      - Validate inputs and configuration only
//   edimapper version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/        : CLI command definitions (Cobra)
//   - internal/   : core logic (parsers, validator, EDI encoder, pipeline)
//   - pkg/        : shared utilities
//   - configs/    : per-partner YAML configurations
//
// =============================================================================

package main

import (
	"github.com/outsourceai/edi-mapper/cmd"
)

func main() {
	cmd.Execute()
}
