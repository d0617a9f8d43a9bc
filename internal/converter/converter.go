// =============================================================================
// EDI 944 Mapper - Converter Module
// =============================================================================
//
// Per-file conversion pipeline, from tabular extract to EDI 944 document:
//
//   1. Parse the input (pipe-delimited extract or XLSX workbook)
//   2. Fill envelope fields from the partner configuration and the clock
//   3. Validate the normalized receipt
//   4. Encode the EDI 944 segment stream
//   5. Write the output file
//   6. Archive the processed files
//
// CONCURRENCY:
//   Each file is processed in its own goroutine; a Converter holds no
//   shared mutable state, so any number can run concurrently. The encoding
//   step itself is a pure function and carries no ordering requirements
//   between files.
//
// =============================================================================

package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/outsourceai/edi-mapper/internal/config"
	"github.com/outsourceai/edi-mapper/internal/edi"
	"github.com/outsourceai/edi-mapper/internal/tabparser"
	"github.com/outsourceai/edi-mapper/internal/types"
	"github.com/outsourceai/edi-mapper/internal/validation"
	"github.com/outsourceai/edi-mapper/internal/xlsxparser"
	"github.com/outsourceai/edi-mapper/pkg/utils"
)

// =============================================================================
// RESULT
// =============================================================================

// Result is the outcome of processing a single file.
type Result struct {
	// FilePath is the processed input file.
	FilePath string

	// OutputFile is the generated document path, empty on failure or in
	// dry-run mode.
	OutputFile string

	// Success reports whether processing completed.
	Success bool

	// Error is set when processing failed.
	Error error

	// Stats carries processing statistics.
	Stats ProcessingStats
}

// ProcessingStats summarizes one conversion.
type ProcessingStats struct {
	// LineItems is the number of line items encoded.
	LineItems int

	// TotalQuantity is the W14 total of the generated document.
	TotalQuantity int

	// ValidationErrors is the number of input problems found.
	ValidationErrors int

	// ProcessingTime is the wall time spent on this file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER
// =============================================================================

// Converter processes one input file.
type Converter struct {
	// DryRun parses, validates and encodes without writing or archiving.
	DryRun bool

	// ValidateOnly stops after validation.
	ValidateOnly bool

	path          string
	partner       *config.PartnerConfig
	mainConfig    *config.MainConfig
	controlNumber int
	log           *zap.SugaredLogger
	now           func() time.Time
}

// New creates a Converter for one input file. controlNumber is the
// interchange control number assigned to this file by the batch.
func New(path string, partner *config.PartnerConfig, mainConfig *config.MainConfig, controlNumber int, log *zap.SugaredLogger) *Converter {
	return &Converter{
		path:          path,
		partner:       partner,
		mainConfig:    mainConfig,
		controlNumber: controlNumber,
		log:           log,
		now:           time.Now,
	}
}

// WithClock replaces the converter's clock. Tests use this to pin the
// envelope date and time.
func (c *Converter) WithClock(now func() time.Time) *Converter {
	c.now = now
	return c
}

// Run executes the pipeline for the file.
func (c *Converter) Run() Result {
	start := time.Now()
	result := Result{FilePath: c.path}

	c.log.Infow("processing file", "file", c.path, "partner", c.partner.PartnerCode)

	// Step 1: parse.
	receipt, err := c.parse()
	if err != nil {
		result.Error = fmt.Errorf("failed to parse input: %w", err)
		return result
	}
	result.Stats.LineItems = len(receipt.Items)
	c.log.Debugw("parsed input", "file", c.path, "items", len(receipt.Items))

	// Step 2: envelope fields from the partner profile and the clock.
	// Dates are pinned here, before encoding, so the encoder itself stays
	// a pure function.
	c.applyPartnerProfile(receipt)

	// Step 3: validate.
	validationErrors := validation.ValidateReceipt(receipt)
	result.Stats.ValidationErrors = len(validationErrors)
	if len(validationErrors) > 0 {
		for _, ve := range validationErrors {
			c.log.Warnw("validation error", "file", c.path, "error", ve.Error())
		}
		// Drop a report next to the rejected input so operators see the
		// row-level detail without digging through logs. The input file
		// itself stays put.
		if !c.DryRun && !c.ValidateOnly {
			logPath := c.path + ".errors.log"
			if err := validation.WriteErrorLog(validationErrors, c.path, logPath); err != nil {
				c.log.Warnw("failed to write error log", "file", c.path, "error", err)
			} else {
				c.log.Infow("wrote error log", "file", c.path, "log", logPath)
			}
		}
		result.Error = fmt.Errorf("input failed validation: %s", validation.FormatErrors(validationErrors))
		return result
	}
	if c.ValidateOnly {
		result.Success = true
		result.Stats.ProcessingTime = time.Since(start)
		return result
	}

	// Step 4: encode.
	document, err := edi.EncodeWithOptions(receipt, c.partner.ParsedDialect(), c.partner.EncodeOptions())
	if err != nil {
		result.Error = fmt.Errorf("failed to encode document: %w", err)
		return result
	}
	result.Stats.TotalQuantity = receipt.TotalQuantity()
	c.log.Debugw("encoded document", "file", c.path, "bytes", len(document))

	if c.DryRun {
		result.Success = true
		result.Stats.ProcessingTime = time.Since(start)
		c.log.Infow("dry run, skipping output", "file", c.path)
		return result
	}

	// Step 5: write the output file.
	fm := utils.NewFileManager(
		c.mainConfig.InputDir,
		c.mainConfig.OutputDir,
		c.mainConfig.InputArchiveDir,
		c.mainConfig.OutputArchiveDir,
	)
	outputName := utils.GenerateOutputFileName(c.mainConfig.OutputNameFormat, c.partner.PartnerCode)
	outputPath := filepath.Join(c.mainConfig.OutputDir, outputName)
	if err := writeFile(outputPath, document); err != nil {
		result.Error = err
		return result
	}
	result.OutputFile = outputPath
	c.log.Infow("wrote output", "file", c.path, "output", outputPath)

	// Step 6: archive. Failure here is logged, not fatal: the document is
	// already delivered.
	if _, err := fm.ArchiveInputFile(c.path); err != nil {
		c.log.Warnw("failed to archive input file", "file", c.path, "error", err)
	}
	if _, err := fm.ArchiveOutputFile(outputPath); err != nil {
		c.log.Warnw("failed to archive output file", "file", outputPath, "error", err)
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(start)
	return result
}

// parse picks the parser by file extension: .xlsx workbooks go through the
// workbook parser, everything else through the tabular extract parser.
func (c *Converter) parse() (*types.Receipt, error) {
	if strings.EqualFold(filepath.Ext(c.path), ".xlsx") {
		return xlsxparser.Parse(c.path)
	}
	return tabparser.Parse(c.path, c.partner.ParserSettings)
}

// applyPartnerProfile fills the envelope and fallback fields the input does
// not carry: interchange identities, control number, document date/time and
// configured default parties.
func (c *Converter) applyPartnerProfile(receipt *types.Receipt) {
	receipt.SenderID = c.partner.SenderID
	receipt.ReceiverID = c.partner.ReceiverID
	receipt.ControlNumber = c.controlNumber

	now := c.now()
	receipt.DocumentDate = now.Format("20060102")
	receipt.DocumentTime = now.Format("1504")

	if _, ok := receipt.Party("WH"); !ok && c.partner.WarehouseCode != "" {
		receipt.Parties = append(receipt.Parties, types.Party{Role: "WH", ID: c.partner.WarehouseCode})
	}
	if _, ok := receipt.Party("ST"); !ok && c.partner.ShipToCode != "" {
		receipt.Parties = append(receipt.Parties, types.Party{Role: "ST", ID: c.partner.ShipToCode})
	}
}

// writeFile writes the document byte-exact, with no trailing newline.
func writeFile(path, document string) error {
	if err := os.WriteFile(path, []byte(document), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
