// =============================================================================
// EDI 944 Mapper - Validation Module
// =============================================================================
//
// This module validates a normalized receipt before it is handed to the EDI
// encoder. Validation errors are input problems reported to the caller; they
// are never silently encoded. Internal invariant violations detected after
// encoding are a different class (edi.EncodingError) and indicate a defect.
//
// CHECKS:
//   - every line item has a positive quantity and a product identifier
//   - dates are in YYYYMMDD form when present
//   - attribute and reference qualifiers are 2-3 character codes
//   - the interchange control number is positive and fits nine digits
//
// Fields that merely receive placeholders when absent (unit of measure,
// report type, party IDs) are not validation failures; the encoder's default
// policy covers them.
//
// =============================================================================

package validation

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/outsourceai/edi-mapper/internal/types"
)

// =============================================================================
// VALIDATION ERROR
// =============================================================================

// ValidationError describes a single problem with the input receipt.
type ValidationError struct {
	// Line is the 1-indexed input row the problem was found on.
	// Zero for receipt-level problems.
	Line int

	// Field is the name of the offending field.
	Field string

	// Value is the offending value, possibly empty.
	Value string

	// Message describes what is wrong.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: field %q: %s", e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("field %q: %s", e.Field, e.Message)
}

// =============================================================================
// RECEIPT VALIDATION
// =============================================================================

// maxControlNumber is the largest interchange control number that fits the
// nine-digit ISA/IEA element.
const maxControlNumber = 999999999

// ValidateReceipt checks a receipt and returns all problems found.
// A nil or empty result means the receipt is encodable.
func ValidateReceipt(r *types.Receipt) []*ValidationError {
	var errs []*ValidationError

	if r.ControlNumber < 0 || r.ControlNumber > maxControlNumber {
		errs = append(errs, &ValidationError{
			Field:   "control_number",
			Value:   fmt.Sprintf("%d", r.ControlNumber),
			Message: "must be between 0 and 999999999",
		})
	}

	if r.DocumentDate != "" && !isYYYYMMDD(r.DocumentDate) {
		errs = append(errs, &ValidationError{
			Field:   "document_date",
			Value:   r.DocumentDate,
			Message: "must be in YYYYMMDD form",
		})
	}

	if r.ReceiptDate != "" && !isYYYYMMDD(r.ReceiptDate) {
		errs = append(errs, &ValidationError{
			Field:   "receipt_date",
			Value:   r.ReceiptDate,
			Message: "must be in YYYYMMDD form",
		})
	}

	for _, ref := range r.References {
		if !isQualifier(ref.Qualifier) {
			errs = append(errs, &ValidationError{
				Field:   "reference_qualifier",
				Value:   ref.Qualifier,
				Message: "must be a 2-3 character code",
			})
		}
	}

	for i := range r.Items {
		errs = append(errs, validateLineItem(&r.Items[i], i+1)...)
	}

	return errs
}

// validateLineItem checks one line item. position is the item's 1-indexed
// position within the receipt, used when the item carries no source row.
func validateLineItem(item *types.LineItem, position int) []*ValidationError {
	var errs []*ValidationError

	line := item.SourceRow
	if line == 0 {
		line = position
	}

	if item.Quantity <= 0 {
		errs = append(errs, &ValidationError{
			Line:    line,
			Field:   "quantity",
			Value:   item.QuantityString(),
			Message: "missing or non-positive quantity",
		})
	}

	if strings.TrimSpace(item.ProductID) == "" {
		errs = append(errs, &ValidationError{
			Line:    line,
			Field:   "product_id",
			Message: "missing product identifier",
		})
	}

	for _, attr := range item.Attributes {
		if !isQualifier(attr.Qualifier) {
			errs = append(errs, &ValidationError{
				Line:    line,
				Field:   "attribute_qualifier",
				Value:   attr.Qualifier,
				Message: "must be a 2-3 character code",
			})
		}
	}

	return errs
}

// =============================================================================
// FIELD FORMAT HELPERS
// =============================================================================

// isYYYYMMDD reports whether the value parses as a calendar date in
// YYYYMMDD form.
func isYYYYMMDD(value string) bool {
	if len(value) != 8 {
		return false
	}
	_, err := time.Parse("20060102", value)
	return err == nil
}

// isQualifier reports whether the value is a valid reference qualifier:
// 2-3 characters, letters and digits only.
func isQualifier(value string) bool {
	if len(value) < 2 || len(value) > 3 {
		return false
	}
	for _, c := range value {
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// =============================================================================
// ERROR REPORTING
// =============================================================================

// FormatErrors renders validation errors as a readable multi-line report.
func FormatErrors(errs []*ValidationError) string {
	if len(errs) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation error(s):\n", len(errs)))
	for i, e := range errs {
		sb.WriteString(fmt.Sprintf("  %d. %s", i+1, e.Error()))
		if e.Value != "" {
			sb.WriteString(fmt.Sprintf(" (value: %q)", e.Value))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// WriteErrorLog writes a validation report for an input file to the given
// path, suitable for dropping next to the rejected input.
func WriteErrorLog(errs []*ValidationError, sourceFile, path string) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Validation report for %s\n", sourceFile))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format(time.RFC3339)))
	sb.WriteString(FormatErrors(errs))

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}
