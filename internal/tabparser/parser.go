// =============================================================================
// EDI 944 Mapper - Tabular Receipt Parser
// =============================================================================
//
// This module parses the tabular receipt extracts the warehouse system
// produces: one HDR record followed by one DTL record per received item,
// delimiter-separated (pipe by default). Example (trimmed):
//
//   HDR|CAN|944|O|753515|1|753515-1|BSIU9579971|20250303||||OCEA|24940|...
//   DTL|45|PBDCB81-MFA|NA||EA|2340|1.3542|...|18|17|8|8
//
// Field positions are fixed by the extract layout and documented as
// constants below. The last four DTL fields are the carton dimensions and
// weight; they become the LN/WD/HT/WT attribute references on the item.
//
// The parser is deliberately forgiving about row width (records are padded
// on the right) but strict about record tags: a file without an HDR record
// is rejected. Missing quantities or product IDs are carried through so the
// validator can report them with row numbers instead of the parser dying on
// the first bad row.
//
// =============================================================================

package tabparser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/outsourceai/edi-mapper/internal/types"
)

// =============================================================================
// PARSER SETTINGS
// =============================================================================

// Settings controls how the tabular extract is read.
type Settings struct {
	// Delimiter separates fields within a record. Accepts the same
	// spellings the partner configs use: "|", "pipe", "\t", "tab",
	// ",", ";". Default: pipe.
	Delimiter string `yaml:"delimiter"`

	// HeaderTag is the record tag of the receipt header row. Default "HDR".
	HeaderTag string `yaml:"header_tag"`

	// DetailTag is the record tag of an item row. Default "DTL".
	DetailTag string `yaml:"detail_tag"`
}

// DefaultSettings returns the Synapse extract defaults.
func DefaultSettings() Settings {
	return Settings{
		Delimiter: "|",
		HeaderTag: "HDR",
		DetailTag: "DTL",
	}
}

// delimiterRune resolves the configured delimiter spelling to a rune.
func (s Settings) delimiterRune() rune {
	switch s.Delimiter {
	case "", "|", "pipe", "PIPE":
		return '|'
	case "\\t", "tab", "TAB":
		return '\t'
	case ";", "semicolon":
		return ';'
	default:
		return rune(s.Delimiter[0])
	}
}

// =============================================================================
// HDR FIELD POSITIONS
// =============================================================================
// Zero-based positions within the HDR record. Sample values from a live
// extract are noted on each.

const (
	hdrFieldCustomer      = 1  // "CAN"
	hdrFieldDocumentType  = 2  // "944"
	hdrFieldReceiptNumber = 4  // "753515"
	hdrFieldReceiptID     = 6  // "753515-1"
	hdrFieldContainerID   = 7  // "BSIU9579971"
	hdrFieldReceiptDate   = 8  // "20250303"
	hdrFieldCarrier       = 12 // "OCEA"
	hdrFieldShipmentID    = 13 // "24940"
	hdrFieldWarehouseCode = 33 // "LYN"
)

// =============================================================================
// DTL FIELD POSITIONS
// =============================================================================

const (
	dtlFieldLineNumber = 1 // "45"
	dtlFieldProductID  = 2 // "PBDCB81-MFA"
	dtlFieldUnit       = 5 // "EA"
	dtlFieldQuantity   = 6 // "2340"

	// The trailing four fields are carton length, width, height and
	// weight, addressed from the end of the record.
	dtlTrailingDimensions = 4
)

// dimensionQualifiers maps the trailing DTL dimension fields, in order, to
// their N9 attribute qualifiers.
var dimensionQualifiers = []string{"LN", "WD", "HT", "WT"}

// =============================================================================
// PARSING
// =============================================================================

// Parse reads a tabular receipt extract from a file.
func Parse(path string, settings Settings) (*types.Receipt, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	receipt, err := ParseReader(file, settings)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return receipt, nil
}

// ParseReader reads a tabular receipt extract from a reader.
func ParseReader(r io.Reader, settings Settings) (*types.Receipt, error) {
	reader := csv.NewReader(r)
	reader.Comma = settings.delimiterRune()
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	// TrimLeadingSpace must stay off: with a tab delimiter the reader
	// would treat the tab as trimmable whitespace too and swallow empty
	// fields, shifting every positional field left. field() trims instead.

	headerTag := settings.HeaderTag
	if headerTag == "" {
		headerTag = "HDR"
	}
	detailTag := settings.DetailTag
	if detailTag == "" {
		detailTag = "DTL"
	}

	receipt := &types.Receipt{}
	sawHeader := false
	rowNumber := 0

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNumber+1, err)
		}
		rowNumber++

		if isRowEmpty(row) {
			continue
		}

		switch strings.TrimSpace(row[0]) {
		case headerTag:
			if sawHeader {
				return nil, fmt.Errorf("row %d: duplicate %s record", rowNumber, headerTag)
			}
			sawHeader = true
			parseHeader(row, receipt)
		case detailTag:
			receipt.Items = append(receipt.Items, parseDetail(row, rowNumber))
		default:
			return nil, fmt.Errorf("row %d: unknown record tag %q", rowNumber, row[0])
		}
	}

	if !sawHeader {
		return nil, fmt.Errorf("no %s record found", headerTag)
	}
	return receipt, nil
}

// parseHeader fills the receipt header fields from an HDR record.
func parseHeader(row []string, receipt *types.Receipt) {
	receipt.ReceiptDate = field(row, hdrFieldReceiptDate)
	receipt.ReceiptID = field(row, hdrFieldReceiptID)
	receipt.ShipmentID = field(row, hdrFieldShipmentID)
	receipt.ContainerID = field(row, hdrFieldContainerID)

	if wh := field(row, hdrFieldWarehouseCode); wh != "" {
		receipt.Parties = append(receipt.Parties, types.Party{Role: "WH", ID: wh})
	}
	if customer := field(row, hdrFieldCustomer); customer != "" {
		receipt.Parties = append(receipt.Parties, types.Party{Role: "ST", ID: customer})
	}

	// Receipt-level references: the container and, when present, the
	// carrier code.
	if container := field(row, hdrFieldContainerID); container != "" {
		receipt.References = append(receipt.References, types.Reference{Qualifier: "ZZ", Value: container})
	}
	if carrier := field(row, hdrFieldCarrier); carrier != "" {
		receipt.References = append(receipt.References, types.Reference{Qualifier: "CN", Value: carrier})
	}
}

// parseDetail builds a line item from a DTL record. The extract carries no
// UPC or description, so the style number stands in as the product ID and
// description; the encoder's placeholder policy fills the VN pairing.
func parseDetail(row []string, rowNumber int) types.LineItem {
	item := types.LineItem{
		ProductID:   field(row, dtlFieldProductID),
		Unit:        field(row, dtlFieldUnit),
		Description: field(row, dtlFieldProductID),
		SourceRow:   rowNumber,
	}

	if qty, err := strconv.Atoi(field(row, dtlFieldQuantity)); err == nil {
		item.Quantity = qty
	}

	// Trailing dimension fields become LN/WD/HT/WT attributes. Short rows
	// simply carry fewer attributes; nothing is fabricated.
	if len(row) > dtlFieldQuantity+dtlTrailingDimensions {
		start := len(row) - dtlTrailingDimensions
		for i, qualifier := range dimensionQualifiers {
			if value := strings.TrimSpace(row[start+i]); value != "" {
				item.Attributes = append(item.Attributes, types.Reference{
					Qualifier: qualifier,
					Value:     value,
				})
			}
		}
	}

	return item
}

// field returns the trimmed value at index, or "" when the row is too short.
func field(row []string, index int) string {
	if index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

// isRowEmpty reports whether a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
