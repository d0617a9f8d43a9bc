// =============================================================================
// EDI 944 Mapper - XLSX Receipt Workbook Parser
// =============================================================================
//
// Warehouse teams that cannot produce the pipe-delimited system extract
// submit receipt workbooks instead. A workbook has two sheets:
//
//   "Receipt" : two columns of field name / value pairs for the receipt
//               header (ReceiptDate, ReceiptID, ShipmentID, ContainerID,
//               PalletCount, Warehouse, ShipTo, plus Ref:XX rows for
//               receipt-level references).
//   "Items"   : one header row, then one row per line item. Recognized
//               columns: Quantity, Unit, ProductID, Qualifier, ProductCode,
//               Description. Any other column header is treated as an item
//               attribute qualifier (CL, SZ, PO, LN, WD, HT, WT, ...).
//
// Column order in the Items sheet determines attribute order, which the
// encoder preserves under the standard dialect.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/outsourceai/edi-mapper/internal/types"
)

// Sheet and field naming conventions for receipt workbooks.
const (
	headerSheet = "Receipt"
	itemSheet   = "Items"

	// referencePrefix marks receipt-level reference rows on the header
	// sheet, e.g. "Ref:ZZ" -> N9*ZZ.
	referencePrefix = "Ref:"
)

// Parse reads a receipt workbook into the normalized model.
func Parse(path string) (*types.Receipt, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	receipt := &types.Receipt{}

	if err := parseHeaderSheet(f, receipt); err != nil {
		return nil, fmt.Errorf("%s: sheet %q: %w", path, headerSheet, err)
	}
	if err := parseItemSheet(f, receipt); err != nil {
		return nil, fmt.Errorf("%s: sheet %q: %w", path, itemSheet, err)
	}

	return receipt, nil
}

// parseHeaderSheet reads the field/value pairs of the Receipt sheet.
func parseHeaderSheet(f *excelize.File, receipt *types.Receipt) error {
	rows, err := f.GetRows(headerSheet)
	if err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}

	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		name := strings.TrimSpace(row[0])
		value := strings.TrimSpace(row[1])
		if name == "" || value == "" {
			continue
		}

		if strings.HasPrefix(name, referencePrefix) {
			receipt.References = append(receipt.References, types.Reference{
				Qualifier: strings.TrimPrefix(name, referencePrefix),
				Value:     value,
			})
			continue
		}

		switch strings.ToLower(name) {
		case "receiptdate", "receipt date":
			receipt.ReceiptDate = value
		case "receiptid", "receipt id":
			receipt.ReceiptID = value
		case "shipmentid", "shipment id":
			receipt.ShipmentID = value
		case "containerid", "container id":
			receipt.ContainerID = value
		case "palletcount", "pallet count":
			count, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("pallet count %q is not a number", value)
			}
			receipt.PalletCount = count
		case "warehouse":
			receipt.Parties = append(receipt.Parties, types.Party{Role: "WH", ID: value})
		case "shipto", "ship to":
			receipt.Parties = append(receipt.Parties, types.Party{Role: "ST", ID: value})
		case "reporttype", "report type":
			receipt.ReportType = value
		default:
			// Unknown header fields are ignored so teams can keep their
			// own bookkeeping columns in the workbook.
		}
	}

	return nil
}

// parseItemSheet reads the Items sheet into ordered line items.
func parseItemSheet(f *excelize.File, receipt *types.Receipt) error {
	rows, err := f.GetRows(itemSheet)
	if err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil // a receipt with zero items is still encodable
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	for rowIndex, row := range rows[1:] {
		if isRowEmpty(row) {
			continue
		}

		item := types.LineItem{SourceRow: rowIndex + 2} // 1-indexed, after header
		for col, header := range headers {
			value := cell(row, col)
			if value == "" {
				continue
			}

			switch strings.ToLower(header) {
			case "quantity":
				qty, err := strconv.Atoi(value)
				if err != nil {
					// Leave quantity zero; the validator reports it
					// with the row number.
					continue
				}
				item.Quantity = qty
			case "unit":
				item.Unit = value
			case "productid":
				item.ProductID = value
			case "qualifier":
				item.ProductQualifier = value
			case "productcode":
				item.ProductCode = value
			case "description":
				item.Description = value
			default:
				if header != "" {
					item.Attributes = append(item.Attributes, types.Reference{
						Qualifier: header,
						Value:     value,
					})
				}
			}
		}

		receipt.Items = append(receipt.Items, item)
	}

	return nil
}

// cell returns the trimmed cell value, or "" when the row is short.
func cell(row []string, index int) string {
	if index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

// isRowEmpty reports whether a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
