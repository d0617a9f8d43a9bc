// =============================================================================
// EDI 944 Mapper - Shared Types
// =============================================================================
//
// This package contains the normalized receipt model shared across modules to
// avoid import cycles. Types defined here are used by:
//   - tabparser / xlsxparser (construction from input files)
//   - validation              (input checks)
//   - edi                     (segment stream generation)
//   - converter               (pipeline orchestration)
//
// A Receipt is constructed once from a single input file, serialized once,
// and discarded. Nothing mutates a Receipt after construction; the encoder
// works on its own copy when a dialect policy requires reordering.
//
// =============================================================================

package types

import "strconv"

// =============================================================================
// RECEIPT
// =============================================================================

// Receipt is the normalized representation of one warehouse stock transfer
// receipt advice, covering the interchange envelope, the receipt header and
// the ordered line items.
type Receipt struct {
	// SenderID is the interchange sender ID (ISA, GS).
	SenderID string

	// ReceiverID is the interchange receiver ID (ISA, GS).
	ReceiverID string

	// DocumentDate is the interchange/group date in YYYYMMDD form.
	// The ISA segment uses the trailing YYMMDD portion.
	DocumentDate string

	// DocumentTime is the interchange/group time in HHMM form.
	DocumentTime string

	// ControlNumber pairs ISA with IEA and GS with GE. The interchange
	// rendering is zero-padded to nine digits, the group rendering is plain
	// decimal. One transaction set per interchange, so ST/SE use the fixed
	// transaction control number.
	ControlNumber int

	// ReportType is the W17 reporting code. "F" marks a full receipt.
	ReportType string

	// ReceiptDate is the warehouse receipt date (W17), YYYYMMDD.
	ReceiptDate string

	// ReceiptID identifies the receipt within the warehouse system.
	ReceiptID string

	// ShipmentID identifies the inbound shipment.
	ShipmentID string

	// ContainerID identifies the physical container.
	ContainerID string

	// PalletCount is the number of pallets or handling units received.
	PalletCount int

	// Parties are the N1 entity identifications (warehouse, ship-to, ...),
	// in input order.
	Parties []Party

	// References are the receipt-level N9 references, in input order.
	References []Reference

	// Items are the ordered line items. Order is preserved end to end.
	Items []LineItem
}

// TotalQuantity returns the sum of all line-item quantities. It feeds the
// trailing W14 totals segment and the W17 quantity element.
func (r *Receipt) TotalQuantity() int {
	total := 0
	for _, item := range r.Items {
		total += item.Quantity
	}
	return total
}

// Party looks up the first party with the given role code, e.g. "WH".
// The second return value reports whether the role is present.
func (r *Receipt) Party(role string) (Party, bool) {
	for _, p := range r.Parties {
		if p.Role == role {
			return p, true
		}
	}
	return Party{}, false
}

// =============================================================================
// PARTY AND REFERENCE
// =============================================================================

// Party is one N1 entity identification.
type Party struct {
	// Role is the entity identifier code, e.g. "WH" (warehouse) or
	// "ST" (ship-to).
	Role string

	// ID is the party's identification code.
	ID string
}

// Reference is a qualified reference value, used both for receipt-level N9
// segments and for per-item attribute N9 segments (CL, SZ, PO, LN, WD, HT,
// WT and friends).
type Reference struct {
	// Qualifier is the reference identification qualifier, two or three
	// characters.
	Qualifier string

	// Value is the reference identification.
	Value string
}

// =============================================================================
// LINE ITEM
// =============================================================================

// LineItem is one received item: a W07 detail segment, its G69 description
// and the attribute references trailing it.
type LineItem struct {
	// Quantity is the number of units received. Must be positive.
	Quantity int

	// Unit is the unit of measure code, e.g. "EA".
	Unit string

	// ProductID is the primary product identifier (typically the UPC).
	ProductID string

	// ProductQualifier qualifies ProductCode, e.g. "VN" for vendor style.
	ProductQualifier string

	// ProductCode is the secondary product identifier (vendor style number).
	ProductCode string

	// Description is the free-text item description (G69).
	Description string

	// Attributes are the per-item references, in input order. Only
	// qualifiers present in the input are carried; nothing is fabricated.
	Attributes []Reference

	// SourceRow is the row number of this item in the input file,
	// 1-indexed. Used for error reporting only.
	SourceRow int
}

// Attribute looks up an attribute value by qualifier.
func (li *LineItem) Attribute(qualifier string) (string, bool) {
	for _, a := range li.Attributes {
		if a.Qualifier == qualifier {
			return a.Value, true
		}
	}
	return "", false
}

// QuantityString renders the quantity the way the wire format expects it,
// as a plain decimal with no padding.
func (li *LineItem) QuantityString() string {
	return strconv.Itoa(li.Quantity)
}
