// =============================================================================
// EDI 944 Mapper - EDI 944 Encoder
// =============================================================================
//
// This module is the deterministic core of the converter: it turns a
// normalized receipt into an EDI 944 (Warehouse Stock Transfer Receipt
// Advice) segment stream.
//
// SEGMENT ORDER:
//   ISA  interchange header (fixed-width partner layout, see envelope.go)
//   GS   functional group header
//   ST   transaction set header
//   W17  warehouse receipt identification
//   N1   one per entity identification (warehouse, ship-to, ...)
//   N9   one per receipt-level reference
//   per line item, in input order:
//     W07  item detail
//     G69  item description
//     N9   one per populated attribute qualifier
//   W14  totals (sum of all item quantities)
//   SE   transaction set trailer (segment count, ST control number)
//   GE   group trailer (GS control number)
//   IEA  interchange trailer (ISA control number)
//
// Encoding is a pure function of the receipt and dialect: no I/O, no clock,
// no shared state. The same input always yields byte-identical output, so
// a conversion is idempotent and safely retryable.
//
// Structurally required fields that are absent get documented placeholders;
// segments are never dropped and delimiters never omitted. Line items with
// no quantity or product ID are a validation error, not placeholder
// material.
//
// =============================================================================

package edi

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/outsourceai/edi-mapper/internal/types"
	"github.com/outsourceai/edi-mapper/internal/validation"
)

// =============================================================================
// ENCODING ERROR
// =============================================================================

// EncodingError reports an internal invariant violation detected in the
// generated stream. Unlike a ValidationError it is not an input problem:
// it indicates a defect in the encoder and is fatal.
type EncodingError struct {
	// Check names the violated invariant.
	Check string

	// Detail describes the mismatch.
	Detail string
}

// Error implements the error interface.
func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding invariant %s violated: %s", e.Check, e.Detail)
}

// =============================================================================
// ENCODE OPTIONS
// =============================================================================

// EncodeOptions carries the placeholder policy for structurally required
// fields that are absent from the input.
type EncodeOptions struct {
	// DefaultUnit is used when a line item carries no unit of measure.
	DefaultUnit string

	// DefaultReportType is used when the receipt carries no W17 reporting
	// code.
	DefaultReportType string

	// PlaceholderID is used for required identifiers that are absent:
	// receipt ID, shipment ID, container ID and mandated party IDs.
	PlaceholderID string
}

// DefaultEncodeOptions returns the documented default placeholder policy.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		DefaultUnit:       "EA",
		DefaultReportType: "F",
		PlaceholderID:     "UNKNOWN",
	}
}

// =============================================================================
// ENCODING
// =============================================================================

// Encode serializes a receipt as an EDI 944 segment stream under the given
// dialect, using the default placeholder policy.
func Encode(r *types.Receipt, dialect Dialect) (string, error) {
	return EncodeWithOptions(r, dialect, DefaultEncodeOptions())
}

// EncodeWithOptions serializes a receipt with an explicit placeholder
// policy. The input receipt is never mutated; the dialect policy works on a
// copy.
func EncodeWithOptions(r *types.Receipt, dialect Dialect, opts EncodeOptions) (string, error) {
	// Apply the dialect policy first: synapse may normalize dates the
	// validator would otherwise reject, and placeholders never mask the
	// hard requirements (quantity, product ID) the validator enforces.
	pol := dialect.policy()
	rec := applyPolicy(r, pol, opts)

	if errs := validation.ValidateReceipt(rec); len(errs) > 0 {
		return "", fmt.Errorf("receipt is not encodable: %s", validation.FormatErrors(errs))
	}

	var w segmentWriter

	// Envelope headers.
	w.emitRaw(isaSegment(rec))
	w.emit("GS", gsElements(rec)...)
	w.emit("ST", transactionSetID, transactionControl)
	transactionStart := w.count // segments before ST are excluded from SE01

	// Receipt identification.
	total := rec.TotalQuantity()
	w.emit("W17",
		rec.ReportType,
		rec.ReceiptDate,
		rec.ReceiptID,
		rec.ShipmentID,
		rec.ContainerID,
		strconv.Itoa(rec.PalletCount),
		strconv.Itoa(total),
	)

	// Entity identifications and receipt-level references.
	for _, p := range rec.Parties {
		w.emit("N1", p.Role, p.ID)
	}
	for _, ref := range rec.References {
		w.emit("N9", ref.Qualifier, ref.Value)
	}

	// Line items, input order preserved.
	for i := range rec.Items {
		item := &rec.Items[i]
		w.emit("W07",
			item.QuantityString(),
			item.Unit,
			item.ProductID,
			item.ProductQualifier,
			item.ProductCode,
		)
		w.emit("G69", item.Description)
		for _, attr := range item.Attributes {
			w.emit("N9", attr.Qualifier, attr.Value)
		}
	}

	// Totals and envelope trailers. SE01 counts ST through SE inclusive.
	w.emit("W14", strconv.Itoa(total))
	includedSegments := w.count - transactionStart + 2 // ST + SE itself
	w.emit("SE", seElements(includedSegments)...)
	w.emit("GE", geElements(rec)...)
	w.emit("IEA", ieaElements(rec)...)

	stream := w.String()
	if err := verifyStream(stream); err != nil {
		return "", err
	}
	return stream, nil
}

// =============================================================================
// DIALECT POLICY APPLICATION
// =============================================================================

// applyPolicy returns a policy-adjusted copy of the receipt: placeholders
// for required-but-missing structural fields, mandated party roles, date
// normalization and canonical attribute ordering. Slices are copied before
// any reordering so the caller's receipt stays untouched.
func applyPolicy(r *types.Receipt, pol encoderPolicy, opts EncodeOptions) *types.Receipt {
	rec := *r

	if rec.ReportType == "" {
		rec.ReportType = opts.DefaultReportType
	}
	if rec.ReceiptID == "" {
		rec.ReceiptID = opts.PlaceholderID
	}
	if rec.ShipmentID == "" {
		rec.ShipmentID = opts.PlaceholderID
	}
	if rec.ContainerID == "" {
		rec.ContainerID = opts.PlaceholderID
	}

	if pol.normalizeDates {
		rec.DocumentDate = normalizeDate(rec.DocumentDate)
		rec.ReceiptDate = normalizeDate(rec.ReceiptDate)
	}
	if rec.ReceiptDate == "" {
		rec.ReceiptDate = rec.DocumentDate
	}

	// Mandated party roles get placeholder-backed N1 segments.
	rec.Parties = append([]types.Party(nil), r.Parties...)
	for _, role := range pol.requiredPartyRoles {
		if _, ok := rec.Party(role); !ok {
			rec.Parties = append(rec.Parties, types.Party{Role: role, ID: opts.PlaceholderID})
		}
	}

	rec.Items = append([]types.LineItem(nil), r.Items...)
	for i := range rec.Items {
		item := &rec.Items[i]
		if item.Unit == "" {
			item.Unit = opts.DefaultUnit
		}
		if item.ProductCode == "" {
			item.ProductCode = item.ProductID
			if item.ProductQualifier == "" {
				item.ProductQualifier = "VN"
			}
		}
		if len(pol.attributeOrder) > 0 && len(item.Attributes) > 1 {
			attrs := append([]types.Reference(nil), item.Attributes...)
			sort.SliceStable(attrs, func(a, b int) bool {
				return pol.attributeRank(attrs[a].Qualifier) < pol.attributeRank(attrs[b].Qualifier)
			})
			item.Attributes = attrs
		}
	}

	return &rec
}

// =============================================================================
// INVARIANT VERIFICATION
// =============================================================================

// verifyStream re-reads the generated stream and checks the structural
// invariants: segment termination, control-number pairing at all three
// envelope levels, the SE segment count and the W14 total. Any failure is a
// defect in the encoder, reported as *EncodingError.
func verifyStream(stream string) error {
	if !strings.HasSuffix(stream, SegmentTerminator) {
		return &EncodingError{Check: "termination", Detail: "stream does not end with segment terminator"}
	}

	segments := strings.Split(strings.TrimSuffix(stream, SegmentTerminator), SegmentTerminator)
	for _, seg := range segments {
		if seg == "" {
			return &EncodingError{Check: "termination", Detail: "empty segment in stream"}
		}
	}

	first := elementsOf(segments[0])
	last := elementsOf(segments[len(segments)-1])
	if first[0] != "ISA" || last[0] != "IEA" {
		return &EncodingError{Check: "envelope", Detail: "stream not wrapped in ISA/IEA"}
	}

	// ISA control number is the 8th `*`-separated field of the collapsed
	// fixed-width layout.
	if len(first) < 8 || len(last) < 3 || first[7] != last[2] {
		return &EncodingError{Check: "control-pairing", Detail: "ISA/IEA control numbers differ"}
	}

	var gsControl, geControl, stControl, seControl string
	var stIndex, seIndex int
	var w07Sum, w14Total int
	for i, seg := range segments {
		el := elementsOf(seg)
		switch el[0] {
		case "GS":
			gsControl = el[6]
		case "GE":
			geControl = el[2]
		case "ST":
			stControl = el[2]
			stIndex = i
		case "SE":
			seControl = el[2]
			seIndex = i
		case "W07":
			qty, err := strconv.Atoi(el[1])
			if err != nil {
				return &EncodingError{Check: "totals", Detail: fmt.Sprintf("non-numeric W07 quantity %q", el[1])}
			}
			w07Sum += qty
		case "W14":
			total, err := strconv.Atoi(el[1])
			if err != nil {
				return &EncodingError{Check: "totals", Detail: fmt.Sprintf("non-numeric W14 total %q", el[1])}
			}
			w14Total = total
		}
	}

	if gsControl != geControl {
		return &EncodingError{Check: "control-pairing", Detail: fmt.Sprintf("GS control %q != GE control %q", gsControl, geControl)}
	}
	if stControl != seControl {
		return &EncodingError{Check: "control-pairing", Detail: fmt.Sprintf("ST control %q != SE control %q", stControl, seControl)}
	}
	if w07Sum != w14Total {
		return &EncodingError{Check: "totals", Detail: fmt.Sprintf("W14 total %d != item quantity sum %d", w14Total, w07Sum)}
	}

	seElems := elementsOf(segments[seIndex])
	declared, err := strconv.Atoi(seElems[1])
	if err != nil {
		return &EncodingError{Check: "segment-count", Detail: fmt.Sprintf("non-numeric SE count %q", seElems[1])}
	}
	if actual := seIndex - stIndex + 1; declared != actual {
		return &EncodingError{Check: "segment-count", Detail: fmt.Sprintf("SE declares %d segments, stream has %d", declared, actual)}
	}

	return nil
}

// elementsOf splits a segment into its elements.
func elementsOf(segment string) []string {
	return strings.Split(segment, ElementSeparator)
}
