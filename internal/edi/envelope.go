// =============================================================================
// EDI 944 Mapper - Envelope Segments
// =============================================================================
//
// Builders for the interchange (ISA/IEA), functional group (GS/GE) and
// transaction set (ST/SE) envelope segments.
//
// ISA LAYOUT:
//   The trading partner expects a collapsed fixed-width ISA rather than the
//   16-element layout of the X12 standard: authorization and security
//   qualifiers are emitted as fixed-width runs inside single elements, and
//   sender/receiver IDs are space-padded to 15 characters with the date
//   butted directly against the receiver ID:
//
//     ISA*00          00          ZZ*DCG            ZZ*9083514477     220519*0800*U*00401*000001057*1*P*>~
//
//   This matches the client's reference documents byte for byte and is kept
//   deliberately, standard or not.
//
// =============================================================================

package edi

import (
	"fmt"

	"github.com/outsourceai/edi-mapper/internal/types"
)

// Envelope constants for this transaction set.
const (
	// functionalIDCode identifies the group content (RE = warehouse
	// receipt advice).
	functionalIDCode = "RE"

	// versionRelease is the X12 version/release announced in GS08.
	versionRelease = "004010"

	// interchangeVersion is the interchange control version in ISA.
	interchangeVersion = "00401"

	// transactionSetID is the transaction set identifier code.
	transactionSetID = "944"

	// transactionControl is the transaction set control number shared by
	// ST and SE. One transaction set per interchange.
	transactionControl = "0001"
)

// Entity identifier codes used in N1 segments.
const (
	roleWarehouse = "WH"
	roleShipTo    = "ST"
)

// isaSegment renders the fixed-width interchange header. Payload fields are
// sanitized here because the segment bypasses the regular element writer.
func isaSegment(r *types.Receipt) string {
	sender := padRight(sanitizeElement(r.SenderID), 15)
	receiver := padRight(sanitizeElement(r.ReceiverID), 15)

	return fmt.Sprintf("ISA*00%s00%sZZ*%sZZ*%s%s*%s*U*%s*%09d*1*P*%s%s",
		tenSpaces, tenSpaces,
		sender, receiver,
		isaDate(r.DocumentDate), r.DocumentTime,
		interchangeVersion, r.ControlNumber,
		ComponentSeparator, SegmentTerminator)
}

const tenSpaces = "          "

// isaDate reduces a YYYYMMDD document date to the YYMMDD form ISA carries.
// Anything that is not eight characters is passed through untouched; the
// validator rejects malformed dates before encoding starts.
func isaDate(yyyymmdd string) string {
	if len(yyyymmdd) == 8 {
		return yyyymmdd[2:]
	}
	return yyyymmdd
}

// gsElements returns the functional group header elements.
func gsElements(r *types.Receipt) []string {
	return []string{
		functionalIDCode,
		r.SenderID,
		r.ReceiverID,
		r.DocumentDate,
		r.DocumentTime,
		fmt.Sprintf("%d", r.ControlNumber),
		"X",
		versionRelease,
	}
}

// trailerElements returns the SE, GE and IEA element sets. includedSegments
// is the count of segments from ST through SE inclusive.
func seElements(includedSegments int) []string {
	return []string{fmt.Sprintf("%d", includedSegments), transactionControl}
}

func geElements(r *types.Receipt) []string {
	return []string{"1", fmt.Sprintf("%d", r.ControlNumber)}
}

func ieaElements(r *types.Receipt) []string {
	return []string{"1", fmt.Sprintf("%09d", r.ControlNumber)}
}

// padRight pads s with spaces to the given width, truncating when longer.
// ISA sender/receiver IDs are fixed 15-character fields.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	for len(s) < width {
		s += " "
	}
	return s
}
