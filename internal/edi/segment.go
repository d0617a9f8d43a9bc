// =============================================================================
// EDI 944 Mapper - Segment Writer
// =============================================================================
//
// Low-level segment emission. An EDI 944 document is a flat stream of
// segments: the segment ID followed by `*`-separated elements, terminated by
// `~`. X12 version 004010 has no escape sequence, so delimiter characters
// can never legally appear inside an element; sanitizeElement strips them
// before emission rather than producing an unparseable document.
//
// =============================================================================

package edi

import "strings"

// Wire delimiters. Fixed for this trading partner profile.
const (
	// ElementSeparator separates elements within a segment.
	ElementSeparator = "*"

	// SegmentTerminator terminates every segment.
	SegmentTerminator = "~"

	// ComponentSeparator is the sub-element separator announced in ISA16.
	ComponentSeparator = ">"
)

// segmentWriter accumulates a segment stream and counts emitted segments.
// The count feeds the SE/GE/IEA trailer elements.
type segmentWriter struct {
	sb    strings.Builder
	count int
}

// emit writes one segment from its ID and elements. Every element is
// sanitized; empty trailing elements are kept so the element layout stays
// positional.
func (w *segmentWriter) emit(id string, elements ...string) {
	w.sb.WriteString(id)
	for _, el := range elements {
		w.sb.WriteString(ElementSeparator)
		w.sb.WriteString(sanitizeElement(el))
	}
	w.sb.WriteString(SegmentTerminator)
	w.count++
}

// emitRaw writes a pre-rendered segment. Used for the fixed-width ISA
// segment, whose layout does not follow the regular element grammar.
// The caller is responsible for sanitizing any payload inside it.
func (w *segmentWriter) emitRaw(segment string) {
	w.sb.WriteString(segment)
	w.count++
}

// String returns the accumulated stream.
func (w *segmentWriter) String() string {
	return w.sb.String()
}

// sanitizeElement strips characters that would corrupt the segment stream:
// the element separator, the segment terminator, the component separator and
// line breaks.
func sanitizeElement(s string) string {
	if !strings.ContainsAny(s, ElementSeparator+SegmentTerminator+ComponentSeparator+"\r\n") {
		return s
	}
	replacer := strings.NewReplacer(
		ElementSeparator, "",
		SegmentTerminator, "",
		ComponentSeparator, "",
		"\r", "",
		"\n", " ",
	)
	return replacer.Replace(s)
}
