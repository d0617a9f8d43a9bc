// =============================================================================
// EDI 944 Mapper - Output Dialects
// =============================================================================
//
// The converter supports two output dialects. They used to be two separate
// natural-language instruction blocks in the legacy tool; here they are a
// small enum selecting field-mapping and segment-ordering policies.
//
//   standard : emits parties and item attributes exactly in input order.
//   synapse  : the vendor profile. Forces the canonical attribute order
//              (CL, SZ, PO, LN, WD, HT, WT), guarantees N1*WH and N1*ST
//              segments (placeholder-backed when absent) and normalizes
//              receipt dates to YYYYMMDD.
//
// =============================================================================

package edi

import (
	"fmt"
	"strings"
	"time"
)

// Dialect selects an output policy.
type Dialect string

const (
	// DialectStandard emits the receipt as given.
	DialectStandard Dialect = "standard"

	// DialectSynapse applies the Synapse vendor profile.
	DialectSynapse Dialect = "synapse"
)

// ParseDialect maps a configuration string to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(DialectStandard):
		return DialectStandard, nil
	case string(DialectSynapse):
		return DialectSynapse, nil
	default:
		return "", fmt.Errorf("unknown dialect %q (valid: standard, synapse)", s)
	}
}

// String implements fmt.Stringer.
func (d Dialect) String() string {
	return string(d)
}

// =============================================================================
// ENCODER POLICY
// =============================================================================

// synapseAttributeOrder is the canonical per-item N9 attribute order the
// Synapse profile expects. Qualifiers not listed here sort after these, in
// input order.
var synapseAttributeOrder = []string{"CL", "SZ", "PO", "LN", "WD", "HT", "WT"}

// encoderPolicy captures everything that differs between dialects.
type encoderPolicy struct {
	// attributeOrder forces a canonical ordering of item attribute
	// qualifiers. Nil preserves input order.
	attributeOrder []string

	// requiredPartyRoles lists N1 roles that must appear; missing roles are
	// emitted with the placeholder party ID.
	requiredPartyRoles []string

	// normalizeDates rewrites recognizable date values to YYYYMMDD.
	normalizeDates bool
}

// policy returns the encoder policy for the dialect.
func (d Dialect) policy() encoderPolicy {
	switch d {
	case DialectSynapse:
		return encoderPolicy{
			attributeOrder:     synapseAttributeOrder,
			requiredPartyRoles: []string{roleWarehouse, roleShipTo},
			normalizeDates:     true,
		}
	default:
		return encoderPolicy{}
	}
}

// attributeRank returns the sort rank of a qualifier under the policy's
// canonical order. Unlisted qualifiers rank after all listed ones.
func (p encoderPolicy) attributeRank(qualifier string) int {
	for i, q := range p.attributeOrder {
		if q == qualifier {
			return i
		}
	}
	return len(p.attributeOrder)
}

// dateInputLayouts are the source formats normalizeDate recognizes. The
// Synapse extract carries dates both as YYYYMMDD and as US timestamp text
// like "3/4/2025 4:47:26 PM".
var dateInputLayouts = []string{
	"20060102",
	"2006-01-02",
	"1/2/2006 3:04:05 PM",
	"1/2/2006",
}

// normalizeDate rewrites a recognizable date value to YYYYMMDD. Values that
// match none of the known layouts are returned unchanged; the validator is
// responsible for rejecting them.
func normalizeDate(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return value
	}
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("20060102")
		}
	}
	return value
}
