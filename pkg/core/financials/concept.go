package financials

import "strings"

// Concept references are embedded in the label cell's anchor as a
// javascript call:
//
//	onclick="top.Show.showAR( this, 'defref_us-gaap_CostOfGoodsSold', window );"
//
// The concept identifier is the payload between the prefix marker and the
// closing quote. The namespace prefix ("us-gaap_") is kept in the
// identifier because not every filing tags against us-gaap.
const (
	conceptPrefixMarker = "'defref_"
	conceptSuffixMarker = "'"
)

// parseConceptRef extracts the concept identifier from an embedded
// reference string. It returns "" when the string carries no reference,
// which marks the row as a separator or abstract header with no fact.
func parseConceptRef(ref string) string {
	start := strings.Index(ref, conceptPrefixMarker)
	if start < 0 {
		return ""
	}
	payload := ref[start+len(conceptPrefixMarker):]

	end := strings.Index(payload, conceptSuffixMarker)
	if end < 0 {
		return ""
	}
	return payload[:end]
}
