// Package financials turns raw EDGAR filing markup into typed,
// unit-normalized financial records. It supports two filing generations:
// the modern machine-tagged report table format and the older free-text
// statement format, dispatching between them per document.
package financials

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var scaleFactors = map[string]decimal.Decimal{
	"thousands": decimal.NewFromInt(1_000),
	"millions":  decimal.NewFromInt(1_000_000),
	"billions":  decimal.NewFromInt(1_000_000_000),
}

// noValueGlyphs are the "no data" markers legacy filings print in place of
// a number. They normalize to zero, not to an absent value.
var noValueGlyphs = map[string]bool{
	"—": true, // em dash
	"–": true, // en dash
	"-": true,
}

// normalizeValue converts a raw cell token into a signed, scaled magnitude.
//
// The unit hint is the filing's stated multiplier context, e.g.
// "shares in Thousands, $ in Millions". Whether the share clause or the
// dollar clause applies is decided by the owning concept identifier:
// per-share concepts are never scaled, share-count concepts follow the
// share clause, everything else follows the dollar clause.
//
// A token that cannot be parsed as a number yields nil; the caller records
// the element with an absent value and continues.
func normalizeValue(raw, concept, unitHint string) *float64 {
	negative := strings.Contains(raw, "(")

	cleaned := stripNonNumeric(raw)
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		log.Warn().
			Str("raw", raw).
			Str("concept", concept).
			Msg("cell is not numeric after stripping special characters, ignoring")
		return nil
	}
	if negative {
		amount = amount.Neg()
	}

	value := amount.Mul(conceptScale(concept, unitHint)).InexactFloat64()
	return &value
}

// conceptScale picks the multiplier the unit hint declares for this concept.
// Unrecognized or absent scales multiply by one.
func conceptScale(concept, unitHint string) decimal.Decimal {
	if strings.Contains(concept, "PerShare") {
		return decimal.NewFromInt(1)
	}

	hint := strings.ToLower(unitHint)
	isShares := strings.Contains(concept, "Shares")
	for name, factor := range scaleFactors {
		if (isShares && strings.Contains(hint, "shares in "+name)) ||
			(!isShares && strings.Contains(hint, "$ in "+name)) {
			return factor
		}
	}
	return decimal.NewFromInt(1)
}

// parseLegacyAmount parses a value token from a free-text statement line.
// An em-dash (or equivalent glyph) means "no value" and becomes zero;
// parentheses mean negative. The second return is false when the token is
// not numeric at all.
func parseLegacyAmount(raw string) (decimal.Decimal, bool) {
	token := strings.TrimSpace(raw)
	if noValueGlyphs[token] {
		return decimal.Zero, true
	}

	negative := strings.HasPrefix(token, "(") && strings.HasSuffix(token, ")")
	amount, err := decimal.NewFromString(stripNonNumeric(token))
	if err != nil {
		log.Warn().Str("raw", raw).Msg("statement line value is not numeric, ignoring")
		return decimal.Zero, false
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, true
}

// sectionScale resolves a legacy section's stated unit word ("Millions")
// to its multiplier. Unrecognized units multiply by one.
func sectionScale(unit string) decimal.Decimal {
	if factor, ok := scaleFactors[strings.ToLower(unit)]; ok {
		return factor
	}
	return decimal.NewFromInt(1)
}

// stripNonNumeric drops every rune that is not a digit or decimal point:
// currency symbols, thousands separators, parentheses, footnote daggers.
func stripNonNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
