package financials

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"edgar_financials/pkg/models"
)

// Legacy statements print their primary date in full, "September 29, 2018".
const legacyDateLayout = "January 2, 2006"

var (
	sectionUnitPattern = regexp.MustCompile(`In ([A-Za-z]+)`)
	sectionDatePattern = regexp.MustCompile(`[A-Za-z]+ \d{1,2}, \d{4}`)
	footnoteMarker     = regexp.MustCompile(` \(\d+\)$`)
)

// sectionHeader is what a legacy statement section declares about itself:
// the reporting dates and the stated unit scale ("(In millions)").
type sectionHeader struct {
	dates []time.Time
	scale decimal.Decimal
}

// parseSectionHeader reads the reporting date and unit scale out of a
// statement section. Only the primary (first) date column is extracted;
// later date-like strings inside line items would otherwise widen the
// value windows unpredictably.
func parseSectionHeader(section string) (sectionHeader, error) {
	header := sectionHeader{scale: decimal.NewFromInt(1)}

	if m := sectionUnitPattern.FindStringSubmatch(section); m != nil {
		header.scale = sectionScale(m[1])
	} else {
		log.Warn().Msg("statement section declares no unit scale, leaving values unscaled")
	}

	for _, raw := range sectionDatePattern.FindAllString(section, -1) {
		date, err := time.Parse(legacyDateLayout, raw)
		if err != nil {
			continue
		}
		header.dates = append(header.dates, date)
		break
	}
	if len(header.dates) == 0 {
		return sectionHeader{}, fmt.Errorf("financials: no report date in statement section")
	}
	return header, nil
}

// extractBalanceSheet pulls the enumerated balance-sheet items out of a
// legacy section. Account-phrasing variants collapse onto canonical keys
// via the alias table; common-stock lines are share counts and stay
// unscaled; goodwill and acquired intangibles default to zero when the
// filing omits them.
func extractBalanceSheet(section string, months *int) (models.FinancialInfo, error) {
	header, err := parseSectionHeader(section)
	if err != nil {
		return models.FinancialInfo{}, err
	}
	r := rules.BalanceSheet
	lines := splitStatementLines(section)
	data := make(map[string]float64)

	for _, s := range selectLabels(lines, r) {
		window := valueWindow(lines, s.index, len(header.dates))
		if len(window) == 0 {
			continue
		}
		amount, ok := parseLegacyAmount(window[0])
		if !ok {
			continue
		}
		key := r.CanonicalKey(s.label)
		scale := header.scale
		if r.Unscaled(key) {
			scale = decimal.NewFromInt(1)
		}
		data[key] = amount.Mul(scale).InexactFloat64()
	}

	for _, key := range r.ZeroDefaults {
		if _, ok := data[key]; !ok {
			data[key] = 0
		}
	}

	// derived aggregates reported by downstream consumers
	if cash, ok := data["Cash and cash equivalents"]; ok {
		if sti, ok := data["Short-term investments"]; ok {
			data["Cash and short-term investments"] = cash + sti
		}
	}
	data["Goodwill and Intangible Assets"] = data["Goodwill"] + data["Acquired intangible assets, net"]
	if total, ok := data["Total assets"]; ok {
		if current, ok := data["Total current assets"]; ok {
			data["Total non-current assets"] = total - current
		}
	}

	return buildInfo(header.dates[0], months, data), nil
}

// extractIncomeStatement pulls the enumerated income-statement items out
// of a legacy section. Per-share and share-count disclosures sit under a
// "Basic"/"Diluted" sub-line pair and yield two entries each, scaled as
// thousands when the label is a per-share measure; everything else takes
// the section scale, except dividend items which are unscaled.
func extractIncomeStatement(section string, months *int) (models.FinancialInfo, error) {
	header, err := parseSectionHeader(section)
	if err != nil {
		return models.FinancialInfo{}, err
	}
	r := rules.IncomeStatement
	lines := splitStatementLines(section)
	n := len(header.dates)
	data := make(map[string]float64)

	for _, s := range selectLabels(lines, r) {
		if strings.Contains(s.label, "share") && lineAt(lines, s.index+1) == "Basic" {
			clean := strings.TrimSuffix(s.label, ":")
			scale := header.scale
			if perShareLabel(clean) {
				scale = scaleFactors["thousands"]
			}
			basicIdx := findLineFrom(lines, s.index, "Basic")
			dilutedIdx := findLineFrom(lines, s.index, "Diluted")
			if basicIdx < 0 || dilutedIdx < 0 {
				continue
			}
			if amount, ok := firstWindowAmount(lines, basicIdx, n); ok {
				data[clean] = amount.Mul(scale).InexactFloat64()
			}
			if amount, ok := firstWindowAmount(lines, dilutedIdx, n); ok {
				data[clean+" Diluted"] = amount.Mul(scale).InexactFloat64()
			}
			continue
		}

		key := footnoteMarker.ReplaceAllString(s.label, "")
		if _, seen := data[key]; seen {
			continue
		}
		amount, ok := firstWindowAmount(lines, s.index, n)
		if !ok {
			continue
		}
		scale := header.scale
		if r.Unscaled(key) {
			scale = decimal.NewFromInt(1)
		}
		data[key] = amount.Mul(scale).InexactFloat64()
	}

	for _, key := range r.ZeroDefaults {
		if _, ok := data[key]; !ok {
			data[key] = 0
		}
	}

	// implied share counts from earnings and per-share earnings
	if ni, ok := data["Net income"]; ok {
		preferred := data["Preferred dividends"]
		if eps, ok := data["Earnings per common share"]; ok && eps != 0 {
			data["Weighted Average Shs Out"] = (ni - preferred) / eps
		}
		if eps, ok := data["Earnings per common share Diluted"]; ok && eps != 0 {
			data["Weighted Average Shs Out (Dil)"] = (ni - preferred) / eps
		}
	}

	return buildInfo(header.dates[0], months, data), nil
}

// extractCashFlow pulls the enumerated cash-flow items out of a legacy
// section. Sub-section headers ("Operating activities:") are tracked as
// the current parent; an item is keyed as "parent - label" only when no
// parent is currently tracked, which preserves the behavior of the
// long-standing heuristic verbatim (see DESIGN.md).
func extractCashFlow(section string, months *int) (models.FinancialInfo, error) {
	header, err := parseSectionHeader(section)
	if err != nil {
		return models.FinancialInfo{}, err
	}
	r := rules.CashFlow
	lines := splitStatementLines(section)
	data := make(map[string]float64)

	for _, s := range selectLabels(lines, r) {
		amount, ok := firstWindowAmount(lines, s.index, len(header.dates))
		if !ok {
			continue
		}
		key := s.label
		if s.parent == "" && s.lastParent != "" {
			key = s.lastParent + " - " + s.label
		}
		data[key] = amount.Mul(header.scale).InexactFloat64()
	}

	for from, to := range r.Renames {
		if v, ok := data[from]; ok {
			data[to] = v
			delete(data, from)
		}
	}

	return buildInfo(header.dates[0], months, data), nil
}

// perShareLabel reports whether a Basic/Diluted block label is a
// per-share disclosure ("Earnings per common share") rather than a share
// count. Per-share disclosures take the thousands scale regardless of the
// section default.
func perShareLabel(label string) bool {
	return strings.Contains(label, "per share") || strings.Contains(label, "per common share")
}

// firstWindowAmount reads the per-period value window after pos and
// parses its primary (first) slot.
func firstWindowAmount(lines []string, pos, n int) (decimal.Decimal, bool) {
	window := valueWindow(lines, pos, n)
	if len(window) == 0 {
		return decimal.Zero, false
	}
	return parseLegacyAmount(window[0])
}

func lineAt(lines []string, i int) string {
	if i < 0 || i >= len(lines) {
		return ""
	}
	return lines[i]
}

func findLineFrom(lines []string, from int, target string) int {
	for i := from; i < len(lines); i++ {
		if lines[i] == target {
			return i
		}
	}
	return -1
}

func buildInfo(date time.Time, months *int, data map[string]float64) models.FinancialInfo {
	info := models.NewFinancialInfo(date, months)
	for key, value := range data {
		info.Elements[key] = models.FinancialElement{Label: key, Value: models.Float64(value)}
	}
	return info
}
