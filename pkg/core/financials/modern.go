package financials

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"edgar_financials/pkg/models"
)

// ErrMetadataMismatch reports a tagged table whose header rows yield a
// different number of dates than period lengths. The table cannot be
// decoded positionally and the whole document is rejected.
var ErrMetadataMismatch = errors.New("financials: header dates and period lengths disagree")

// Modern report tables print dates as "Dec. 29, 2018".
const modernDateLayout = "Jan. 2, 2006"

// tableMeta is what the first two header rows of a tagged report table
// describe: one date and one period length per reporting column, plus the
// filing's unit-scale hint. Period lengths are nil for snapshot statements.
type tableMeta struct {
	dates    []string
	periods  []*int
	unitHint string
}

// extractTableMeta decodes the first two rows of a tagged report table.
//
// Row one holds the title cell (statement title and unit hint inside a
// nested div) followed by one header cell per reporting column: a period
// phrase such as "12 Months Ended" for period statements, or the snapshot
// date itself for balance-sheet-like tables. Row two, when present, holds
// the per-column dates.
//
// A title cell spanning more than one column visually merges into the
// first data column; its excess span is carried onto the first data cell
// of both rows so the positional decode stays aligned.
func extractTableMeta(rows *goquery.Selection) (tableMeta, error) {
	var meta tableMeta
	isSnapshot := false
	titleRepeat := 0

	rows.Slice(0, min(2, rows.Length())).Each(func(rowNum int, row *goquery.Selection) {
		row.Find("th").Each(func(index int, cell *goquery.Selection) {
			text := strings.ReplaceAll(cell.Text(), "\n", "")
			classes := strings.Fields(cell.AttrOr("class", ""))
			repeat := spanOf(cell)

			switch {
			case rowNum == 0 && hasClass(classes, "tl"):
				titleRepeat = spanOf(cell) - 1
				title, unitHint := splitTitleCell(cell, text)
				meta.unitHint = unitHint
				lower := strings.ToLower(title)
				isSnapshot = strings.Contains(lower, "balance") ||
					strings.Contains(lower, "statement of financial position")

			case rowNum == 0 && hasClass(classes, "th"):
				if index == 1 {
					repeat += titleRepeat
				}
				for i := 0; i < repeat; i++ {
					if isSnapshot {
						meta.periods = append(meta.periods, nil)
						if text != "" {
							meta.dates = append(meta.dates, text)
						}
					} else {
						meta.periods = append(meta.periods, models.Int(parseMonths(text)))
					}
				}

			case rowNum == 1 && hasClass(classes, "th"):
				if index == 0 {
					repeat += titleRepeat
				}
				for i := 0; i < repeat; i++ {
					meta.dates = append(meta.dates, text)
				}
			}
		})
	})

	if len(meta.dates) != len(meta.periods) {
		return tableMeta{}, fmt.Errorf("%w: %d dates vs %d period lengths",
			ErrMetadataMismatch, len(meta.dates), len(meta.periods))
	}
	return meta, nil
}

// extractModernInfo decodes a tagged report table into one FinancialInfo
// per reporting column.
func extractModernInfo(table *goquery.Selection) ([]models.FinancialInfo, error) {
	rows := table.Find("tr")

	meta, err := extractTableMeta(rows)
	if err != nil {
		return nil, err
	}

	infos := make([]models.FinancialInfo, 0, len(meta.dates))
	for i, date := range meta.dates {
		parsed, err := time.Parse(modernDateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("financials: unparseable report date %q: %w", date, err)
		}
		infos = append(infos, models.NewFinancialInfo(parsed, meta.periods[i]))
	}

	rows.Each(func(_ int, row *goquery.Selection) {
		var concept, label string
		numericSeen := false

		row.Find("td").Each(func(index int, cell *goquery.Selection) {
			classes := strings.Fields(cell.AttrOr("class", ""))
			if len(classes) == 0 {
				// separator rows carry unclassed cells
				return
			}
			text := strings.TrimSpace(cell.Text())

			var value *float64
			stored := false

			switch {
			case hasClass(classes, "pl"):
				// the pl cell carries the human label and the embedded
				// concept reference
				concept = parseConceptRef(cell.Find("a").AttrOr("onclick", ""))
				label = text
			case hasClass(classes, "nump"), hasClass(classes, "num"):
				numericSeen = true
				value = normalizeValue(text, concept, meta.unitHint)
				stored = true
			case hasClass(classes, "text"):
				// plain cells after a numeric cell hold sparsely-reported
				// facts; before one they are abstract headers
				if numericSeen {
					value = normalizeValue(text, concept, meta.unitHint)
					stored = true
				}
			}

			if !stored {
				return
			}
			col := index - 1 // first cell is the label column
			if col < 0 || col >= len(infos) {
				log.Warn().Int("column", col).Str("concept", concept).
					Msg("cell position outside recovered reporting columns, dropping")
				return
			}
			if _, exists := infos[col].Elements[concept]; !exists {
				// adjustment sub-rows repeat a concept; first-seen wins
				infos[col].Elements[concept] = models.FinancialElement{Label: label, Value: value}
			}
		})
	})

	// colspan carry-forward can mint phantom columns that collect nothing
	kept := infos[:0]
	for _, info := range infos {
		if len(info.Elements) > 0 {
			kept = append(kept, info)
		}
	}
	return kept, nil
}

// splitTitleCell separates the statement title from the unit-scale hint.
// Both live in the title cell's nested div, rendered on separate lines,
// e.g. "CONSOLIDATED STATEMENTS OF INCOME - USD ($)" over
// "shares in Thousands, $ in Millions".
func splitTitleCell(cell *goquery.Selection, flatText string) (title, unitHint string) {
	segments := textSegments(cell.Find("div"))
	if len(segments) > 1 {
		unitHint = segments[1]
	}
	title = strings.TrimSpace(strings.Replace(flatText, unitHint, "", 1))
	return title, unitHint
}

// textSegments collects the trimmed, non-empty text nodes under a
// selection in document order.
func textSegments(sel *goquery.Selection) []string {
	var segments []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				segments = append(segments, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, node := range sel.Nodes {
		walk(node)
	}
	return segments
}

// parseMonths reads the month count out of a period phrase such as
// "12 Months Ended" by stripping every non-digit.
func parseMonths(phrase string) int {
	var b strings.Builder
	for _, r := range phrase {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	months, _ := strconv.Atoi(b.String())
	return months
}

func spanOf(cell *goquery.Selection) int {
	span, err := strconv.Atoi(cell.AttrOr("colspan", "1"))
	if err != nil || span < 1 {
		return 1
	}
	return span
}

func hasClass(classes []string, want string) bool {
	for _, c := range classes {
		if c == want {
			return true
		}
	}
	return false
}
