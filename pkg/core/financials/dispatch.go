package financials

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"edgar_financials/pkg/models"
)

var monthsEndedPattern = regexp.MustCompile(`(?i)(Three|Six|Nine|Twelve)\s+Months\s+Ended`)

var monthWords = map[string]int{
	"three":  3,
	"six":    6,
	"nine":   9,
	"twelve": 12,
}

// ExtractReport turns one filing document into a FinancialReport. Filings
// rendered with machine-tagged report tables take the structured path;
// everything older is flattened to text and carved into the three core
// statements by their title anchors.
func ExtractReport(company string, dateFiled time.Time, markup string) (*models.FinancialReport, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("financials: parse filing markup: %w", err)
	}

	report := models.NewFinancialReport(company, dateFiled)

	tables := doc.Find("table.report")
	if tables.Length() > 0 {
		log.Debug().Int("tables", tables.Length()).Str("company", company).Msg("extracting machine-tagged report tables")
		var extractErr error
		tables.EachWithBreak(func(_ int, table *goquery.Selection) bool {
			infos, err := extractModernInfo(table)
			if err != nil {
				extractErr = err
				return false
			}
			for _, info := range infos {
				report.AddFinancialInfo(info)
			}
			return true
		})
		if extractErr != nil {
			return nil, extractErr
		}
		return report, nil
	}

	log.Debug().Str("company", company).Msg("no report tables, extracting free-text statements")
	text := flattenFilingText(doc)
	sections, err := segmentStatements(text)
	if err != nil {
		return nil, err
	}
	months := legacyMonths(sections.cashFlow)

	balance, err := extractBalanceSheet(sections.balanceSheet, models.Int(months))
	if err != nil {
		return nil, err
	}
	income, err := extractIncomeStatement(sections.operations, models.Int(months))
	if err != nil {
		return nil, err
	}
	cashFlow, err := extractCashFlow(sections.cashFlow, models.Int(months))
	if err != nil {
		return nil, err
	}
	report.AddFinancialInfo(balance)
	report.AddFinancialInfo(income)
	report.AddFinancialInfo(cashFlow)
	return report, nil
}

// legacyMonths reads the covered period length out of the cash-flow
// section's "<N> Months Ended" caption. Annual statements usually omit
// the caption, so twelve is the fallback.
func legacyMonths(section string) int {
	if m := monthsEndedPattern.FindStringSubmatch(section); m != nil {
		if months, ok := monthWords[strings.ToLower(m[1])]; ok {
			return months
		}
	}
	return 12
}
