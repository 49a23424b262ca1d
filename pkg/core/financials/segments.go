package financials

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrSectionNotFound reports a legacy filing in which one of the three
// statement sections could not be located or came out empty. The document
// is unprocessable; no partial report is produced.
var ErrSectionNotFound = errors.New("financials: statement section not found")

var (
	balanceSheetAnchor = regexp.MustCompile(`(?i)BALANCE\s+SHEETS?`)
	operationsAnchor   = regexp.MustCompile(`(?i)STATEMENTS?\s+OF\s+OPERATIONS`)
	cashFlowAnchor     = regexp.MustCompile(`(?i)STATEMENTS?\s+OF\s+CASH\s+FLOWS?`)

	notesBoundary = regexp.MustCompile(`(?i)See\s+(?:accompanying\s+)?Notes`)
	// a page number followed by the next page's all-caps heading; used when
	// the cash-flow statement is the last section before a page break
	pageBreakBoundary = regexp.MustCompile(`[0-9]+\s+[A-Z]{2,}`)

	spaceRuns = regexp.MustCompile(`[ \t]+`)
)

// statementSections holds the three statement texts cut out of a legacy
// filing.
type statementSections struct {
	balanceSheet string
	operations   string
	cashFlow     string
}

// flattenFilingText renders loose filing markup as flat text and
// normalizes the layout artifacts the line scanners depend on:
// non-breaking spaces become ordinary spaces, space runs collapse, and a
// closing parenthesis that wrapped onto its own line is rejoined to its
// number.
func flattenFilingText(doc *goquery.Document) string {
	text := doc.Text()
	text = strings.ReplaceAll(text, " ", " ")
	text = strings.ReplaceAll(text, "\n)", ")")
	text = spaceRuns.ReplaceAllString(text, " ")
	return text
}

// segmentStatements locates the three statement sections inside the
// flattened filing text. Each section runs from its anchor phrase to the
// first subsequent "See Notes" boundary; the cash-flow statement, often
// the last before a page break, may instead end at a page-break pattern.
func segmentStatements(text string) (statementSections, error) {
	balanceSheet, err := cutSection(text, balanceSheetAnchor, "balance sheet", false)
	if err != nil {
		return statementSections{}, err
	}
	operations, err := cutSection(text, operationsAnchor, "statement of operations", false)
	if err != nil {
		return statementSections{}, err
	}
	cashFlow, err := cutSection(text, cashFlowAnchor, "statement of cash flows", true)
	if err != nil {
		return statementSections{}, err
	}
	return statementSections{
		balanceSheet: balanceSheet,
		operations:   operations,
		cashFlow:     cashFlow,
	}, nil
}

func cutSection(text string, anchor *regexp.Regexp, name string, allowPageBreakEnd bool) (string, error) {
	loc := anchor.FindStringIndex(text)
	if loc == nil {
		return "", fmt.Errorf("%w: %s", ErrSectionNotFound, name)
	}
	section := text[loc[0]:]

	end := notesBoundary.FindStringIndex(section)
	if end == nil && allowPageBreakEnd {
		end = pageBreakBoundary.FindStringIndex(section)
	}
	if end == nil || end[0] == 0 {
		return "", fmt.Errorf("%w: %s has no end boundary", ErrSectionNotFound, name)
	}
	return section[:end[0]], nil
}
