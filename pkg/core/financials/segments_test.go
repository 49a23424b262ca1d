package financials

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestFlattenFilingText(t *testing.T) {
	html := "<html><body><pre>Cash and   equivalents\n(403\n)\nNet\tsales</pre></body></html>"
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse test markup: %v", err)
	}

	text := flattenFilingText(doc)
	if strings.Contains(text, " ") {
		t.Error("non-breaking space survived flattening")
	}
	if !strings.Contains(text, "Cash and equivalents") {
		t.Errorf("space runs not collapsed: %q", text)
	}
	if !strings.Contains(text, "(403)") {
		t.Errorf("wrapped closing parenthesis not rejoined: %q", text)
	}
	if !strings.Contains(text, "Net sales") {
		t.Errorf("tab not collapsed: %q", text)
	}
}

const legacyFilingText = `
ITEM 8. FINANCIAL STATEMENTS
CONSOLIDATED BALANCE SHEETS
Current assets:
Cash and cash equivalents
1,230
See accompanying Notes to Consolidated Financial Statements.
CONSOLIDATED STATEMENTS OF OPERATIONS
Net sales
7,081
See accompanying Notes to Consolidated Financial Statements.
CONSOLIDATED STATEMENTS OF CASH FLOWS
Cash and cash equivalents, beginning of the year
1,552
25 APPLE COMPUTER, INC.
`

func TestSegmentStatements(t *testing.T) {
	sections, err := segmentStatements(legacyFilingText)
	if err != nil {
		t.Fatalf("segmentStatements() error = %v", err)
	}

	if !strings.Contains(sections.balanceSheet, "Cash and cash equivalents") ||
		strings.Contains(sections.balanceSheet, "Net sales") {
		t.Errorf("balance sheet section miscut: %q", sections.balanceSheet)
	}
	if !strings.Contains(sections.operations, "Net sales") ||
		strings.Contains(sections.operations, "beginning of the year") {
		t.Errorf("operations section miscut: %q", sections.operations)
	}
	// the cash-flow statement has no trailing notes reference here; it must
	// end at the page-break pattern instead
	if !strings.Contains(sections.cashFlow, "beginning of the year") ||
		strings.Contains(sections.cashFlow, "APPLE COMPUTER") {
		t.Errorf("cash flow section miscut: %q", sections.cashFlow)
	}
}

func TestSegmentStatements_MissingSection(t *testing.T) {
	text := `
CONSOLIDATED BALANCE SHEETS
Cash and cash equivalents
See accompanying Notes to Consolidated Financial Statements.
`
	_, err := segmentStatements(text)
	if !errors.Is(err, ErrSectionNotFound) {
		t.Fatalf("error = %v, want ErrSectionNotFound", err)
	}
}
