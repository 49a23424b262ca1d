package financials

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

var testDateFiled = time.Date(1997, time.December, 5, 0, 0, 0, 0, time.UTC)

const legacyFilingHTML = `<html><body><pre>
CONSOLIDATED BALANCE SHEETS
September 27, 1997 and September 26, 1996
(In millions)
Current assets:
Cash and cash equivalents
$
1,230
Short-term investments
229
Total current assets
3,424
Total assets
4,233
See accompanying Notes to Consolidated Financial Statements.
CONSOLIDATED STATEMENTS OF OPERATIONS
Three fiscal years ended September 26, 1997
(In millions, except share and per share amounts)
Net sales
$
7,081
Cost of sales
5,713
Net income
1,045
Earnings per common share:
Basic
2.26
Diluted
2.21
See accompanying Notes to Consolidated Financial Statements.
CONSOLIDATED STATEMENTS OF CASH FLOWS
Twelve Months Ended September 27, 1997
(In millions)
Cash and cash equivalents, beginning of the year
1,552
Operating activities:
Depreciation and amortization
118
Cash generated by operating activities
154
Cash and cash equivalents, end of the year
1,452
See accompanying Notes to Consolidated Financial Statements.
</pre></body></html>`

func TestExtractReport_Legacy(t *testing.T) {
	report, err := ExtractReport("AAPL", testDateFiled, legacyFilingHTML)
	if err != nil {
		t.Fatalf("ExtractReport() error = %v", err)
	}

	if report.Company != "AAPL" || !report.DateFiled.Equal(testDateFiled) {
		t.Errorf("report identity = %s %v", report.Company, report.DateFiled)
	}
	if len(report.Periods) != 3 {
		t.Fatalf("got %d periods, want balance sheet, income, cash flow", len(report.Periods))
	}

	balance, income, cashFlow := report.Periods[0], report.Periods[1], report.Periods[2]

	if _, ok := balance.Elements["Total assets"]; !ok {
		t.Error("first period is not the balance sheet")
	}
	if _, ok := income.Elements["Net sales"]; !ok {
		t.Error("second period is not the income statement")
	}
	if _, ok := cashFlow.Elements["Cash and cash equivalents, end of the year"]; !ok {
		t.Error("third period is not the cash flow statement")
	}

	// the cash-flow caption's word-form period length applies to all three
	for i, period := range report.Periods {
		if period.Months == nil || *period.Months != 12 {
			t.Errorf("period %d months = %v, want 12", i, period.Months)
		}
	}
}

func TestExtractReport_Modern(t *testing.T) {
	report, err := ExtractReport("AAPL", testDateFiled, snapshotTableHTML)
	if err != nil {
		t.Fatalf("ExtractReport() error = %v", err)
	}
	if len(report.Periods) != 2 {
		t.Fatalf("got %d periods, want 2", len(report.Periods))
	}
	if report.Periods[0].Months != nil {
		t.Error("snapshot period has a non-nil month count")
	}
}

func TestExtractReport_ModernMetadataMismatchIsFatal(t *testing.T) {
	html := `<html><body><table class="report">
<tr>
<th class="tl"><div>CONSOLIDATED STATEMENTS OF OPERATIONS<div>$ in Millions</div></div></th>
<th class="th">12 Months Ended</th>
<th class="th">12 Months Ended</th>
</tr>
<tr>
<th class="th">Sep. 28, 2019</th>
</tr>
</table></body></html>`

	if _, err := ExtractReport("AAPL", testDateFiled, html); !errors.Is(err, ErrMetadataMismatch) {
		t.Fatalf("error = %v, want ErrMetadataMismatch", err)
	}
}

func TestExtractReport_LegacyMissingAnchorIsFatal(t *testing.T) {
	html := `<html><body><pre>
CONSOLIDATED BALANCE SHEETS
Cash and cash equivalents
See accompanying Notes to Consolidated Financial Statements.
</pre></body></html>`

	if _, err := ExtractReport("AAPL", testDateFiled, html); !errors.Is(err, ErrSectionNotFound) {
		t.Fatalf("error = %v, want ErrSectionNotFound", err)
	}
}

func TestExtractReport_Deterministic(t *testing.T) {
	first, err := ExtractReport("AAPL", testDateFiled, legacyFilingHTML)
	if err != nil {
		t.Fatalf("ExtractReport() error = %v", err)
	}
	second, err := ExtractReport("AAPL", testDateFiled, legacyFilingHTML)
	if err != nil {
		t.Fatalf("ExtractReport() error = %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Error("re-running the same document produced different output")
	}
}

func TestLegacyMonths(t *testing.T) {
	tests := []struct {
		section string
		want    int
	}{
		{"Three Months Ended June 27, 1998", 3},
		{"Six Months Ended", 6},
		{"Nine months ended", 9},
		{"Twelve Months Ended September 27, 1997", 12},
		{"no caption at all", 12},
	}
	for _, tt := range tests {
		if got := legacyMonths(tt.section); got != tt.want {
			t.Errorf("legacyMonths(%q) = %d, want %d", tt.section, got, tt.want)
		}
	}
}
