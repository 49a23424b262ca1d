package fetch

import (
	"encoding/xml"
	"reflect"
	"testing"
)

func TestExtractBodyContent(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "wrapped document",
			html: `<html><head><title>x</title></head><body class="r">inner content</body></html>`,
			want: "inner content",
		},
		{
			name: "no body tag passes through",
			html: `<div>fragment</div>`,
			want: `<div>fragment</div>`,
		},
		{
			name: "unterminated body",
			html: `<body><p>trailing`,
			want: `<p>trailing`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractBodyContent(tt.html); got != tt.want {
				t.Errorf("extractBodyContent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPadCIK(t *testing.T) {
	if got := padCIK("320193"); got != "0000320193" {
		t.Errorf("padCIK(320193) = %q", got)
	}
	if got := padCIK("0000320193"); got != "0000320193" {
		t.Errorf("padCIK(already padded) = %q", got)
	}
}

func TestStripDashes(t *testing.T) {
	if got := stripDashes("0000320193-19-000119"); got != "000032019319000119" {
		t.Errorf("stripDashes() = %q", got)
	}
}

const filingSummaryXML = `<?xml version="1.0" encoding="utf-8"?>
<FilingSummary>
  <MyReports>
    <Report>
      <ShortName>Cover Page</ShortName>
      <LongName>0001001 - Document - Cover Page</LongName>
      <HtmlFileName>R1.htm</HtmlFileName>
    </Report>
    <Report>
      <ShortName>CONSOLIDATED BALANCE SHEETS</ShortName>
      <LongName>1002003 - Statement - CONSOLIDATED BALANCE SHEETS</LongName>
      <HtmlFileName>R4.htm</HtmlFileName>
    </Report>
    <Report>
      <ShortName>CONSOLIDATED BALANCE SHEETS (Parenthetical)</ShortName>
      <LongName>1002004 - Statement - CONSOLIDATED BALANCE SHEETS (Parenthetical)</LongName>
      <HtmlFileName>R5.htm</HtmlFileName>
    </Report>
    <Report>
      <ShortName>CONSOLIDATED STATEMENTS OF OPERATIONS</ShortName>
      <LongName>1001002 - Statement - CONSOLIDATED STATEMENTS OF OPERATIONS</LongName>
      <HtmlFileName>R2.htm</HtmlFileName>
    </Report>
    <Report>
      <ShortName>CONSOLIDATED STATEMENTS OF CASH FLOWS</ShortName>
      <LongName>1004005 - Statement - CONSOLIDATED STATEMENTS OF CASH FLOWS</LongName>
      <HtmlFileName>R7.htm</HtmlFileName>
    </Report>
  </MyReports>
</FilingSummary>`

func TestStatementFiles(t *testing.T) {
	var summary filingSummary
	if err := xml.Unmarshal([]byte(filingSummaryXML), &summary); err != nil {
		t.Fatalf("unmarshal test summary: %v", err)
	}

	got := statementFiles(&summary)
	// one R-file per statement, in balance/income/cash-flow order, with the
	// cover page and parenthetical variants skipped
	want := []string{"R4.htm", "R2.htm", "R7.htm"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("statementFiles() = %v, want %v", got, want)
	}
}

const submissionsJSON = `{
	"name": "Apple Inc.",
	"filings": {
		"recent": {
			"accessionNumber": ["0000320193-19-000119", "0000320193-19-000076"],
			"filingDate": ["2019-10-31", "2019-07-31"],
			"form": ["10-K", "10-Q"],
			"primaryDocument": ["a10-k20199282019.htm", "a10-qq320196292019.htm"]
		}
	}
}`

func TestParseSubmissions(t *testing.T) {
	filings, err := parseSubmissions([]byte(submissionsJSON), "0000320193", "10-K")
	if err != nil {
		t.Fatalf("parseSubmissions() error = %v", err)
	}
	if len(filings) != 1 {
		t.Fatalf("got %d filings, want 1: %+v", len(filings), filings)
	}
	f := filings[0]
	if f.AccessionNumber != "0000320193-19-000119" ||
		f.Form != "10-K" ||
		f.PrimaryDocument != "a10-k20199282019.htm" ||
		f.CompanyName != "Apple Inc." ||
		f.DateFiled.Format("2006-01-02") != "2019-10-31" {
		t.Errorf("filing = %+v", f)
	}
}

func TestParseSubmissions_MisalignedArrays(t *testing.T) {
	// one accession number short of the form list
	short := `{
		"filings": {
			"recent": {
				"accessionNumber": ["0000320193-19-000119"],
				"filingDate": ["2019-10-31", "2019-07-31"],
				"form": ["10-K", "10-Q"],
				"primaryDocument": ["a.htm", "b.htm"]
			}
		}
	}`
	if _, err := parseSubmissions([]byte(short), "0000320193", ""); err == nil {
		t.Fatal("parseSubmissions() accepted misaligned filing arrays")
	}
}
