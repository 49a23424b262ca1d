// Package fetch retrieves filings from SEC EDGAR: ticker resolution,
// submissions lookup, and locating the rendered financial-statement
// documents inside a filing. All network access for the module lives
// here; the extraction core only ever sees markup strings.
package fetch

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	defaultUserAgent  = "edgar_financials admin@example.com"
	companyTickersURL = "https://www.sec.gov/files/company_tickers.json"
	submissionsURL    = "https://data.sec.gov/submissions/CIK%s.json"
	archivesBaseURL   = "https://www.sec.gov/Archives/edgar/data/%s/%s"
)

// Client is an HTTP client for SEC EDGAR. Requests are rate limited to
// stay inside the SEC fair-access policy (10 requests per second).
type Client struct {
	userAgent   string
	httpClient  *http.Client
	rateLimiter *rate.Limiter

	tickerMu    sync.Mutex
	tickerCache map[string]string // ticker -> zero-padded CIK
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithUserAgent sets the User-Agent header. The SEC requires a contact
// address in it, so production callers should always set their own.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates an EDGAR client.
func NewClient(options ...ClientOption) *Client {
	c := &Client{
		userAgent:   defaultUserAgent,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		rateLimiter: rate.NewLimiter(rate.Limit(10), 10),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Filing identifies one located filing and where its documents live.
type Filing struct {
	CIK             string
	CompanyName     string
	AccessionNumber string
	DateFiled       time.Time
	Form            string
	PrimaryDocument string
}

// LookupCIK resolves a ticker symbol to its zero-padded CIK using the
// SEC's company_tickers.json. The full ticker table is fetched once and
// cached for the lifetime of the client.
func (c *Client) LookupCIK(ctx context.Context, ticker string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(ticker))

	c.tickerMu.Lock()
	defer c.tickerMu.Unlock()

	if c.tickerCache == nil {
		if err := c.loadTickerCache(ctx); err != nil {
			return "", err
		}
	}
	cik, ok := c.tickerCache[normalized]
	if !ok {
		return "", fmt.Errorf("fetch: ticker %s not found in SEC database", ticker)
	}
	return cik, nil
}

func (c *Client) loadTickerCache(ctx context.Context) error {
	body, err := c.get(ctx, companyTickersURL)
	if err != nil {
		return fmt.Errorf("fetch: company tickers: %w", err)
	}

	// The table is an object with numeric string keys, one entry per ticker.
	var entries map[string]struct {
		CIK    int    `json:"cik_str"`
		Ticker string `json:"ticker"`
	}
	if err := json.Unmarshal(body, &entries); err != nil {
		return fmt.Errorf("fetch: parse company tickers: %w", err)
	}

	c.tickerCache = make(map[string]string, len(entries))
	for _, entry := range entries {
		c.tickerCache[strings.ToUpper(entry.Ticker)] = fmt.Sprintf("%010d", entry.CIK)
	}
	log.Debug().Int("tickers", len(c.tickerCache)).Msg("loaded SEC ticker table")
	return nil
}

// submissions is the shape of the SEC submissions API response.
type submissions struct {
	CIK     string `json:"cik"`
	Name    string `json:"name"`
	Filings struct {
		Recent struct {
			AccessionNumber []string `json:"accessionNumber"`
			FilingDate      []string `json:"filingDate"`
			Form            []string `json:"form"`
			PrimaryDocument []string `json:"primaryDocument"`
		} `json:"recent"`
	} `json:"filings"`
}

// Filings lists a company's recent filings of the given form, newest
// first as the submissions API returns them. An empty form lists all.
func (c *Client) Filings(ctx context.Context, cik, form string) ([]Filing, error) {
	cik = padCIK(cik)
	body, err := c.get(ctx, fmt.Sprintf(submissionsURL, cik))
	if err != nil {
		return nil, fmt.Errorf("fetch: submissions for CIK %s: %w", cik, err)
	}

	filings, err := parseSubmissions(body, cik, form)
	if err != nil {
		return nil, err
	}
	if len(filings) == 0 {
		return nil, fmt.Errorf("fetch: no %s filings found for CIK %s", form, cik)
	}
	return filings, nil
}

func parseSubmissions(body []byte, cik, form string) ([]Filing, error) {
	var resp submissions
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("fetch: parse submissions: %w", err)
	}

	recent := resp.Filings.Recent
	n := len(recent.Form)
	if len(recent.AccessionNumber) != n || len(recent.FilingDate) != n || len(recent.PrimaryDocument) != n {
		return nil, fmt.Errorf("fetch: submissions for CIK %s have misaligned filing arrays", cik)
	}

	var filings []Filing
	for i, f := range recent.Form {
		if form != "" && f != form {
			continue
		}
		dateFiled, err := time.Parse("2006-01-02", recent.FilingDate[i])
		if err != nil {
			log.Warn().Str("date", recent.FilingDate[i]).Msg("skipping filing with unparseable date")
			continue
		}
		filings = append(filings, Filing{
			CIK:             cik,
			CompanyName:     resp.Name,
			AccessionNumber: recent.AccessionNumber[i],
			DateFiled:       dateFiled,
			Form:            f,
			PrimaryDocument: recent.PrimaryDocument[i],
		})
	}
	return filings, nil
}

// LatestFiling returns the most recent filing of the given form.
func (c *Client) LatestFiling(ctx context.Context, cik, form string) (Filing, error) {
	filings, err := c.Filings(ctx, cik, form)
	if err != nil {
		return Filing{}, err
	}
	return filings[0], nil
}

// filingSummary is the shape of FilingSummary.xml, which maps rendered
// R-files to the statements they contain.
type filingSummary struct {
	MyReports struct {
		Reports []struct {
			ShortName    string `xml:"ShortName"`
			LongName     string `xml:"LongName"`
			HtmlFileName string `xml:"HtmlFileName"`
		} `xml:"Report"`
	} `xml:"MyReports"`
}

var statementPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)balance\s*sheet|financial\s*position`),
	regexp.MustCompile(`(?i)statements?\s*of\s*operations|income\s*statement|statements?\s*of\s*earnings`),
	regexp.MustCompile(`(?i)cash\s*flow`),
}

// StatementDocument fetches the markup holding a filing's core financial
// statements. XBRL-rendered filings carry a FilingSummary.xml naming one
// R-file per statement; those are fetched and merged so the extractor
// sees every table in one document. Filings without a summary fall back
// to the primary document, which is where legacy free-text statements
// live.
func (c *Client) StatementDocument(ctx context.Context, filing Filing) (string, error) {
	summary, err := c.filingSummary(ctx, filing)
	if err != nil {
		log.Debug().Err(err).Str("accession", filing.AccessionNumber).Msg("no filing summary, falling back to primary document")
		return c.primaryDocument(ctx, filing)
	}

	files := statementFiles(summary)
	if len(files) == 0 {
		return c.primaryDocument(ctx, filing)
	}

	base := fmt.Sprintf(archivesBaseURL, strings.TrimLeft(filing.CIK, "0"), stripDashes(filing.AccessionNumber))
	var merged strings.Builder
	merged.WriteString("<html><body>\n")
	for _, name := range files {
		body, err := c.get(ctx, base+"/"+name)
		if err != nil {
			return "", fmt.Errorf("fetch: statement file %s: %w", name, err)
		}
		merged.WriteString(extractBodyContent(string(body)))
		merged.WriteString("\n")
	}
	merged.WriteString("</body></html>")
	return merged.String(), nil
}

func (c *Client) filingSummary(ctx context.Context, filing Filing) (*filingSummary, error) {
	base := fmt.Sprintf(archivesBaseURL, strings.TrimLeft(filing.CIK, "0"), stripDashes(filing.AccessionNumber))
	body, err := c.get(ctx, base+"/FilingSummary.xml")
	if err != nil {
		return nil, err
	}
	var summary filingSummary
	if err := xml.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("parse FilingSummary.xml: %w", err)
	}
	return &summary, nil
}

// statementFiles picks one R-file per core statement, skipping the
// parenthetical variants that repeat a statement's footnoted columns.
func statementFiles(summary *filingSummary) []string {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range statementPatterns {
		for _, report := range summary.MyReports.Reports {
			if report.HtmlFileName == "" || seen[report.HtmlFileName] {
				continue
			}
			if strings.Contains(strings.ToLower(report.ShortName), "parenthetical") {
				continue
			}
			if pattern.MatchString(report.ShortName) || pattern.MatchString(report.LongName) {
				seen[report.HtmlFileName] = true
				files = append(files, report.HtmlFileName)
				break
			}
		}
	}
	return files
}

func (c *Client) primaryDocument(ctx context.Context, filing Filing) (string, error) {
	base := fmt.Sprintf(archivesBaseURL, strings.TrimLeft(filing.CIK, "0"), stripDashes(filing.AccessionNumber))
	body, err := c.get(ctx, base+"/"+filing.PrimaryDocument)
	if err != nil {
		return "", fmt.Errorf("fetch: primary document: %w", err)
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// extractBodyContent returns the markup between <body> and </body> so
// fetched documents can be concatenated into one well-formed page.
func extractBodyContent(html string) string {
	lower := strings.ToLower(html)
	start := strings.Index(lower, "<body")
	if start == -1 {
		return html
	}
	tagEnd := strings.Index(html[start:], ">")
	if tagEnd == -1 {
		return html
	}
	contentStart := start + tagEnd + 1

	end := strings.LastIndex(lower, "</body>")
	if end == -1 || end <= contentStart {
		return html[contentStart:]
	}
	return html[contentStart:end]
}

func padCIK(cik string) string {
	return fmt.Sprintf("%010s", strings.TrimLeft(cik, "0"))
}

func stripDashes(accession string) string {
	return strings.ReplaceAll(accession, "-", "")
}
