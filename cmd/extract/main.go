package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"edgar_financials/pkg/core/fetch"
	"edgar_financials/pkg/core/financials"
	"edgar_financials/pkg/models"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, assuming environment variables are set")
	}

	tickers := flag.String("tickers", "", "comma-separated ticker symbols (e.g. AAPL,MSFT)")
	form := flag.String("form", "10-K", "filing form to extract")
	out := flag.String("out", "", "output file (default stdout)")
	userAgent := flag.String("user-agent", os.Getenv("EDGAR_USER_AGENT"), "User-Agent for SEC requests (name + contact email)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *tickers == "" {
		log.Fatal().Msg("usage: extract -tickers AAPL,MSFT [-form 10-K] [-out reports.json]")
	}

	var options []fetch.ClientOption
	if *userAgent != "" {
		options = append(options, fetch.WithUserAgent(*userAgent))
	}
	client := fetch.NewClient(options...)

	ctx := context.Background()
	symbols := strings.Split(*tickers, ",")
	reports := make([]*models.FinancialReport, len(symbols))

	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			report, err := extractOne(ctx, client, strings.TrimSpace(symbol), *form)
			if err != nil {
				log.Error().Err(err).Str("ticker", symbol).Msg("extraction failed")
				return
			}
			reports[i] = report
		}(i, symbol)
	}
	wg.Wait()

	kept := reports[:0]
	for _, r := range reports {
		if r != nil {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		log.Fatal().Msg("no filings extracted")
	}

	output := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal().Err(err).Str("path", *out).Msg("cannot create output file")
		}
		defer f.Close()
		output = f
	}

	enc := json.NewEncoder(output)
	enc.SetIndent("", "  ")
	if err := enc.Encode(kept); err != nil {
		log.Fatal().Err(err).Msg("cannot write reports")
	}
}

func extractOne(ctx context.Context, client *fetch.Client, ticker, form string) (*models.FinancialReport, error) {
	cik, err := client.LookupCIK(ctx, ticker)
	if err != nil {
		return nil, err
	}
	filing, err := client.LatestFiling(ctx, cik, form)
	if err != nil {
		return nil, err
	}
	log.Info().Str("ticker", ticker).Str("form", filing.Form).Str("accession", filing.AccessionNumber).Msg("fetching filing")

	markup, err := client.StatementDocument(ctx, filing)
	if err != nil {
		return nil, err
	}
	report, err := financials.ExtractReport(filing.CompanyName, filing.DateFiled, markup)
	if err != nil {
		return nil, err
	}
	log.Info().Str("ticker", ticker).Int("periods", len(report.Periods)).Msg("extracted")
	return report, nil
}
