// Package models defines the financial report types produced by the
// extraction pipeline. Dates serialize as extended ISO-8601 strings
// (time.Time's default JSON form); everything else serializes as a flat
// attribute map via field tags.
package models

import (
	"time"
)

// FinancialElement is a single extracted fact. Value is nil when the raw
// cell could not be parsed as a number.
type FinancialElement struct {
	Label string   `json:"label"`
	Value *float64 `json:"value"`
}

// FinancialInfo holds one reporting period. Months is nil for snapshot
// statements (balance sheets), which report a point in time rather than a
// covered duration. Elements maps a concept identifier to its fact; keys
// are unique within one period.
type FinancialInfo struct {
	Date     time.Time                   `json:"date"`
	Months   *int                        `json:"months"`
	Elements map[string]FinancialElement `json:"map"`
}

// NewFinancialInfo constructs a period with an empty element map.
func NewFinancialInfo(date time.Time, months *int) FinancialInfo {
	return FinancialInfo{
		Date:     date,
		Months:   months,
		Elements: make(map[string]FinancialElement),
	}
}

// FinancialReport models one filing. Company is an opaque identifier, not
// necessarily a trading symbol: not every company that files on EDGAR is
// publicly traded. Periods are ordered as produced by the pipeline.
type FinancialReport struct {
	Company   string          `json:"company"`
	DateFiled time.Time       `json:"date_filed"`
	Periods   []FinancialInfo `json:"reports"`
}

// NewFinancialReport constructs an empty report for a filing.
func NewFinancialReport(company string, dateFiled time.Time) *FinancialReport {
	return &FinancialReport{
		Company:   company,
		DateFiled: dateFiled,
	}
}

// AddFinancialInfo appends another period's data to the report.
func (r *FinancialReport) AddFinancialInfo(info FinancialInfo) {
	r.Periods = append(r.Periods, info)
}

// Float64 returns a pointer to v. Convenience for building elements.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v. Convenience for period lengths.
func Int(v int) *int { return &v }
