// Package fundamental assembles per-(date, stock) valuation ratios from an
// exchange fundamentals feed into a tabular result.
//
// The feed (the BWIBBU daily report in production) reports ratios as
// display strings: thousands separators, and "-", "N/A" or an empty cell
// for stocks without a value. Coercion maps those to undefined rather than
// failing the batch; a missing feed row likewise yields a row of undefined
// ratios so one dead unit never aborts its siblings.
package fundamental

import (
	"context"
	"strconv"
	"strings"
	"time"

	"finpanel/internal/model"
)

// RatioFeed supplies the raw valuation-ratio strings for one stock on one
// date. Implementations return ok=false when the feed has no row for the
// pair; transport failures upstream must surface the same way.
type RatioFeed interface {
	ValuationRatios(ctx context.Context, stockID string, date time.Time) (RawRatios, bool, error)
}

// RawRatios are the uncoerced feed fields.
type RawRatios struct {
	DividendYield string
	PERatio       string
	PBRatio       string
}

// Row is the assembled result for one (stock, date) pair. Undefined fields
// are NaN.
type Row struct {
	StockID       string
	Date          time.Time
	DividendYield float64
	PERatio       float64
	PBRatio       float64
}

// Assemble looks up the ratio row for every (stock, month-start date)
// pair. Individual missing rows produce undefined fields; only a hard feed
// error (not "no data") stops the batch.
func Assemble(ctx context.Context, feed RatioFeed, stockIDs []string, dates []time.Time) ([]Row, error) {
	rows := make([]Row, 0, len(stockIDs)*len(dates))
	for _, id := range stockIDs {
		for _, d := range dates {
			row := Row{
				StockID:       id,
				Date:          d,
				DividendYield: model.Undefined(),
				PERatio:       model.Undefined(),
				PBRatio:       model.Undefined(),
			}
			raw, ok, err := feed.ValuationRatios(ctx, id, d)
			if err != nil {
				return nil, err
			}
			if ok {
				row.DividendYield = Coerce(raw.DividendYield)
				row.PERatio = Coerce(raw.PERatio)
				row.PBRatio = Coerce(raw.PBRatio)
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// MonthStarts returns the first day of every month from the month of start
// through the month of end, inclusive.
func MonthStarts(start, end time.Time) []time.Time {
	var out []time.Time
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(last) {
		out = append(out, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

// Coerce parses a feed numeric string, stripping thousands separators.
// "-", "N/A" and the empty string mean no value.
func Coerce(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "", "-", "--", "N/A":
		return model.Undefined()
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return model.Undefined()
	}
	return v
}
