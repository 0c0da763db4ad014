// Package model defines the core data types shared across the analytics
// pipeline: the multi-stock OHLCV Panel, derived indicator columns, and
// portfolio containers.
//
// Undefined numeric values are represented as NaN throughout. Undefined()
// and IsDefined() name the convention so callers never compare against NaN
// directly.
package model

import (
	"fmt"
	"math"
	"time"
)

// Undefined returns the marker for "no value": warm-up rows, zero
// denominators, missing inputs.
func Undefined() float64 { return math.NaN() }

// IsDefined reports whether v carries an actual value.
func IsDefined(v float64) bool { return !math.IsNaN(v) }

// Row is one trading day of one stock.
type Row struct {
	StockID string    `json:"stock_id"`
	Date    time.Time `json:"date"` // calendar date, UTC midnight
	Open    float64   `json:"open"`
	High    float64   `json:"high"`
	Low     float64   `json:"low"`
	Close   float64   `json:"close"`
	Volume  float64   `json:"volume"`
}

// Group is the contiguous run of Panel rows belonging to one stock,
// in ascending date order.
type Group struct {
	StockID string
	Rows    []Row // view into the panel's backing slice; do not mutate
}

// Panel is an ordered, two-level keyed table of price history:
// (stock_id, date) → OHLCV. Rows are grouped by stock and sorted by date
// within each group. A Panel is immutable once constructed; every
// computation over it returns freshly allocated results.
type Panel struct {
	rows   []Row
	groups []Group
}

// NewPanel validates rows and builds a Panel. Rows must arrive grouped by
// stock (each stock's rows contiguous) with strictly increasing dates
// inside each group. Violations are construction errors, not per-row
// undefined values, since they break the keying contract every downstream
// computation relies on.
func NewPanel(rows []Row) (*Panel, error) {
	p := &Panel{rows: rows}
	seen := make(map[string]bool, 8)
	start := 0
	for i := range rows {
		if i > 0 && rows[i].StockID == rows[i-1].StockID {
			if !rows[i].Date.After(rows[i-1].Date) {
				return nil, fmt.Errorf("panel: stock %s: dates not strictly increasing at row %d (%s after %s)",
					rows[i].StockID, i, rows[i].Date.Format("2006-01-02"), rows[i-1].Date.Format("2006-01-02"))
			}
			continue
		}
		if i > 0 {
			p.groups = append(p.groups, Group{StockID: rows[start].StockID, Rows: rows[start:i]})
			start = i
		}
		if seen[rows[i].StockID] {
			return nil, fmt.Errorf("panel: stock %s appears in more than one contiguous run", rows[i].StockID)
		}
		seen[rows[i].StockID] = true
	}
	if len(rows) > 0 {
		p.groups = append(p.groups, Group{StockID: rows[start].StockID, Rows: rows[start:]})
	}
	return p, nil
}

// Len returns the total row count.
func (p *Panel) Len() int { return len(p.rows) }

// Rows returns the underlying ordered rows. Callers must not mutate.
func (p *Panel) Rows() []Row { return p.rows }

// Groups returns the per-stock groups in panel order.
func (p *Panel) Groups() []Group { return p.groups }

// StockIDs returns the stock identifiers in panel order.
func (p *Panel) StockIDs() []string {
	ids := make([]string, len(p.groups))
	for i, g := range p.groups {
		ids[i] = g.StockID
	}
	return ids
}

// Group returns the group for one stock, or false if the panel has no rows
// for it.
func (p *Panel) Group(stockID string) (Group, bool) {
	for _, g := range p.groups {
		if g.StockID == stockID {
			return g, true
		}
	}
	return Group{}, false
}

// Closes returns the close-price series of a group.
func (g Group) Closes() []float64 {
	out := make([]float64, len(g.Rows))
	for i, r := range g.Rows {
		out[i] = r.Close
	}
	return out
}

// Column is a derived series aligned 1:1 with a Panel's rows. Values[i]
// belongs to Panel.Rows()[i]; NaN marks warm-up or zero-denominator rows.
type Column struct {
	Name   string
	Values []float64
}

// IndexBar is one observation of an external market-index close series.
type IndexBar struct {
	Date  time.Time
	Close float64
}
