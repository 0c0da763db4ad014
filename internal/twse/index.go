package twse

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"finpanel/internal/fundamental"
	"finpanel/internal/model"
)

// fmtqikResponse is the TWSE daily market-summary report. Data row layout:
// date, trade volume, trade value, transactions, TAIEX close, change.
type fmtqikResponse struct {
	Stat string     `json:"stat"`
	Data [][]string `json:"data"`
}

// FetchMarketIndex fetches the TAIEX close series over [start, end].
// Failed months degrade to gaps; callers treat an empty series as an
// undefined market return, not a fatal error.
func (c *Client) FetchMarketIndex(ctx context.Context, start, end time.Time) []model.IndexBar {
	var bars []model.IndexBar
	for _, month := range monthRange(start, end) {
		unit := month.Format("200601")
		url := fmt.Sprintf("%s/exchangeReport/FMTQIK?response=json&date=%s01", c.cfg.TWSEBaseURL, unit)

		body, err := c.get(ctx, "market_index", unit, url)
		if err != nil {
			slog.Warn("market index unit failed", "month", unit, "err", err)
			continue
		}
		var resp fmtqikResponse
		if err := json.Unmarshal(body, &resp); err != nil || resp.Stat != "OK" {
			slog.Warn("market index unit unparseable", "month", unit)
			continue
		}
		for _, rec := range resp.Data {
			if len(rec) < 5 {
				continue
			}
			date, err := parseROCDate(rec[0])
			if err != nil {
				continue
			}
			if date.Before(start) || date.After(end) {
				continue
			}
			idx := fundamental.Coerce(rec[4])
			if !model.IsDefined(idx) {
				continue
			}
			bars = append(bars, model.IndexBar{Date: date, Close: idx})
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars
}
