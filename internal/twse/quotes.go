package twse

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"finpanel/internal/fundamental"
	"finpanel/internal/model"
)

// stockDayResponse is the TWSE STOCK_DAY JSON envelope. Data rows are
// display strings: ROC dates and comma-grouped numbers.
type stockDayResponse struct {
	Stat   string     `json:"stat"`
	Fields []string   `json:"fields"`
	Data   [][]string `json:"data"`
}

// FetchDailyQuotes fetches one month of daily OHLCV rows for one stock.
// The exchange reports "很抱歉, 沒有符合條件的資料!" months (unlisted or
// halted) with a non-OK stat; those come back as an empty slice, not an
// error.
func (c *Client) FetchDailyQuotes(ctx context.Context, stockID string, month time.Time) ([]model.Row, error) {
	unit := fmt.Sprintf("%s-%s", stockID, month.Format("200601"))
	url := fmt.Sprintf("%s/exchangeReport/STOCK_DAY?response=json&date=%s01&stockNo=%s",
		c.cfg.TWSEBaseURL, month.Format("200601"), stockID)

	body, err := c.get(ctx, "stock_day", unit, url)
	if err != nil {
		return nil, err
	}

	var resp stockDayResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("stock_day %s: decode: %w", unit, err)
	}
	if resp.Stat != "OK" {
		return nil, nil // no data for this month
	}

	rows := make([]model.Row, 0, len(resp.Data))
	for _, rec := range resp.Data {
		if len(rec) < 7 {
			continue
		}
		date, err := parseROCDate(rec[0])
		if err != nil {
			slog.Warn("skipping quote row with bad date", "stock", stockID, "raw", rec[0])
			continue
		}
		row := model.Row{
			StockID: stockID,
			Date:    date,
			Volume:  fundamental.Coerce(rec[1]),
			Open:    fundamental.Coerce(rec[3]),
			High:    fundamental.Coerce(rec[4]),
			Low:     fundamental.Coerce(rec[5]),
			Close:   fundamental.Coerce(rec[6]),
		}
		// Untraded days report "--" prices; they carry no usable OHLC.
		if !model.IsDefined(row.Close) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FetchPanel fetches daily history for every portfolio stock across the
// month range and assembles an ordered Panel. Units run on a bounded
// worker pool; a failed unit logs a warning and contributes nothing.
func (c *Client) FetchPanel(ctx context.Context, pf *model.Portfolio, start, end time.Time) (*model.Panel, error) {
	months := monthRange(start, end)

	var mu sync.Mutex
	byStock := make(map[string][]model.Row, pf.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)
	for _, id := range pf.IDs() {
		for _, m := range months {
			id, m := id, m
			g.Go(func() error {
				rows, err := c.FetchDailyQuotes(gctx, id, m)
				if err != nil {
					slog.Warn("quote unit failed", "stock", id, "month", m.Format("2006-01"), "err", err)
					return nil // per-unit failure is not fatal
				}
				mu.Lock()
				byStock[id] = append(byStock[id], rows...)
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.Row
	for _, id := range pf.IDs() {
		rows := byStock[id]
		sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
		for _, r := range rows {
			if !r.Date.Before(start) && !r.Date.After(end) {
				all = append(all, r)
			}
		}
	}
	return model.NewPanel(all)
}

// parseROCDate parses the exchange's Republic-of-China calendar dates,
// e.g. "113/01/04" → 2024-01-04 UTC.
func parseROCDate(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("bad ROC date %q", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad ROC year %q", s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("bad ROC month %q", s)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("bad ROC day %q", s)
	}
	return time.Date(year+1911, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// monthRange lists the first-of-month dates covering [start, end].
func monthRange(start, end time.Time) []time.Time {
	var out []time.Time
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(last) {
		out = append(out, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}
