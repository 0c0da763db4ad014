package twse

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"finpanel/internal/fundamental"
)

// bwibbuResponse is the TWSE BWIBBU (yield / P/E / P/B) daily report.
// Data row layout: date, dividend yield, dividend year, P/E, P/B,
// fiscal quarter.
type bwibbuResponse struct {
	Stat string     `json:"stat"`
	Data [][]string `json:"data"`
}

// ValuationRatios implements fundamental.RatioFeed against the BWIBBU
// endpoint. ok=false covers both "no row for this pair" and transport
// failure after retries, so a dead unit degrades to an undefined row.
func (c *Client) ValuationRatios(ctx context.Context, stockID string, date time.Time) (fundamental.RawRatios, bool, error) {
	unit := fmt.Sprintf("%s-%s", stockID, date.Format("20060102"))
	url := fmt.Sprintf("%s/exchangeReport/BWIBBU?response=json&date=%s&stockNo=%s",
		c.cfg.TWSEBaseURL, date.Format("20060102"), stockID)

	body, err := c.get(ctx, "bwibbu", unit, url)
	if err != nil {
		return fundamental.RawRatios{}, false, nil
	}

	var resp bwibbuResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Stat != "OK" || len(resp.Data) == 0 {
		return fundamental.RawRatios{}, false, nil
	}

	row := resp.Data[0]
	if len(row) < 5 {
		return fundamental.RawRatios{}, false, nil
	}
	return fundamental.RawRatios{
		DividendYield: row[1],
		PERatio:       row[3],
		PBRatio:       row[4],
	}, true, nil
}
