package twse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// esgMinYear is the first year the exchange publishes ESG disclosures.
const esgMinYear = 2015

// ESGRecord is one disclosure line for a company-year.
type ESGRecord struct {
	Category string `json:"category"` // 環境 / 社會 / 治理
	Item     string `json:"item"`
	Value    string `json:"value"`
}

// ESGReport holds a company's disclosures for one year.
type ESGReport struct {
	StockID string
	Year    int
	Records []ESGRecord
}

// FetchESG fetches one company-year of ESG disclosures via the JSON POST
// endpoint.
func (c *Client) FetchESG(ctx context.Context, stockID string, year int) (*ESGReport, error) {
	if year < esgMinYear || year > time.Now().Year() {
		return nil, fmt.Errorf("esg: year %d out of range [%d, %d]", year, esgMinYear, time.Now().Year())
	}

	payload, err := json.Marshal(map[string]any{
		"companyCode": stockID,
		"yearList":    []int{year},
		"companyName": "",
		"year":        year,
	})
	if err != nil {
		return nil, err
	}

	unit := fmt.Sprintf("%s-%d", stockID, year)
	url := c.cfg.ESGBaseURL + "/api/api/mopsEsg/singleCompanyData"
	body, err := c.fetch(ctx, "esg", unit, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []ESGRecord `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("esg %s: decode: %w", unit, err)
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return &ESGReport{StockID: stockID, Year: year, Records: resp.Data}, nil
}

// FetchESGAll fetches a year of disclosures for every stock on the worker
// pool; failed units are logged and skipped.
func (c *Client) FetchESGAll(ctx context.Context, stockIDs []string, year int) []*ESGReport {
	var mu sync.Mutex
	var out []*ESGReport

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)
	for _, id := range stockIDs {
		id := id
		g.Go(func() error {
			rep, err := c.FetchESG(gctx, id, year)
			if err != nil {
				slog.Warn("esg unit failed", "stock", id, "year", year, "err", err)
				return nil
			}
			if rep != nil {
				mu.Lock()
				out = append(out, rep)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
