package twse

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"

	"finpanel/internal/fundamental"
)

// Quarter identifies one fiscal quarter.
type Quarter struct {
	Year   int
	Season int // 1..4
}

func (q Quarter) String() string { return fmt.Sprintf("%dQ%d", q.Year, q.Season) }

// QuartersBetween generates the quarters covering [start, end] in order.
func QuartersBetween(start, end time.Time) []Quarter {
	var out []Quarter
	cur := start
	for !cur.After(end) {
		season := (int(cur.Month())-1)/3 + 1
		out = append(out, Quarter{Year: cur.Year(), Season: season})
		if season == 4 {
			cur = time.Date(cur.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
		} else {
			cur = time.Date(cur.Year(), time.Month(season*3+1), 1, 0, 0, 0, 0, time.UTC)
		}
	}
	return out
}

// StatementItem is one line of a quarterly financial statement.
type StatementItem struct {
	Account string
	Value   float64 // NaN when the cell is blank or a dash
}

// Statement holds one stock-quarter of parsed statement lines.
type Statement struct {
	StockID string
	Quarter Quarter
	Items   []StatementItem
}

// FetchStatement fetches and parses one quarterly financial statement from
// MOPS. The endpoint serves Big5-encoded HTML; rows whose first cell looks
// like an account name and whose second parses as a number become items.
func (c *Client) FetchStatement(ctx context.Context, stockID string, q Quarter) (*Statement, error) {
	unit := fmt.Sprintf("%s-%s", stockID, q)
	url := fmt.Sprintf("%s/server-java/t164sb01?step=1&CO_ID=%s&SYEAR=%d&SSEASON=%d&REPORT_ID=C",
		c.cfg.MOPSBaseURL, stockID, q.Year, q.Season)

	body, err := c.get(ctx, "statement", unit, url)
	if err != nil {
		return nil, err
	}

	utf8Body, err := decodeBig5(body)
	if err != nil {
		return nil, fmt.Errorf("statement %s: big5 decode: %w", unit, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(utf8Body))
	if err != nil {
		return nil, fmt.Errorf("statement %s: parse html: %w", unit, err)
	}

	st := &Statement{StockID: stockID, Quarter: q}
	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 2 {
			return
		}
		account := strings.TrimSpace(cells.Eq(0).Text())
		if account == "" {
			return
		}
		st.Items = append(st.Items, StatementItem{
			Account: account,
			Value:   fundamental.Coerce(cells.Eq(1).Text()),
		})
	})
	if len(st.Items) == 0 {
		return nil, nil // quarter not published
	}
	return st, nil
}

// FetchStatements fetches every (stock, quarter) unit over the date range
// on the worker pool. Failed units are logged and skipped.
func (c *Client) FetchStatements(ctx context.Context, stockIDs []string, start, end time.Time) []*Statement {
	quarters := QuartersBetween(start, end)

	var mu sync.Mutex
	var out []*Statement

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)
	for _, id := range stockIDs {
		for _, q := range quarters {
			id, q := id, q
			g.Go(func() error {
				st, err := c.FetchStatement(gctx, id, q)
				if err != nil {
					slog.Warn("statement unit failed", "stock", id, "quarter", q.String(), "err", err)
					return nil
				}
				if st != nil {
					mu.Lock()
					out = append(out, st)
					mu.Unlock()
				}
				return nil
			})
		}
	}
	_ = g.Wait() // workers swallow their own errors
	return out
}

func decodeBig5(b []byte) ([]byte, error) {
	r := transform.NewReader(bytes.NewReader(b), traditionalchinese.Big5.NewDecoder())
	return io.ReadAll(r)
}
