// Package export writes analysis results to an Excel workbook: one sheet
// of raw price history, one of technical indicator columns, one of
// fundamentals, and one of risk metrics. Undefined values become empty
// cells so spreadsheet formulas skip them naturally.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"finpanel/internal/fundamental"
	"finpanel/internal/metrics"
	"finpanel/internal/model"
	"finpanel/internal/risk"
)

const dateFormat = "2006-01-02"

// Workbook accumulates sheets and writes them out in one save.
type Workbook struct {
	f       *excelize.File
	metrics *metrics.Metrics
	sheets  int
}

// NewWorkbook creates an empty workbook. m may be nil.
func NewWorkbook(m *metrics.Metrics) *Workbook {
	return &Workbook{f: excelize.NewFile(), metrics: m}
}

// AddPriceSheet writes the raw panel rows.
func (w *Workbook) AddPriceSheet(name string, p *model.Panel) error {
	header := []any{"Stock", "Date", "Open", "High", "Low", "Close", "Volume"}
	rows := make([][]any, 0, p.Len())
	for _, r := range p.Rows() {
		rows = append(rows, []any{
			r.StockID, r.Date.Format(dateFormat),
			cell(r.Open), cell(r.High), cell(r.Low), cell(r.Close), cell(r.Volume),
		})
	}
	return w.addSheet(name, header, rows)
}

// AddIndicatorSheet writes the panel keys plus one column per indicator.
func (w *Workbook) AddIndicatorSheet(name string, p *model.Panel, cols []model.Column) error {
	header := []any{"Stock", "Date", "Close"}
	for _, c := range cols {
		header = append(header, c.Name)
	}
	rows := make([][]any, 0, p.Len())
	for i, r := range p.Rows() {
		row := []any{r.StockID, r.Date.Format(dateFormat), cell(r.Close)}
		for _, c := range cols {
			row = append(row, cell(c.Values[i]))
		}
		rows = append(rows, row)
	}
	return w.addSheet(name, header, rows)
}

// AddRiskSheet writes the selected risk metrics table.
func (w *Workbook) AddRiskSheet(name string, t *risk.Table) error {
	header := []any{"Stock", "Date"}
	for _, m := range t.Metrics {
		header = append(header, string(m))
	}
	rows := make([][]any, 0, len(t.Rows))
	for _, r := range t.Rows {
		row := []any{r.StockID, r.Date.Format(dateFormat)}
		for _, v := range r.Values {
			row = append(row, cell(v))
		}
		rows = append(rows, row)
	}
	return w.addSheet(name, header, rows)
}

// AddBetaSheet writes the per-stock beta/alpha regression results.
func (w *Workbook) AddBetaSheet(name string, results []risk.BetaAlpha) error {
	header := []any{"Stock", "Beta", "Alpha", "Annual_Return", "Market_Return"}
	rows := make([][]any, 0, len(results))
	for _, r := range results {
		rows = append(rows, []any{
			r.StockID, cell(r.Beta), cell(r.Alpha), cell(r.StockReturn), cell(r.MarketReturn),
		})
	}
	return w.addSheet(name, header, rows)
}

// AddFundamentalSheet writes the assembled valuation-ratio rows.
func (w *Workbook) AddFundamentalSheet(name string, rows []fundamental.Row) error {
	header := []any{"Stock", "Date", "Dividend Yield", "P/E", "P/B"}
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{
			r.StockID, r.Date.Format(dateFormat),
			cell(r.DividendYield), cell(r.PERatio), cell(r.PBRatio),
		})
	}
	return w.addSheet(name, header, out)
}

// Save writes the workbook to path, creating parent directories. The
// default empty sheet excelize starts with is dropped.
func (w *Workbook) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export: mkdir: %w", err)
	}
	if w.sheets > 0 {
		if err := w.f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("export: drop default sheet: %w", err)
		}
	}
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	slog.Info("workbook written", "path", path, "sheets", w.sheets)
	return nil
}

// Close releases the workbook resources.
func (w *Workbook) Close() error { return w.f.Close() }

func (w *Workbook) addSheet(name string, header []any, rows [][]any) error {
	if _, err := w.f.NewSheet(name); err != nil {
		return fmt.Errorf("export: new sheet %s: %w", name, err)
	}
	if err := w.writeRow(name, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := w.writeRow(name, i+2, row); err != nil {
			return err
		}
	}
	w.sheets++
	if w.metrics != nil {
		w.metrics.ExportedSheetsTotal.Inc()
		w.metrics.ExportedRowsTotal.Add(float64(len(rows)))
	}
	return nil
}

func (w *Workbook) writeRow(sheet string, n int, values []any) error {
	addr, err := excelize.JoinCellName("A", n)
	if err != nil {
		return err
	}
	if err := w.f.SetSheetRow(sheet, addr, &values); err != nil {
		return fmt.Errorf("export: sheet %s row %d: %w", sheet, n, err)
	}
	return nil
}

// cell maps an undefined value to an empty cell.
func cell(v float64) any {
	if !model.IsDefined(v) {
		return nil
	}
	return v
}
