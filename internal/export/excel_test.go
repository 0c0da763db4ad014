package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"finpanel/internal/model"
	"finpanel/internal/risk"
)

func TestWorkbook_SaveAndReadBack(t *testing.T) {
	rows := []model.Row{
		{StockID: "2330", Date: time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
			Open: 593, High: 596, Low: 589, Close: 595, Volume: 20000000},
		{StockID: "2330", Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			Open: 595, High: 601, Low: 594, Close: 600, Volume: 21000000},
	}
	p, err := model.NewPanel(rows)
	if err != nil {
		t.Fatal(err)
	}

	w := NewWorkbook(nil)
	defer w.Close()
	if err := w.AddPriceSheet("Price Data", p); err != nil {
		t.Fatalf("AddPriceSheet: %v", err)
	}
	cols := []model.Column{{Name: "SMA_2", Values: []float64{model.Undefined(), 597.5}}}
	if err := w.AddIndicatorSheet("Technical Indicators", p, cols); err != nil {
		t.Fatalf("AddIndicatorSheet: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out", "analysis.xlsx")
	if err := w.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 {
		t.Fatalf("sheets: got %v, want the default sheet dropped", sheets)
	}

	got, err := f.GetCellValue("Price Data", "F2")
	if err != nil {
		t.Fatal(err)
	}
	if got != "595" {
		t.Errorf("close cell: got %q, want 595", got)
	}

	// Undefined indicator values export as empty cells, not NaN text.
	got, err = f.GetCellValue("Technical Indicators", "D2")
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("warm-up cell: got %q, want empty", got)
	}
	got, err = f.GetCellValue("Technical Indicators", "D3")
	if err != nil {
		t.Fatal(err)
	}
	if got != "597.5" {
		t.Errorf("indicator cell: got %q, want 597.5", got)
	}
}

func TestWorkbook_RiskSheetHeaders(t *testing.T) {
	tbl := &risk.Table{
		Metrics: []risk.Metric{risk.AnnualVolatility, risk.MaxDrawdown},
		Rows: []risk.TableRow{
			{StockID: "2330", Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Values: []float64{0.25, -0.1}},
		},
	}
	w := NewWorkbook(nil)
	defer w.Close()
	if err := w.AddRiskSheet("Volatility & Risk", tbl); err != nil {
		t.Fatalf("AddRiskSheet: %v", err)
	}
	path := filepath.Join(t.TempDir(), "risk.xlsx")
	if err := w.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	hdr, err := f.GetCellValue("Volatility & Risk", "C1")
	if err != nil {
		t.Fatal(err)
	}
	if hdr != "Annual_Volatility" {
		t.Errorf("header: got %q, want Annual_Volatility", hdr)
	}
}
