package risk

import (
	"math"
	"testing"

	"finpanel/internal/model"
)

func TestBetaAlphaAll_ScaledMarket(t *testing.T) {
	// Stock daily returns are exactly twice the market's on every shared
	// date, so beta must be 2.
	market := []model.IndexBar{
		{Date: day(0), Close: 100},
		{Date: day(1), Close: 101},    // +1%
		{Date: day(2), Close: 104.03}, // +3%
	}
	p := panelFromCloses(t, "2330", []float64{100, 102, 108.12}) // +2%, +6%

	res := BetaAlphaAll(p, market, 0.02, 252)
	if len(res) != 1 {
		t.Fatalf("results: got %d, want 1", len(res))
	}
	r := res[0]
	if math.Abs(r.Beta-2.0) > 1e-6 {
		t.Errorf("beta: got %.6f, want 2.0", r.Beta)
	}
	if math.Abs(r.StockReturn-0.04*252) > 1e-6 {
		t.Errorf("stock return: got %.6f, want %.6f", r.StockReturn, 0.04*252)
	}
	if math.Abs(r.MarketReturn-0.02*252) > 1e-6 {
		t.Errorf("market return: got %.6f, want %.6f", r.MarketReturn, 0.02*252)
	}
	wantAlpha := r.StockReturn - (0.02 + r.Beta*(r.MarketReturn-0.02))
	if math.Abs(r.Alpha-wantAlpha) > 1e-9 {
		t.Errorf("alpha: got %.6f, want %.6f", r.Alpha, wantAlpha)
	}
}

func TestBetaAlphaAll_NoOverlapKeepsRow(t *testing.T) {
	// Market dates never intersect the stock's, so the aligned sample is
	// empty: the stock still gets a row, with every field undefined.
	market := []model.IndexBar{
		{Date: day(100), Close: 100},
		{Date: day(101), Close: 101},
	}
	p := panelFromCloses(t, "2330", []float64{100, 102, 104})

	res := BetaAlphaAll(p, market, 0.02, 252)
	if len(res) != 1 {
		t.Fatalf("results: got %d, want 1", len(res))
	}
	r := res[0]
	if r.StockID != "2330" {
		t.Errorf("stock id: got %s", r.StockID)
	}
	for name, v := range map[string]float64{
		"beta": r.Beta, "alpha": r.Alpha,
		"stock return": r.StockReturn, "market return": r.MarketReturn,
	} {
		if !math.IsNaN(v) {
			t.Errorf("%s with empty sample: got %.6f, want undefined", name, v)
		}
	}
}

func TestBetaAlphaAll_FlatMarketHasNoBeta(t *testing.T) {
	// Constant market returns have zero variance; beta and alpha are
	// undefined but annualized returns still come out.
	market := []model.IndexBar{
		{Date: day(0), Close: 100},
		{Date: day(1), Close: 101},
		{Date: day(2), Close: 102.01},
	}
	p := panelFromCloses(t, "2330", []float64{100, 102, 103})

	res := BetaAlphaAll(p, market, 0.02, 252)
	r := res[0]
	if !math.IsNaN(r.Beta) {
		t.Errorf("beta with zero market variance: got %.6f, want undefined", r.Beta)
	}
	if !math.IsNaN(r.Alpha) {
		t.Errorf("alpha without beta: got %.6f, want undefined", r.Alpha)
	}
	if math.IsNaN(r.StockReturn) || math.IsNaN(r.MarketReturn) {
		t.Error("annualized returns should still be defined")
	}
}

func TestCovarianceVariance(t *testing.T) {
	xs := []float64{0.02, 0.06}
	ys := []float64{0.01, 0.03}
	if got := covariance(xs, ys); math.Abs(got-0.0004) > 1e-12 {
		t.Errorf("covariance: got %.8f, want 0.0004", got)
	}
	if got := variance(ys); math.Abs(got-0.0002) > 1e-12 {
		t.Errorf("variance: got %.8f, want 0.0002", got)
	}
	if !math.IsNaN(covariance([]float64{1}, []float64{2})) {
		t.Error("covariance of one pair: want undefined")
	}
	if !math.IsNaN(variance([]float64{1})) {
		t.Error("variance of one value: want undefined")
	}
}
