// Package returns computes per-stock and market-index annualized returns
// from close-price series.
package returns

import (
	"math"

	"finpanel/internal/model"
)

// DefaultTradingDays is the annualization factor for daily returns.
const DefaultTradingDays = 252

// Annualized computes the annualized return of every stock in the panel:
// the mean of its daily close-price percent changes times tradingDays
// (252 when tradingDays <= 0). The first row of each group has no percent
// change; a stock with zero valid daily returns reports undefined.
func Annualized(p *model.Panel, tradingDays int) map[string]float64 {
	if tradingDays <= 0 {
		tradingDays = DefaultTradingDays
	}
	out := make(map[string]float64, len(p.Groups()))
	for _, g := range p.Groups() {
		out[g.StockID] = annualize(g.Closes(), tradingDays)
	}
	return out
}

// Market computes the annualized return of an externally supplied
// market-index close series over its full range. An empty or all-invalid
// series reports undefined rather than an error; fetch failures upstream
// surface here as exactly that.
func Market(bars []model.IndexBar, tradingDays int) float64 {
	if tradingDays <= 0 {
		tradingDays = DefaultTradingDays
	}
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return annualize(closes, tradingDays)
}

// Daily returns the percent-change series of a close-price sequence,
// undefined at the first element and wherever the previous close is zero
// or undefined.
func Daily(closes []float64) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = model.Undefined()
	}
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if math.IsNaN(closes[i]) || math.IsNaN(prev) || prev == 0 {
			continue
		}
		out[i] = closes[i]/prev - 1
	}
	return out
}

func annualize(closes []float64, tradingDays int) float64 {
	sum := 0.0
	n := 0
	for _, r := range Daily(closes) {
		if model.IsDefined(r) {
			sum += r
			n++
		}
	}
	if n == 0 {
		return model.Undefined()
	}
	return sum / float64(n) * float64(tradingDays)
}
