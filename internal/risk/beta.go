package risk

import (
	"time"

	"finpanel/internal/model"
	"finpanel/internal/returns"
)

// DefaultRiskFreeRate is the annualized risk-free rate used by Alpha when
// none is configured.
const DefaultRiskFreeRate = 0.02

// BetaAlpha is the regression result for one stock against the market
// index. When the date-aligned sample is empty all four fields are
// undefined; the stock still gets a result row.
type BetaAlpha struct {
	StockID      string
	Beta         float64
	Alpha        float64
	StockReturn  float64
	MarketReturn float64
}

// BetaAlphaAll regresses each stock's daily returns against the market
// index's. Stock and market return series are aligned by date with an
// inner join — only dates present on both sides survive. Beta is
// covariance over market variance on the aligned sample; alpha is the
// CAPM residual of the annualized returns. tradingDays <= 0 means 252.
func BetaAlphaAll(p *model.Panel, market []model.IndexBar, riskFreeRate float64, tradingDays int) []BetaAlpha {
	if tradingDays <= 0 {
		tradingDays = returns.DefaultTradingDays
	}

	marketDaily := make(map[string]float64, len(market))
	closes := make([]float64, len(market))
	for i, b := range market {
		closes[i] = b.Close
	}
	for i, r := range returns.Daily(closes) {
		if model.IsDefined(r) {
			marketDaily[dateKey(market[i].Date)] = r
		}
	}
	marketAnnual := returns.Market(market, tradingDays)

	out := make([]BetaAlpha, 0, len(p.Groups()))
	for _, g := range p.Groups() {
		res := BetaAlpha{
			StockID:      g.StockID,
			Beta:         model.Undefined(),
			Alpha:        model.Undefined(),
			StockReturn:  model.Undefined(),
			MarketReturn: model.Undefined(),
		}

		daily := returns.Daily(g.Closes())
		var stockR, marketR []float64
		for i, row := range g.Rows {
			if !model.IsDefined(daily[i]) {
				continue
			}
			mr, ok := marketDaily[dateKey(row.Date)]
			if !ok {
				continue
			}
			stockR = append(stockR, daily[i])
			marketR = append(marketR, mr)
		}

		if len(stockR) > 0 {
			cov := covariance(stockR, marketR)
			va := variance(marketR)
			if model.IsDefined(cov) && model.IsDefined(va) && va != 0 {
				res.Beta = cov / va
			}
			res.StockReturn = mean(stockR) * float64(tradingDays)
			res.MarketReturn = marketAnnual
			if model.IsDefined(res.Beta) && model.IsDefined(marketAnnual) {
				res.Alpha = res.StockReturn - (riskFreeRate + res.Beta*(marketAnnual-riskFreeRate))
			}
		}
		out = append(out, res)
	}
	return out
}

func dateKey(t time.Time) string { return t.Format("2006-01-02") }
