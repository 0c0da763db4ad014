// Package risk computes volatility, drawdown, and market-regression
// metrics per stock over a Panel.
package risk

import (
	"fmt"
	"time"

	"finpanel/internal/model"
	"finpanel/internal/returns"
)

// Metric names one column of the volatility/drawdown bundle.
type Metric string

const (
	DailyReturn      Metric = "Daily_Return"
	AnnualVolatility Metric = "Annual_Volatility"
	CumulativeReturn Metric = "Cumulative_Return"
	Drawdown         Metric = "Drawdown"
	MaxDrawdown      Metric = "Max_Drawdown"
)

// volatilityWindow is the rolling window for annualized volatility. A
// single observation already yields a (zero) value; the statistic is
// defined from each group's second row onward.
const volatilityWindow = 252

// ErrUnknownMetric is returned when a selection names a metric that does
// not exist.
var ErrUnknownMetric = fmt.Errorf("risk: unknown metric")

// TableRow is one (stock, date) row of selected risk metrics, in the
// order they were requested.
type TableRow struct {
	StockID string
	Date    time.Time
	Values  []float64
}

// Table holds the selected metrics for every panel row that had all of
// them defined.
type Table struct {
	Metrics []Metric
	Rows    []TableRow
}

// VolatilityAndDrawdown computes the per-stock bundle — daily return,
// annualized rolling volatility, cumulative return, drawdown and running
// max drawdown — and retains the selected metrics. Rows where any selected
// value is undefined are dropped from the result. An empty selection keeps
// the whole bundle.
func VolatilityAndDrawdown(p *model.Panel, selected []Metric) (*Table, error) {
	if len(selected) == 0 {
		selected = []Metric{DailyReturn, AnnualVolatility, CumulativeReturn, Drawdown, MaxDrawdown}
	}
	for _, m := range selected {
		switch m {
		case DailyReturn, AnnualVolatility, CumulativeReturn, Drawdown, MaxDrawdown:
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, m)
		}
	}

	t := &Table{Metrics: selected}
	for _, g := range p.Groups() {
		bundle := groupBundle(g)
		for i, r := range g.Rows {
			vals := make([]float64, len(selected))
			keep := true
			for j, m := range selected {
				v := bundle[m][i]
				if !model.IsDefined(v) {
					keep = false
					break
				}
				vals[j] = v
			}
			if keep {
				t.Rows = append(t.Rows, TableRow{StockID: g.StockID, Date: r.Date, Values: vals})
			}
		}
	}
	return t, nil
}

func groupBundle(g model.Group) map[Metric][]float64 {
	n := len(g.Rows)
	daily := returns.Daily(g.Closes())

	vol := rollingStdMin1(daily, volatilityWindow)
	for i := range vol {
		if model.IsDefined(vol[i]) {
			vol[i] *= sqrt252
		}
	}

	// Cumulative return is the running product of (1+daily) from the
	// group's start; its first value is 1+first daily return, with no
	// separate seed of 1.
	cum := make([]float64, n)
	dd := make([]float64, n)
	maxDD := make([]float64, n)
	prod := model.Undefined()
	runMax := model.Undefined()
	runMinDD := model.Undefined()
	for i := range g.Rows {
		if model.IsDefined(daily[i]) {
			if model.IsDefined(prod) {
				prod *= 1 + daily[i]
			} else {
				prod = 1 + daily[i]
			}
		}
		cum[i] = prod
		if model.IsDefined(prod) {
			if !model.IsDefined(runMax) || prod > runMax {
				runMax = prod
			}
			d := prod/runMax - 1
			dd[i] = d
			if !model.IsDefined(runMinDD) || d < runMinDD {
				runMinDD = d
			}
			maxDD[i] = runMinDD
		} else {
			dd[i] = model.Undefined()
			maxDD[i] = model.Undefined()
		}
	}

	return map[Metric][]float64{
		DailyReturn:      daily,
		AnnualVolatility: vol,
		CumulativeReturn: cum,
		Drawdown:         dd,
		MaxDrawdown:      maxDD,
	}
}
