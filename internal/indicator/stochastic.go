package indicator

import (
	"fmt"
	"math"

	"finpanel/internal/model"
)

// StochasticConfig holds the lookback windows and the SMA smoothing spans
// for %K and %D.
type StochasticConfig struct {
	Windows []int
	SmoothK int
	SmoothD int
}

// Stochastic computes the stochastic oscillator per stock for each
// requested window (default 14, smoothing 3/3). Raw %K compares the close
// with the rolling low/high range; rows where that range is zero (a flat
// window) are undefined. Smoothed %K is an SMA of the raw line and %D an
// SMA of smoothed %K.
func Stochastic(p *model.Panel, cfg StochasticConfig) ([]model.Column, error) {
	ws, err := normalizeWindows(cfg.Windows, 14)
	if err != nil {
		return nil, err
	}
	smoothK, err := normalizeWindows([]int{orDefault(cfg.SmoothK, 3)})
	if err != nil {
		return nil, err
	}
	smoothD, err := normalizeWindows([]int{orDefault(cfg.SmoothD, 3)})
	if err != nil {
		return nil, err
	}
	sk, sd := smoothK[0], smoothD[0]

	cols := make([]model.Column, 0, 2*len(ws))
	for _, w := range ws {
		k := perGroup(p, func(g model.Group) []float64 {
			return rawStochK(g, w)
		})
		k = applyPerGroup(p, k, func(vals []float64) []float64 {
			return rollingMean(vals, sk)
		})
		d := applyPerGroup(p, k, func(vals []float64) []float64 {
			return rollingMean(vals, sd)
		})
		cols = append(cols,
			model.Column{Name: fmt.Sprintf("K_%d", w), Values: k},
			model.Column{Name: fmt.Sprintf("D_%d", w), Values: d},
		)
	}
	return cols, nil
}

func rawStochK(g model.Group, window int) []float64 {
	highs := make([]float64, len(g.Rows))
	lows := make([]float64, len(g.Rows))
	for i, r := range g.Rows {
		highs[i] = r.High
		lows[i] = r.Low
	}
	hh := rollingMax(highs, window)
	ll := rollingMin(lows, window)

	out := nanSlice(len(g.Rows))
	for i, r := range g.Rows {
		rng := hh[i] - ll[i]
		if math.IsNaN(rng) || rng == 0 {
			continue
		}
		out[i] = 100 * (r.Close - ll[i]) / rng
	}
	return out
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
