package indicator

import (
	"fmt"

	"finpanel/internal/model"
)

// MACDConfig lists the EMA spans to combine. Every (fast, slow, signal)
// combination yields an independently labeled
// {MACD, MACD_Signal, MACD_Hist} triple.
type MACDConfig struct {
	Fast   []int
	Slow   []int
	Signal []int
}

// MACD computes the moving-average convergence/divergence per stock for
// every span combination (default 12/26/9). The MACD line is
// EMA(fast) - EMA(slow); the signal line is the same exponential recursion
// applied to the MACD series, seeded at its first defined value per group;
// the histogram is their difference.
func MACD(p *model.Panel, cfg MACDConfig) ([]model.Column, error) {
	fast, err := normalizeWindows(cfg.Fast, 12)
	if err != nil {
		return nil, err
	}
	slow, err := normalizeWindows(cfg.Slow, 26)
	if err != nil {
		return nil, err
	}
	signal, err := normalizeWindows(cfg.Signal, 9)
	if err != nil {
		return nil, err
	}

	cols := make([]model.Column, 0, 3*len(fast)*len(slow)*len(signal))
	for _, f := range fast {
		for _, s := range slow {
			macd := perGroup(p, func(g model.Group) []float64 {
				closes := g.Closes()
				emaF := ewm(closes, f)
				emaS := ewm(closes, s)
				out := make([]float64, len(closes))
				for i := range out {
					out[i] = emaF[i] - emaS[i]
				}
				return out
			})
			cols = append(cols, model.Column{Name: fmt.Sprintf("MACD_%d_%d", f, s), Values: macd})
			for _, sig := range signal {
				sigLine := applyPerGroup(p, macd, func(vals []float64) []float64 {
					return ewm(vals, sig)
				})
				hist := make([]float64, len(macd))
				for i := range hist {
					hist[i] = macd[i] - sigLine[i]
				}
				cols = append(cols,
					model.Column{Name: fmt.Sprintf("MACD_Signal_%d_%d_%d", f, s, sig), Values: sigLine},
					model.Column{Name: fmt.Sprintf("MACD_Hist_%d_%d_%d", f, s, sig), Values: hist},
				)
			}
		}
	}
	return cols, nil
}

// applyPerGroup re-runs a transform over an already-aligned derived series,
// respecting the panel's group boundaries.
func applyPerGroup(p *model.Panel, vals []float64, fn func([]float64) []float64) []float64 {
	out := make([]float64, 0, len(vals))
	off := 0
	for _, g := range p.Groups() {
		n := len(g.Rows)
		out = append(out, fn(vals[off:off+n])...)
		off += n
	}
	return out
}
