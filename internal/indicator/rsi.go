package indicator

import (
	"fmt"
	"math"

	"finpanel/internal/model"
)

// RSI computes the Relative Strength Index per stock, one column per
// requested window (default 14). Gains and losses are trailing-window
// arithmetic means of the one-day close deltas, so the value is first
// defined at row window+1 of a group (the first delta is itself
// undefined). When the mean loss is zero and the mean gain is positive,
// RSI is 100; when both are zero the value is undefined.
func RSI(p *model.Panel, windows ...int) ([]model.Column, error) {
	ws, err := normalizeWindows(windows, 14)
	if err != nil {
		return nil, err
	}
	cols := make([]model.Column, 0, len(ws))
	for _, w := range ws {
		w := w
		cols = append(cols, column(p, fmt.Sprintf("RSI_%d", w), func(g model.Group) []float64 {
			return rsiGroup(g.Closes(), w)
		}))
	}
	return cols, nil
}

func rsiGroup(closes []float64, window int) []float64 {
	delta := diff(closes)
	gains := make([]float64, len(delta))
	losses := make([]float64, len(delta))
	for i, d := range delta {
		if math.IsNaN(d) {
			gains[i], losses[i] = math.NaN(), math.NaN()
			continue
		}
		if d > 0 {
			gains[i] = d
		}
		if d < 0 {
			losses[i] = -d
		}
	}
	gain := rollingMean(gains, window)
	loss := rollingMean(losses, window)

	out := nanSlice(len(closes))
	for i := range out {
		g, l := gain[i], loss[i]
		if math.IsNaN(g) || math.IsNaN(l) {
			continue
		}
		if l == 0 {
			if g > 0 {
				out[i] = 100 // RS is infinite
			}
			continue // 0/0: undefined
		}
		rs := g / l
		out[i] = 100 - 100/(1+rs)
	}
	return out
}
