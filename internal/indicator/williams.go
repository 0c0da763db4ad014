package indicator

import (
	"fmt"
	"math"

	"finpanel/internal/model"
)

// WilliamsR computes Williams %R per stock, one column per requested
// window (default 14). Values lie in [-100, 0]; a zero high-low range over
// the window leaves the row undefined rather than pinned to an endpoint.
func WilliamsR(p *model.Panel, windows ...int) ([]model.Column, error) {
	ws, err := normalizeWindows(windows, 14)
	if err != nil {
		return nil, err
	}
	cols := make([]model.Column, 0, len(ws))
	for _, w := range ws {
		w := w
		cols = append(cols, column(p, fmt.Sprintf("WILLR_%d", w), func(g model.Group) []float64 {
			highs := make([]float64, len(g.Rows))
			lows := make([]float64, len(g.Rows))
			for i, r := range g.Rows {
				highs[i] = r.High
				lows[i] = r.Low
			}
			hh := rollingMax(highs, w)
			ll := rollingMin(lows, w)
			out := nanSlice(len(g.Rows))
			for i, r := range g.Rows {
				rng := hh[i] - ll[i]
				if math.IsNaN(rng) || rng == 0 {
					continue
				}
				out[i] = -100 * (hh[i] - r.Close) / rng
			}
			return out
		}))
	}
	return cols, nil
}
