package indicator

import (
	"fmt"

	"finpanel/internal/model"
)

// BollingerBands computes the {middle, upper, lower} band triple per stock
// for each requested window (default 20). The middle band is SMA(window);
// the band width is twice the rolling sample standard deviation with the
// same full-window warm-up rule as the SMA.
func BollingerBands(p *model.Panel, windows ...int) ([]model.Column, error) {
	ws, err := normalizeWindows(windows, 20)
	if err != nil {
		return nil, err
	}
	cols := make([]model.Column, 0, 3*len(ws))
	for _, w := range ws {
		middle := perGroup(p, func(g model.Group) []float64 {
			return rollingMean(g.Closes(), w)
		})
		std := perGroup(p, func(g model.Group) []float64 {
			return rollingStd(g.Closes(), w, w, 1)
		})
		upper := make([]float64, len(middle))
		lower := make([]float64, len(middle))
		for i := range middle {
			upper[i] = middle[i] + 2*std[i]
			lower[i] = middle[i] - 2*std[i]
		}
		cols = append(cols,
			model.Column{Name: fmt.Sprintf("BB_Middle_%d", w), Values: middle},
			model.Column{Name: fmt.Sprintf("BB_Upper_%d", w), Values: upper},
			model.Column{Name: fmt.Sprintf("BB_Lower_%d", w), Values: lower},
		)
	}
	return cols, nil
}
