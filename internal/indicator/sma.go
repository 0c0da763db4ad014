package indicator

import (
	"fmt"

	"finpanel/internal/model"
)

// SMA computes the simple moving average of the close price over a trailing
// window, per stock. The first window-1 rows of each group are undefined.
func SMA(p *model.Panel, window int) (model.Column, error) {
	if _, err := normalizeWindows([]int{window}); err != nil {
		return model.Column{}, err
	}
	return column(p, fmt.Sprintf("SMA_%d", window), func(g model.Group) []float64 {
		return rollingMean(g.Closes(), window)
	}), nil
}
