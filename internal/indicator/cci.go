package indicator

import (
	"fmt"
	"math"

	"finpanel/internal/model"
)

// cciConstant is the conventional 0.015 scaling factor.
const cciConstant = 0.015

// CCI computes the Commodity Channel Index per stock, one column per
// requested window (default 20). The typical price (H+L+C)/3 is compared
// against the close-price SMA, scaled by the mean absolute deviation of
// close from that SMA; a zero deviation leaves the row undefined.
func CCI(p *model.Panel, windows ...int) ([]model.Column, error) {
	ws, err := normalizeWindows(windows, 20)
	if err != nil {
		return nil, err
	}
	cols := make([]model.Column, 0, len(ws))
	for _, w := range ws {
		w := w
		cols = append(cols, column(p, fmt.Sprintf("CCI_%d", w), func(g model.Group) []float64 {
			return cciGroup(g, w)
		}))
	}
	return cols, nil
}

func cciGroup(g model.Group, window int) []float64 {
	closes := g.Closes()
	ma := rollingMean(closes, window)

	dev := nanSlice(len(closes))
	for i := range closes {
		if !math.IsNaN(ma[i]) {
			dev[i] = math.Abs(ma[i] - closes[i])
		}
	}
	md := rollingMean(dev, window)

	out := nanSlice(len(closes))
	for i, r := range g.Rows {
		if math.IsNaN(ma[i]) || math.IsNaN(md[i]) || md[i] == 0 {
			continue
		}
		tp := (r.High + r.Low + r.Close) / 3
		out[i] = (tp - ma[i]) / (cciConstant * md[i])
	}
	return out
}
