package indicator

import (
	"fmt"

	"finpanel/internal/model"
)

// Spec selects one indicator family and its parameters. Windows holds the
// lookback(s) or span(s); each element yields an independently labeled
// output column. MACD ignores Windows and reads the three span lists;
// Stochastic additionally reads the smoothing spans.
type Spec struct {
	Type    string // "SMA", "EMA", "RSI", "BBANDS", "MACD", "STOCH", "WILLR", "DMI", "CCI"
	Windows []int

	// MACD only.
	Fast, Slow, Signal []int

	// STOCH only; zero means the default of 3.
	SmoothK, SmoothD int
}

// Compute evaluates every spec against the panel and returns the columns
// in spec order. Unknown types and non-positive windows fail the whole
// call up front — no partial batch is attempted.
func Compute(p *model.Panel, specs []Spec) ([]model.Column, error) {
	var cols []model.Column
	for _, spec := range specs {
		out, err := computeOne(p, spec)
		if err != nil {
			return nil, fmt.Errorf("indicator %q: %w", spec.Type, err)
		}
		cols = append(cols, out...)
	}
	return cols, nil
}

func computeOne(p *model.Panel, spec Spec) ([]model.Column, error) {
	switch spec.Type {
	case "SMA":
		ws, err := normalizeWindows(spec.Windows)
		if err != nil {
			return nil, err
		}
		cols := make([]model.Column, 0, len(ws))
		for _, w := range ws {
			c, err := SMA(p, w)
			if err != nil {
				return nil, err
			}
			cols = append(cols, c)
		}
		return cols, nil
	case "EMA":
		ws, err := normalizeWindows(spec.Windows)
		if err != nil {
			return nil, err
		}
		cols := make([]model.Column, 0, len(ws))
		for _, w := range ws {
			c, err := EMA(p, w)
			if err != nil {
				return nil, err
			}
			cols = append(cols, c)
		}
		return cols, nil
	case "RSI":
		return RSI(p, spec.Windows...)
	case "BBANDS":
		return BollingerBands(p, spec.Windows...)
	case "MACD":
		return MACD(p, MACDConfig{Fast: spec.Fast, Slow: spec.Slow, Signal: spec.Signal})
	case "STOCH":
		return Stochastic(p, StochasticConfig{Windows: spec.Windows, SmoothK: spec.SmoothK, SmoothD: spec.SmoothD})
	case "WILLR":
		return WilliamsR(p, spec.Windows...)
	case "DMI":
		ws, err := normalizeWindows(spec.Windows)
		if err != nil {
			return nil, err
		}
		var cols []model.Column
		for _, w := range ws {
			out, err := DMI(p, w)
			if err != nil {
				return nil, err
			}
			cols = append(cols, out...)
		}
		return cols, nil
	case "CCI":
		return CCI(p, spec.Windows...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndicator, spec.Type)
	}
}
