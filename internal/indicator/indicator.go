// Package indicator computes technical indicators over a multi-stock Panel.
//
// Every operation groups by stock first: rolling windows and recursive
// smoothers run independently inside each group and never read a
// neighboring stock's rows, even though groups are adjacent in the
// underlying row sequence. Results come back as Columns aligned 1:1 with
// the panel's rows, with NaN marking warm-up rows and zero-denominator
// cases. All operations are pure: the panel is never mutated and nothing
// is cached between calls.
package indicator

import (
	"errors"
	"fmt"

	"finpanel/internal/model"
)

var (
	// ErrUnknownIndicator is returned for a Spec whose Type is not recognized.
	ErrUnknownIndicator = errors.New("indicator: unknown indicator type")

	// ErrInvalidWindow is returned for an empty window list or a window < 1.
	ErrInvalidWindow = errors.New("indicator: window must be a positive integer")
)

// normalizeWindows validates a window list, applying fallback when the list
// is empty. Bad parameters are hard errors per the configuration contract;
// they never produce a column of NaNs.
func normalizeWindows(windows []int, fallback ...int) ([]int, error) {
	if len(windows) == 0 {
		windows = fallback
	}
	if len(windows) == 0 {
		return nil, ErrInvalidWindow
	}
	out := make([]int, len(windows))
	for i, w := range windows {
		if w < 1 {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, w)
		}
		out[i] = w
	}
	return out, nil
}

// perGroup applies fn to each stock group and concatenates the aligned
// outputs back in panel order. fn must return exactly one value per input
// row.
func perGroup(p *model.Panel, fn func(g model.Group) []float64) []float64 {
	out := make([]float64, 0, p.Len())
	for _, g := range p.Groups() {
		out = append(out, fn(g)...)
	}
	return out
}

// column concatenates per-group values into a named Column.
func column(p *model.Panel, name string, fn func(g model.Group) []float64) model.Column {
	return model.Column{Name: name, Values: perGroup(p, fn)}
}
