package indicator

import (
	"fmt"

	"finpanel/internal/model"
)

// EMA computes the exponential moving average of the close price, per
// stock. The recursion seeds at the group's first close with smoothing
// factor alpha = 2/(span+1), so EMA is defined from the very first row of
// each group — there is no warm-up gap.
func EMA(p *model.Panel, span int) (model.Column, error) {
	if _, err := normalizeWindows([]int{span}); err != nil {
		return model.Column{}, err
	}
	return column(p, fmt.Sprintf("EMA_%d", span), func(g model.Group) []float64 {
		return ewm(g.Closes(), span)
	}), nil
}
