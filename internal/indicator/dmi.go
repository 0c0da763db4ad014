package indicator

import (
	"fmt"
	"math"

	"finpanel/internal/model"
)

// DMI computes the directional movement system per stock: +DI, -DI and ADX
// columns for one window. True range and the directional moves need the
// previous row, so everything is undefined at the first row of a group;
// the three building blocks are smoothed with the exponential recursion of
// span = window, as is the final ADX over DX.
func DMI(p *model.Panel, window int) ([]model.Column, error) {
	if _, err := normalizeWindows([]int{window}); err != nil {
		return nil, err
	}

	total := p.Len()
	plusDI := make([]float64, 0, total)
	minusDI := make([]float64, 0, total)
	adx := make([]float64, 0, total)
	for _, g := range p.Groups() {
		pDI, mDI, ax := dmiGroup(g, window)
		plusDI = append(plusDI, pDI...)
		minusDI = append(minusDI, mDI...)
		adx = append(adx, ax...)
	}

	return []model.Column{
		{Name: fmt.Sprintf("PlusDI_%d", window), Values: plusDI},
		{Name: fmt.Sprintf("MinusDI_%d", window), Values: minusDI},
		{Name: fmt.Sprintf("ADX_%d", window), Values: adx},
	}, nil
}

func dmiGroup(g model.Group, window int) (pDI, mDI, adx []float64) {
	n := len(g.Rows)
	tr := nanSlice(n)
	plusDM := nanSlice(n)
	minusDM := nanSlice(n)

	for i := 1; i < n; i++ {
		cur, prev := g.Rows[i], g.Rows[i-1]
		tr[i] = math.Max(cur.High-cur.Low,
			math.Max(math.Abs(cur.High-prev.Close), math.Abs(cur.Low-prev.Close)))

		// A directional move counts only when it strictly dominates the
		// opposite one and is positive.
		up := cur.High - prev.High
		down := prev.Low - cur.Low
		plusDM[i], minusDM[i] = 0, 0
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	sTR := ewm(tr, window)
	sPlus := ewm(plusDM, window)
	sMinus := ewm(minusDM, window)

	pDI = nanSlice(n)
	mDI = nanSlice(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(sTR[i]) || sTR[i] == 0 {
			continue
		}
		pDI[i] = 100 * sPlus[i] / sTR[i]
		mDI[i] = 100 * sMinus[i] / sTR[i]
	}

	dx := nanSlice(n)
	for i := 0; i < n; i++ {
		sum := pDI[i] + mDI[i]
		if math.IsNaN(sum) || sum == 0 {
			continue
		}
		dx[i] = 100 * math.Abs(pDI[i]-mDI[i]) / sum
	}
	return pDI, mDI, ewm(dx, window)
}
