package indicator

import "math"

// Rolling and recursive primitives shared by the indicator set. All of them
// operate on a single group's value sequence and return a slice of the same
// length, with NaN where the statistic is undefined.

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// rollingMean is the trailing-window arithmetic mean. Undefined until the
// window fills, and whenever the window contains an undefined value.
func rollingMean(vals []float64, window int) []float64 {
	out := nanSlice(len(vals))
	sum := 0.0
	missing := 0
	for i, v := range vals {
		if math.IsNaN(v) {
			missing++
		} else {
			sum += v
		}
		if i >= window {
			if old := vals[i-window]; math.IsNaN(old) {
				missing--
			} else {
				sum -= old
			}
		}
		if i >= window-1 && missing == 0 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// rollingStd is the trailing-window standard deviation. minPeriods is the
// smallest number of defined observations that yields a value; ddof is the
// degrees-of-freedom correction (0 = population, 1 = sample). The mean is
// recomputed per window rather than carried incrementally to keep the
// variance numerically stable.
func rollingStd(vals []float64, window, minPeriods, ddof int) []float64 {
	out := nanSlice(len(vals))
	for i := range vals {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		n := 0
		sum := 0.0
		for j := lo; j <= i; j++ {
			if !math.IsNaN(vals[j]) {
				n++
				sum += vals[j]
			}
		}
		if n < minPeriods || n <= ddof {
			continue
		}
		mean := sum / float64(n)
		ss := 0.0
		for j := lo; j <= i; j++ {
			if !math.IsNaN(vals[j]) {
				d := vals[j] - mean
				ss += d * d
			}
		}
		out[i] = math.Sqrt(ss / float64(n-ddof))
	}
	return out
}

// rollingMin is the trailing-window minimum, with the same warm-up and
// missing-value rule as rollingMean.
func rollingMin(vals []float64, window int) []float64 {
	return rollingExtreme(vals, window, func(a, b float64) bool { return a < b })
}

// rollingMax is the trailing-window maximum.
func rollingMax(vals []float64, window int) []float64 {
	return rollingExtreme(vals, window, func(a, b float64) bool { return a > b })
}

func rollingExtreme(vals []float64, window int, better func(a, b float64) bool) []float64 {
	out := nanSlice(len(vals))
	for i := window - 1; i < len(vals); i++ {
		best := vals[i-window+1]
		ok := !math.IsNaN(best)
		for j := i - window + 2; ok && j <= i; j++ {
			v := vals[j]
			if math.IsNaN(v) {
				ok = false
				break
			}
			if better(v, best) {
				best = v
			}
		}
		if ok {
			out[i] = best
		}
	}
	return out
}

// ewm is the zero-adjustment exponential moving average with smoothing
// factor alpha = 2/(span+1). The recursion seeds at the first defined
// observation (not a window mean), so the output has no warm-up gap beyond
// any leading undefined inputs. An undefined input emits undefined and
// leaves the recursion state untouched.
func ewm(vals []float64, span int) []float64 {
	out := nanSlice(len(vals))
	alpha := 2.0 / float64(span+1)
	cur := math.NaN()
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(cur) {
			cur = v
		} else {
			cur = alpha*v + (1-alpha)*cur
		}
		out[i] = cur
	}
	return out
}

// diff is the one-step difference; the first element (and any element whose
// neighbor is undefined) is undefined.
func diff(vals []float64) []float64 {
	out := nanSlice(len(vals))
	for i := 1; i < len(vals); i++ {
		if !math.IsNaN(vals[i]) && !math.IsNaN(vals[i-1]) {
			out[i] = vals[i] - vals[i-1]
		}
	}
	return out
}
