package risk

import (
	"math"

	"finpanel/internal/model"
)

var sqrt252 = math.Sqrt(252)

// rollingStdMin1 is the trailing-window population standard deviation with
// a minimum of one defined observation: a lone observation yields zero,
// not undefined. This mirrors the historical behavior of the volatility
// column rather than a minimum-sample-size rule.
func rollingStdMin1(vals []float64, window int) []float64 {
	out := make([]float64, len(vals))
	for i := range vals {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		n := 0
		sum := 0.0
		for j := lo; j <= i; j++ {
			if model.IsDefined(vals[j]) {
				n++
				sum += vals[j]
			}
		}
		if n == 0 {
			out[i] = model.Undefined()
			continue
		}
		mean := sum / float64(n)
		ss := 0.0
		for j := lo; j <= i; j++ {
			if model.IsDefined(vals[j]) {
				d := vals[j] - mean
				ss += d * d
			}
		}
		out[i] = math.Sqrt(ss / float64(n))
	}
	return out
}

// covariance and variance over paired samples, sample-corrected (n-1).
// Both report undefined for fewer than two observations.
func covariance(xs, ys []float64) float64 {
	n := len(xs)
	if n < 2 {
		return model.Undefined()
	}
	mx, my := mean(xs), mean(ys)
	sum := 0.0
	for i := range xs {
		sum += (xs[i] - mx) * (ys[i] - my)
	}
	return sum / float64(n-1)
}

func variance(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return model.Undefined()
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(n-1)
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
