package ta

import "math"

// SMA returns the simple average of the last n values, or the last value
// when fewer than n exist (degraded, not an error).
func SMA(closes []float64, n int) float64 {
	if len(closes) == 0 || n <= 0 {
		return 0
	}
	if len(closes) < n {
		return closes[len(closes)-1]
	}
	sum := 0.0
	for i := len(closes) - n; i < len(closes); i++ {
		sum += closes[i]
	}
	return sum / float64(n)
}

// EMA seeds with the simple average of the first period values and then
// applies the standard 2/(period+1) multiplier. With fewer values than the
// period it degenerates to the last close.
func EMA(closes []float64, period int) float64 {
	if len(closes) == 0 || period <= 0 {
		return 0
	}
	if len(closes) < period {
		return closes[len(closes)-1]
	}
	seed := 0.0
	for i := 0; i < period; i++ {
		seed += closes[i]
	}
	ema := seed / float64(period)
	k := 2.0 / float64(period+1)
	for i := period; i < len(closes); i++ {
		ema = (closes[i]-ema)*k + ema
	}
	return ema
}

// RSI over the last period deltas. Returns the neutral 50 when history is
// shorter than period+1, and 100 when there are no losses.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return 50
	}
	gain, loss := 0.0, 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if loss == 0 {
		return 100
	}
	rs := (gain / float64(period)) / (loss / float64(period))
	return 100.0 - (100.0 / (1.0 + rs))
}

// StdDev is the population standard deviation of the last n values.
func StdDev(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return 0
	}
	m := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		m += vals[i]
	}
	m /= float64(n)
	s := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		d := vals[i] - m
		s += d * d
	}
	return math.Sqrt(s / float64(n))
}
