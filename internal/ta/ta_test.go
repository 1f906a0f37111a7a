package ta

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}

	if got := SMA(closes, 5); !almostEqual(got, 3) {
		t.Errorf("Expected SMA 3, got %f", got)
	}
	if got := SMA(closes, 2); !almostEqual(got, 4.5) {
		t.Errorf("Expected SMA 4.5, got %f", got)
	}
}

func TestSMADegradesToLastClose(t *testing.T) {
	closes := []float64{10, 20}
	if got := SMA(closes, 5); !almostEqual(got, 20) {
		t.Errorf("Expected last close 20 on short history, got %f", got)
	}
}

func TestEMASeededWithSimpleAverage(t *testing.T) {
	// With exactly period values the EMA equals the simple average seed.
	closes := []float64{1, 2, 3}
	if got := EMA(closes, 3); !almostEqual(got, 2) {
		t.Errorf("Expected seed average 2, got %f", got)
	}

	// One more value: ema = (4-2)*0.5 + 2 = 3 with k = 2/(3+1).
	closes = append(closes, 4)
	if got := EMA(closes, 3); !almostEqual(got, 3) {
		t.Errorf("Expected EMA 3, got %f", got)
	}
}

func TestEMADegradesToLastClose(t *testing.T) {
	closes := []float64{100, 101}
	if got := EMA(closes, 9); !almostEqual(got, 101) {
		t.Errorf("Expected last close 101 on short history, got %f", got)
	}
	if got := EMA(nil, 9); got != 0 {
		t.Errorf("Expected 0 on empty input, got %f", got)
	}
}

func TestRSINeutralOnShortHistory(t *testing.T) {
	closes := []float64{1, 2, 3}
	if got := RSI(closes, 14); got != 50 {
		t.Errorf("Expected neutral RSI 50, got %f", got)
	}
}

func TestRSIAllGains(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = float64(100 + i)
	}
	if got := RSI(closes, 14); got != 100 {
		t.Errorf("Expected RSI 100 with no losses, got %f", got)
	}
}

func TestRSIBalancedMoves(t *testing.T) {
	// Alternating +1/-1 deltas: gains == losses, RSI 50.
	closes := make([]float64, 0, 21)
	v := 100.0
	for i := 0; i < 21; i++ {
		closes = append(closes, v)
		if i%2 == 0 {
			v++
		} else {
			v--
		}
	}
	got := RSI(closes, 14)
	if !almostEqual(got, 50) {
		t.Errorf("Expected RSI 50 for balanced moves, got %f", got)
	}
}

func TestStdDev(t *testing.T) {
	vals := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := StdDev(vals, 8); !almostEqual(got, 2) {
		t.Errorf("Expected stddev 2, got %f", got)
	}
	if got := StdDev(vals, 9); got != 0 {
		t.Errorf("Expected 0 on short history, got %f", got)
	}
}
