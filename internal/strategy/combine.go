package strategy

import (
	"fmt"

	"crypto-trading-bot/internal/types"
)

// disagreementDiscount reflects unresolved disagreement between the two
// sources: the winning side keeps its action but loses 30% of its confidence.
const disagreementDiscount = 0.7

// Combine fuses the technical signal with an optional ML prediction.
// A nil prediction returns the technical signal unchanged. On an exact
// confidence tie the technical signal wins (fixed, first-operand preference).
func Combine(ema types.Signal, ml *types.MLPrediction) types.Signal {
	if ml == nil {
		return ema
	}

	if ema.Action == ml.Signal {
		return types.Signal{
			Action:     ema.Action,
			Confidence: (ema.Confidence + ml.Confidence) / 2,
			Reason:     fmt.Sprintf("EMA + ML agree: %s", ema.Action),
			Price:      ema.Price,
			Ts:         ema.Ts,
		}
	}

	if ema.Confidence >= ml.Confidence {
		return types.Signal{
			Action:     ema.Action,
			Confidence: ema.Confidence * disagreementDiscount,
			Reason:     fmt.Sprintf("EMA stronger: %s", ema.Action),
			Price:      ema.Price,
			Ts:         ema.Ts,
		}
	}

	return types.Signal{
		Action:     ml.Signal,
		Confidence: ml.Confidence * disagreementDiscount,
		Reason:     fmt.Sprintf("ML stronger: %s", ml.Signal),
		Price:      ema.Price,
		Ts:         ema.Ts,
	}
}
