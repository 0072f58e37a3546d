package calculator

import (
	"errors"
	"math"

	"LevelSentinel/internal/model"
)

// Extend widens a high/low pair so it covers barHigh and barLow.
func Extend(high, low, barHigh, barLow float64) (float64, float64) {
	if barHigh > high {
		high = barHigh
	}
	if barLow < low {
		low = barLow
	}
	return high, low
}

// RangeOf scans the bars and returns their combined high and low.
func RangeOf(bars []model.Bar) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars {
		high, low = Extend(high, low, b.High, b.Low)
	}
	return high, low, nil
}

// RangePosition returns where price sits within [low, high] (0.0~1.0).
func RangePosition(price, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (price - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
