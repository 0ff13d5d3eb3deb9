package market

import (
	"fmt"
	"math"

	"cryptovol/internal/model"
)

// Window math assumes 5-minute candles regardless of the requested
// interval, matching the upstream service this API mirrors.
const (
	MinutesPerInterval = 5
	IntervalsPerHour   = 60 / MinutesPerInterval
	WindowSize         = IntervalsPerHour

	bpsScale = 10000
)

// LogReturns computes the log return between each pair of consecutive
// closes: ln(close[i] / close[i-1]). The result has one entry fewer than
// the input series. Non-positive closes would produce NaN or Inf downstream
// and are rejected.
func LogReturns(series []model.PricePoint) ([]float64, error) {
	if len(series) < 2 {
		return nil, nil
	}
	returns := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev := series[i-1].Close
		curr := series[i].Close
		if prev <= 0 || curr <= 0 {
			return nil, fmt.Errorf("non-positive close price at index %d", i)
		}
		returns = append(returns, math.Log(curr/prev))
	}
	return returns, nil
}

// RollingVolatility computes the rolling standard deviation of returns,
// scaled to hourly-equivalent basis points. The result is aligned to the
// candle series (length = len(returns)+1); entries without a full window of
// returns are 0.
func RollingVolatility(returns []float64, windowSize int) []float64 {
	vols := make([]float64, len(returns)+1)
	if windowSize <= 0 {
		return vols
	}
	for i := windowSize; i < len(vols); i++ {
		window := returns[i-windowSize : i]
		vols[i] = scaleToBps(sampleStd(window))
	}
	return vols
}

// AggregateVolatility computes the standard deviation over the entire
// return series with the same scaling as the rolling values
func AggregateVolatility(returns []float64) float64 {
	return scaleToBps(sampleStd(returns))
}

// sampleStd is the sample standard deviation (n-1 denominator). Fewer than
// two observations yield 0.
func sampleStd(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	varianceSum := 0.0
	for _, v := range values {
		varianceSum += (v - mean) * (v - mean)
	}
	return math.Sqrt(varianceSum / float64(n-1))
}

func scaleToBps(std float64) float64 {
	return std * math.Sqrt(float64(IntervalsPerHour)) * bpsScale
}
