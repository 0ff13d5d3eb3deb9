package market

import (
	"sort"
	"time"

	"cryptovol/internal/model"
	"cryptovol/pkg/binance"
)

// Normalize converts raw klines into a time-ordered price series. The sort
// is stable so candles repeated at overlapping page boundaries keep their
// arrival order; duplicates are not removed.
func Normalize(klines []binance.Kline) []model.PricePoint {
	points := make([]model.PricePoint, 0, len(klines))
	for _, k := range klines {
		points = append(points, model.PricePoint{
			Time:  time.UnixMilli(k.OpenTime).UTC(),
			Close: k.Close,
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Time.Before(points[j].Time)
	})
	return points
}
