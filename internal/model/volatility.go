package model

import "time"

// PricePoint is a single normalized observation: candle open time and
// closing price. A series of PricePoints is kept sorted ascending by time.
type PricePoint struct {
	Time  time.Time
	Close float64
}

// VolatilityReport is the response body for the volatility endpoint.
// Rolling values with insufficient history are rendered as 0.
type VolatilityReport struct {
	Symbol      string    `json:"symbol"`
	AverageVol  float64   `json:"average_vol"`
	MaxVol      float64   `json:"max_vol"`
	MinVol      float64   `json:"min_vol"`
	CurrentVol  float64   `json:"current_vol"`
	Timestamps  []string  `json:"timestamps"`
	RollingVols []float64 `json:"rolling_vols"`
	Prices      []float64 `json:"prices"`
}
