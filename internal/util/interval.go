package util

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Candle intervals accepted by the Binance klines endpoint.
var validIntervals = []string{
	"1m", "3m", "5m", "15m", "30m",
	"1h", "2h", "4h", "6h", "8h", "12h",
	"1d", "3d", "1w", "1M",
}

// IsValidInterval reports whether the interval is one Binance accepts
func IsValidInterval(interval string) bool {
	for _, v := range validIntervals {
		if v == interval {
			return true
		}
	}
	return false
}

// ValidIntervals returns the accepted interval strings
func ValidIntervals() []string {
	return validIntervals
}

// IntervalDuration converts an interval string like "5m" or "1h" into a
// duration. Weeks and months use fixed lengths (7 and 30 days).
func IntervalDuration(interval string) (time.Duration, error) {
	if len(interval) < 2 {
		return 0, errors.New("invalid interval")
	}
	num, err := strconv.Atoi(interval[:len(interval)-1])
	if err != nil || num <= 0 {
		return 0, errors.New("invalid interval")
	}
	switch interval[len(interval)-1] {
	case 'm':
		return time.Duration(num) * time.Minute, nil
	case 'h':
		return time.Duration(num) * time.Hour, nil
	case 'd':
		return time.Duration(num) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(num) * 7 * 24 * time.Hour, nil
	case 'M':
		return time.Duration(num) * 30 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unsupported interval unit: %s", interval)
	}
}
