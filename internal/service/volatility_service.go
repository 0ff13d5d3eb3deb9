package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cryptovol/internal/model"
	"cryptovol/internal/service/market"
	"cryptovol/internal/util"
	"cryptovol/pkg/binance"
	"cryptovol/pkg/logger"
)

// pageLimit is the maximum number of klines Binance returns per request
const pageLimit = 1000

// VolatilityService runs the fetch-normalize-estimate pipeline. It holds no
// state between requests; every call is a fresh pull from Binance.
type VolatilityService struct {
	client *binance.Client
}

// NewVolatilityService creates a new volatility service
func NewVolatilityService(client *binance.Client) *VolatilityService {
	return &VolatilityService{
		client: client,
	}
}

// GetVolatility fetches candle history for the symbol over the lookback
// window and computes rolling and aggregate volatility in basis points.
// The symbol is echoed back exactly as the caller wrote it.
func (s *VolatilityService) GetVolatility(ctx context.Context, symbol, interval string, lookbackHours int) (*model.VolatilityReport, error) {
	klines, err := s.fetchRange(ctx, symbol, interval, lookbackHours)
	if err != nil {
		return nil, err
	}

	series := market.Normalize(klines)

	returns, err := market.LogReturns(series)
	if err != nil {
		return nil, util.ErrComputation("failed to compute returns", err)
	}

	rollingVols := market.RollingVolatility(returns, market.WindowSize)
	averageVol := market.AggregateVolatility(returns)

	// Max/min cover the whole rolling series, zero-filled leading points
	// included, so a short series reports a min of 0.
	maxVol, minVol := rollingVols[0], rollingVols[0]
	for _, v := range rollingVols[1:] {
		if v > maxVol {
			maxVol = v
		}
		if v < minVol {
			minVol = v
		}
	}

	timestamps := make([]string, len(series))
	prices := make([]float64, len(series))
	for i, p := range series {
		timestamps[i] = p.Time.Format(time.RFC3339)
		prices[i] = p.Close
	}

	logger.Debugf("volatility computed: symbol=%s candles=%d avg=%.2f", symbol, len(series), averageVol)

	return &model.VolatilityReport{
		Symbol:      symbol,
		AverageVol:  averageVol,
		MaxVol:      maxVol,
		MinVol:      minVol,
		CurrentVol:  rollingVols[len(rollingVols)-1],
		Timestamps:  timestamps,
		RollingVols: rollingVols,
		Prices:      prices,
	}, nil
}

// fetchRange pages through the klines endpoint until the lookback window is
// covered. Pages are requested one at a time; any transport or HTTP failure
// aborts the whole fetch with no retry.
func (s *VolatilityService) fetchRange(ctx context.Context, symbol, interval string, lookbackHours int) ([]binance.Kline, error) {
	intervalDur, err := util.IntervalDuration(interval)
	if err != nil {
		return nil, util.ErrValidation(err.Error())
	}

	querySymbol := strings.ToUpper(symbol)
	endMS := time.Now().UnixMilli()
	startMS := endMS - int64(lookbackHours)*time.Hour.Milliseconds()

	var all []binance.Kline
	for currentMS := startMS; currentMS < endMS; {
		page, err := s.client.GetKlines(ctx, querySymbol, interval, currentMS, endMS, pageLimit)
		if err != nil {
			return nil, util.ErrDataSource(fmt.Sprintf("error fetching data from Binance: %v", err), err)
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		currentMS = page[len(page)-1].OpenTime + intervalDur.Milliseconds()
	}

	if len(all) == 0 {
		return nil, util.ErrNotFound(fmt.Sprintf("no data found for %s", symbol))
	}
	return all, nil
}
