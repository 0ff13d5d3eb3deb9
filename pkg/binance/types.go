package binance

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kline represents a single candlestick from the Binance klines endpoint.
// The wire format is a 12-element array with numeric fields encoded as
// either JSON numbers or quoted strings depending on the field.
type Kline struct {
	OpenTime      int64
	Open          float64
	High          float64
	Low           float64
	Close         float64
	Volume        float64
	CloseTime     int64
	QuoteVolume   float64
	TradeCount    int64
	TakerBuyBase  float64
	TakerBuyQuote float64
}

// UnmarshalJSON decodes a raw kline row. Non-numeric values in numeric
// positions are an error rather than being silently coerced.
func (k *Kline) UnmarshalJSON(data []byte) error {
	var row []json.RawMessage
	if err := json.Unmarshal(data, &row); err != nil {
		return fmt.Errorf("failed to decode kline row: %w", err)
	}
	// 11 data fields plus a trailing "ignore" field
	if len(row) < 11 {
		return fmt.Errorf("kline row has %d fields, expected at least 11", len(row))
	}

	var err error
	if k.OpenTime, err = intField(row[0], "open_time"); err != nil {
		return err
	}
	if k.Open, err = floatField(row[1], "open"); err != nil {
		return err
	}
	if k.High, err = floatField(row[2], "high"); err != nil {
		return err
	}
	if k.Low, err = floatField(row[3], "low"); err != nil {
		return err
	}
	if k.Close, err = floatField(row[4], "close"); err != nil {
		return err
	}
	if k.Volume, err = floatField(row[5], "volume"); err != nil {
		return err
	}
	if k.CloseTime, err = intField(row[6], "close_time"); err != nil {
		return err
	}
	if k.QuoteVolume, err = floatField(row[7], "quote_volume"); err != nil {
		return err
	}
	if k.TradeCount, err = intField(row[8], "trade_count"); err != nil {
		return err
	}
	if k.TakerBuyBase, err = floatField(row[9], "taker_buy_base"); err != nil {
		return err
	}
	if k.TakerBuyQuote, err = floatField(row[10], "taker_buy_quote"); err != nil {
		return err
	}
	return nil
}

func floatField(raw json.RawMessage, name string) (float64, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("kline field %s is not numeric: %q", name, s)
	}
	return f, nil
}

func intField(raw json.RawMessage, name string) (int64, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("kline field %s is not an integer: %q", name, s)
	}
	return n, nil
}
