package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"cryptovol/internal/util"
	"cryptovol/pkg/binance"
)

const fiveMinMS = 5 * 60 * 1000

// klineRow renders a Binance wire row: timestamps and trade count as JSON
// numbers, prices and volumes as strings.
func klineRow(openMS int64, close float64) []interface{} {
	price := strconv.FormatFloat(close, 'f', -1, 64)
	return []interface{}{
		openMS, price, price, price, price, "10.5",
		openMS + fiveMinMS - 1, "1050.25", 42, "5.25", "525.12", "0",
	}
}

// fakeBinance serves /api/v3/klines with one 5-minute candle per interval
// in [firstOpenMS, lastOpenMS], honoring startTime/endTime/limit.
type fakeBinance struct {
	firstOpenMS int64
	lastOpenMS  int64

	requests      int
	symbols       []string
	failureStatus int
}

func (f *fakeBinance) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.requests++
		f.symbols = append(f.symbols, r.URL.Query().Get("symbol"))

		if f.failureStatus != 0 {
			w.WriteHeader(f.failureStatus)
			fmt.Fprint(w, `{"code":-1121,"msg":"Invalid symbol."}`)
			return
		}

		startMS, _ := strconv.ParseInt(r.URL.Query().Get("startTime"), 10, 64)
		endMS, _ := strconv.ParseInt(r.URL.Query().Get("endTime"), 10, 64)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		rows := make([][]interface{}, 0)
		open := f.firstOpenMS
		if startMS > open {
			open = f.firstOpenMS + ((startMS-f.firstOpenMS+fiveMinMS-1)/fiveMinMS)*fiveMinMS
		}
		for ; open <= f.lastOpenMS && open < endMS && len(rows) < limit; open += fiveMinMS {
			rows = append(rows, klineRow(open, 100+float64(len(rows)%7)))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rows)
	}
}

func newTestService(f *fakeBinance) (*VolatilityService, *httptest.Server) {
	srv := httptest.NewServer(f.handler())
	return NewVolatilityService(binance.NewClient(srv.URL)), srv
}

func TestFetchRange_SinglePage(t *testing.T) {
	// 48h of 5m candles = 576, well under the 1000 page cap
	fake := &fakeBinance{firstOpenMS: 0, lastOpenMS: 1 << 62}
	svc, srv := newTestService(fake)
	defer srv.Close()

	klines, err := svc.fetchRange(context.Background(), "BTCUSDT", "5m", 48)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(klines) != 576 {
		t.Fatalf("expected 576 candles, got %d", len(klines))
	}
	if fake.requests != 1 {
		t.Errorf("expected exactly 1 page request, got %d", fake.requests)
	}
	for i := 1; i < len(klines); i++ {
		if klines[i].OpenTime <= klines[i-1].OpenTime {
			t.Fatalf("candles not chronological at index %d", i)
		}
	}
}

func TestFetchRange_MultiplePages(t *testing.T) {
	// 100h of 5m candles = 1200, needs a full page plus a short one
	fake := &fakeBinance{firstOpenMS: 0, lastOpenMS: 1 << 62}
	svc, srv := newTestService(fake)
	defer srv.Close()

	klines, err := svc.fetchRange(context.Background(), "BTCUSDT", "5m", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(klines) != 1200 {
		t.Fatalf("expected 1200 candles, got %d", len(klines))
	}
	if fake.requests != 2 {
		t.Errorf("expected 2 page requests, got %d", fake.requests)
	}
}

func TestFetchRange_EmptyResultIsNotFound(t *testing.T) {
	// Range entirely after the last available candle
	fake := &fakeBinance{firstOpenMS: 0, lastOpenMS: 0}
	svc, srv := newTestService(fake)
	defer srv.Close()

	_, err := svc.fetchRange(context.Background(), "NOSUCHCOIN", "5m", 24)
	appErr := util.GetAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != util.ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", util.ErrCodeNotFound, appErr.Code)
	}
	if appErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", appErr.StatusCode)
	}
}

func TestFetchRange_HTTPFailureIsDataSourceError(t *testing.T) {
	fake := &fakeBinance{failureStatus: http.StatusBadRequest}
	svc, srv := newTestService(fake)
	defer srv.Close()

	_, err := svc.fetchRange(context.Background(), "BTCUSDT", "5m", 24)
	appErr := util.GetAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != util.ErrCodeDataSource {
		t.Errorf("expected code %s, got %s", util.ErrCodeDataSource, appErr.Code)
	}
	if appErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", appErr.StatusCode)
	}
	if appErr.Unwrap() == nil {
		t.Error("expected wrapped transport cause")
	}
}

func TestFetchRange_TransportFailureIsDataSourceError(t *testing.T) {
	fake := &fakeBinance{firstOpenMS: 0, lastOpenMS: 1 << 62}
	svc, srv := newTestService(fake)
	srv.Close() // connection refused from here on

	_, err := svc.fetchRange(context.Background(), "BTCUSDT", "5m", 24)
	appErr := util.GetAppError(err)
	if appErr == nil || appErr.Code != util.ErrCodeDataSource {
		t.Fatalf("expected data source error, got %v", err)
	}
}

func TestFetchRange_InvalidInterval(t *testing.T) {
	fake := &fakeBinance{firstOpenMS: 0, lastOpenMS: 1 << 62}
	svc, srv := newTestService(fake)
	defer srv.Close()

	_, err := svc.fetchRange(context.Background(), "BTCUSDT", "bogus", 24)
	appErr := util.GetAppError(err)
	if appErr == nil || appErr.Code != util.ErrCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if fake.requests != 0 {
		t.Errorf("expected no outbound requests, got %d", fake.requests)
	}
}

func TestGetVolatility_SymbolNormalizedAndEchoed(t *testing.T) {
	fake := &fakeBinance{firstOpenMS: 0, lastOpenMS: 1 << 62}
	svc, srv := newTestService(fake)
	defer srv.Close()

	report, err := svc.GetVolatility(context.Background(), "btcusdt", "5m", 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, queried := range fake.symbols {
		if queried != "BTCUSDT" {
			t.Errorf("expected upper-cased query symbol, got %q", queried)
		}
	}
	if report.Symbol != "btcusdt" {
		t.Errorf("expected symbol echoed as given, got %q", report.Symbol)
	}
}

func TestGetVolatility_ReportShape(t *testing.T) {
	fake := &fakeBinance{firstOpenMS: 0, lastOpenMS: 1 << 62}
	svc, srv := newTestService(fake)
	defer srv.Close()

	report, err := svc.GetVolatility(context.Background(), "ETHUSDT", "5m", 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n := len(report.Prices)
	if n != 288 {
		t.Fatalf("expected 288 candles for 24h of 5m data, got %d", n)
	}
	if len(report.Timestamps) != n || len(report.RollingVols) != n {
		t.Fatalf("parallel arrays out of sync: %d timestamps, %d vols, %d prices",
			len(report.Timestamps), len(report.RollingVols), n)
	}
	if report.CurrentVol != report.RollingVols[n-1] {
		t.Errorf("current_vol %v != last rolling value %v", report.CurrentVol, report.RollingVols[n-1])
	}
	if report.MinVol != 0 {
		// leading zero-filled points participate in min
		t.Errorf("expected min_vol 0 from zero-filled leading points, got %v", report.MinVol)
	}
	if report.MaxVol < report.MinVol {
		t.Errorf("max_vol %v below min_vol %v", report.MaxVol, report.MinVol)
	}
	for i, v := range report.RollingVols {
		if v < 0 {
			t.Fatalf("negative rolling volatility at %d: %v", i, v)
		}
	}
}
