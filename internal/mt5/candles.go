package mt5

import (
	"context"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

// Candle — свеча в том виде, в каком её отдаёт клиент.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
	Spread int64     `json:"spread"`
}

// GetCandles возвращает count свечей, заканчивающихся на from.
// Порядок — как отдал терминал (старые первыми), без пересортировки.
func (c *Client) GetCandles(ctx context.Context, symbol, timeframe string, from time.Time, count int) ([]Candle, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mt5.GetCandles")
	defer span.Finish()
	span.SetTag("symbol", symbol)
	span.SetTag("timeframe", timeframe)
	span.SetTag("count", count)

	fields := []zap.Field{
		zap.String("symbol", symbol),
		zap.String("timeframe", timeframe),
		zap.Time("from_datetime", from),
		zap.Int("data_count", count),
	}

	tf, err := c.Timeframe(timeframe)
	if err != nil {
		markFailed(span, err)
		c.log.Debug("get candles", append(fields, zap.Bool("success", false), zap.Error(err))...)
		return nil, err
	}

	s, err := c.current()
	if err != nil {
		markFailed(span, err)
		c.log.Debug("get candles", append(fields, zap.Bool("success", false), zap.Error(err))...)
		return nil, err
	}

	rows, err := s.CopyRatesFrom(ctx, strings.ToUpper(symbol), tf, from, count)
	if err != nil {
		markFailed(span, err)
		c.log.Debug("get candles", append(fields, zap.Bool("success", false), zap.Error(err))...)
		return nil, err
	}

	candles := CreateCandles(rows)
	if len(candles) > 0 {
		fields = append(fields,
			zap.Time("candles_start", candles[0].Time),
			zap.Time("candles_end", candles[len(candles)-1].Time),
		)
	}
	c.log.Debug("get candles", append(fields, zap.Bool("success", true), zap.Int("received", len(candles)))...)

	return candles, nil
}

// CreateCandles переводит позиционные строки терминала в свечи.
// time — UTC от unix-секунд первого поля, остальные поля без изменений.
func CreateCandles(rows []RateRow) []Candle {
	candles := make([]Candle, 0, len(rows))
	for _, r := range rows {
		candles = append(candles, Candle{
			Time:   time.Unix(r.Time, 0).UTC(),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
			Spread: r.Spread,
		})
	}
	return candles
}
