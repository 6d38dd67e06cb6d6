package mt5

import (
	"context"
	"errors"
	"strings"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

var ErrInvalidPositionsQuery = errors.New("positions query needs exactly one of symbol or ticket")

// PositionType — направление позиции (POSITION_TYPE_*).
type PositionType int

const (
	PositionBuy  PositionType = 0
	PositionSell PositionType = 1
)

func (t PositionType) String() string {
	switch t {
	case PositionBuy:
		return "buy"
	case PositionSell:
		return "sell"
	default:
		return "unknown"
	}
}

// Position — открытая позиция в том виде, в каком её отдаёт терминал.
type Position struct {
	Ticket       uint64       `json:"ticket"`
	Time         int64        `json:"time"`
	Type         PositionType `json:"type"`
	Magic        int64        `json:"magic"`
	Identifier   uint64       `json:"identifier"`
	Volume       float64      `json:"volume"`
	PriceOpen    float64      `json:"price_open"`
	StopLoss     float64      `json:"sl"`
	TakeProfit   float64      `json:"tp"`
	PriceCurrent float64      `json:"price_current"`
	Swap         float64      `json:"swap"`
	Profit       float64      `json:"profit"`
	Symbol       string       `json:"symbol"`
	Comment      string       `json:"comment"`
}

// PositionsQuery — фильтр positions_get: задаётся ровно одно из полей.
type PositionsQuery struct {
	Symbol string
	Ticket uint64
}

func (q PositionsQuery) validate() error {
	if (q.Symbol == "") == (q.Ticket == 0) {
		return ErrInvalidPositionsQuery
	}
	return nil
}

// GetPositions ищет позиции по символу (в верхнем регистре) или по тикету.
// Результат терминала не изменяется.
func (c *Client) GetPositions(ctx context.Context, q PositionsQuery) ([]Position, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mt5.GetPositions")
	defer span.Finish()
	span.SetTag("symbol", q.Symbol)
	span.SetTag("ticket", q.Ticket)

	fields := []zap.Field{zap.String("symbol", q.Symbol), zap.Uint64("ticket", q.Ticket)}

	if err := q.validate(); err != nil {
		markFailed(span, err)
		c.log.Debug("get positions", append(fields, zap.Bool("success", false), zap.Error(err))...)
		return nil, err
	}

	s, err := c.current()
	if err != nil {
		markFailed(span, err)
		c.log.Debug("get positions", append(fields, zap.Bool("success", false), zap.Error(err))...)
		return nil, err
	}

	if q.Symbol != "" {
		q.Symbol = strings.ToUpper(q.Symbol)
	}
	positions, err := s.PositionsGet(ctx, q)
	if err != nil {
		markFailed(span, err)
		c.log.Debug("get positions", append(fields, zap.Bool("success", false), zap.Error(err))...)
		return nil, err
	}

	c.log.Debug("get positions", append(fields, zap.Bool("success", true), zap.Any("positions", positions))...)
	return positions, nil
}
