package mt5

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

// TradeAction — TRADE_ACTION_*.
type TradeAction int

const (
	TradeActionDeal TradeAction = 1
	TradeActionSLTP TradeAction = 6
)

// OrderType — ORDER_TYPE_*.
type OrderType int

const (
	OrderTypeBuy  OrderType = 0
	OrderTypeSell OrderType = 1
)

// OrderTime — ORDER_TIME_*.
type OrderTime int

const OrderTimeGTC OrderTime = 0

// OrderFilling — ORDER_FILLING_*. Рыночные ордера уходят с IOC.
type OrderFilling int

const OrderFillingIOC OrderFilling = 1

const (
	// DirectionBuy — единственное значение direction, дающее покупку.
	DirectionBuy = 1
	// DirectionSell — принятое значение для продажи; продажей считается любое != 1.
	DirectionSell = -1

	DefaultDeviation = 10

	// pipScale переводит пункты TP/SL в цену.
	pipScale = 0.01
)

var (
	ErrPositionNotFound    = errors.New("position not found")
	ErrUnknownPositionType = errors.New("unknown position type")
)

// TradeRequest — запрос order_send. Для новой сделки заполняются
// Symbol..TypeFilling, для модификации — Position, StopLoss, TakeProfit.
type TradeRequest struct {
	Action      TradeAction  `json:"action"`
	Symbol      string       `json:"symbol,omitempty"`
	Volume      float64      `json:"volume,omitempty"`
	Deviation   int          `json:"deviation,omitempty"`
	Type        OrderType    `json:"type"`
	Magic       int64        `json:"magic,omitempty"`
	TypeTime    OrderTime    `json:"type_time"`
	TypeFilling OrderFilling `json:"type_filling"`
	Position    uint64       `json:"position,omitempty"`
	StopLoss    float64      `json:"sl,omitempty"`
	TakeProfit  float64      `json:"tp,omitempty"`
}

// NewMarketRequest собирает рыночную сделку: direction == 1 — покупка,
// любое другое значение — продажа. GTC, IOC.
func NewMarketRequest(symbol string, lot float64, direction int, magic int64, deviation int) TradeRequest {
	orderType := OrderTypeSell
	if direction == DirectionBuy {
		orderType = OrderTypeBuy
	}
	return TradeRequest{
		Action:      TradeActionDeal,
		Symbol:      strings.ToUpper(symbol),
		Volume:      lot,
		Deviation:   deviation,
		Type:        orderType,
		Magic:       magic,
		TypeTime:    OrderTimeGTC,
		TypeFilling: OrderFillingIOC,
	}
}

// NewSLTPRequest считает уровни от цены открытия: pips * 0.01.
// buy: tp выше, sl ниже; sell — наоборот.
func NewSLTPRequest(p Position, profitPips, lossPips int) (TradeRequest, error) {
	var tp, sl float64
	switch p.Type {
	case PositionBuy:
		tp = p.PriceOpen + float64(profitPips)*pipScale
		sl = p.PriceOpen - float64(lossPips)*pipScale
	case PositionSell:
		tp = p.PriceOpen - float64(profitPips)*pipScale
		sl = p.PriceOpen + float64(lossPips)*pipScale
	default:
		return TradeRequest{}, fmt.Errorf("%w: %d (ticket %d)", ErrUnknownPositionType, int(p.Type), p.Ticket)
	}
	return TradeRequest{
		Action:     TradeActionSLTP,
		Position:   p.Ticket,
		StopLoss:   sl,
		TakeProfit: tp,
	}, nil
}

// SendOrder отправляет рыночный ордер. Результат терминала не проверяется.
func (c *Client) SendOrder(ctx context.Context, symbol string, lot float64, direction int, magic int64, deviation int) (*OrderSendResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mt5.SendOrder")
	defer span.Finish()
	span.SetTag("symbol", symbol)
	span.SetTag("direction", direction)

	fields := []zap.Field{
		zap.String("symbol", symbol),
		zap.Float64("lot", lot),
		zap.Int("direction", direction),
		zap.Int64("magic", magic),
		zap.Int("deviation", deviation),
	}
	if direction != DirectionBuy && direction != DirectionSell {
		c.log.Warn("send order: direction treated as sell", fields...)
	}

	s, err := c.current()
	if err != nil {
		markFailed(span, err)
		c.log.Debug("send order", append(fields, zap.Bool("success", false), zap.Error(err))...)
		return nil, err
	}

	res, err := s.OrderSend(ctx, NewMarketRequest(symbol, lot, direction, magic, deviation))
	if err != nil {
		markFailed(span, err)
		c.log.Debug("send order", append(fields, zap.Bool("success", false), zap.Error(err))...)
		return nil, err
	}

	c.log.Debug("send order", append(fields, zap.Bool("success", true), zap.Any("response", res))...)
	return res, nil
}

// SetProfitAndLoss выставляет TP/SL на позицию ticket в пунктах от цены открытия.
func (c *Client) SetProfitAndLoss(ctx context.Context, ticket uint64, profitPips, lossPips int) (*OrderSendResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mt5.SetProfitAndLoss")
	defer span.Finish()
	span.SetTag("ticket", ticket)

	fields := []zap.Field{
		zap.Uint64("ticket", ticket),
		zap.Int("profit", profitPips),
		zap.Int("loss", lossPips),
	}
	fail := func(err error) (*OrderSendResult, error) {
		markFailed(span, err)
		c.log.Debug("set profit and loss", append(fields, zap.Bool("success", false), zap.Error(err))...)
		return nil, err
	}

	positions, err := c.GetPositions(ctx, PositionsQuery{Ticket: ticket})
	if err != nil {
		return fail(err)
	}
	if len(positions) != 1 {
		return fail(fmt.Errorf("%w: ticket %d, got %d", ErrPositionNotFound, ticket, len(positions)))
	}

	req, err := NewSLTPRequest(positions[0], profitPips, lossPips)
	if err != nil {
		return fail(err)
	}

	s, err := c.current()
	if err != nil {
		return fail(err)
	}
	res, err := s.OrderSend(ctx, req)
	if err != nil {
		return fail(err)
	}

	c.log.Debug("set profit and loss", append(fields, zap.Bool("success", true), zap.Any("response", res))...)
	return res, nil
}
