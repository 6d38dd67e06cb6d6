package mt5

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewMarketRequest_Direction(t *testing.T) {
	tests := []struct {
		name      string
		direction int
		want      OrderType
	}{
		{"buy", 1, OrderTypeBuy},
		{"sell", -1, OrderTypeSell},
		{"zero falls back to sell", 0, OrderTypeSell},
		{"two falls back to sell", 2, OrderTypeSell},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewMarketRequest("usdjpy", 0.1, tt.direction, 20, DefaultDeviation)
			assert.Equal(t, tt.want, req.Type)
			assert.Equal(t, TradeActionDeal, req.Action)
			assert.Equal(t, "USDJPY", req.Symbol)
			assert.Equal(t, 0.1, req.Volume)
			assert.Equal(t, int64(20), req.Magic)
			assert.Equal(t, 10, req.Deviation)
			assert.Equal(t, OrderTimeGTC, req.TypeTime)
			assert.Equal(t, OrderFillingIOC, req.TypeFilling)
		})
	}
}

func TestNewSLTPRequest(t *testing.T) {
	tests := []struct {
		name   string
		typ    PositionType
		wantTP float64
		wantSL float64
	}{
		{"buy", PositionBuy, 151.0, 149.0},
		{"sell", PositionSell, 149.0, 151.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewSLTPRequest(Position{Ticket: 7873658, Type: tt.typ, PriceOpen: 150.0}, 100, 100)
			require.NoError(t, err)
			assert.Equal(t, TradeActionSLTP, req.Action)
			assert.Equal(t, uint64(7873658), req.Position)
			assert.InDelta(t, tt.wantTP, req.TakeProfit, 1e-9)
			assert.InDelta(t, tt.wantSL, req.StopLoss, 1e-9)
		})
	}
}

func TestNewSLTPRequest_UnknownType(t *testing.T) {
	_, err := NewSLTPRequest(Position{Ticket: 1, Type: PositionType(5), PriceOpen: 1}, 10, 10)
	assert.ErrorIs(t, err, ErrUnknownPositionType)
}

func TestClient_SendOrder(t *testing.T) {
	want := &OrderSendResult{Retcode: TradeRetcodeDone, Order: 42, Deal: 41, Volume: 0.1, Price: 149.5}
	s := &mockSession{}
	s.On("OrderSend", mock.Anything, mock.MatchedBy(func(r TradeRequest) bool {
		return r.Type == OrderTypeBuy && r.Symbol == "USDJPY" && r.Magic == 20
	})).Return(want, nil).Once()
	c, _ := connectedClient(s)

	got, err := c.SendOrder(context.Background(), "usdjpy", 0.1, DirectionBuy, 20, DefaultDeviation)
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestClient_SendOrderRejectedIsReturnedAsIs(t *testing.T) {
	rejected := &OrderSendResult{Retcode: 10006, Comment: "Request rejected"}
	s := &mockSession{}
	s.On("OrderSend", mock.Anything, mock.Anything).Return(rejected, nil).Once()
	c, _ := connectedClient(s)

	got, err := c.SendOrder(context.Background(), "USDJPY", 0.1, 0, 99, DefaultDeviation)
	require.NoError(t, err)
	assert.Equal(t, uint32(10006), got.Retcode)
	s.AssertCalled(t, "OrderSend", mock.Anything, mock.MatchedBy(func(r TradeRequest) bool {
		return r.Type == OrderTypeSell
	}))
}

func TestClient_SetProfitAndLoss(t *testing.T) {
	tests := []struct {
		name   string
		typ    PositionType
		wantTP float64
		wantSL float64
	}{
		{"buy", PositionBuy, 150.5, 149.5},
		{"sell", PositionSell, 149.5, 150.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &mockSession{}
			s.On("PositionsGet", mock.Anything, PositionsQuery{Ticket: 555}).
				Return([]Position{{Ticket: 555, Type: tt.typ, PriceOpen: 150.0, Symbol: "USDJPY"}}, nil).Once()

			var sent TradeRequest
			s.On("OrderSend", mock.Anything, mock.Anything).
				Run(func(args mock.Arguments) { sent = args.Get(1).(TradeRequest) }).
				Return(&OrderSendResult{Retcode: TradeRetcodeDone}, nil).Once()
			c, _ := connectedClient(s)

			_, err := c.SetProfitAndLoss(context.Background(), 555, 50, 50)
			require.NoError(t, err)
			assert.Equal(t, TradeActionSLTP, sent.Action)
			assert.Equal(t, uint64(555), sent.Position)
			assert.InDelta(t, tt.wantTP, sent.TakeProfit, 1e-9)
			assert.InDelta(t, tt.wantSL, sent.StopLoss, 1e-9)
		})
	}
}

func TestClient_SetProfitAndLossNoPosition(t *testing.T) {
	s := &mockSession{}
	s.On("PositionsGet", mock.Anything, PositionsQuery{Ticket: 1}).Return([]Position{}, nil).Once()
	c, _ := connectedClient(s)

	_, err := c.SetProfitAndLoss(context.Background(), 1, 100, 100)
	assert.ErrorIs(t, err, ErrPositionNotFound)
	s.AssertNotCalled(t, "OrderSend", mock.Anything, mock.Anything)
}

func TestClient_SetProfitAndLossUnknownType(t *testing.T) {
	s := &mockSession{}
	s.On("PositionsGet", mock.Anything, PositionsQuery{Ticket: 2}).
		Return([]Position{{Ticket: 2, Type: PositionType(9), PriceOpen: 1.1}}, nil).Once()
	c, _ := connectedClient(s)

	_, err := c.SetProfitAndLoss(context.Background(), 2, 100, 100)
	assert.ErrorIs(t, err, ErrUnknownPositionType)
	s.AssertNotCalled(t, "OrderSend", mock.Anything, mock.Anything)
}
