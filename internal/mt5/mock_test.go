package mt5

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type mockPlatform struct {
	mock.Mock
}

func (m *mockPlatform) Open(ctx context.Context, creds Credentials) (Session, error) {
	args := m.Called(ctx, creds)
	s, _ := args.Get(0).(Session)
	return s, args.Error(1)
}

type mockSession struct {
	mock.Mock

	broken error
}

func (m *mockSession) CopyRatesFrom(ctx context.Context, symbol string, tf Timeframe, from time.Time, count int) ([]RateRow, error) {
	args := m.Called(ctx, symbol, tf, from, count)
	rows, _ := args.Get(0).([]RateRow)
	return rows, args.Error(1)
}

func (m *mockSession) SymbolInfo(ctx context.Context, symbol string) (*SymbolInfo, error) {
	args := m.Called(ctx, symbol)
	info, _ := args.Get(0).(*SymbolInfo)
	return info, args.Error(1)
}

func (m *mockSession) PositionsGet(ctx context.Context, q PositionsQuery) ([]Position, error) {
	args := m.Called(ctx, q)
	positions, _ := args.Get(0).([]Position)
	return positions, args.Error(1)
}

func (m *mockSession) OrderSend(ctx context.Context, req TradeRequest) (*OrderSendResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*OrderSendResult)
	return res, args.Error(1)
}

func (m *mockSession) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockSession) Err() error { return m.broken }

// connectedClient возвращает клиента с уже открытой сессией.
func connectedClient(s *mockSession) (*Client, *mockPlatform) {
	p := &mockPlatform{}
	p.On("Open", mock.Anything, mock.Anything).Return(s, nil).Once()
	c := NewClient(p, 1111, "password")
	if err := c.Connect(context.Background()); err != nil {
		panic(err)
	}
	return c, p
}
