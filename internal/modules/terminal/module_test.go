package terminal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	health "mt5_api/internal/modules/health/service"
	"mt5_api/internal/mt5"
)

type stubSession struct {
	closed int
	broken error
}

func (s *stubSession) CopyRatesFrom(context.Context, string, mt5.Timeframe, time.Time, int) ([]mt5.RateRow, error) {
	return nil, nil
}
func (s *stubSession) SymbolInfo(context.Context, string) (*mt5.SymbolInfo, error) { return nil, nil }
func (s *stubSession) PositionsGet(context.Context, mt5.PositionsQuery) ([]mt5.Position, error) {
	return nil, nil
}
func (s *stubSession) OrderSend(context.Context, mt5.TradeRequest) (*mt5.OrderSendResult, error) {
	return nil, nil
}
func (s *stubSession) Close(context.Context) error { s.closed++; return nil }
func (s *stubSession) Err() error                  { return s.broken }

type stubPlatform struct {
	session *stubSession
	err     error
}

func (p *stubPlatform) Open(context.Context, mt5.Credentials) (mt5.Session, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.session, nil
}

func TestRunSession_Lifecycle(t *testing.T) {
	s := &stubSession{}
	c := mt5.NewClient(&stubPlatform{session: s}, 1, "pw")
	state := health.NewState()
	lc := fxtest.NewLifecycle(t)

	RunSession(lc, c, state, zap.NewNop())
	lc.RequireStart()
	assert.True(t, state.Ready())
	assert.True(t, c.Connected())

	lc.RequireStop()
	assert.False(t, state.Ready())
	assert.False(t, c.Connected())
	assert.Equal(t, 1, s.closed)
}

func TestRunSession_ConnectFailureIsNotFatal(t *testing.T) {
	c := mt5.NewClient(&stubPlatform{err: errors.New("bridge down")}, 1, "pw")
	state := health.NewState()
	lc := fxtest.NewLifecycle(t)

	RunSession(lc, c, state, zap.NewNop())
	lc.RequireStart()
	assert.False(t, state.Ready())
	assert.False(t, c.Connected())
	lc.RequireStop()
}

func TestRunSession_ReadinessDropsWithTransport(t *testing.T) {
	s := &stubSession{}
	c := mt5.NewClient(&stubPlatform{session: s}, 1, "pw")
	state := health.NewState()
	lc := fxtest.NewLifecycle(t)

	RunSession(lc, c, state, zap.NewNop())
	lc.RequireStart()
	assert.True(t, state.Ready())

	s.broken = errors.New("read positions_get: websocket: close 1006")
	assert.False(t, c.Connected())
	assert.False(t, state.Ready())
	assert.ErrorIs(t, state.CheckErr(), mt5.ErrNotConnected)

	lc.RequireStop()
}
