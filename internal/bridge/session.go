package bridge

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"mt5_api/internal/mt5"
)

// Session — открытая сессия терминала. Кадры идут строго по одному:
// терминал держит одну сессию на процесс. Любая ошибка транспорта
// (включая таймаут чтения) закрывает сессию насовсем.
type Session struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	timeout time.Duration
	log     *zap.Logger

	once  sync.Once
	done  chan struct{}
	cause error // пишется до close(done)
}

var _ mt5.Session = (*Session)(nil)

func newSession(conn *websocket.Conn, timeout time.Duration, log *zap.Logger) *Session {
	return &Session{conn: conn, timeout: timeout, log: log, done: make(chan struct{})}
}

// Err — nil, пока сессия пригодна. После Close или обрыва — ErrSessionClosed
// (с причиной обрыва).
func (s *Session) Err() error {
	select {
	case <-s.done:
		return s.cause
	default:
		return nil
	}
}

// markClosed фиксирует причину закрытия. true — только для первого вызова.
func (s *Session) markClosed(cause error) bool {
	first := false
	s.once.Do(func() {
		s.cause = cause
		close(s.done)
		first = true
	})
	return first
}

// fail закрывает соединение после ошибки транспорта. Вызывается под s.mu.
func (s *Session) fail(err error) error {
	if s.markClosed(errors.Wrap(ErrSessionClosed, err.Error())) {
		_ = s.conn.Close()
		s.log.Warn("session broken", zap.Error(err))
	}
	return err
}

func (s *Session) CopyRatesFrom(ctx context.Context, symbol string, tf mt5.Timeframe, from time.Time, count int) ([]mt5.RateRow, error) {
	raw, err := s.roundTrip(ctx, "copy_rates_from", copyRatesParams{
		Symbol:    symbol,
		Timeframe: int(tf),
		DateFrom:  from.Unix(),
		Count:     count,
	})
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, s.lastError(ctx, "copy_rates_from")
	}

	var wire [][]float64
	if err := sonic.Unmarshal(raw, &wire); err != nil {
		return nil, errors.Wrap(err, "decode copy_rates_from")
	}
	rows, err := rowsFromWire(wire)
	if err != nil {
		return nil, errors.Wrap(err, "copy_rates_from")
	}
	return rows, nil
}

func (s *Session) SymbolInfo(ctx context.Context, symbol string) (*mt5.SymbolInfo, error) {
	raw, err := s.roundTrip(ctx, "symbol_info", map[string]string{"symbol": symbol})
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, errors.Wrapf(ErrSymbolNotFound, "symbol_info %q", symbol)
	}

	var info mt5.SymbolInfo
	if err := sonic.Unmarshal(raw, &info); err != nil {
		return nil, errors.Wrap(err, "decode symbol_info")
	}
	return &info, nil
}

func (s *Session) PositionsGet(ctx context.Context, q mt5.PositionsQuery) ([]mt5.Position, error) {
	params := map[string]any{}
	if q.Symbol != "" {
		params["symbol"] = q.Symbol
	} else {
		params["ticket"] = q.Ticket
	}

	raw, err := s.roundTrip(ctx, "positions_get", params)
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, s.lastError(ctx, "positions_get")
	}

	var positions []mt5.Position
	if err := sonic.Unmarshal(raw, &positions); err != nil {
		return nil, errors.Wrap(err, "decode positions_get")
	}
	return positions, nil
}

func (s *Session) OrderSend(ctx context.Context, req mt5.TradeRequest) (*mt5.OrderSendResult, error) {
	raw, err := s.roundTrip(ctx, "order_send", map[string]any{"request": tradeRequestToWire(req)})
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, s.lastError(ctx, "order_send")
	}

	var res mt5.OrderSendResult
	if err := sonic.Unmarshal(raw, &res); err != nil {
		return nil, errors.Wrap(err, "decode order_send")
	}
	return &res, nil
}

// Close вызывает shutdown и закрывает соединение. Повторный вызов — no-op.
func (s *Session) Close(ctx context.Context) error {
	if s.Err() != nil {
		return nil
	}
	_, shutdownErr := s.roundTrip(ctx, "shutdown", nil)
	if errors.Is(shutdownErr, ErrSessionClosed) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.markClosed(ErrSessionClosed) {
		// shutdown оборвал транспорт, соединение уже закрыто
		return shutdownErr
	}

	_ = s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	if err := s.conn.Close(); err != nil && shutdownErr == nil {
		return errors.Wrap(err, "close connection")
	}
	return shutdownErr
}

// lastError спрашивает у терминала причину последнего None.
func (s *Session) lastError(ctx context.Context, method string) error {
	raw, err := s.roundTrip(ctx, "last_error", nil)
	if err != nil {
		return errors.Wrapf(ErrNoResult, "%s (last_error: %v)", method, err)
	}

	var pair []any
	if err := sonic.Unmarshal(raw, &pair); err != nil || len(pair) < 2 {
		return errors.Wrap(ErrNoResult, method)
	}
	code, _ := pair[0].(float64)
	msg, _ := pair[1].(string)
	if int(code) == CodeOK {
		// терминал вернул None, но ошибки не зафиксировал
		return errors.Wrap(ErrNoResult, method)
	}
	return &PlatformError{Method: method, Code: int(code), Message: msg}
}

func (s *Session) roundTrip(ctx context.Context, method string, params any) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Err(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, method)
	}

	deadline := time.Now().Add(s.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}

	id := uuid.NewString()
	payload, err := sonic.Marshal(request{ID: id, Method: method, Params: params})
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", method)
	}

	// gorilla не даёт читать после ошибки чтения, поэтому после любого
	// сбоя ниже сессия закрывается
	_ = s.conn.SetWriteDeadline(deadline)
	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return nil, s.fail(errors.Wrapf(err, "write %s", method))
	}

	_ = s.conn.SetReadDeadline(deadline)
	_, msg, err := s.conn.ReadMessage()
	if err != nil {
		return nil, s.fail(errors.Wrapf(err, "read %s", method))
	}

	var resp response
	if err := sonic.Unmarshal(msg, &resp); err != nil {
		return nil, s.fail(errors.Wrapf(err, "decode %s response", method))
	}
	if resp.ID != id {
		return nil, s.fail(errors.Errorf("%s: response id %q, want %q", method, resp.ID, id))
	}
	if resp.Error != nil {
		return nil, &PlatformError{Method: method, Code: resp.Error.Code, Message: resp.Error.Message}
	}

	s.log.Debug("call", zap.String("method", method), zap.Int("bytes", len(msg)))
	return resp.Result, nil
}
