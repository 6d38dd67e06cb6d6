package mt5

import (
	"context"
	"time"
)

// Credentials передаются в initialize терминала. Сам клиент их только хранит.
type Credentials struct {
	Login    int64
	Password string
	Server   string
	Path     string // путь к terminal64.exe, пусто — терминал по умолчанию
}

// Platform — внешний торговый терминал. Open соответствует initialize,
// Session.Close — shutdown. Если соединение установлено, а initialize
// отклонён, Open возвращает и сессию, и ошибку: сессию нужно закрыть.
type Platform interface {
	Open(ctx context.Context, creds Credentials) (Session, error)
}

// Session — открытая сессия терминала. Один вызов — один запрос к терминалу.
type Session interface {
	CopyRatesFrom(ctx context.Context, symbol string, tf Timeframe, from time.Time, count int) ([]RateRow, error)
	SymbolInfo(ctx context.Context, symbol string) (*SymbolInfo, error)
	PositionsGet(ctx context.Context, q PositionsQuery) ([]Position, error)
	OrderSend(ctx context.Context, req TradeRequest) (*OrderSendResult, error)
	Close(ctx context.Context) error
	// Err — nil, пока сессия пригодна; после обрыва транспорта или Close — причина.
	Err() error
}

// RateRow — строка copy_rates_from в фиксированном порядке полей:
// (time, open, high, low, close, tick_volume, spread).
type RateRow struct {
	Time   int64 // unix seconds
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
	Spread int64
}

type SymbolInfo struct {
	Name           string  `json:"name"`
	Point          float64 `json:"point"`
	Digits         int     `json:"digits"`
	Spread         int64   `json:"spread"`
	TradeTickSize  float64 `json:"trade_tick_size"`
	TradeTickValue float64 `json:"trade_tick_value"`
	VolumeMin      float64 `json:"volume_min"`
	VolumeMax      float64 `json:"volume_max"`
	VolumeStep     float64 `json:"volume_step"`
}

// OrderSendResult возвращается вызывающему без изменений.
type OrderSendResult struct {
	Retcode   uint32  `json:"retcode"`
	Deal      uint64  `json:"deal"`
	Order     uint64  `json:"order"`
	Volume    float64 `json:"volume"`
	Price     float64 `json:"price"`
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	Comment   string  `json:"comment"`
	RequestID uint32  `json:"request_id"`
}

// TradeRetcodeDone — TRADE_RETCODE_DONE.
const TradeRetcodeDone uint32 = 10009
