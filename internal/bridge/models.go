package bridge

import (
	"encoding/json"
	"fmt"

	"mt5_api/internal/mt5"
)

type request struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

type response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type initializeParams struct {
	Login    int64  `json:"login,omitempty"`
	Password string `json:"password,omitempty"`
	Server   string `json:"server,omitempty"`
	Path     string `json:"path,omitempty"`
	Timeout  int64  `json:"timeout,omitempty"` // ms
}

type copyRatesParams struct {
	Symbol    string `json:"symbol"`
	Timeframe int    `json:"timeframe"`
	DateFrom  int64  `json:"date_from"`
	Count     int    `json:"count"`
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// rowsFromWire разбирает строки copy_rates_from. Терминал отдаёт
// [time, open, high, low, close, tick_volume, spread, real_volume],
// последнее поле не используется.
func rowsFromWire(raw [][]float64) ([]mt5.RateRow, error) {
	rows := make([]mt5.RateRow, 0, len(raw))
	for i, r := range raw {
		if len(r) < 7 {
			return nil, fmt.Errorf("rate row %d: want at least 7 fields, got %d", i, len(r))
		}
		rows = append(rows, mt5.RateRow{
			Time:   int64(r[0]),
			Open:   r[1],
			High:   r[2],
			Low:    r[3],
			Close:  r[4],
			Volume: int64(r[5]),
			Spread: int64(r[6]),
		})
	}
	return rows, nil
}

// tradeRequestToWire оставляет только поля, нужные действию: SLTP-запрос
// терминал принимает как {action, position, sl, tp}.
func tradeRequestToWire(r mt5.TradeRequest) map[string]any {
	if r.Action == mt5.TradeActionSLTP {
		return map[string]any{
			"action":   int(r.Action),
			"position": r.Position,
			"sl":       r.StopLoss,
			"tp":       r.TakeProfit,
		}
	}
	return map[string]any{
		"action":       int(r.Action),
		"symbol":       r.Symbol,
		"volume":       r.Volume,
		"deviation":    r.Deviation,
		"type":         int(r.Type),
		"magic":        r.Magic,
		"type_time":    int(r.TypeTime),
		"type_filling": int(r.TypeFilling),
	}
}
