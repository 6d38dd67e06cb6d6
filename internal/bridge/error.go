package bridge

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrSymbolNotFound — symbol_info вернул None.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrNoResult — терминал вернул None там, где ждали данные.
	ErrNoResult = errors.New("terminal returned no result")
	// ErrSessionClosed — вызов по уже закрытой сессии.
	ErrSessionClosed = errors.New("bridge session closed")
)

// PlatformError — ошибка терминала (last_error или error в ответе моста).
type PlatformError struct {
	Method  string
	Code    int
	Message string
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("mt5 %s: %s (code %d)", e.Method, e.Message, e.Code)
}

// Коды last_error терминала (RES_*), которые различает мост.
const (
	CodeOK             = 1
	CodeInvalidParams  = -2
	CodeAuthFailed     = -6
	CodeAutoTradingOff = -8
)
