package mt5

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

// GetPip возвращает point символа — минимальный шаг цены.
// Ошибку терминала (неизвестный символ и т.п.) отдаёт как есть.
func (c *Client) GetPip(ctx context.Context, symbol string) (float64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mt5.GetPip")
	defer span.Finish()
	span.SetTag("symbol", symbol)

	s, err := c.current()
	if err != nil {
		markFailed(span, err)
		c.log.Debug("get pip", zap.Bool("success", false), zap.String("symbol", symbol), zap.Error(err))
		return 0, err
	}

	info, err := s.SymbolInfo(ctx, symbol)
	if err != nil {
		markFailed(span, err)
		c.log.Debug("get pip", zap.Bool("success", false), zap.String("symbol", symbol), zap.Error(err))
		return 0, err
	}

	c.log.Debug("get pip", zap.Bool("success", true), zap.String("symbol", symbol), zap.Float64("pip", info.Point))
	return info.Point, nil
}
