package terminal

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"mt5_api/internal/bridge"
	"mt5_api/internal/modules/config"
	health "mt5_api/internal/modules/health/service"
	"mt5_api/internal/mt5"
)

func NewPlatform(cfg *config.Config, log *zap.Logger) mt5.Platform {
	return bridge.NewPlatform(bridge.Config{
		URL:         cfg.Bridge.URL,
		Token:       cfg.Bridge.Token,
		DialTimeout: cfg.Bridge.DialTimeout,
		CallTimeout: cfg.Bridge.CallTimeout,
		InitTimeout: cfg.Bridge.InitTimeout,
	}, log)
}

func NewClient(cfg *config.Config, p mt5.Platform, log *zap.Logger) *mt5.Client {
	return mt5.NewClient(p, cfg.Account.Login, cfg.Account.Password,
		mt5.WithServer(cfg.Account.Server),
		mt5.WithTerminalPath(cfg.Account.Path),
		mt5.WithLogger(log),
	)
}

// RunSession открывает сессию на старте и закрывает на остановке.
// Неудачный connect не роняет приложение: /readyz остаётся 503.
// Повторного подключения нет.
func RunSession(lc fx.Lifecycle, c *mt5.Client, state *health.State, log *zap.Logger) {
	// /readyz гаснет, как только транспорт сессии оборвался
	state.SetCheck(c.Err)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := c.Connect(ctx); err != nil {
				log.Warn("terminal session not opened", zap.Error(err))
				return nil
			}
			state.SetConnected(true)
			state.SetReady(true)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			state.SetReady(false)
			state.SetConnected(false)
			return c.Disconnect(ctx)
		},
	})
}

// Module поднимает клиента терминала поверх моста.
func Module() fx.Option {
	return fx.Module("terminal",
		fx.Provide(
			NewPlatform,
			NewClient,
		),
		fx.Invoke(RunSession),
	)
}
