package main

import (
	"context"
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"mt5_api/internal/modules/config"
	"mt5_api/internal/modules/health"
	"mt5_api/internal/modules/terminal"
	"mt5_api/internal/mt5"
	"mt5_api/internal/notify"
	"mt5_api/pkg/logger"
	"mt5_api/pkg/tracing"
)

func main() {
	app := fx.New(
		config.Module(),
		fx.Provide(
			func(cfg *config.Config) (*zap.Logger, error) {
				logger.SetServiceName(cfg.Service.Name)
				tracing.SetServiceName(cfg.Service.Name)
				return logger.New(cfg.Service.LogLevel)
			},
			// Notifier: если TELEGRAM_* нет — пишем в лог
			func(cfg *config.Config, c *mt5.Client, l *zap.Logger) notify.Notifier {
				if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
					tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, c, l)
					if err == nil {
						return tg
					}
					l.Warn("telegram disabled", zap.Error(err))
				}
				return notify.NewLog(l)
			},
		),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}),
		health.Module(),
		terminal.Module(),
		fx.Invoke(
			func(lc fx.Lifecycle, cfg *config.Config, l *zap.Logger) error {
				_, closeTracer, err := tracing.InitTracer(tracing.Config{
					Host: cfg.Tracing.Host,
					Port: cfg.Tracing.Port,
				})
				if err != nil {
					return err
				}
				l.Debug("config loaded", zap.String("config", cfg.String()))
				lc.Append(fx.Hook{
					OnStop: func(ctx context.Context) error {
						closeTracer()
						_ = l.Sync()
						return nil
					},
				})
				return nil
			},
			func(lc fx.Lifecycle, n notify.Notifier, c *mt5.Client) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						if tg, ok := n.(*notify.Telegram); ok {
							if err := tg.Start(context.Background()); err != nil {
								return err
							}
						}
						if c.Connected() {
							n.Send("✅ MT5: сессия терминала открыта")
						} else {
							n.Send("⚠️ MT5: не удалось открыть сессию терминала")
						}
						return nil
					},
					OnStop: func(ctx context.Context) error {
						n.Send("⏹ MT5: остановка")
						if tg, ok := n.(*notify.Telegram); ok {
							tg.Stop()
						}
						return nil
					},
				})
			},
		),
	)
	if err := app.Err(); err != nil {
		log.Fatal(err)
	}
	app.Run()
}
