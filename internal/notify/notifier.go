package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"mt5_api/internal/mt5"
)

type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

// Terminal — то, что боту нужно от клиента терминала. Только чтение.
type Terminal interface {
	GetCandles(ctx context.Context, symbol, timeframe string, from time.Time, count int) ([]mt5.Candle, error)
	GetPip(ctx context.Context, symbol string) (float64, error)
	GetPositions(ctx context.Context, q mt5.PositionsQuery) ([]mt5.Position, error)
}

const maxCandles = 50

// Telegram — пассивный нотифайер + команды /candles, /pip, /positions.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
	term   Terminal
	log    *zap.Logger
}

func NewTelegram(token string, chatID int64, term Terminal, log *zap.Logger) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{
		bot:    b,
		chatID: chatID,
		term:   term,
		log:    log.Named("telegram"),
	}, nil
}

func (t *Telegram) Send(msg string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	if _, err := t.bot.Send(tgbot.NewMessage(t.chatID, msg)); err != nil {
		t.log.Warn("send failed", zap.Error(err))
	}
}

func (t *Telegram) Sendf(format string, args ...any) { t.Send(fmt.Sprintf(format, args...)) }

// Start: long-polling команд из своего чата.
func (t *Telegram) Start(ctx context.Context) error {
	if t == nil || t.bot == nil {
		return nil
	}

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}

	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd, ok := <-updates:
				if !ok {
					return
				}
				if upd.Message == nil || upd.Message.Chat == nil ||
					upd.Message.Chat.ID != t.chatID || !upd.Message.IsCommand() {
					continue
				}
				// команды по одной: сессия терминала одна на процесс
				t.Send(t.handleCommand(ctx, upd.Message.Command(), upd.Message.CommandArguments()))
			}
		}
	}()
	return nil
}

func (t *Telegram) Stop() {
	if t == nil || t.bot == nil {
		return
	}
	t.bot.StopReceivingUpdates()
}

func (t *Telegram) handleCommand(ctx context.Context, cmd, args string) string {
	fields := strings.Fields(args)
	switch cmd {
	case "candles":
		return t.handleCandles(ctx, fields)
	case "pip":
		return t.handlePip(ctx, fields)
	case "positions":
		return t.handlePositions(ctx, fields)
	default:
		return "Команды: /candles SYMBOL TF [N], /pip SYMBOL, /positions SYMBOL|TICKET"
	}
}

// /candles USDJPY H1 10
func (t *Telegram) handleCandles(ctx context.Context, args []string) string {
	if len(args) < 2 {
		return "Использование: /candles SYMBOL TF [N]"
	}
	count := 10
	if len(args) > 2 {
		n, err := strconv.Atoi(args[2])
		if err != nil || n <= 0 {
			return fmt.Sprintf("❗️ Неверное количество: %q", args[2])
		}
		count = min(n, maxCandles)
	}

	candles, err := t.term.GetCandles(ctx, args[0], args[1], time.Now().UTC(), count)
	if err != nil {
		return fmt.Sprintf("❗️ Ошибка получения свечей: %v", err)
	}
	return FormatCandles(strings.ToUpper(args[0]), strings.ToUpper(args[1]), candles)
}

// /pip EURUSD
func (t *Telegram) handlePip(ctx context.Context, args []string) string {
	if len(args) != 1 {
		return "Использование: /pip SYMBOL"
	}
	pip, err := t.term.GetPip(ctx, args[0])
	if err != nil {
		return fmt.Sprintf("❗️ Ошибка получения point: %v", err)
	}
	return fmt.Sprintf("%s point = %g", args[0], pip)
}

// /positions USDJPY или /positions 7873658
func (t *Telegram) handlePositions(ctx context.Context, args []string) string {
	if len(args) != 1 {
		return "Использование: /positions SYMBOL|TICKET"
	}
	q := mt5.PositionsQuery{Symbol: args[0]}
	if ticket, err := strconv.ParseUint(args[0], 10, 64); err == nil {
		q = mt5.PositionsQuery{Ticket: ticket}
	}

	positions, err := t.term.GetPositions(ctx, q)
	if err != nil {
		return fmt.Sprintf("❗️ Ошибка получения позиций: %v", err)
	}
	return FormatPositions(positions)
}

func FormatCandles(symbol, timeframe string, candles []mt5.Candle) string {
	if len(candles) == 0 {
		return fmt.Sprintf("📭 %s %s: свечей нет", symbol, timeframe)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📈 %s %s, %d шт.:\n", symbol, timeframe, len(candles))
	for _, c := range candles {
		fmt.Fprintf(&b, "%s O=%g H=%g L=%g C=%g V=%d\n",
			c.Time.Format("2006-01-02 15:04"), c.Open, c.High, c.Low, c.Close, c.Volume)
	}
	return b.String()
}

func FormatPositions(positions []mt5.Position) string {
	if len(positions) == 0 {
		return "📭 Открытых позиций нет"
	}
	var b strings.Builder
	b.WriteString("📊 Открытые позиции:\n")
	for _, p := range positions {
		fmt.Fprintf(&b, "- #%d %s [%s] vol=%.2f @ %g sl=%g tp=%g profit=%.2f\n",
			p.Ticket, p.Symbol, strings.ToUpper(p.Type.String()), p.Volume, p.PriceOpen, p.StopLoss, p.TakeProfit, p.Profit)
	}
	return b.String()
}

// Log — заглушка без Telegram: всё пишет в лог.
type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log               { return &Log{log: log.Named("notify")} }
func (l *Log) Send(msg string)                  { l.log.Info(msg) }
func (l *Log) Sendf(format string, args ...any) { l.log.Info(fmt.Sprintf(format, args...)) }
