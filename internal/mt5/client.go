package mt5

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"go.uber.org/zap"
)

var ErrNotConnected = errors.New("terminal session is not open")

// Client — обёртка над терминалом: переводит удобные аргументы в запросы
// платформы, вызывает её и приводит ответ к простым структурам.
type Client struct {
	accountID int64
	password  string
	server    string
	path      string

	timeframes map[string]Timeframe

	platform Platform
	log      *zap.Logger

	mu      sync.RWMutex
	session Session
}

type Option func(*Client)

// WithServer задаёт торговый сервер брокера для initialize.
func WithServer(server string) Option {
	return func(c *Client) { c.server = server }
}

// WithTerminalPath задаёт путь к терминалу для initialize.
func WithTerminalPath(path string) Option {
	return func(c *Client) { c.path = path }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

func NewClient(platform Platform, accountID int64, password string, opts ...Option) *Client {
	c := &Client{
		accountID:  accountID,
		password:   password,
		timeframes: defaultTimeframes,
		platform:   platform,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("mt5")
	c.log.Debug("client created", zap.Bool("success", true), zap.Int64("account_id", accountID))
	return c
}

// Connect открывает сессию терминала. Одна попытка: при ошибке вызывается
// shutdown, ошибка логируется и возвращается. Повтор — на стороне вызывающего.
// Уже открытая сессия закрывается перед новой.
func (c *Client) Connect(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mt5.Connect")
	defer span.Finish()

	c.mu.Lock()
	prev := c.session
	c.session = nil
	c.mu.Unlock()
	if prev != nil {
		if err := prev.Close(ctx); err != nil {
			c.log.Warn("close previous session", zap.Error(err))
		}
	}

	s, err := c.platform.Open(ctx, Credentials{
		Login:    c.accountID,
		Password: c.password,
		Server:   c.server,
		Path:     c.path,
	})
	if err != nil {
		if s != nil {
			_ = s.Close(ctx)
		}
		c.setSession(nil)
		markFailed(span, err)
		c.log.Error("connect", zap.Bool("success", false), zap.Error(err))
		return err
	}

	c.setSession(s)
	c.log.Debug("connect", zap.Bool("success", true))
	return nil
}

// Disconnect закрывает сессию, если она есть. Повторный вызов безопасен.
func (c *Client) Disconnect(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mt5.Disconnect")
	defer span.Finish()

	c.mu.Lock()
	s := c.session
	c.session = nil
	c.mu.Unlock()

	var err error
	if s != nil {
		err = s.Close(ctx)
	}
	if err != nil {
		markFailed(span, err)
		c.log.Warn("disconnect", zap.Bool("success", false), zap.Error(err))
		return err
	}
	c.log.Debug("disconnect", zap.Bool("success", true))
	return nil
}

// Connected — сессия открыта и транспорт жив.
func (c *Client) Connected() bool {
	return c.Err() == nil
}

// Err — nil, если сессия пригодна, иначе ErrNotConnected с причиной.
func (c *Client) Err() error {
	c.mu.RLock()
	s := c.session
	c.mu.RUnlock()

	if s == nil {
		return ErrNotConnected
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	return nil
}

// Timeframe разрешает имя таймфрейма по таблице клиента без учёта регистра.
func (c *Client) Timeframe(name string) (Timeframe, error) {
	return lookupTimeframe(c.timeframes, name)
}

func (c *Client) setSession(s Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

// current возвращает открытую сессию. Оборванная сессия сбрасывается.
func (c *Client) current() (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, ErrNotConnected
	}
	if err := c.session.Err(); err != nil {
		c.session = nil
		c.log.Warn("session lost", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	return c.session, nil
}

func markFailed(span opentracing.Span, err error) {
	ext.Error.Set(span, true)
	span.SetTag("error.message", err.Error())
}
