package bridge

import (
	"context"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"mt5_api/internal/mt5"
)

// Config — параметры подключения к мосту, который работает рядом с терминалом
// и отдаёт его API по WebSocket.
type Config struct {
	URL         string
	Token       string
	DialTimeout time.Duration
	CallTimeout time.Duration
	// InitTimeout передаётся в initialize как timeout терминала.
	InitTimeout time.Duration
}

// Platform реализует mt5.Platform поверх моста. Одно WebSocket-соединение —
// одна сессия терминала.
type Platform struct {
	cfg    Config
	dialer *websocket.Dialer
	log    *zap.Logger
}

var _ mt5.Platform = (*Platform)(nil)

func NewPlatform(cfg Config, log *zap.Logger) *Platform {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Platform{
		cfg:    cfg,
		dialer: &websocket.Dialer{HandshakeTimeout: cfg.DialTimeout},
		log:    log.Named("bridge"),
	}
}

// Open подключается к мосту и вызывает initialize. Если соединение есть,
// а initialize не прошёл, сессия возвращается вместе с ошибкой.
func (p *Platform) Open(ctx context.Context, creds mt5.Credentials) (mt5.Session, error) {
	header := http.Header{}
	if p.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+p.cfg.Token)
	}

	dialCtx, cancel := context.WithTimeout(ctx, p.cfg.DialTimeout)
	defer cancel()

	conn, resp, err := p.dialer.DialContext(dialCtx, p.cfg.URL, header)
	if err != nil {
		if resp != nil {
			return nil, errors.Wrapf(err, "dial %s: http %d", p.cfg.URL, resp.StatusCode)
		}
		return nil, errors.Wrapf(err, "dial %s", p.cfg.URL)
	}
	p.log.Debug("connected", zap.String("url", p.cfg.URL))

	s := newSession(conn, p.cfg.CallTimeout, p.log)

	raw, err := s.roundTrip(ctx, "initialize", initializeParams{
		Login:    creds.Login,
		Password: creds.Password,
		Server:   creds.Server,
		Path:     creds.Path,
		Timeout:  p.cfg.InitTimeout.Milliseconds(),
	})
	if err != nil {
		return s, err
	}

	var ok bool
	if err := sonic.Unmarshal(raw, &ok); err != nil {
		return s, errors.Wrap(err, "decode initialize")
	}
	if !ok {
		return s, s.lastError(ctx, "initialize")
	}
	return s, nil
}
