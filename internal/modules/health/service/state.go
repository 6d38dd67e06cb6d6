package service

import (
	"sync/atomic"
	"time"
)

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	connectedUnix atomic.Int64 // unix seconds, 0 — сессии нет
	check         atomic.Pointer[func() error]
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }

// Ready — выставлен SetReady и проверка сессии (если задана) проходит.
func (s *State) Ready() bool { return s.ready.Load() && s.CheckErr() == nil }

// SetCheck задаёт проверку живости сессии терминала.
func (s *State) SetCheck(fn func() error) { s.check.Store(&fn) }

func (s *State) CheckErr() error {
	fn := s.check.Load()
	if fn == nil || *fn == nil {
		return nil
	}
	return (*fn)()
}

// SetConnected отмечает открытие/закрытие сессии терминала.
func (s *State) SetConnected(v bool) {
	if v {
		s.connectedUnix.Store(time.Now().Unix())
		return
	}
	s.connectedUnix.Store(0)
}

func (s *State) ConnectedSince() time.Time {
	u := s.connectedUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
