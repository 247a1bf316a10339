//go:build !production

package session

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/codenames-arena/internal/game"
	"github.com/palemoky/codenames-arena/internal/game/rule"
)

// Published 一次广播记录
type Published struct {
	RoomCode string
	State    *game.GameState
	Events   []rule.Event
}

// RecordingPublisher 记录所有广播，测试用
type RecordingPublisher struct {
	mu     sync.Mutex
	calls  []Published
	closed []string
}

func (p *RecordingPublisher) Publish(roomCode string, state *game.GameState, events []rule.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, Published{RoomCode: roomCode, State: state, Events: events})
}

func (p *RecordingPublisher) CloseRoom(roomCode string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = append(p.closed, roomCode)
}

// Calls 已记录的广播
func (p *RecordingPublisher) Calls() []Published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Published(nil), p.calls...)
}

// Closed 已关闭的房间
func (p *RecordingPublisher) Closed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.closed...)
}

// Events 所有广播中的事件类型
func (p *RecordingPublisher) Events() []rule.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var types []rule.EventType
	for _, c := range p.calls {
		for _, ev := range c.Events {
			types = append(types, ev.Type)
		}
	}
	return types
}

// MockTimerSync 计时器 mock
type MockTimerSync struct {
	mock.Mock
}

func (m *MockTimerSync) Sync(roomCode string, state *game.GameState) {
	m.Called(roomCode, state)
}

func (m *MockTimerSync) Cancel(roomCode string) {
	m.Called(roomCode)
}

// MockResultRecorder 对局结果记录 mock
type MockResultRecorder struct {
	mock.Mock
}

func (m *MockResultRecorder) RecordGame(ctx context.Context, state *game.GameState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}
