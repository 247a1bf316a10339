package session

import (
	"sync"
	"time"
)

// seat 玩家座位的在线信息（用于断线重连）
type seat struct {
	RoomCode       string
	Online         bool
	DisconnectedAt time.Time // 断线时间
}

// Presence 记录玩家在线状态。断线不改变对局状态，只记录时间，
// 超过保留时间仍未重连的座位由 Manager 释放。
type Presence struct {
	seats map[string]*seat // playerID -> seat
	now   func() time.Time
	mu    sync.RWMutex
}

// NewPresence 创建在线状态表
func NewPresence(now func() time.Time) *Presence {
	if now == nil {
		now = time.Now
	}
	return &Presence{
		seats: make(map[string]*seat),
		now:   now,
	}
}

// SetOnline 设置玩家上线
func (p *Presence) SetOnline(roomCode, playerID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seats[playerID] = &seat{RoomCode: roomCode, Online: true}
}

// SetOffline 设置玩家离线
func (p *Presence) SetOffline(playerID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.seats[playerID]; ok && s.Online {
		s.Online = false
		s.DisconnectedAt = p.now()
	}
}

// IsOnline 检查玩家是否在线
func (p *Presence) IsOnline(playerID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.seats[playerID]
	return ok && s.Online
}

// Remove 删除玩家记录
func (p *Presence) Remove(playerID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.seats, playerID)
}

// DropRoom 删除房间内所有玩家的记录
func (p *Presence) DropRoom(roomCode string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, s := range p.seats {
		if s.RoomCode == roomCode {
			delete(p.seats, id)
		}
	}
}

// Expired 离线超过 grace 的玩家，返回 playerID -> roomCode
func (p *Presence) Expired(grace time.Duration) map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	now := p.now()
	expired := make(map[string]string)
	for id, s := range p.seats {
		if !s.Online && now.Sub(s.DisconnectedAt) > grace {
			expired[id] = s.RoomCode
		}
	}
	return expired
}
