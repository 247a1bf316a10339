package server

import "github.com/palemoky/codenames-arena/internal/protocol"

// GetOnlineCount 当前连接数
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// snapshotClients 复制连接列表，发送在锁外进行
func (s *Server) snapshotClients(filter func(*Client) bool) []*Client {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	out := make([]*Client, 0, len(s.clients))
	for _, c := range s.clients {
		if filter == nil || filter(c) {
			out = append(out, c)
		}
	}
	return out
}

// Broadcast 发送给所有连接，用于停机通知
func (s *Server) Broadcast(msg *protocol.Message) {
	for _, c := range s.snapshotClients(nil) {
		c.SendMessage(msg)
	}
}

// BroadcastToLobby 发送给尚未进入房间的连接，例如房间列表刷新
func (s *Server) BroadcastToLobby(msg *protocol.Message) {
	inLobby := func(c *Client) bool { return c.GetRoom() == "" }
	for _, c := range s.snapshotClients(inLobby) {
		c.SendMessage(msg)
	}
}
