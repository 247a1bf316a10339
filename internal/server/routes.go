package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/palemoky/codenames-arena/internal/protocol"
	"github.com/palemoky/codenames-arena/internal/protocol/convert"
)

// qrSize 二维码边长（像素）
const qrSize = 320

// Routes HTTP 路由
func (s *Server) Routes() http.Handler {
	mux := httprouter.New()

	mux.HandlerFunc(http.MethodGet, "/ws", s.handleWebSocket)
	mux.GET("/healthz", s.serveHealth)
	mux.GET("/version", s.serveVersion)
	mux.GET("/api/rooms", s.serveRooms)
	mux.GET("/api/rooms/:code/qr", s.serveRoomQR)
	mux.GET("/admin/config", s.requireAdmin(s.serveAdminConfig))
	mux.PUT("/admin/config", s.requireAdmin(s.updateAdminConfig))

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("写入响应失败", zap.Error(err))
	}
}

func (s *Server) serveHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK\n"))
}

func (s *Server) serveVersion(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version": Version,
		"uptime":  int64(time.Since(s.startedAt).Seconds()),
	})
}

// serveRooms 房间列表，与 list_rooms 消息相同
func (s *Server) serveRooms(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, protocol.RoomsListPayload{
		Rooms: convert.RoomListItems(s.sessions.ListRooms()),
	})
}

// serveRoomQR 房间加入链接的二维码
func (s *Server) serveRoomQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := strings.ToUpper(ps.ByName("code"))
	if _, err := s.sessions.Snapshot(code); err != nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	png, err := qrcode.Encode(s.joinURL(r, code), qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// joinURL 优先使用配置的公开地址，否则根据请求推导
func (s *Server) joinURL(r *http.Request, code string) string {
	base := strings.TrimSuffix(s.config.Server.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}
	return base + "/?room=" + code
}
