package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/palemoky/codenames-arena/internal/server/storage"
)

const (
	adminTokenHeader = "X-Admin-Token"
	maxAdminBody     = 1 << 20
	adminTimeout     = 3 * time.Second
)

// requireAdmin 校验管理令牌，未配置令牌时接口不可用
func (s *Server) requireAdmin(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		want := s.config.Security.AdminToken
		if want == "" {
			http.NotFound(w, r)
			return
		}
		got := r.Header.Get(adminTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r, ps)
	}
}

// currentAdminConfig 当前生效的管理配置
func (s *Server) currentAdminConfig() *storage.AdminConfig {
	d := s.sessions.Defaults()
	cfg := &storage.AdminConfig{
		SpymasterTime: d.TimedMode.SpymasterTime,
		GuesserTime:   d.TimedMode.GuesserTime,
		CardSplit:     d.CardSplit,
		MaxPlayers:    d.MaxPlayers,
		TauntCooldown: int(s.sessions.TauntCooldown() / time.Second),
	}
	return cfg
}

func (s *Server) serveAdminConfig(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cfg := s.currentAdminConfig()
	if s.redisStore != nil {
		ctx, cancel := context.WithTimeout(r.Context(), adminTimeout)
		defer cancel()
		stored, err := s.redisStore.LoadAdminConfig(ctx)
		if err != nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
		if stored != nil {
			cfg = stored
		}
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) updateAdminConfig(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var cfg storage.AdminConfig
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAdminBody)).Decode(&cfg); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if !cfg.Validate() {
		http.Error(w, "invalid config", http.StatusBadRequest)
		return
	}

	if s.redisStore != nil {
		ctx, cancel := context.WithTimeout(r.Context(), adminTimeout)
		defer cancel()
		if err := s.redisStore.SaveAdminConfig(ctx, &cfg); err != nil {
			zap.L().Error("保存管理配置失败", zap.Error(err))
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	s.applyAdminConfig(&cfg)
	writeJSON(w, http.StatusOK, &cfg)
}

// loadAdminConfig 启动时加载已保存的管理配置
func (s *Server) loadAdminConfig() error {
	if s.redisStore == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()
	cfg, err := s.redisStore.LoadAdminConfig(ctx)
	if err != nil {
		return err
	}
	if cfg == nil {
		return nil
	}
	if !cfg.Validate() {
		zap.L().Warn("已保存的管理配置无效，忽略")
		return nil
	}
	s.applyAdminConfig(cfg)
	return nil
}

// applyAdminConfig 应用到之后创建的房间
func (s *Server) applyAdminConfig(cfg *storage.AdminConfig) {
	s.sessions.SetDefaults(cfg.RoomSettings(), time.Duration(cfg.TauntCooldown)*time.Second)
	s.engine.SetWords(cfg.Words)

	zap.L().Info("⚙️ 管理配置已生效",
		zap.Int("words", len(cfg.Words)),
		zap.Int("spymaster_time", cfg.SpymasterTime),
		zap.Int("guesser_time", cfg.GuesserTime),
		zap.Int("max_players", cfg.MaxPlayers))
}
