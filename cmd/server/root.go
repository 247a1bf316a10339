package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/palemoky/codenames-arena/internal/config"
	"github.com/palemoky/codenames-arena/internal/logger"
	"github.com/palemoky/codenames-arena/internal/server"
)

// options 命令行参数，非零值覆盖配置文件
type options struct {
	configPath  string
	host        string
	port        int
	redisAddr   string
	tokenSecret string
	adminToken  string
	publicURL   string
	logLevel    string
	development bool
}

func newCmd(opts *options) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CODENAMES")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "codenames-server",
		Short:   "Codenames 多人联机房间服务器",
		Args:    cobra.NoArgs,
		Version: server.Version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&opts.configPath, "config", "c", "configs/config.yaml", "配置文件路径 (env: CODENAMES_CONFIG)")
	fs.StringVar(&opts.host, "host", "", "监听地址 (env: CODENAMES_HOST)")
	fs.IntVarP(&opts.port, "port", "p", 0, "监听端口 (env: CODENAMES_PORT)")
	fs.StringVar(&opts.redisAddr, "redis-addr", "", "Redis 地址，为空时不启用持久化 (env: CODENAMES_REDIS_ADDR)")
	fs.StringVar(&opts.tokenSecret, "token-secret", "", "会话令牌签名密钥 (env: CODENAMES_TOKEN_SECRET)")
	fs.StringVar(&opts.adminToken, "admin-token", "", "管理接口令牌 (env: CODENAMES_ADMIN_TOKEN)")
	fs.StringVar(&opts.publicURL, "public-url", "", "分享链接使用的公开地址 (env: CODENAMES_PUBLIC_URL)")
	fs.StringVar(&opts.logLevel, "log-level", "", "日志级别 (env: CODENAMES_LOG_LEVEL)")
	fs.BoolVar(&opts.development, "dev", false, "开发模式日志 (env: CODENAMES_DEV)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetVersionTemplate("codenames-server {{.Version}}\n")
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

// load 读取配置文件并应用命令行覆盖，文件不存在时使用默认配置
func (o *options) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg = config.Default()
	case err != nil:
		return nil, fmt.Errorf("加载配置文件失败: %w", err)
	}

	o.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置无效: %w", err)
	}
	return cfg, nil
}

func (o *options) apply(cfg *config.Config) {
	if o.host != "" {
		cfg.Server.Host = o.host
	}
	if o.port != 0 {
		cfg.Server.Port = o.port
	}
	if o.redisAddr != "" {
		cfg.Redis.Addr = o.redisAddr
	}
	if o.tokenSecret != "" {
		cfg.Security.TokenSecret = o.tokenSecret
	}
	if o.adminToken != "" {
		cfg.Security.AdminToken = o.adminToken
	}
	if o.publicURL != "" {
		cfg.Server.PublicURL = o.publicURL
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.development {
		cfg.Log.Development = true
	}
}

func run(cfg *config.Config) error {
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		return err
	}
	defer logger.Sync()

	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("创建服务器失败: %w", err)
	}

	// SIGINT 立即关闭，SIGTERM 等待对局结束
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		zap.L().Info("🛑 收到停止信号", zap.String("signal", sig.String()))
		if sig == syscall.SIGTERM {
			srv.GracefulShutdown(cfg.Game.ShutdownTimeoutDuration())
			return
		}
		srv.Shutdown(context.Background())
	}()

	zap.L().Info("🕵️ Codenames 服务器启动中...")
	return srv.Start()
}
