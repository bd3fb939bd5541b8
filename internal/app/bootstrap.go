package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/weisyn/absacc/internal/api"
	config "github.com/weisyn/absacc/internal/config"
	"github.com/weisyn/absacc/internal/core/authn"
	"github.com/weisyn/absacc/internal/core/authn/oracle"
	"github.com/weisyn/absacc/internal/core/infrastructure/crypto"
	"github.com/weisyn/absacc/internal/core/infrastructure/event"
	log "github.com/weisyn/absacc/internal/core/infrastructure/log"
	"github.com/weisyn/absacc/internal/core/infrastructure/storage"
	configif "github.com/weisyn/absacc/pkg/interfaces/config"
	logif "github.com/weisyn/absacc/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/absacc/pkg/types"
)

// Bootstrap 应用引导程序
//
// 分层装配：
//
//	基础设施层  config / log / crypto / storage / event
//	业务层      oracle / authn
//	应用层      api（可关闭）
type Bootstrap struct {
	opts  *options
	fxApp *fx.App
}

// NewBootstrap 创建引导程序
func NewBootstrap(opts *options) *Bootstrap {
	return &Bootstrap{opts: opts}
}

// SetupInfrastructureLayer 设置基础设施层模块
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		fx.Provide(func() configif.AppOptions { return b.opts }),
		config.Module(),
		log.Module(),
		crypto.Module(),
		storage.Module(),
		event.Module(),
	}
}

// SetupBusinessLayer 设置业务层模块
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	return []fx.Option{
		oracle.Module(),
		authn.Module(),
	}
}

// SetupApplicationLayer 设置应用层模块
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	if !b.opts.enableAPI {
		return nil
	}
	return []fx.Option{api.Module()}
}

// Build 组装fx应用，fx 自身的装配日志转给 zap
func (b *Bootstrap) Build(extra ...fx.Option) *fx.App {
	var all []fx.Option
	all = append(all, b.SetupInfrastructureLayer()...)
	all = append(all, b.SetupBusinessLayer()...)
	all = append(all, b.SetupApplicationLayer()...)
	all = append(all, extra...)
	all = append(all, fx.WithLogger(func(logger logif.Logger) fxevent.Logger {
		zl := logger.GetZapLogger()
		if zl == nil {
			zl = zap.NewNop()
		}
		return &fxevent.ZapLogger{Logger: zl.Named("fx").WithOptions(zap.IncreaseLevel(zap.WarnLevel))}
	}))

	b.fxApp = fx.New(all...)
	return b.fxApp
}

// StartApp 启动已组装的应用
func (b *Bootstrap) StartApp(ctx context.Context) error {
	if b.fxApp == nil {
		return fmt.Errorf("应用尚未组装")
	}
	if err := b.fxApp.Err(); err != nil {
		return fmt.Errorf("依赖装配失败: %w", err)
	}
	return b.fxApp.Start(ctx)
}

// StopApp 停止应用
func (b *Bootstrap) StopApp(ctx context.Context) error {
	if b.fxApp == nil {
		return nil
	}
	return b.fxApp.Stop(ctx)
}

// resolveAppConfig 确定应用配置：显式配置 > 配置文件 > 默认值
func resolveAppConfig(opts *options) (*types.AppConfig, error) {
	if opts.appConfig != nil {
		return opts.appConfig, nil
	}
	path := opts.configFilePath
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		return &types.AppConfig{}, nil
	}
	return config.LoadAppConfig(path)
}

// createDataDirectories 创建数据目录与日志目录
func createDataDirectories(appConfig *types.AppConfig) error {
	var dirs []string
	if appConfig.DataDir != nil {
		dirs = append(dirs, *appConfig.DataDir)
	}
	if appConfig.Log != nil && appConfig.Log.FilePath != nil {
		dirs = append(dirs, filepath.Dir(*appConfig.Log.FilePath))
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建目录 %s 失败: %w", dir, err)
		}
	}
	return nil
}
