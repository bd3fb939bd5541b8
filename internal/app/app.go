// Package app 组装并运行认证服务
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"
)

// EnvConfigPath 配置文件路径环境变量，未通过参数指定时读取
const EnvConfigPath = "ABSACC_CONFIG_PATH"

// 停止超时，给 BadgerDB 留出落盘时间
const stopTimeout = 30 * time.Second

// App 认证服务的对外接口
type App interface {
	// Stop 停止应用
	Stop() error

	// Wait 阻塞直到收到退出信号，随后停止应用
	Wait()
}

// internalApp 应用的内部实现
type internalApp struct {
	bootstrap *Bootstrap
}

// Stop 停止应用
func (a *internalApp) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return a.bootstrap.StopApp(ctx)
}

// Wait 等待应用收到退出信号
func (a *internalApp) Wait() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signals
	fmt.Fprintf(os.Stderr, "收到信号 %v，正在退出\n", sig)

	if err := a.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "停止应用时出错: %v\n", err)
	}
}

// Start 装配并启动应用
func Start(appOptions ...Option) (App, error) {
	opts := newOptions(appOptions...)

	appConfig, err := resolveAppConfig(opts)
	if err != nil {
		return nil, err
	}
	opts.appConfig = appConfig
	if err := createDataDirectories(appConfig); err != nil {
		return nil, err
	}

	b := NewBootstrap(opts)
	b.Build()
	ctx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel()
	if err := b.StartApp(ctx); err != nil {
		return nil, err
	}
	return &internalApp{bootstrap: b}, nil
}
