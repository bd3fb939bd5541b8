// Package http 提供账户认证服务的 HTTP 接口
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/weisyn/absacc/internal/api/http/handlers"
	"github.com/weisyn/absacc/internal/api/http/middleware"
	apiconfig "github.com/weisyn/absacc/internal/config/api"
	"github.com/weisyn/absacc/pkg/interfaces/authn"
	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/storage"
)

// RouterConfig 路由依赖
type RouterConfig struct {
	Options  apiconfig.HTTPConfig
	Service  authn.AccountService
	Store    storage.BadgerStore // 可为 nil，就绪探测随之跳过
	Logger   log.Logger
	Registry prometheus.Registerer
	Gatherer prometheus.Gatherer
}

// NewRouter 创建路由引擎
//
// 中间件顺序：请求ID -> 访问日志 -> 指标 -> 请求体限制 -> 限流 -> 错误映射
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(cfg.Logger))
	if cfg.Registry != nil {
		router.Use(middleware.NewMetrics(cfg.Registry).Middleware())
	}
	router.Use(middleware.BodyLimit(int64(cfg.Options.MaxRequestSize)))
	router.Use(middleware.NewRateLimit(cfg.Options.ReadRateLimit, cfg.Options.WriteRateLimit).Middleware())
	router.Use(middleware.ErrorHandler())

	handlers.NewHealthHandler(cfg.Store).RegisterRoutes(router)
	if cfg.Options.EnableMetrics && cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/v1")
	handlers.NewAccountHandlers(cfg.Service, cfg.Logger).RegisterRoutes(v1)
	return router
}

// Server HTTP服务器
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	options    apiconfig.HTTPConfig
	logger     log.Logger
}

// ServerParams 服务器依赖
type ServerParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Options   *apiconfig.APIOptions
	Service   authn.AccountService
	Store     storage.BadgerStore `optional:"true"`
	Logger    log.Logger
}

// NewServer 创建HTTP服务器并注册生命周期钩子
//
// HTTP 关闭时服务器仍会被构建，只是不监听端口。
func NewServer(params ServerParams) *Server {
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = io.Discard

	opts := params.Options.HTTP
	s := &Server{
		router: NewRouter(RouterConfig{
			Options:  opts,
			Service:  params.Service,
			Store:    params.Store,
			Logger:   params.Logger,
			Registry: prometheus.DefaultRegisterer,
			Gatherer: prometheus.DefaultGatherer,
		}),
		options: opts,
		logger:  params.Logger,
	}
	s.httpServer = &http.Server{
		Addr:         opts.Addr(),
		Handler:      s.router,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}

	params.Lifecycle.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.Stop,
	})
	return s
}

// Handler 返回路由处理器
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start 启动监听，端口占用等错误同步返回
func (s *Server) Start(context.Context) error {
	if !s.options.Enabled {
		s.logger.Info("HTTP服务已禁用")
		return nil
	}
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("HTTP服务监听 %s 失败: %w", s.httpServer.Addr, err)
	}
	s.logger.Infof("HTTP服务已启动: http://%s", ln.Addr())

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("HTTP服务异常退出: %v", err)
		}
	}()
	return nil
}

// Stop 优雅关闭
func (s *Server) Stop(ctx context.Context) error {
	if !s.options.Enabled {
		return nil
	}
	s.logger.Info("正在关闭HTTP服务")
	return s.httpServer.Shutdown(ctx)
}
