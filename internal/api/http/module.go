package http

import (
	"go.uber.org/fx"
)

// Module 返回HTTP模块
func Module() fx.Option {
	return fx.Module("http",
		fx.Provide(NewServer),
		// 强制构建服务器，使生命周期钩子生效
		fx.Invoke(func(*Server) {}),
	)
}
