// Package api 汇总对外接口模块
package api

import (
	"go.uber.org/fx"

	"github.com/weisyn/absacc/internal/api/http"
)

// Module 返回API模块
func Module() fx.Option {
	return fx.Module("api",
		http.Module(),
	)
}
