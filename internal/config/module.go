// Package config 提供应用配置管理功能
package config

import (
	"github.com/weisyn/absacc/internal/config/api"
	"github.com/weisyn/absacc/internal/config/authn"
	"github.com/weisyn/absacc/internal/config/oracle"
	"github.com/weisyn/absacc/internal/config/storage/badger"
	"github.com/weisyn/absacc/pkg/interfaces/config"
	"github.com/weisyn/absacc/pkg/types"
	"go.uber.org/fx"
)

// ConfigParams 定义配置模块的依赖参数
type ConfigParams struct {
	fx.In

	AppOptions config.AppOptions `optional:"true"`
}

// ConfigOutput 定义配置模块的输出结构
type ConfigOutput struct {
	fx.Out

	Provider config.Provider
}

// Module 返回配置模块
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			ProvideConfigServices,
			func(provider config.Provider) *api.APIOptions {
				return provider.GetAPI()
			},
			func(provider config.Provider) *authn.AuthnOptions {
				return provider.GetAuthn()
			},
			func(provider config.Provider) *oracle.OracleOptions {
				return provider.GetOracle()
			},
			func(provider config.Provider) *badger.BadgerOptions {
				return provider.GetBadger()
			},
		),
	)
}

// ProvideConfigServices 提供配置服务
func ProvideConfigServices(params ConfigParams) (ConfigOutput, error) {
	var appConfig *types.AppConfig
	if params.AppOptions != nil {
		appConfig = params.AppOptions.GetAppConfig()
	}
	return ConfigOutput{Provider: NewProvider(appConfig)}, nil
}
