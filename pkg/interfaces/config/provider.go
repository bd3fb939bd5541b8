// Package config provides configuration provider interfaces.
package config

import (
	apiconfig "github.com/weisyn/absacc/internal/config/api"
	authnconfig "github.com/weisyn/absacc/internal/config/authn"
	eventconfig "github.com/weisyn/absacc/internal/config/event"
	logconfig "github.com/weisyn/absacc/internal/config/log"
	oracleconfig "github.com/weisyn/absacc/internal/config/oracle"
	badgerconfig "github.com/weisyn/absacc/internal/config/storage/badger"
)

// Provider 配置提供者接口
type Provider interface {
	// GetAPI 获取API服务配置
	GetAPI() *apiconfig.APIOptions

	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetEvent 获取事件配置
	GetEvent() *eventconfig.EventOptions

	// GetBadger 获取注册表存储配置
	GetBadger() *badgerconfig.BadgerOptions

	// GetAuthn 获取认证引擎配置
	GetAuthn() *authnconfig.AuthnOptions

	// GetOracle 获取预言机配置
	GetOracle() *oracleconfig.OracleOptions

	// GetEnvironment 获取运行环境：dev | test | prod
	// 未配置时默认为 "prod"
	GetEnvironment() string

	// GetDataDir 获取数据根目录
	GetDataDir() string
}
