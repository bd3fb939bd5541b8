package config

import "github.com/weisyn/absacc/pkg/types"

// AppOptions 应用配置选项，由应用层提供给配置模块
type AppOptions interface {
	// GetAppConfig 获取应用配置
	GetAppConfig() *types.AppConfig
}
