// Package api 提供认证服务 HTTP 接口配置
package api

import (
	"fmt"
	"time"

	"github.com/weisyn/absacc/pkg/types"
)

// APIOptions API服务配置选项
type APIOptions struct {
	HTTP HTTPConfig `json:"http"`
}

// HTTPConfig HTTP API配置
type HTTPConfig struct {
	Enabled bool   `json:"enabled"` // 总开关
	Host    string `json:"host"`    // 监听地址
	Port    int    `json:"port"`    // 监听端口

	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`

	MaxRequestSize int  `json:"max_request_size"` // 最大请求体(字节)
	EnableMetrics  bool `json:"enable_metrics"`   // 是否暴露 /metrics

	ReadRateLimit  int `json:"read_rate_limit"`  // 查询接口 QPS，0 表示不限流
	WriteRateLimit int `json:"write_rate_limit"` // 变更接口 QPS，0 表示不限流
}

// Addr 监听地址 host:port
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// Config API配置实现
type Config struct {
	options *APIOptions
}

// New 创建API配置，userConfig 为 *types.UserAPIConfig 或 nil
func New(userConfig interface{}) *Config {
	options := createDefaultAPIOptions()
	if cfg, ok := userConfig.(*types.UserAPIConfig); ok && cfg != nil {
		if cfg.HTTPEnabled != nil {
			options.HTTP.Enabled = *cfg.HTTPEnabled
		}
		if cfg.HTTPHost != nil {
			options.HTTP.Host = *cfg.HTTPHost
		}
		if cfg.HTTPPort != nil {
			options.HTTP.Port = *cfg.HTTPPort
		}
	}
	return &Config{options: options}
}

func createDefaultAPIOptions() *APIOptions {
	return &APIOptions{
		HTTP: HTTPConfig{
			Enabled:        defaultHTTPEnabled,
			Host:           defaultHTTPHost,
			Port:           defaultHTTPPort,
			ReadTimeout:    defaultHTTPReadTimeout,
			WriteTimeout:   defaultHTTPWriteTimeout,
			MaxRequestSize: defaultMaxRequestSize,
			EnableMetrics:  defaultEnableMetrics,
			ReadRateLimit:  defaultReadRateLimit,
			WriteRateLimit: defaultWriteRateLimit,
		},
	}
}

// GetOptions 获取API配置选项
func (c *Config) GetOptions() *APIOptions {
	return c.options
}
