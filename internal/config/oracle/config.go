// Package oracle 提供宿主链查询预言机配置
package oracle

import (
	"time"

	configtypes "github.com/weisyn/absacc/pkg/types"
)

// DKIM 信任锚来源
const (
	DkimSourceGRPC   = "grpc"
	DkimSourceRedis  = "redis"
	DkimSourceStatic = "static"
)

// OracleOptions 预言机配置选项
type OracleOptions struct {
	GRPCEndpoint string        `json:"grpc_endpoint"`
	Timeout      time.Duration `json:"timeout"`

	DkimSource string `json:"dkim_source"`
	RedisAddr  string `json:"redis_addr"`

	// DkimCacheTTL 为 0 时不缓存
	DkimCacheTTL time.Duration `json:"dkim_cache_ttl"`
}

// Config 预言机配置实现
type Config struct {
	options *OracleOptions
}

// New 创建预言机配置，userConfig 为 *types.UserOracleConfig 或 nil
func New(userConfig interface{}) *Config {
	options := &OracleOptions{
		GRPCEndpoint: defaultGRPCEndpoint,
		Timeout:      defaultTimeout,
		DkimSource:   defaultDkimSource,
		RedisAddr:    defaultRedisAddr,
		DkimCacheTTL: defaultDkimCacheTTL,
	}
	if cfg, ok := userConfig.(*configtypes.UserOracleConfig); ok && cfg != nil {
		if cfg.GRPCEndpoint != nil {
			options.GRPCEndpoint = *cfg.GRPCEndpoint
		}
		if cfg.TimeoutMs != nil && *cfg.TimeoutMs > 0 {
			options.Timeout = time.Duration(*cfg.TimeoutMs) * time.Millisecond
		}
		if cfg.DkimSource != nil {
			options.DkimSource = *cfg.DkimSource
		}
		if cfg.RedisAddr != nil {
			options.RedisAddr = *cfg.RedisAddr
		}
		if cfg.DkimCacheTTLSeconds != nil && *cfg.DkimCacheTTLSeconds >= 0 {
			options.DkimCacheTTL = time.Duration(*cfg.DkimCacheTTLSeconds) * time.Second
		}
	}
	return &Config{options: options}
}

// GetOptions 获取预言机配置选项
func (c *Config) GetOptions() *OracleOptions {
	return c.options
}
