// Package authn 提供认证引擎配置
package authn

import (
	configtypes "github.com/weisyn/absacc/pkg/types"
)

// JWT 校验模式
const (
	JWTModeLocal  = "local"  // 本地 RSA 校验（内置 audience 公钥表）
	JWTModeOracle = "oracle" // 委托宿主链 JWK 模块校验
)

// AuthnOptions 认证引擎配置选项
type AuthnOptions struct {
	// Bech32Prefix sign-arbitrary 信封中签名者地址前缀
	Bech32Prefix string `json:"bech32_prefix"`

	// AverageBlockTime 平均出块间隔（秒），JWT nbf 宽限
	AverageBlockTime uint64 `json:"average_block_time"`

	// JWTMode local | oracle
	JWTMode string `json:"jwt_mode"`

	// JWTKeys audience -> "modulus_b64url;exponent_b64url"
	JWTKeys map[string]string `json:"jwt_keys"`

	// MaxEmitBytes Emit 数据上限
	MaxEmitBytes int `json:"max_emit_bytes"`
}

// Config 认证引擎配置实现
type Config struct {
	options *AuthnOptions
}

// New 创建认证引擎配置，userConfig 为 *types.UserAuthnConfig 或 nil
func New(userConfig interface{}) *Config {
	options := createDefaultAuthnOptions()
	if userConfig != nil {
		applyUserAuthnConfig(options, userConfig)
	}
	return &Config{options: options}
}

func createDefaultAuthnOptions() *AuthnOptions {
	keys := make(map[string]string, len(defaultJWTKeys))
	for aud, key := range defaultJWTKeys {
		keys[aud] = key
	}
	return &AuthnOptions{
		Bech32Prefix:     defaultBech32Prefix,
		AverageBlockTime: defaultAverageBlockTime,
		JWTMode:          defaultJWTMode,
		JWTKeys:          keys,
		MaxEmitBytes:     defaultMaxEmitBytes,
	}
}

func applyUserAuthnConfig(options *AuthnOptions, userConfig interface{}) {
	cfg, ok := userConfig.(*configtypes.UserAuthnConfig)
	if !ok || cfg == nil {
		return
	}
	if cfg.Bech32Prefix != nil && *cfg.Bech32Prefix != "" {
		options.Bech32Prefix = *cfg.Bech32Prefix
	}
	if cfg.AverageBlockTime != nil {
		options.AverageBlockTime = *cfg.AverageBlockTime
	}
	if cfg.JWTMode != nil {
		options.JWTMode = *cfg.JWTMode
	}
	// 用户表与内置表合并，同名 audience 以用户配置为准
	for aud, key := range cfg.JWTKeys {
		options.JWTKeys[aud] = key
	}
	if cfg.MaxEmitBytes != nil && *cfg.MaxEmitBytes > 0 {
		options.MaxEmitBytes = *cfg.MaxEmitBytes
	}
}

// GetOptions 获取认证引擎配置选项
func (c *Config) GetOptions() *AuthnOptions {
	return c.options
}

// IsOracleJWT 是否委托预言机校验 JWT
func (c *Config) IsOracleJWT() bool {
	return c.options.JWTMode == JWTModeOracle
}
