// Package types provides configuration type definitions.
package types

// AppConfig 应用程序根配置
// 只包含JSON配置文件解析所需的结构，不包含任何内部字段
// 默认值和完整配置结构在 internal/config/*/defaults.go 和 internal/config/*/config.go 中定义
type AppConfig struct {
	// 应用程序基本信息
	AppName *string `json:"app_name,omitempty"` // 应用名称
	DataDir *string `json:"data_dir,omitempty"` // 数据目录路径

	// Environment 运行环境：dev | test | prod
	Environment *string `json:"environment,omitempty"`

	// API服务配置
	API *UserAPIConfig `json:"api,omitempty"`

	// 存储配置
	Storage *UserStorageConfig `json:"storage,omitempty"`

	// 日志配置
	Log *UserLogConfig `json:"log,omitempty"`

	// 认证引擎配置 - 对应配置文件中的 authn 字段
	Authn *UserAuthnConfig `json:"authn,omitempty"`

	// 外部预言机配置 - 对应配置文件中的 oracle 字段
	Oracle *UserOracleConfig `json:"oracle,omitempty"`
}

// UserAPIConfig 用户API配置
type UserAPIConfig struct {
	HTTPEnabled *bool   `json:"http_enabled,omitempty"` // 是否启用HTTP服务（默认true）
	HTTPHost    *string `json:"http_host,omitempty"`    // HTTP监听地址
	HTTPPort    *int    `json:"http_port,omitempty"`    // HTTP监听端口
}

// UserStorageConfig 用户存储配置
type UserStorageConfig struct {
	DataRoot   *string `json:"data_root,omitempty"`   // 数据根目录（data_root）
	MemoryOnly *bool   `json:"memory_only,omitempty"` // 使用内存 BadgerDB（数据不持久化）
}

// UserLogConfig 用户日志配置
// 只包含JSON配置文件中实际出现的字段
type UserLogConfig struct {
	Level    *string `json:"level,omitempty"`     // 日志级别：debug, info, warn, error, fatal
	FilePath *string `json:"file_path,omitempty"` // 日志文件路径
}

// UserAuthnConfig 用户认证引擎配置
type UserAuthnConfig struct {
	// Bech32Prefix sign-arbitrary 信封中签名者地址的前缀（默认 xion）
	Bech32Prefix *string `json:"bech32_prefix,omitempty"`
	// AverageBlockTime 平均出块间隔（秒），作为 JWT nbf 宽限
	AverageBlockTime *uint64 `json:"average_block_time,omitempty"`
	// JWTMode local | oracle
	JWTMode *string `json:"jwt_mode,omitempty"`
	// JWTKeys audience -> "modulus_b64url;exponent_b64url"，覆盖内置表
	JWTKeys map[string]string `json:"jwt_keys,omitempty"`
	// MaxEmitBytes Emit 数据上限
	MaxEmitBytes *int `json:"max_emit_bytes,omitempty"`
}

// UserOracleConfig 用户预言机配置
type UserOracleConfig struct {
	// GRPCEndpoint 宿主链 gRPC 查询端点
	GRPCEndpoint *string `json:"grpc_endpoint,omitempty"`
	// TimeoutMs 单次调用超时
	TimeoutMs *int `json:"timeout_ms,omitempty"`
	// DkimSource grpc | redis
	DkimSource *string `json:"dkim_source,omitempty"`
	// RedisAddr Redis DKIM 注册表地址
	RedisAddr *string `json:"redis_addr,omitempty"`
	// DkimCacheTTLSeconds DKIM 查询缓存有效期，0 表示关闭
	DkimCacheTTLSeconds *int `json:"dkim_cache_ttl_seconds,omitempty"`
}
