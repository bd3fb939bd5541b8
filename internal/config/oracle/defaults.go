package oracle

import "time"

const (
	defaultGRPCEndpoint = "127.0.0.1:9090"
	defaultTimeout      = 5 * time.Second

	defaultDkimSource = DkimSourceGRPC
	defaultRedisAddr  = "127.0.0.1:6379"

	// defaultDkimCacheTTL 信任锚可能被撤销，默认不缓存
	defaultDkimCacheTTL time.Duration = 0
)
