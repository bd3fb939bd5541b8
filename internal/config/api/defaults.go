package api

import "time"

const (
	defaultHTTPEnabled = true
	defaultHTTPHost    = "127.0.0.1"
	defaultHTTPPort    = 8686

	defaultHTTPReadTimeout  = 15 * time.Second
	defaultHTTPWriteTimeout = 15 * time.Second

	defaultMaxRequestSize = 1 * 1024 * 1024

	defaultEnableMetrics = true

	// 每个客户端 IP 的每秒请求数
	defaultReadRateLimit  = 100
	defaultWriteRateLimit = 20
)
