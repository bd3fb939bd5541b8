package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	apitypes "github.com/weisyn/absacc/internal/api/http/types"
)

// idleLimiterTTL 超过该时间未使用的客户端限流器会被回收
const idleLimiterTTL = 10 * time.Minute

// RateLimit 按客户端 IP 的令牌桶限流中间件
// 查询接口（GET）与变更接口（其余方法）使用不同额度，额度为 0 表示不限流
type RateLimit struct {
	limiters   map[string]*rateLimiter
	mu         sync.Mutex
	readLimit  int
	writeLimit int
	lastSweep  time.Time
	now        func() time.Time
}

// rateLimiter 简单的令牌桶限流器
type rateLimiter struct {
	tokens     int
	maxTokens  int
	lastRefill time.Time
	lastSeen   time.Time
}

// NewRateLimit 创建限流中间件
func NewRateLimit(readLimit, writeLimit int) *RateLimit {
	return &RateLimit{
		limiters:   make(map[string]*rateLimiter),
		readLimit:  readLimit,
		writeLimit: writeLimit,
		now:        time.Now,
	}
}

// Middleware 返回Gin中间件
func (m *RateLimit) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, class := m.readLimit, "r"
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			limit, class = m.writeLimit, "w"
		}
		if limit <= 0 {
			c.Next()
			return
		}

		if !m.allow(class+"|"+c.ClientIP(), limit) {
			c.Header("Retry-After", "1")
			WriteError(c, http.StatusTooManyRequests,
				apitypes.NewErrorResponse(apitypes.ErrRateLimitExceeded, "request rate limit exceeded", map[string]interface{}{
					"limit": limit,
				}))
			return
		}
		c.Next()
	}
}

// allow 检查是否允许请求
func (m *RateLimit) allow(key string, limit int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	limiter, exists := m.limiters[key]
	if !exists {
		limiter = &rateLimiter{tokens: limit, maxTokens: limit, lastRefill: now}
		m.limiters[key] = limiter
	}
	limiter.lastSeen = now
	return limiter.consume(now)
}

// sweep 回收空闲限流器
func (m *RateLimit) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < idleLimiterTTL {
		return
	}
	for k, l := range m.limiters {
		if now.Sub(l.lastSeen) >= idleLimiterTTL {
			delete(m.limiters, k)
		}
	}
	m.lastSweep = now
}

// consume 消费一个令牌，每满一秒补满 maxTokens
func (r *rateLimiter) consume(now time.Time) bool {
	if now.Sub(r.lastRefill) >= time.Second {
		r.tokens = r.maxTokens
		r.lastRefill = now
	}
	if r.tokens > 0 {
		r.tokens--
		return true
	}
	return false
}
