package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apitypes "github.com/weisyn/absacc/internal/api/http/types"
	"github.com/weisyn/absacc/internal/app/version"
	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/storage"
)

// healthProbeTimeout 单个组件探测的超时
const healthProbeTimeout = 2 * time.Second

// HealthHandler 健康检查端点处理器
//
// 🏥 **Kubernetes风格健康检查**
//
//   - /health: 完整健康报告
//   - /health/live: 存活检查（进程是否响应）
//   - /health/ready: 就绪检查（认证器存储是否可读）
type HealthHandler struct {
	startTime time.Time
	store     storage.BadgerStore
}

// NewHealthHandler 创建健康检查处理器，store 为 nil 时跳过存储探测
func NewHealthHandler(store storage.BadgerStore) *HealthHandler {
	return &HealthHandler{startTime: time.Now(), store: store}
}

// RegisterRoutes 注册健康检查路由
func (h *HealthHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.GetHealth)
	r.GET("/health/live", h.GetLiveness)
	r.GET("/health/ready", h.GetReadiness)
}

// GetHealth 完整健康报告
func (h *HealthHandler) GetHealth(c *gin.Context) {
	storageStatus := h.checkStorage(c.Request.Context())
	status, readiness, code := "healthy", "ready", http.StatusOK
	if storageStatus != "ok" {
		status, readiness, code = "unhealthy", "not_ready", http.StatusServiceUnavailable
	}
	c.JSON(code, &apitypes.HealthResponse{
		Status:    status,
		Liveness:  "alive",
		Readiness: readiness,
		Version:   version.Version,
		Uptime:    time.Since(h.startTime).Truncate(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Components: map[string]interface{}{
			"storage": storageStatus,
		},
	})
}

// GetLiveness 存活检查
func (h *HealthHandler) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// GetReadiness 就绪检查
func (h *HealthHandler) GetReadiness(c *gin.Context) {
	if s := h.checkStorage(c.Request.Context()); s != "ok" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "storage": s})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// checkStorage 读取一个不存在的键，能返回即视为存储可用
func (h *HealthHandler) checkStorage(ctx context.Context) string {
	if h.store == nil {
		return "ok"
	}
	ctx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancel()
	if _, err := h.store.Exists(ctx, []byte("health/probe")); err != nil {
		return err.Error()
	}
	return "ok"
}
