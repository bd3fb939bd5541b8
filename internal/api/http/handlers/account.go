// Package handlers 提供HTTP API处理器
//
// account.go 将账户宿主入口暴露为 REST 端点，所有错误经 c.Error 交给错误中间件统一映射。
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/absacc/internal/api/http/middleware"
	apitypes "github.com/weisyn/absacc/internal/api/http/types"
	"github.com/weisyn/absacc/pkg/interfaces/authn"
	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/absacc/pkg/types"
)

// AccountHandlers 账户认证API处理器
type AccountHandlers struct {
	service authn.AccountService
	logger  log.Logger
}

// NewAccountHandlers 创建账户认证API处理器
func NewAccountHandlers(service authn.AccountService, logger log.Logger) *AccountHandlers {
	return &AccountHandlers{service: service, logger: logger}
}

// RegisterRoutes 注册账户路由
//
//	POST   /accounts/:address/instantiate
//	POST   /accounts/:address/auth-methods
//	DELETE /accounts/:address/auth-methods/:id?sender=
//	POST   /accounts/:address/before-tx
//	POST   /accounts/:address/after-tx
//	POST   /accounts/:address/emit
//	GET    /accounts/:address/authenticators
//	GET    /accounts/:address/authenticators/:id
func (h *AccountHandlers) RegisterRoutes(r *gin.RouterGroup) {
	accounts := r.Group("/accounts/:address")
	{
		accounts.POST("/instantiate", h.Instantiate)
		accounts.POST("/auth-methods", h.AddAuthMethod)
		accounts.DELETE("/auth-methods/:id", h.RemoveAuthMethod)
		accounts.POST("/before-tx", h.BeforeTx)
		accounts.POST("/after-tx", h.AfterTx)
		accounts.POST("/emit", h.Emit)
		accounts.GET("/authenticators", h.AuthenticatorIDs)
		accounts.GET("/authenticators/:id", h.AuthenticatorByID)
	}
}

// Instantiate 注册账户的首个认证器
//
// 请求体：{"block_time": 1700000000, "authenticator": {"kind": "secp256k1", "data": {...}}}
func (h *AccountHandlers) Instantiate(c *gin.Context) {
	var req apitypes.InstantiateRequest
	if !h.bind(c, &req) {
		return
	}
	add, err := types.UnmarshalAddAuthenticator(req.Authenticator)
	if err != nil {
		_ = c.Error(err)
		return
	}
	resp, err := h.service.Instantiate(c.Request.Context(), c.Param("address"), req.BlockTime, add)
	h.respond(c, resp, err)
}

// AddAuthMethod 添加认证方式
func (h *AccountHandlers) AddAuthMethod(c *gin.Context) {
	var req apitypes.AddAuthMethodRequest
	if !h.bind(c, &req) {
		return
	}
	add, err := types.UnmarshalAddAuthenticator(req.Authenticator)
	if err != nil {
		_ = c.Error(err)
		return
	}
	resp, err := h.service.AddAuthMethod(c.Request.Context(), req.Sender, c.Param("address"), req.BlockTime, add)
	h.respond(c, resp, err)
}

// RemoveAuthMethod 删除认证方式，调用方由 sender 查询参数给出
func (h *AccountHandlers) RemoveAuthMethod(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	resp, err := h.service.RemoveAuthMethod(c.Request.Context(), c.Query("sender"), c.Param("address"), id)
	h.respond(c, resp, err)
}

// BeforeTx 交易前授权
//
// 拒绝时返回 4xx，错误码为错误分类，例如 SHORT_SIGNATURE 归入 MALFORMED_INPUT。
func (h *AccountHandlers) BeforeTx(c *gin.Context) {
	var req apitypes.BeforeTxRequest
	if !h.bind(c, &req) {
		return
	}
	resp, err := h.service.BeforeTx(c.Request.Context(), c.Param("address"), req.BlockTime, req.TxBytes, req.Cred, req.Simulate)
	h.respond(c, resp, err)
}

// AfterTx 交易后钩子
func (h *AccountHandlers) AfterTx(c *gin.Context) {
	resp, err := h.service.AfterTx(c.Request.Context(), c.Param("address"))
	h.respond(c, resp, err)
}

// Emit 发出自定义事件
func (h *AccountHandlers) Emit(c *gin.Context) {
	var req apitypes.EmitRequest
	if !h.bind(c, &req) {
		return
	}
	resp, err := h.service.Emit(c.Request.Context(), req.Sender, c.Param("address"), req.Data)
	h.respond(c, resp, err)
}

// AuthenticatorIDs 列出账户全部认证器编号（升序）
func (h *AccountHandlers) AuthenticatorIDs(c *gin.Context) {
	account := c.Param("address")
	ids, err := h.service.AuthenticatorIDs(c.Request.Context(), account)
	if err != nil {
		_ = c.Error(err)
		return
	}
	// []uint8 会被 JSON 编码为 base64，转成数字数组
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = uint32(id)
	}
	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(&apitypes.AuthenticatorIDsResponse{
		Account: account,
		IDs:     out,
	}).WithRequestID(middleware.GetRequestID(c)))
}

// AuthenticatorByID 查询单个认证器，data 为带标签的认证器 JSON
func (h *AccountHandlers) AuthenticatorByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	raw, err := h.service.AuthenticatorByID(c.Request.Context(), c.Param("address"), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(json.RawMessage(raw)).
		WithRequestID(middleware.GetRequestID(c)))
}

// bind 解析 JSON 请求体，失败时上报 malformed_input
func (h *AccountHandlers) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.logger.Debugf("请求体解析失败: path=%s err=%v", c.FullPath(), err)
		_ = c.Error(bindError(err))
		return false
	}
	return true
}

// parseID 解析路径中的认证器编号（0-255）
func (h *AccountHandlers) parseID(c *gin.Context) (types.AuthenticatorID, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: authenticator id %q", types.ErrMalformedInput, raw))
		return 0, false
	}
	return types.AuthenticatorID(id), true
}

func (h *AccountHandlers) respond(c *gin.Context, resp *types.Response, err error) {
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(apitypes.NewExecuteResponse(resp)).
		WithRequestID(middleware.GetRequestID(c)))
}

// bindError 保留请求体超限错误，其余归入 malformed_input
func bindError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return fmt.Errorf("%w: %v", types.ErrMalformedInput, err)
}
