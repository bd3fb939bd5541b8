// Package types provides HTTP response type definitions.
package types

import (
	"encoding/json"

	authntypes "github.com/weisyn/absacc/pkg/types"
)

// SuccessResponse 统一成功响应格式
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"requestId,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Data: data,
	}
}

// WithRequestID 添加请求ID
func (r *SuccessResponse) WithRequestID(requestID string) *SuccessResponse {
	r.RequestID = requestID
	return r
}

// WithTimestamp 添加时间戳
func (r *SuccessResponse) WithTimestamp(timestamp string) *SuccessResponse {
	r.Timestamp = timestamp
	return r
}

// InstantiateRequest 账户实例化请求
type InstantiateRequest struct {
	BlockTime     uint64          `json:"block_time"`
	Authenticator json.RawMessage `json:"authenticator" binding:"required"` // 带标签的注册期认证器
}

// AddAuthMethodRequest 添加认证方式请求
type AddAuthMethodRequest struct {
	Sender        string          `json:"sender" binding:"required"`
	BlockTime     uint64          `json:"block_time"`
	Authenticator json.RawMessage `json:"authenticator" binding:"required"`
}

// BeforeTxRequest 交易前授权请求，字节字段为标准 base64
type BeforeTxRequest struct {
	BlockTime uint64 `json:"block_time"`
	TxBytes   []byte `json:"tx_bytes"`
	Cred      []byte `json:"cred"`
	Simulate  bool   `json:"simulate"`
}

// EmitRequest 自定义事件请求
type EmitRequest struct {
	Sender string `json:"sender" binding:"required"`
	Data   string `json:"data"`
}

// ExecuteResponse 账户操作结果
type ExecuteResponse struct {
	Attributes []authntypes.Attribute `json:"attributes"`
	Events     []authntypes.Event     `json:"events"`
}

// NewExecuteResponse 由引擎响应构造
func NewExecuteResponse(resp *authntypes.Response) *ExecuteResponse {
	out := &ExecuteResponse{
		Attributes: []authntypes.Attribute{},
		Events:     []authntypes.Event{},
	}
	if resp == nil {
		return out
	}
	out.Attributes = append(out.Attributes, resp.Attributes...)
	out.Events = append(out.Events, resp.Events...)
	return out
}

// AuthenticatorIDsResponse 认证器编号列表
type AuthenticatorIDsResponse struct {
	Account string   `json:"account"`
	IDs     []uint32 `json:"ids"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status     string                 `json:"status"` // healthy, unhealthy
	Liveness   string                 `json:"liveness"`
	Readiness  string                 `json:"readiness"`
	Version    string                 `json:"version"`
	Uptime     string                 `json:"uptime"`
	Timestamp  string                 `json:"timestamp"`
	Components map[string]interface{} `json:"components"`
}
