// Package types provides HTTP error type definitions.
package types

import (
	"errors"
	"net/http"
	"strings"

	authntypes "github.com/weisyn/absacc/pkg/types"
)

// ErrorResponse 统一错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	Code      string      `json:"code"`                // 错误码
	Message   string      `json:"message"`             // 错误消息
	Details   interface{} `json:"details,omitempty"`   // 详细信息
	RequestID string      `json:"requestId,omitempty"` // 请求ID
	Timestamp string      `json:"timestamp,omitempty"` // 时间戳
}

// 接口层错误码，认证错误码由错误分类大写得到，例如 MALFORMED_INPUT
const (
	ErrInvalidArgument   = "INVALID_ARGUMENT"
	ErrUnauthorized      = "UNAUTHORIZED"
	ErrNotFound          = "NOT_FOUND"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrRequestTooLarge   = "REQUEST_TOO_LARGE"
)

// NewErrorResponse 创建错误响应
func NewErrorResponse(code, message string, details interface{}) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// WithRequestID 添加请求ID
func (e *ErrorResponse) WithRequestID(requestID string) *ErrorResponse {
	e.Error.RequestID = requestID
	return e
}

// WithTimestamp 添加时间戳
func (e *ErrorResponse) WithTimestamp(timestamp string) *ErrorResponse {
	e.Error.Timestamp = timestamp
	return e
}

// FromError 将认证引擎错误映射为 HTTP 状态码与错误响应
//
// 映射规则：
//   - malformed_input -> 400
//   - crypto_rejection / trust_lookup / time_window / 签名无效 -> 401
//   - 非账户自身调用 -> 403
//   - 认证器不存在 -> 404
//   - 其余注册表不变量 -> 409
//   - oracle -> 503
//   - internal -> 500，消息不外泄
func FromError(err error) (int, *ErrorResponse) {
	kind := authntypes.ClassifyError(err)
	code := strings.ToUpper(string(kind))

	var status int
	switch kind {
	case authntypes.KindMalformedInput:
		status = http.StatusBadRequest
	case authntypes.KindCryptoRejection, authntypes.KindTrustLookup, authntypes.KindTimeWindow:
		status = http.StatusUnauthorized
	case authntypes.KindAuthorization:
		status = http.StatusUnauthorized
		if errors.Is(err, authntypes.ErrUnauthorized) {
			status = http.StatusForbidden
			code = ErrUnauthorized
		}
	case authntypes.KindRegistryInvariant:
		status = http.StatusConflict
		if errors.Is(err, authntypes.ErrAuthenticatorNotFound) {
			status = http.StatusNotFound
		}
	case authntypes.KindOracle:
		status = http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError, NewErrorResponse("INTERNAL", "internal error", nil)
	}
	return status, NewErrorResponse(code, err.Error(), nil)
}
