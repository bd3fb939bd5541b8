package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apitypes "github.com/weisyn/absacc/internal/api/http/types"
)

// ErrorHandler 错误处理中间件
//
// 处理器通过 c.Error 上报认证引擎错误，这里统一转换为 ErrorResponse，
// 状态码由错误分类决定。已写出响应的请求不再处理。
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(c, http.StatusRequestEntityTooLarge,
				apitypes.NewErrorResponse(apitypes.ErrRequestTooLarge, "request body too large", map[string]interface{}{
					"limit": tooLarge.Limit,
				}))
			return
		}

		status, resp := apitypes.FromError(err)
		WriteError(c, status, resp)
	}
}

// WriteError 写入错误响应，附带请求ID与时间戳
func WriteError(c *gin.Context, status int, resp *apitypes.ErrorResponse) {
	resp.WithRequestID(GetRequestID(c)).WithTimestamp(time.Now().UTC().Format(time.RFC3339))
	c.AbortWithStatusJSON(status, resp)
}

// BodyLimit 限制请求体大小，limit <= 0 时不限制
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
