// Package grpc 基于 gRPC 的宿主链查询预言机客户端
//
// 三个预言机共用一个连接，每次调用带独立超时。
// 任何传输或服务端错误都映射为 types.ErrOracleUnavailable，调用方一律按失败处理。
package grpc

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/weisyn/absacc/internal/core/authn/metrics"
	"github.com/weisyn/absacc/pkg/interfaces/authn"
	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/absacc/pkg/types"
)

// 查询方法全名
const (
	MethodQueryDkimPubKeys           = "/xion.dkim.v1.Query/QueryDkimPubKeys"
	MethodWebAuthNVerifyRegister     = "/xion.v1.Query/WebAuthNVerifyRegister"
	MethodWebAuthNVerifyAuthenticate = "/xion.v1.Query/WebAuthNVerifyAuthenticate"
	MethodValidateJWT                = "/xion.jwk.v1.Query/ValidateJWT"
)

// 指标中的预言机名称
const (
	oracleDkim         = "dkim"
	oracleWebAuthnReg  = "webauthn_register"
	oracleWebAuthnAuth = "webauthn_authenticate"
	oracleJWT          = "jwt"
)

const defaultTimeout = 5 * time.Second

var (
	_ authn.DkimKeyLookup    = (*Client)(nil)
	_ authn.WebAuthnVerifier = (*Client)(nil)
	_ authn.JWTValidator     = (*Client)(nil)
)

// Client 宿主链查询客户端
type Client struct {
	conn    *grpc.ClientConn
	owned   bool
	timeout time.Duration
	logger  log.Logger
}

// Dial 创建到 endpoint 的连接，连接在首次调用时建立
func Dial(endpoint string, timeout time.Duration, logger log.Logger, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)
	conn, err := grpc.NewClient(endpoint, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("创建预言机连接失败: %w", err)
	}
	c := NewClient(conn, timeout, logger)
	c.owned = true
	return c, nil
}

// NewClient 复用已有连接，Close 不会关闭该连接
func NewClient(conn *grpc.ClientConn, timeout time.Duration, logger log.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{conn: conn, timeout: timeout, logger: logger}
}

// Close 关闭自有连接
func (c *Client) Close() error {
	if !c.owned {
		return nil
	}
	return c.conn.Close()
}

// QueryDkimPubKeys 实现 authn.DkimKeyLookup
func (c *Client) QueryDkimPubKeys(ctx context.Context, req *types.DkimPubKeysRequest) (*types.DkimPubKeysResponse, error) {
	resp := &types.DkimPubKeysResponse{}
	if err := c.invoke(ctx, oracleDkim, MethodQueryDkimPubKeys, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// VerifyRegister 实现 authn.WebAuthnVerifier
func (c *Client) VerifyRegister(ctx context.Context, req *types.WebAuthnRegisterRequest) (*types.WebAuthnRegisterResponse, error) {
	resp := &types.WebAuthnRegisterResponse{}
	if err := c.invoke(ctx, oracleWebAuthnReg, MethodWebAuthNVerifyRegister, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// VerifyAuthenticate 实现 authn.WebAuthnVerifier
func (c *Client) VerifyAuthenticate(ctx context.Context, req *types.WebAuthnAuthenticateRequest) error {
	return c.invoke(ctx, oracleWebAuthnAuth, MethodWebAuthNVerifyAuthenticate, req, &types.WebAuthnAuthenticateResponse{})
}

// ValidateJWT 实现 authn.JWTValidator
func (c *Client) ValidateJWT(ctx context.Context, req *types.JWTValidateRequest) error {
	return c.invoke(ctx, oracleJWT, MethodValidateJWT, req, &types.JWTValidateResponse{})
}

func (c *Client) invoke(ctx context.Context, oracle, method string, req, resp interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.conn.Invoke(ctx, method, req, resp, grpc.CallContentSubtype(CodecName))
	metrics.ObserveOracle(oracle, err)
	if err != nil {
		if c.logger != nil {
			c.logger.Warnf("预言机调用失败: method=%s err=%v", method, err)
		}
		return fmt.Errorf("%w: %s: %v", types.ErrOracleUnavailable, method, err)
	}
	return nil
}
