// Package static 提供进程内的预言机实现
//
// 用于测试与离线工具（authcli），行为完全由调用方预置的数据决定。
package static

import (
	"context"
	"sync"

	"github.com/weisyn/absacc/pkg/interfaces/authn"
	"github.com/weisyn/absacc/pkg/types"
)

var (
	_ authn.DkimKeyLookup    = (*DkimRegistry)(nil)
	_ authn.WebAuthnVerifier = (*WebAuthn)(nil)
	_ authn.JWTValidator     = (*JWTValidator)(nil)
)

// DkimRegistry 内存 DKIM 信任锚：domain -> 哈希键集合
type DkimRegistry struct {
	mu      sync.RWMutex
	entries map[string]map[string]struct{}
	calls   int
}

// NewDkimRegistry 创建空注册表
func NewDkimRegistry() *DkimRegistry {
	return &DkimRegistry{entries: make(map[string]map[string]struct{})}
}

// Add 登记 domain 下的 DKIM 公钥 Poseidon 哈希
func (r *DkimRegistry) Add(domain string, poseidonHash []byte) *DkimRegistry {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.entries[domain]
	if !ok {
		set = make(map[string]struct{})
		r.entries[domain] = set
	}
	set[types.DkimHashKey(poseidonHash)] = struct{}{}
	return r
}

// QueryDkimPubKeys 返回匹配的记录，没有匹配时返回空列表
func (r *DkimRegistry) QueryDkimPubKeys(ctx context.Context, req *types.DkimPubKeysRequest) (*types.DkimPubKeysResponse, error) {
	r.mu.Lock()
	r.calls++
	defer r.mu.Unlock()

	resp := &types.DkimPubKeysResponse{DkimPubKeys: []types.DkimPubKey{}}
	set, ok := r.entries[req.Domain]
	if !ok {
		return resp, nil
	}
	if _, ok := set[types.DkimHashKey(req.PoseidonHash)]; ok {
		resp.DkimPubKeys = append(resp.DkimPubKeys, types.DkimPubKey{
			Domain:       req.Domain,
			PoseidonHash: req.PoseidonHash,
			Selector:     req.Selector,
		})
	}
	return resp, nil
}

// Calls 查询次数
func (r *DkimRegistry) Calls() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.calls
}

// WebAuthn 可编程的 WebAuthn 预言机
type WebAuthn struct {
	mu sync.Mutex

	// RegisterFunc 为空时返回请求数据本身作为凭证
	RegisterFunc func(req *types.WebAuthnRegisterRequest) (*types.WebAuthnRegisterResponse, error)
	// AuthenticateFunc 为空时一律通过
	AuthenticateFunc func(req *types.WebAuthnAuthenticateRequest) error

	LastRegister     *types.WebAuthnRegisterRequest
	LastAuthenticate *types.WebAuthnAuthenticateRequest
}

// VerifyRegister 实现 authn.WebAuthnVerifier
func (w *WebAuthn) VerifyRegister(ctx context.Context, req *types.WebAuthnRegisterRequest) (*types.WebAuthnRegisterResponse, error) {
	w.mu.Lock()
	w.LastRegister = req
	fn := w.RegisterFunc
	w.mu.Unlock()

	if fn != nil {
		return fn(req)
	}
	return &types.WebAuthnRegisterResponse{Credential: append([]byte(nil), req.Data...)}, nil
}

// VerifyAuthenticate 实现 authn.WebAuthnVerifier
func (w *WebAuthn) VerifyAuthenticate(ctx context.Context, req *types.WebAuthnAuthenticateRequest) error {
	w.mu.Lock()
	w.LastAuthenticate = req
	fn := w.AuthenticateFunc
	w.mu.Unlock()

	if fn != nil {
		return fn(req)
	}
	return nil
}

// JWTValidator 固定结果的 JWT 委托校验
type JWTValidator struct {
	mu   sync.Mutex
	Err  error
	Last *types.JWTValidateRequest
}

// ValidateJWT 实现 authn.JWTValidator
func (v *JWTValidator) ValidateJWT(ctx context.Context, req *types.JWTValidateRequest) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Last = req
	return v.Err
}
