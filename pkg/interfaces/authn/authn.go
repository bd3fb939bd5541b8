// Package authn 定义账户认证引擎的公共接口
//
// 本包只包含接口契约，实现位于 internal/core/authn 下：
// - Dispatcher：按认证器标签分派到对应方案的验证器
// - Registry / AuthenticatorStore：账户内认证器注册表及其持久化
// - AccountService：宿主调用入口（实例化、增删认证方式、before_tx）
package authn

import (
	"context"

	"github.com/weisyn/absacc/pkg/types"
)

// Dispatcher 认证分派器
//
// 🎯 **核心职责**：
// - Verify: 对已注册认证器验证交易签名
// - VerifyRegistration: 对注册期认证器验证一次性证明，并返回需要持久化的公开投影
//
// 分派只依赖认证器变体本身，不存在运行时的方案注册。
type Dispatcher interface {
	Verify(ctx context.Context, vctx *types.VerificationContext, auth types.Authenticator, sig []byte) (bool, error)
	VerifyRegistration(ctx context.Context, vctx *types.VerificationContext, add types.AddAuthenticator) (types.Authenticator, error)
}

// Registry 账户认证器注册表
//
// 不变量：
// - 注册表非空（删除最后一个认证器被拒绝）
// - 编号唯一（已占用的编号不会被静默覆盖）
// - 证明验证通过前不写入任何状态
type Registry interface {
	// Register 验证注册证明并持久化公开投影，返回实际写入的认证器
	Register(ctx context.Context, account string, blockTime uint64, add types.AddAuthenticator) (types.Authenticator, error)
	// Remove 删除认证器
	Remove(ctx context.Context, account string, id types.AuthenticatorID) error
	// Get 读取认证器，不存在时返回 types.ErrAuthenticatorNotFound
	Get(ctx context.Context, account string, id types.AuthenticatorID) (types.Authenticator, error)
	// IDs 返回升序排列的已注册编号
	IDs(ctx context.Context, account string) ([]types.AuthenticatorID, error)
	// Count 已注册认证器数量
	Count(ctx context.Context, account string) (int, error)
}

// AuthenticatorStore 认证器持久化
//
// Insert 与 RemoveKeepingOne 必须在单个事务内完成检查与写入。
type AuthenticatorStore interface {
	Get(ctx context.Context, account string, id types.AuthenticatorID) (types.Authenticator, error)
	// Insert 编号已占用时返回 *types.OverridingIndexError
	Insert(ctx context.Context, account string, id types.AuthenticatorID, auth types.Authenticator) error
	// RemoveKeepingOne 数量不大于 1 时返回 types.ErrMinimumAuthenticatorCount
	RemoveKeepingOne(ctx context.Context, account string, id types.AuthenticatorID) error
	IDs(ctx context.Context, account string) ([]types.AuthenticatorID, error)
	Count(ctx context.Context, account string) (int, error)
}

// AccountService 账户宿主入口
//
// 🎯 **核心职责**：以宿主消息的形态暴露注册表操作与交易前授权流程，
// 每个成功的变更操作都会产生事件。
type AccountService interface {
	// Instantiate 注册首个认证器
	Instantiate(ctx context.Context, account string, blockTime uint64, add types.AddAuthenticator) (*types.Response, error)
	// AddAuthMethod 添加认证方式，仅账户自身可调用
	AddAuthMethod(ctx context.Context, sender, account string, blockTime uint64, add types.AddAuthenticator) (*types.Response, error)
	// RemoveAuthMethod 删除认证方式，仅账户自身可调用
	RemoveAuthMethod(ctx context.Context, sender, account string, id types.AuthenticatorID) (*types.Response, error)
	// BeforeTx 交易前授权，simulate 为 true 时跳过全部检查
	BeforeTx(ctx context.Context, account string, blockTime uint64, txBytes, cred []byte, simulate bool) (*types.Response, error)
	// AfterTx 交易后钩子
	AfterTx(ctx context.Context, account string) (*types.Response, error)
	// Emit 发出自定义事件，仅账户自身可调用
	Emit(ctx context.Context, sender, account, data string) (*types.Response, error)

	AuthenticatorIDs(ctx context.Context, account string) ([]types.AuthenticatorID, error)
	AuthenticatorByID(ctx context.Context, account string, id types.AuthenticatorID) ([]byte, error)
}

// DkimKeyLookup DKIM 公钥查询能力
type DkimKeyLookup interface {
	QueryDkimPubKeys(ctx context.Context, req *types.DkimPubKeysRequest) (*types.DkimPubKeysResponse, error)
}

// WebAuthnVerifier WebAuthn 依赖方预言机
type WebAuthnVerifier interface {
	// VerifyRegister 校验注册数据，返回需要持久化的 passkey 凭证
	VerifyRegister(ctx context.Context, req *types.WebAuthnRegisterRequest) (*types.WebAuthnRegisterResponse, error)
	// VerifyAuthenticate 校验断言，返回 nil 表示通过
	VerifyAuthenticate(ctx context.Context, req *types.WebAuthnAuthenticateRequest) error
}

// JWTValidator 委托 JWT 校验能力，返回 nil 表示通过
type JWTValidator interface {
	ValidateJWT(ctx context.Context, req *types.JWTValidateRequest) error
}
