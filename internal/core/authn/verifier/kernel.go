// Package verifier 提供认证分派内核
//
// kernel.go: 按认证器变体分派到方案插件
package verifier

import (
	"context"
	"fmt"
	"time"

	"github.com/weisyn/absacc/internal/core/authn/metrics"
	"github.com/weisyn/absacc/internal/core/authn/verifier/plugins"
	"github.com/weisyn/absacc/pkg/interfaces/authn"
	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/absacc/pkg/types"
)

var _ authn.Dispatcher = (*Kernel)(nil)

// Plugins 内核持有的全部方案插件
type Plugins struct {
	Secp256K1 *plugins.Secp256K1Plugin
	Ed25519   *plugins.Ed25519Plugin
	EthWallet *plugins.EthWalletPlugin
	Secp256R1 *plugins.Secp256R1Plugin
	JWT       *plugins.JWTPlugin
	Passkey   *plugins.PasskeyPlugin
	ZKEmail   *plugins.ZKEmailPlugin
}

// Kernel 认证分派内核
//
// 🎯 **核心职责**：把 (认证器, 上下文, 签名) 路由到匹配的方案插件
//
// 💡 **设计理念**：
// 分派是认证器变体上的封闭类型分支，不做运行时插件注册。
// 支持的证明系统是部署期确定的集合，新增方案只能新增变体和分支。
//
// ⚠️ **核心约束**：
// - 分派本身没有副作用，不访问存储
// - 缺失插件按内部错误处理，不会静默通过
//
// 📞 **调用方**：Registry（注册证明）、AccountService（before_tx）
type Kernel struct {
	plugins Plugins
	logger  log.Logger
}

// NewKernel 创建分派内核
func NewKernel(p Plugins, logger log.Logger) *Kernel {
	return &Kernel{plugins: p, logger: logger}
}

// Verify 验证交易签名
func (k *Kernel) Verify(
	ctx context.Context,
	vctx *types.VerificationContext,
	auth types.Authenticator,
	sig []byte,
) (ok bool, err error) {
	if auth == nil {
		return false, fmt.Errorf("%w: nil authenticator", types.ErrMalformedInput)
	}
	start := time.Now()
	defer func() {
		metrics.ObserveVerify(auth.Kind().String(), ok, err, time.Since(start))
		if err != nil && k.logger != nil {
			k.logger.Debugf("认证失败: scheme=%s account=%s err=%v", auth.Kind(), vctx.AccountAddress, err)
		}
	}()

	switch a := auth.(type) {
	case *types.Secp256K1Authenticator:
		if k.plugins.Secp256K1 == nil {
			return false, missingPlugin(a.Kind())
		}
		return k.plugins.Secp256K1.Verify(ctx, a, vctx, sig)
	case *types.Ed25519Authenticator:
		if k.plugins.Ed25519 == nil {
			return false, missingPlugin(a.Kind())
		}
		return k.plugins.Ed25519.Verify(ctx, a, vctx, sig)
	case *types.EthWalletAuthenticator:
		if k.plugins.EthWallet == nil {
			return false, missingPlugin(a.Kind())
		}
		return k.plugins.EthWallet.Verify(ctx, a, vctx, sig)
	case *types.Secp256R1Authenticator:
		if k.plugins.Secp256R1 == nil {
			return false, missingPlugin(a.Kind())
		}
		return k.plugins.Secp256R1.Verify(ctx, a, vctx, sig)
	case *types.JWTAuthenticator:
		if k.plugins.JWT == nil {
			return false, missingPlugin(a.Kind())
		}
		return k.plugins.JWT.Verify(ctx, a, vctx, sig)
	case *types.PasskeyAuthenticator:
		if k.plugins.Passkey == nil {
			return false, missingPlugin(a.Kind())
		}
		return k.plugins.Passkey.Verify(ctx, a, vctx, sig)
	case *types.ZKEmailAuthenticator:
		if k.plugins.ZKEmail == nil {
			return false, missingPlugin(a.Kind())
		}
		return k.plugins.ZKEmail.Verify(ctx, a, vctx, sig)
	default:
		return false, fmt.Errorf("%w: unsupported authenticator %T", types.ErrMalformedInput, auth)
	}
}

// VerifyRegistration 验证注册证明，返回需要持久化的公开投影
//
// vctx 必须是注册上下文（消息为账户地址字节）。
func (k *Kernel) VerifyRegistration(
	ctx context.Context,
	vctx *types.VerificationContext,
	add types.AddAuthenticator,
) (types.Authenticator, error) {
	if add == nil {
		return nil, fmt.Errorf("%w: nil add authenticator", types.ErrMalformedInput)
	}
	if !vctx.Registration {
		return nil, fmt.Errorf("%w: registration proof requires a registration context", types.ErrMalformedInput)
	}

	switch a := add.(type) {
	case *types.AddSecp256K1:
		if k.plugins.Secp256K1 == nil {
			return nil, missingPlugin(a.Kind())
		}
		return k.plugins.Secp256K1.Register(ctx, vctx, a)
	case *types.AddEd25519:
		if k.plugins.Ed25519 == nil {
			return nil, missingPlugin(a.Kind())
		}
		return k.plugins.Ed25519.Register(ctx, vctx, a)
	case *types.AddEthWallet:
		if k.plugins.EthWallet == nil {
			return nil, missingPlugin(a.Kind())
		}
		return k.plugins.EthWallet.Register(ctx, vctx, a)
	case *types.AddSecp256R1:
		if k.plugins.Secp256R1 == nil {
			return nil, missingPlugin(a.Kind())
		}
		return k.plugins.Secp256R1.Register(ctx, vctx, a)
	case *types.AddJWT:
		if k.plugins.JWT == nil {
			return nil, missingPlugin(a.Kind())
		}
		return k.plugins.JWT.Register(ctx, vctx, a)
	case *types.AddPasskey:
		if k.plugins.Passkey == nil {
			return nil, missingPlugin(a.Kind())
		}
		return k.plugins.Passkey.Register(ctx, vctx, a)
	case *types.AddZKEmail:
		if k.plugins.ZKEmail == nil {
			return nil, missingPlugin(a.Kind())
		}
		return k.plugins.ZKEmail.Register(ctx, vctx, a)
	default:
		return nil, fmt.Errorf("%w: unsupported add authenticator %T", types.ErrMalformedInput, add)
	}
}

func missingPlugin(kind types.AuthenticatorKind) error {
	return fmt.Errorf("no plugin configured for scheme %s", kind)
}
