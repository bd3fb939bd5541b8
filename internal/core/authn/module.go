// Package authn 装配账户认证引擎
//
// 依赖关系（自底向上）：
//
//	crypto ─┐
//	oracle ─┼─> plugins ─> Kernel ─┐
//	        │                      ├─> Registry ─> account.Service
//	storage ┴─> AuthenticatorStore ┘
package authn

import (
	"fmt"

	"go.uber.org/fx"

	authnconfig "github.com/weisyn/absacc/internal/config/authn"
	"github.com/weisyn/absacc/internal/core/authn/account"
	"github.com/weisyn/absacc/internal/core/authn/registry"
	"github.com/weisyn/absacc/internal/core/authn/store"
	"github.com/weisyn/absacc/internal/core/authn/verifier"
	"github.com/weisyn/absacc/internal/core/authn/verifier/plugins"
	"github.com/weisyn/absacc/internal/core/authn/zkemail"
	"github.com/weisyn/absacc/internal/core/infrastructure/crypto/secp256k1"
	logimpl "github.com/weisyn/absacc/internal/core/infrastructure/log"
	authnif "github.com/weisyn/absacc/pkg/interfaces/authn"
	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/storage"
)

// vkeyCacheSize 解析后的 Groth16 验证密钥缓存上限
const vkeyCacheSize = 64

// PluginParams 插件依赖
type PluginParams struct {
	fx.In

	Options        *authnconfig.AuthnOptions
	HashManager    crypto.HashManager
	AddressManager crypto.AddressManager
	Curve          *secp256k1.Curve
	Dkim           authnif.DkimKeyLookup
	WebAuthn       authnif.WebAuthnVerifier
	JWTValidator   authnif.JWTValidator
	Logger         log.Logger
}

// ServiceParams 账户服务依赖
type ServiceParams struct {
	fx.In

	Options        *authnconfig.AuthnOptions
	Store          storage.BadgerStore
	Kernel         *verifier.Kernel
	AddressManager crypto.AddressManager
	EventBus       event.EventBus `optional:"true"`
	Logger         log.Logger
}

// ServiceOutput 账户服务输出
type ServiceOutput struct {
	fx.Out

	Registry       *registry.Registry
	RegistryIface  authnif.Registry
	Service        *account.Service
	AccountService authnif.AccountService
}

// Module 返回认证引擎模块
func Module() fx.Option {
	return fx.Module("authn",
		fx.Provide(
			ProvidePlugins,
			ProvideKernel,
			ProvideServices,
		),
	)
}

// ProvidePlugins 按配置创建全部方案插件
func ProvidePlugins(params PluginParams) (verifier.Plugins, error) {
	opts := params.Options
	jwtPlugin, err := plugins.NewJWTPlugin(opts.JWTKeys, opts.AverageBlockTime)
	if err != nil {
		return verifier.Plugins{}, fmt.Errorf("加载 JWT 公钥表失败: %w", err)
	}
	if opts.JWTMode == authnconfig.JWTModeOracle {
		jwtPlugin.WithValidator(params.JWTValidator)
	}
	params.Logger.Infof("认证插件已加载: bech32=%s jwt_mode=%s audiences=%d",
		opts.Bech32Prefix, opts.JWTMode, len(jwtPlugin.Audiences()))

	return verifier.Plugins{
		Secp256K1: plugins.NewSecp256K1Plugin(params.Curve, params.HashManager, params.AddressManager, opts.Bech32Prefix),
		Ed25519:   plugins.NewEd25519Plugin(),
		EthWallet: plugins.NewEthWalletPlugin(params.HashManager, params.AddressManager),
		Secp256R1: plugins.NewSecp256R1Plugin(),
		JWT:       jwtPlugin,
		Passkey:   plugins.NewPasskeyPlugin(params.WebAuthn),
		ZKEmail:   plugins.NewZKEmailPlugin(params.Dkim, zkemail.NewKeyCache(vkeyCacheSize)),
	}, nil
}

// ProvideKernel 创建分派内核
func ProvideKernel(p verifier.Plugins, logger log.Logger) (*verifier.Kernel, authnif.Dispatcher) {
	kernel := verifier.NewKernel(p, logimpl.NewModuleLogger(logger, "authn.verifier"))
	return kernel, kernel
}

// ProvideServices 创建注册表与账户服务
func ProvideServices(params ServiceParams) ServiceOutput {
	reg := registry.New(
		store.NewBadgerAuthenticatorStore(params.Store),
		params.Kernel,
		params.AddressManager,
		registry.NewAccountLocks(),
		logimpl.NewModuleLogger(params.Logger, "authn.registry"),
	)
	svc := account.NewService(account.Config{
		Registry:     reg,
		Dispatcher:   params.Kernel,
		EventBus:     params.EventBus,
		Logger:       logimpl.NewModuleLogger(params.Logger, "authn.account"),
		MaxEmitBytes: params.Options.MaxEmitBytes,
	})
	return ServiceOutput{
		Registry:       reg,
		RegistryIface:  reg,
		Service:        svc,
		AccountService: svc,
	}
}
