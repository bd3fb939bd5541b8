// Package plugins 提供各认证方案的验证插件实现
//
// 每个插件负责一种认证器变体：
//   - Verify: 验证交易签名
//   - Register: 验证注册期一次性证明，返回需要持久化的公开投影
//
// 插件本身无状态（缓存除外），可并行调用；分派由 verifier.Kernel 完成。
package plugins

import (
	"context"
	"fmt"

	"github.com/weisyn/absacc/internal/core/infrastructure/crypto/secp256k1"
	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/absacc/pkg/types"
)

// Secp256K1Plugin secp256k1 验证插件
//
// 🎯 **核心职责**：验证 SHA-256(message) 上的 64 字节 r||s 签名
//
// 💡 **回退路径**：
// 直接验证失败（或出错）时，按 sign-arbitrary 信封重新包装消息再验证一次。
// 许多钱包只提供"签名任意数据"能力，签的是信封而不是原始字节。
// 两条路径任一通过即成功；回退路径的错误原样返回。
type Secp256K1Plugin struct {
	curve        *secp256k1.Curve
	hashManager  crypto.HashManager
	addrManager  crypto.AddressManager
	bech32Prefix string
}

// NewSecp256K1Plugin 创建 secp256k1 插件
//
// 参数：
//   - curve: 曲线操作（low-S 校验）
//   - hashManager: 哈希服务
//   - addrManager: bech32 地址派生（信封中的 signer 字段）
//   - bech32Prefix: 链地址前缀
func NewSecp256K1Plugin(
	curve *secp256k1.Curve,
	hashManager crypto.HashManager,
	addrManager crypto.AddressManager,
	bech32Prefix string,
) *Secp256K1Plugin {
	return &Secp256K1Plugin{
		curve:        curve,
		hashManager:  hashManager,
		addrManager:  addrManager,
		bech32Prefix: bech32Prefix,
	}
}

// Name 返回插件名称
func (p *Secp256K1Plugin) Name() string {
	return types.KindSecp256K1.String()
}

// Verify 验证签名
func (p *Secp256K1Plugin) Verify(
	ctx context.Context,
	auth *types.Secp256K1Authenticator,
	vctx *types.VerificationContext,
	sig []byte,
) (bool, error) {
	if ok, err := p.curve.VerifyDigest(auth.PubKey, vctx.Digest, sig); err == nil && ok {
		return true, nil
	}
	return p.verifySignArbitrary(auth.PubKey, vctx.Message, sig)
}

// Register 验证注册签名（消息为账户地址字节）
func (p *Secp256K1Plugin) Register(
	ctx context.Context,
	vctx *types.VerificationContext,
	add *types.AddSecp256K1,
) (types.Authenticator, error) {
	auth := add.Project().(*types.Secp256K1Authenticator)
	ok, err := p.Verify(ctx, auth, vctx, add.Signature)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrInvalidSignature
	}
	return auth, nil
}

// verifySignArbitrary 回退路径：验证 SHA-256(信封) 上的签名
func (p *Secp256K1Plugin) verifySignArbitrary(pubKey, msg, sig []byte) (bool, error) {
	key, err := p.curve.ParsePubKey(pubKey)
	if err != nil {
		return false, fmt.Errorf("%w: %w", types.ErrMalformedInput, err)
	}
	signer, err := p.addrManager.PubKeyToBech32(p.bech32Prefix, key.SerializeCompressed())
	if err != nil {
		return false, fmt.Errorf("派生签名者地址失败: %w", err)
	}

	envelopeHash := p.hashManager.SHA256(WrapSignArbitrary(msg, signer))
	ok, err := p.curve.VerifyDigest(pubKey, envelopeHash, sig)
	if err != nil {
		return false, fmt.Errorf("%w: %w", types.ErrMalformedInput, err)
	}
	return ok, nil
}
