package plugins

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"fmt"
	"math/big"

	"github.com/weisyn/absacc/pkg/types"
)

// P256SignatureLength r||s 定长签名
const P256SignatureLength = 64

// Secp256R1Plugin NIST P-256 验证插件
//
// 公钥为 SEC1 编码（33 字节压缩或 65 字节未压缩），签名为 64 字节 r||s，
// 验证对象为交易摘要。点编码无效时返回 types.ErrRebuildingKey。
type Secp256R1Plugin struct{}

// NewSecp256R1Plugin 创建 P-256 插件
func NewSecp256R1Plugin() *Secp256R1Plugin {
	return &Secp256R1Plugin{}
}

// Name 返回插件名称
func (p *Secp256R1Plugin) Name() string {
	return types.KindSecp256R1.String()
}

// Verify 验证签名
func (p *Secp256R1Plugin) Verify(
	ctx context.Context,
	auth *types.Secp256R1Authenticator,
	vctx *types.VerificationContext,
	sig []byte,
) (bool, error) {
	pub, err := ParseP256PublicKey(auth.PubKey)
	if err != nil {
		return false, err
	}
	if len(sig) != P256SignatureLength {
		return false, fmt.Errorf("%w: p256 signature must be %d bytes, got %d",
			types.ErrSignatureLength, P256SignatureLength, len(sig))
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])
	return ecdsa.Verify(pub, vctx.Digest, r, s), nil
}

// Register 验证注册签名
func (p *Secp256R1Plugin) Register(
	ctx context.Context,
	vctx *types.VerificationContext,
	add *types.AddSecp256R1,
) (types.Authenticator, error) {
	auth := add.Project().(*types.Secp256R1Authenticator)
	ok, err := p.Verify(ctx, auth, vctx, add.Signature)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrInvalidSignature
	}
	return auth, nil
}

// ParseP256PublicKey 解析 SEC1 压缩或未压缩 P-256 公钥
func ParseP256PublicKey(b []byte) (*ecdsa.PublicKey, error) {
	curve := elliptic.P256()
	var x, y *big.Int
	switch {
	case len(b) == 65 && b[0] == 0x04:
		x, y = elliptic.Unmarshal(curve, b)
	case len(b) == 33 && (b[0] == 0x02 || b[0] == 0x03):
		x, y = elliptic.UnmarshalCompressed(curve, b)
	}
	if x == nil {
		return nil, fmt.Errorf("%w: invalid p256 sec1 point (%d bytes)", types.ErrRebuildingKey, len(b))
	}
	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}
