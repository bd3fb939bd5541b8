package plugins

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/weisyn/absacc/pkg/types"
)

// Ed25519Plugin Ed25519 验证插件，对 SHA-256(message) 做 EdDSA 验证，没有回退路径
type Ed25519Plugin struct{}

// NewEd25519Plugin 创建 Ed25519 插件
func NewEd25519Plugin() *Ed25519Plugin {
	return &Ed25519Plugin{}
}

// Name 返回插件名称
func (p *Ed25519Plugin) Name() string {
	return types.KindEd25519.String()
}

// Verify 验证签名
func (p *Ed25519Plugin) Verify(
	ctx context.Context,
	auth *types.Ed25519Authenticator,
	vctx *types.VerificationContext,
	sig []byte,
) (bool, error) {
	if len(auth.PubKey) != ed25519.PublicKeySize {
		return false, fmt.Errorf("%w: ed25519 public key must be %d bytes, got %d",
			types.ErrMalformedInput, ed25519.PublicKeySize, len(auth.PubKey))
	}
	if len(sig) != ed25519.SignatureSize {
		return false, fmt.Errorf("%w: ed25519 signature must be %d bytes, got %d",
			types.ErrSignatureLength, ed25519.SignatureSize, len(sig))
	}
	return ed25519.Verify(ed25519.PublicKey(auth.PubKey), vctx.Digest, sig), nil
}

// Register 验证注册签名
func (p *Ed25519Plugin) Register(
	ctx context.Context,
	vctx *types.VerificationContext,
	add *types.AddEd25519,
) (types.Authenticator, error) {
	auth := add.Project().(*types.Ed25519Authenticator)
	ok, err := p.Verify(ctx, auth, vctx, add.Signature)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrInvalidSignature
	}
	return auth, nil
}
