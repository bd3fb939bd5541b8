package plugins

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/weisyn/absacc/pkg/interfaces/authn"
	"github.com/weisyn/absacc/pkg/types"
)

// TxClaims 交易绑定的 JWT 声明
type TxClaims struct {
	jwt.RegisteredClaims
	TransactionHash []byte `json:"transaction_hash"`
}

// JWTPlugin RS256 JWT 验证插件
//
// 🎯 **核心职责**：
// 1. 按 aud 查找静态 RSA 公钥（未知 aud 在任何 RSA 计算前拒绝）
// 2. 验证 header.payload 上的 PKCS#1 v1.5 / SHA-256 签名
// 3. 校验 sub（不区分大小写）、aud 包含关系、时间窗口、交易哈希绑定
//
// ⏱️ **时间策略**（以区块时间为准，不读墙钟）：
// - exp < blockTime 拒绝
// - nbf > blockTime + averageBlockTime 拒绝
// - exp 与 nbf 均为必填
//
// 配置了 JWTValidator 时进入委托模式，整个校验交给外部预言机。
type JWTPlugin struct {
	keys             map[string]*rsa.PublicKey
	averageBlockTime uint64
	validator        authn.JWTValidator
	parser           *jwt.Parser
}

// NewJWTPlugin 创建 JWT 插件
//
// keyTable: aud -> "modulus_b64url;exponent_b64url"
func NewJWTPlugin(keyTable map[string]string, averageBlockTime uint64) (*JWTPlugin, error) {
	keys := make(map[string]*rsa.PublicKey, len(keyTable))
	for aud, entry := range keyTable {
		pub, err := ParseRSAKeyEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("aud %s: %w", aud, err)
		}
		keys[aud] = pub
	}
	return &JWTPlugin{
		keys:             keys,
		averageBlockTime: averageBlockTime,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// WithValidator 切换为委托模式
func (p *JWTPlugin) WithValidator(v authn.JWTValidator) *JWTPlugin {
	p.validator = v
	return p
}

// Name 返回插件名称
func (p *JWTPlugin) Name() string {
	return types.KindJWT.String()
}

// Audiences 已配置的 aud 列表
func (p *JWTPlugin) Audiences() []string {
	out := make([]string, 0, len(p.keys))
	for aud := range p.keys {
		out = append(out, aud)
	}
	slices.Sort(out)
	return out
}

// Verify 验证 sig 中携带的紧凑序列化 JWT
func (p *JWTPlugin) Verify(
	ctx context.Context,
	auth *types.JWTAuthenticator,
	vctx *types.VerificationContext,
	sig []byte,
) (bool, error) {
	if p.validator != nil {
		return p.verifyDelegated(ctx, auth, vctx, sig)
	}

	key, ok := p.keys[auth.Aud]
	if !ok {
		return false, types.ErrInvalidJWTAud
	}

	claims := &TxClaims{}
	_, err := p.parser.ParseWithClaims(string(sig), claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return false, fmt.Errorf("%w: %w", types.ErrInvalidSignature, err)
		}
		return false, fmt.Errorf("%w: %w", types.ErrInvalidToken, err)
	}

	if err := p.checkClaims(claims, auth, vctx); err != nil {
		return false, err
	}
	return true, nil
}

// checkClaims 签名通过后的声明校验
func (p *JWTPlugin) checkClaims(claims *TxClaims, auth *types.JWTAuthenticator, vctx *types.VerificationContext) error {
	if !strings.EqualFold(claims.Subject, auth.Sub) {
		return fmt.Errorf("%w: subject mismatch", types.ErrInvalidToken)
	}
	if !slices.Contains([]string(claims.Audience), auth.Aud) {
		return fmt.Errorf("%w: audience mismatch", types.ErrInvalidToken)
	}
	if claims.ExpiresAt == nil || claims.NotBefore == nil {
		return fmt.Errorf("%w: exp and nbf are required", types.ErrInvalidToken)
	}

	current := vctx.BlockTime
	exp := claims.ExpiresAt.Unix()
	if exp < 0 || uint64(exp) < current {
		return &types.InvalidTimeError{Current: current, Received: clampUnix(exp)}
	}
	nbf := claims.NotBefore.Unix()
	if nbf > 0 && uint64(nbf) > current+p.averageBlockTime {
		return &types.InvalidTimeError{Current: current, Received: uint64(nbf)}
	}

	expected := vctx.BindingHash()
	if !bytes.Equal(expected, claims.TransactionHash) {
		return &types.InvalidSignatureDetailError{
			Expected: base64.RawURLEncoding.EncodeToString(expected),
			Received: base64.RawURLEncoding.EncodeToString(claims.TransactionHash),
		}
	}
	return nil
}

func (p *JWTPlugin) verifyDelegated(
	ctx context.Context,
	auth *types.JWTAuthenticator,
	vctx *types.VerificationContext,
	sig []byte,
) (bool, error) {
	err := p.validator.ValidateJWT(ctx, &types.JWTValidateRequest{
		Aud:      auth.Aud,
		Sub:      auth.Sub,
		SigBytes: string(sig),
		TxHash:   vctx.BindingHash(),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Register 验证注册 token，交易哈希声明绑定账户地址字节
func (p *JWTPlugin) Register(
	ctx context.Context,
	vctx *types.VerificationContext,
	add *types.AddJWT,
) (types.Authenticator, error) {
	auth := add.Project().(*types.JWTAuthenticator)
	ok, err := p.Verify(ctx, auth, vctx, add.Token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrInvalidSignature
	}
	return auth, nil
}

// ParseRSAKeyEntry 解析 "modulus_b64url;exponent_b64url"
func ParseRSAKeyEntry(entry string) (*rsa.PublicKey, error) {
	modPart, expPart, found := strings.Cut(entry, ";")
	if !found {
		return nil, fmt.Errorf("%w: key entry needs modulus;exponent", types.ErrInvalidJWTAud)
	}
	modBytes, err := base64.RawURLEncoding.DecodeString(modPart)
	if err != nil {
		return nil, fmt.Errorf("%w: modulus: %v", types.ErrInvalidJWTAud, err)
	}
	expBytes, err := base64.RawURLEncoding.DecodeString(expPart)
	if err != nil {
		return nil, fmt.Errorf("%w: exponent: %v", types.ErrInvalidJWTAud, err)
	}
	e := new(big.Int).SetBytes(expBytes)
	if len(modBytes) == 0 || !e.IsInt64() || e.Int64() < 3 || e.Int64() > 1<<31-1 {
		return nil, fmt.Errorf("%w: invalid rsa key", types.ErrInvalidJWTAud)
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(modBytes), E: int(e.Int64())}, nil
}

// EncodeRSAKeyEntry 生成配置表使用的密钥字符串
func EncodeRSAKeyEntry(pub *rsa.PublicKey) string {
	return base64.RawURLEncoding.EncodeToString(pub.N.Bytes()) + ";" +
		base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes())
}

func clampUnix(v int64) uint64 {
	if v < 0 {
		return 0
	}
	return uint64(v)
}
