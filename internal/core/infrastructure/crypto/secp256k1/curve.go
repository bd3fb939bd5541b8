// Package secp256k1 封装 btcd/btcec 的 secp256k1 签名验证
package secp256k1

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	dcrsecp "github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	// DigestLength 消息摘要长度
	DigestLength = 32
	// CompactSignatureLength r||s 签名长度
	CompactSignatureLength = 64
)

// Curve 封装 secp256k1 椭圆曲线操作
type Curve struct{}

// NewCurve 创建新的 secp256k1 曲线实例
func NewCurve() *Curve {
	return &Curve{}
}

// ParsePubKey 解析压缩或未压缩公钥
func (c *Curve) ParsePubKey(pubKey []byte) (*btcec.PublicKey, error) {
	key, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		return nil, &ErrInvalidPublicKey{Err: err}
	}
	return key, nil
}

// ParseCompactSignature 解析 64 字节 r||s 签名
//
// r、s 必须落在 [1, n-1] 内。高半区的 s 归一化为 n-s 后再验证，
// 与宿主链 secp256k1_verify 的行为一致：(r, s) 与 (r, n-s) 是同一签名的两种形式。
func (c *Curve) ParseCompactSignature(signature []byte) (*ecdsa.Signature, error) {
	if len(signature) != CompactSignatureLength {
		return nil, &ErrInvalidSignatureLength{Expected: CompactSignatureLength, Got: len(signature)}
	}
	var r, s dcrsecp.ModNScalar
	if overflow := r.SetByteSlice(signature[:32]); overflow || r.IsZero() {
		return nil, ErrScalarOutOfRange
	}
	if overflow := s.SetByteSlice(signature[32:]); overflow || s.IsZero() {
		return nil, ErrScalarOutOfRange
	}
	if s.IsOverHalfOrder() {
		s.Negate()
	}
	return ecdsa.NewSignature(&r, &s), nil
}

// VerifyDigest 验证 32 字节摘要上的 r||s 签名
func (c *Curve) VerifyDigest(pubKey, digest, signature []byte) (bool, error) {
	if len(digest) != DigestLength {
		return false, &ErrInvalidHashLength{Expected: DigestLength, Got: len(digest)}
	}
	key, err := c.ParsePubKey(pubKey)
	if err != nil {
		return false, err
	}
	sig, err := c.ParseCompactSignature(signature)
	if err != nil {
		return false, err
	}
	return sig.Verify(digest, key), nil
}

// 错误类型定义

// ErrScalarOutOfRange r 或 s 为零或不小于曲线阶
var ErrScalarOutOfRange = errors.New("signature scalar out of range")

// ErrInvalidSignatureLength 签名长度无效
type ErrInvalidSignatureLength struct {
	Expected int
	Got      int
}

func (e *ErrInvalidSignatureLength) Error() string {
	return fmt.Sprintf("无效的签名长度: 期望 %d 字节，实际 %d 字节", e.Expected, e.Got)
}

// ErrInvalidHashLength 哈希长度无效
type ErrInvalidHashLength struct {
	Expected int
	Got      int
}

func (e *ErrInvalidHashLength) Error() string {
	return fmt.Sprintf("无效的哈希长度: 期望 %d 字节，实际 %d 字节", e.Expected, e.Got)
}

// ErrInvalidPublicKey 公钥无法解析
type ErrInvalidPublicKey struct {
	Err error
}

func (e *ErrInvalidPublicKey) Error() string {
	return fmt.Sprintf("公钥解析失败: %v", e.Err)
}

func (e *ErrInvalidPublicKey) Unwrap() error {
	return e.Err
}
