// Package zkemail 提供 ZK-Email 认证所需的域元素编码、Poseidon 承诺与 Groth16 验证
//
// 电路固定三个公开输入：
//  1. 交易体承诺 TxBodyCommitment
//  2. 邮箱身份承诺 EmailCommitment（注册时计算并存储）
//  3. DKIM 公钥 Poseidon 哈希（由签名携带，经预言机确认）
package zkemail

import (
	"encoding/base64"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/iden3/go-iden3-crypto/poseidon"

	"github.com/weisyn/absacc/pkg/types"
)

const (
	// TxBodyMaxBytes 交易体 base64 编码后的固定缓冲长度
	TxBodyMaxBytes = 512
	// EmailMaxBytes 邮箱地址缓冲长度
	EmailMaxBytes = 256
	// SaltMaxBytes 邮箱盐缓冲长度
	SaltMaxBytes = 31
	// FieldElementSize 域元素编码长度（小端序）
	FieldElementSize = 32

	bytesPerField = 31
	poseidonWidth = 16
)

// TxBodyCommitment 计算交易体承诺
//
// tx 为交易字节的 base64（标准字母表、无填充）编码。
func TxBodyCommitment(tx string) (*big.Int, error) {
	padded, err := padBytes([]byte(tx), TxBodyMaxBytes)
	if err != nil {
		return nil, err
	}
	return foldPoseidon(packBytes(padded))
}

// TxBodyCommitmentFromBytes 对原始交易字节计算承诺
func TxBodyCommitmentFromBytes(txBytes []byte) (*big.Int, error) {
	return TxBodyCommitment(base64.RawStdEncoding.EncodeToString(txBytes))
}

// EmailCommitment 计算邮箱身份承诺：Poseidon(pack(salt) ++ pack(email))
func EmailCommitment(email, salt string) (*big.Int, error) {
	paddedSalt, err := padBytes([]byte(salt), SaltMaxBytes)
	if err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}
	paddedEmail, err := padBytes([]byte(email), EmailMaxBytes)
	if err != nil {
		return nil, fmt.Errorf("email: %w", err)
	}
	elems := append(packBytes(paddedSalt), packBytes(paddedEmail)...)
	return foldPoseidon(elems)
}

// padBytes 右侧补零到固定长度，超长输入视为格式错误
func padBytes(b []byte, length int) ([]byte, error) {
	if len(b) > length {
		return nil, fmt.Errorf("%w: input of %d bytes exceeds %d", types.ErrMalformedInput, len(b), length)
	}
	out := make([]byte, length)
	copy(out, b)
	return out, nil
}

// packBytes 每 31 字节按小端序解释为一个域元素（对 r 取模）
func packBytes(b []byte) []*big.Int {
	modulus := fr.Modulus()
	elems := make([]*big.Int, 0, (len(b)+bytesPerField-1)/bytesPerField)
	for start := 0; start < len(b); start += bytesPerField {
		end := start + bytesPerField
		if end > len(b) {
			end = len(b)
		}
		v := leToBigInt(b[start:end])
		elems = append(elems, v.Mod(v, modulus))
	}
	return elems
}

// foldPoseidon 按 16 个一组哈希，首组单独哈希，其后每组与累加值再哈希一次
func foldPoseidon(elems []*big.Int) (*big.Int, error) {
	var acc *big.Int
	for start := 0; start < len(elems); start += poseidonWidth {
		end := start + poseidonWidth
		if end > len(elems) {
			end = len(elems)
		}
		h, err := poseidon.Hash(elems[start:end])
		if err != nil {
			return nil, fmt.Errorf("poseidon 哈希失败: %w", err)
		}
		if acc == nil {
			acc = h
			continue
		}
		acc, err = poseidon.Hash([]*big.Int{acc, h})
		if err != nil {
			return nil, fmt.Errorf("poseidon 哈希失败: %w", err)
		}
	}
	if acc == nil {
		return new(big.Int), nil
	}
	return acc, nil
}

// DecodeFieldElement 解码 32 字节小端序域元素，拒绝非规范值（>= r）
func DecodeFieldElement(b []byte) (*big.Int, error) {
	if len(b) < FieldElementSize {
		return nil, fmt.Errorf("%w: field element needs %d bytes, got %d", types.ErrMalformedInput, FieldElementSize, len(b))
	}
	v := leToBigInt(b[:FieldElementSize])
	if v.Cmp(fr.Modulus()) >= 0 {
		return nil, fmt.Errorf("%w: field element is not canonical", types.ErrMalformedInput)
	}
	return v, nil
}

// EncodeFieldElement 编码为 32 字节小端序
func EncodeFieldElement(v *big.Int) []byte {
	be := v.Bytes()
	out := make([]byte, FieldElementSize)
	for i := 0; i < len(be) && i < FieldElementSize; i++ {
		out[i] = be[len(be)-1-i]
	}
	return out
}

func leToBigInt(le []byte) *big.Int {
	be := make([]byte, len(le))
	for i := range le {
		be[len(le)-1-i] = le[i]
	}
	return new(big.Int).SetBytes(be)
}
