// Package hash 提供认证引擎的哈希计算服务
package hash

import (
	"crypto/sha256"
	"strconv"

	cryptointf "github.com/weisyn/absacc/pkg/interfaces/infrastructure/crypto"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // Cosmos 地址派生需要 RIPEMD-160
	"golang.org/x/crypto/sha3"
)

// ethMessagePrefix personal_sign 前缀
const ethMessagePrefix = "\x19Ethereum Signed Message:\n"

var _ cryptointf.HashManager = (*HashService)(nil)

// HashService 无状态哈希服务，可并发使用
type HashService struct{}

// NewHashService 创建新的哈希服务
func NewHashService() *HashService {
	return &HashService{}
}

// SHA256 计算SHA-256哈希，返回32字节
func (s *HashService) SHA256(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}

// Keccak256 计算Keccak-256哈希，返回32字节
func (s *HashService) Keccak256(data []byte) []byte {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data)
	return hasher.Sum(nil)
}

// RIPEMD160 计算RIPEMD-160哈希，返回20字节
func (s *HashService) RIPEMD160(data []byte) []byte {
	hasher := ripemd160.New()
	hasher.Write(data)
	return hasher.Sum(nil)
}

// Hash160 计算 RIPEMD160(SHA256(data))
func (s *HashService) Hash160(data []byte) []byte {
	return s.RIPEMD160(s.SHA256(data))
}

// EthereumMessageHash 计算以太坊签名消息哈希
//
// 长度为原始消息字节数的十进制表示。
func (s *HashService) EthereumMessageHash(msg []byte) []byte {
	buf := make([]byte, 0, len(ethMessagePrefix)+20+len(msg))
	buf = append(buf, ethMessagePrefix...)
	buf = strconv.AppendInt(buf, int64(len(msg)), 10)
	buf = append(buf, msg...)
	return s.Keccak256(buf)
}
