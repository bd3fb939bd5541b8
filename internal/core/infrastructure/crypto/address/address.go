// Package address 提供 bech32 账户地址与以太坊地址格式处理
package address

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	cryptointf "github.com/weisyn/absacc/pkg/interfaces/infrastructure/crypto"
)

const (
	// CompressedPublicKeyLength 压缩公钥长度（33字节）
	CompressedPublicKeyLength = 33
	// EthAddressHexLength 以太坊地址十六进制字符数
	EthAddressHexLength = 40
)

var (
	// ErrInvalidPublicKey 无效的公钥
	ErrInvalidPublicKey = errors.New("invalid public key format")
	// ErrInvalidAddress 无效的地址格式
	ErrInvalidAddress = errors.New("invalid address format")
)

// AddressService 地址编码服务
type AddressService struct {
	hasher cryptointf.HashManager
}

var _ cryptointf.AddressManager = (*AddressService)(nil)

// NewAddressService 创建地址服务
func NewAddressService(hasher cryptointf.HashManager) *AddressService {
	return &AddressService{hasher: hasher}
}

// PubKeyToBech32 prefix + bech32(Hash160(pubkey))
func (s *AddressService) PubKeyToBech32(prefix string, pubKey []byte) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("%w: empty bech32 prefix", ErrInvalidAddress)
	}
	if len(pubKey) != CompressedPublicKeyLength {
		return "", fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPublicKey, CompressedPublicKeyLength, len(pubKey))
	}
	conv, err := bech32.ConvertBits(s.hasher.Hash160(pubKey), 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("convert bits: %w", err)
	}
	addr, err := bech32.Encode(prefix, conv)
	if err != nil {
		return "", fmt.Errorf("bech32 encode: %w", err)
	}
	return addr, nil
}

// DecodeBech32 解码 bech32 地址
func (s *AddressService) DecodeBech32(address string) (string, []byte, error) {
	hrp, data, err := bech32.Decode(address)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return hrp, raw, nil
}

// ValidateEthAddress 校验 "0x" + 40 位十六进制，大小写不敏感
func (s *AddressService) ValidateEthAddress(address string) error {
	if !strings.HasPrefix(address, "0x") && !strings.HasPrefix(address, "0X") {
		return fmt.Errorf("%w: missing 0x prefix", ErrInvalidAddress)
	}
	body := address[2:]
	if len(body) != EthAddressHexLength {
		return fmt.Errorf("%w: expected %d hex chars, got %d", ErrInvalidAddress, EthAddressHexLength, len(body))
	}
	if _, err := hex.DecodeString(body); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return nil
}
