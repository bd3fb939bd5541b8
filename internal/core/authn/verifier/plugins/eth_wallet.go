package plugins

import (
	"context"
	"fmt"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/absacc/pkg/types"
)

// EthSignatureLength r(32) || s(32) || v(1)
const EthSignatureLength = 65

// EthWalletPlugin 以太坊钱包验证插件
//
// 🎯 **核心职责**：对 personal_sign 消息哈希恢复公钥，派生地址后与存储地址比较
//
// ⚠️ **约束**：
// - 签名的是原始交易字节（带以太坊消息前缀），不是交易摘要
// - 恢复 ID 只接受 0/1/27/28，其它值在恢复前直接拒绝
// - 地址比较不区分大小写（兼容 EIP-55 校验和地址）
type EthWalletPlugin struct {
	hashManager crypto.HashManager
	addrManager crypto.AddressManager
}

// NewEthWalletPlugin 创建以太坊钱包插件
func NewEthWalletPlugin(hashManager crypto.HashManager, addrManager crypto.AddressManager) *EthWalletPlugin {
	return &EthWalletPlugin{
		hashManager: hashManager,
		addrManager: addrManager,
	}
}

// Name 返回插件名称
func (p *EthWalletPlugin) Name() string {
	return types.KindEthWallet.String()
}

// Verify 验证签名
//
// 恢复出的地址与存储地址不一致时返回 types.ErrRecoveredPubkeyMismatch。
func (p *EthWalletPlugin) Verify(
	ctx context.Context,
	auth *types.EthWalletAuthenticator,
	vctx *types.VerificationContext,
	sig []byte,
) (bool, error) {
	if err := p.addrManager.ValidateEthAddress(auth.Address); err != nil {
		return false, fmt.Errorf("%w: %w", types.ErrInvalidEthAddress, err)
	}
	if len(sig) != EthSignatureLength {
		return false, fmt.Errorf("%w: eth signature must be %d bytes, got %d",
			types.ErrSignatureLength, EthSignatureLength, len(sig))
	}
	recoveryID, err := NormalizeRecoveryID(sig[64])
	if err != nil {
		return false, err
	}

	rsv := make([]byte, EthSignatureLength)
	copy(rsv, sig[:64])
	rsv[64] = recoveryID

	hash := p.hashManager.EthereumMessageHash(vctx.Message)
	pub, err := ethcrypto.SigToPub(hash, rsv)
	if err != nil {
		return false, fmt.Errorf("%w: recover public key: %v", types.ErrMalformedInput, err)
	}

	recovered := ethcrypto.PubkeyToAddress(*pub).Hex()
	if !strings.EqualFold(recovered, auth.Address) {
		return false, types.ErrRecoveredPubkeyMismatch
	}
	return true, nil
}

// Register 验证注册签名
func (p *EthWalletPlugin) Register(
	ctx context.Context,
	vctx *types.VerificationContext,
	add *types.AddEthWallet,
) (types.Authenticator, error) {
	auth := add.Project().(*types.EthWalletAuthenticator)
	ok, err := p.Verify(ctx, auth, vctx, add.Signature)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrInvalidSignature
	}
	return auth, nil
}

// NormalizeRecoveryID 将 {0,1,27,28} 归一化为 {0,1}
func NormalizeRecoveryID(v byte) (byte, error) {
	switch v {
	case 0, 1:
		return v, nil
	case 27, 28:
		return v - 27, nil
	default:
		return 0, types.ErrInvalidRecoveryID
	}
}
