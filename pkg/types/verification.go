package types

import "crypto/sha256"

// VerificationContext 单次验证的账户范围上下文
//
// 🎯 **核心职责**：为所有验证器提供同一份只读输入：
// - Message: 被签名的原始载荷（交易字节，注册时为账户地址字节）
// - Digest: SHA-256(Message)
// - BlockTime: 区块时间（秒），同一交易内所有验证器看到的值相同
// - AccountAddress: 账户自身地址
//
// ⚠️ 验证器不得读取墙钟时间或随机数，BlockTime 是唯一的"当前时间"。
type VerificationContext struct {
	AccountAddress string
	BlockTime      uint64
	Message        []byte
	Digest         []byte
	Registration   bool
}

// NewTxContext 构建交易授权上下文
func NewTxContext(accountAddress string, blockTime uint64, txBytes []byte) *VerificationContext {
	digest := sha256.Sum256(txBytes)
	return &VerificationContext{
		AccountAddress: accountAddress,
		BlockTime:      blockTime,
		Message:        txBytes,
		Digest:         digest[:],
	}
}

// NewRegistrationContext 构建注册证明上下文，签名载荷为账户地址的字节形式
func NewRegistrationContext(accountAddress string, blockTime uint64) *VerificationContext {
	msg := []byte(accountAddress)
	digest := sha256.Sum256(msg)
	return &VerificationContext{
		AccountAddress: accountAddress,
		BlockTime:      blockTime,
		Message:        msg,
		Digest:         digest[:],
		Registration:   true,
	}
}

// BindingHash 返回 JWT transaction_hash 声明与 passkey 挑战所绑定的值
//
// 交易授权时为交易摘要；注册时为账户地址原始字节。
func (c *VerificationContext) BindingHash() []byte {
	if c.Registration {
		return c.Message
	}
	return c.Digest
}
