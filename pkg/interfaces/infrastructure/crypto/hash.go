// Package crypto 定义认证引擎使用的哈希与地址编码接口
package crypto

// HashManager 哈希计算接口
type HashManager interface {
	// SHA256 计算SHA-256哈希
	SHA256(data []byte) []byte

	// Keccak256 计算Keccak-256哈希（以太坊旧版填充）
	Keccak256(data []byte) []byte

	// RIPEMD160 计算RIPEMD-160哈希
	RIPEMD160(data []byte) []byte

	// Hash160 计算 RIPEMD160(SHA256(data))，用于 Cosmos 账户地址
	Hash160(data []byte) []byte

	// EthereumMessageHash 计算 personal_sign 消息哈希：
	// Keccak256("\x19Ethereum Signed Message:\n" + len(msg) + msg)
	EthereumMessageHash(msg []byte) []byte
}
