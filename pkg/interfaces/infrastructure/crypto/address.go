package crypto

// AddressManager 账户地址编码接口
type AddressManager interface {
	// PubKeyToBech32 将 secp256k1 压缩公钥编码为 bech32 账户地址
	// 地址数据为 Hash160(pubkey)
	PubKeyToBech32(prefix string, pubKey []byte) (string, error)

	// DecodeBech32 解码 bech32 地址，返回前缀和原始数据
	DecodeBech32(address string) (string, []byte, error)

	// ValidateEthAddress 校验 0x 前缀的 20 字节十六进制地址
	ValidateEthAddress(address string) error
}
