package types

import "fmt"

// AuthenticatorID 账户内认证器编号（0-255）
type AuthenticatorID uint8

// AuthenticatorKind 认证方案标签
type AuthenticatorKind string

const (
	KindSecp256K1 AuthenticatorKind = "secp256k1"
	KindEd25519   AuthenticatorKind = "ed25519"
	KindEthWallet AuthenticatorKind = "eth_wallet"
	KindSecp256R1 AuthenticatorKind = "secp256r1"
	KindJWT       AuthenticatorKind = "jwt"
	KindPasskey   AuthenticatorKind = "passkey"
	KindZKEmail   AuthenticatorKind = "zk_email"
)

// String 实现 fmt.Stringer
func (k AuthenticatorKind) String() string {
	return string(k)
}

// Valid 判断是否为受支持的方案
func (k AuthenticatorKind) Valid() bool {
	switch k {
	case KindSecp256K1, KindEd25519, KindEthWallet, KindSecp256R1, KindJWT, KindPasskey, KindZKEmail:
		return true
	}
	return false
}

// Authenticator 已持久化的认证器（只包含公开身份材料）
//
// 🎯 **核心约束**：
// - 封闭的和类型，每个方案一个变体，新增方案只能新增变体
// - 创建后不可变，替换必须先删除再添加
//
// 变体：
//   - *Secp256K1Authenticator
//   - *Ed25519Authenticator
//   - *EthWalletAuthenticator
//   - *Secp256R1Authenticator
//   - *JWTAuthenticator
//   - *PasskeyAuthenticator
//   - *ZKEmailAuthenticator
type Authenticator interface {
	Kind() AuthenticatorKind
	sealedAuthenticator()
}

// Secp256K1Authenticator secp256k1 公钥（33字节压缩或65字节未压缩）
type Secp256K1Authenticator struct {
	PubKey []byte `json:"pubkey"`
}

// Ed25519Authenticator Ed25519 公钥（32字节）
type Ed25519Authenticator struct {
	PubKey []byte `json:"pubkey"`
}

// EthWalletAuthenticator 以太坊地址（0x + 40位十六进制）
type EthWalletAuthenticator struct {
	Address string `json:"address"`
}

// Secp256R1Authenticator P-256 公钥（SEC1 压缩或未压缩）
type Secp256R1Authenticator struct {
	PubKey []byte `json:"pubkey"`
}

// JWTAuthenticator (audience, subject) 二元组
type JWTAuthenticator struct {
	Aud string `json:"aud"`
	Sub string `json:"sub"`
}

// PasskeyAuthenticator 依赖方来源 + 预言机返回的 passkey 凭证
type PasskeyAuthenticator struct {
	URL     string `json:"url"`
	Passkey []byte `json:"passkey"`
}

// ZKEmailAuthenticator Groth16 验证密钥、邮箱承诺与 DKIM 域名
type ZKEmailAuthenticator struct {
	VKey       []byte `json:"vkey"`
	EmailHash  []byte `json:"email_hash"`
	DkimDomain string `json:"dkim_domain"`
}

func (*Secp256K1Authenticator) Kind() AuthenticatorKind { return KindSecp256K1 }
func (*Ed25519Authenticator) Kind() AuthenticatorKind   { return KindEd25519 }
func (*EthWalletAuthenticator) Kind() AuthenticatorKind { return KindEthWallet }
func (*Secp256R1Authenticator) Kind() AuthenticatorKind { return KindSecp256R1 }
func (*JWTAuthenticator) Kind() AuthenticatorKind       { return KindJWT }
func (*PasskeyAuthenticator) Kind() AuthenticatorKind   { return KindPasskey }
func (*ZKEmailAuthenticator) Kind() AuthenticatorKind   { return KindZKEmail }

func (*Secp256K1Authenticator) sealedAuthenticator() {}
func (*Ed25519Authenticator) sealedAuthenticator()   {}
func (*EthWalletAuthenticator) sealedAuthenticator() {}
func (*Secp256R1Authenticator) sealedAuthenticator() {}
func (*JWTAuthenticator) sealedAuthenticator()       {}
func (*PasskeyAuthenticator) sealedAuthenticator()   {}
func (*ZKEmailAuthenticator) sealedAuthenticator()   {}

// newAuthenticator 按标签创建空变体（用于解码）
func newAuthenticator(kind AuthenticatorKind) (Authenticator, error) {
	switch kind {
	case KindSecp256K1:
		return &Secp256K1Authenticator{}, nil
	case KindEd25519:
		return &Ed25519Authenticator{}, nil
	case KindEthWallet:
		return &EthWalletAuthenticator{}, nil
	case KindSecp256R1:
		return &Secp256R1Authenticator{}, nil
	case KindJWT:
		return &JWTAuthenticator{}, nil
	case KindPasskey:
		return &PasskeyAuthenticator{}, nil
	case KindZKEmail:
		return &ZKEmailAuthenticator{}, nil
	default:
		return nil, unknownKind(kind)
	}
}

func unknownKind(kind AuthenticatorKind) error {
	return fmt.Errorf("%w: unknown authenticator kind %q", ErrMalformedInput, string(kind))
}
