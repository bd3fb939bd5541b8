package types

// AddAuthenticator 注册期认证器
//
// 🎯 **核心职责**：携带与 Authenticator 相同的身份材料，外加一次性证明。
// 证明必须先对账户自身地址验证通过，才允许持久化公开投影（Project）。
type AddAuthenticator interface {
	// ID 目标认证器编号
	ID() AuthenticatorID
	// Kind 方案标签
	Kind() AuthenticatorKind
	// Project 返回不含证明的公开投影
	Project() Authenticator
	sealedAddAuthenticator()
}

// AddSecp256K1 注册 secp256k1 认证器
type AddSecp256K1 struct {
	Id        AuthenticatorID `json:"id"`
	PubKey    []byte          `json:"pubkey"`
	Signature []byte          `json:"signature"`
}

// AddEd25519 注册 Ed25519 认证器
type AddEd25519 struct {
	Id        AuthenticatorID `json:"id"`
	PubKey    []byte          `json:"pubkey"`
	Signature []byte          `json:"signature"`
}

// AddEthWallet 注册以太坊钱包认证器
type AddEthWallet struct {
	Id        AuthenticatorID `json:"id"`
	Address   string          `json:"address"`
	Signature []byte          `json:"signature"`
}

// AddSecp256R1 注册 P-256 认证器
type AddSecp256R1 struct {
	Id        AuthenticatorID `json:"id"`
	PubKey    []byte          `json:"pubkey"`
	Signature []byte          `json:"signature"`
}

// AddJWT 注册 JWT 认证器，Token 为紧凑序列化的 JWT
type AddJWT struct {
	Id    AuthenticatorID `json:"id"`
	Aud   string          `json:"aud"`
	Sub   string          `json:"sub"`
	Token []byte          `json:"token"`
}

// AddPasskey 注册 passkey 认证器
//
// Credential 为 WebAuthn 注册数据；注册成功后由预言机返回的 passkey 替换，
// 便于索引器观察到最终持久化的凭证。
type AddPasskey struct {
	Id         AuthenticatorID `json:"id"`
	URL        string          `json:"url"`
	Credential []byte          `json:"credential"`
}

// AddZKEmail 注册 ZK-Email 认证器
type AddZKEmail struct {
	Id         AuthenticatorID `json:"id"`
	VKey       []byte          `json:"vkey"`
	EmailHash  []byte          `json:"email_hash"`
	DkimDomain string          `json:"dkim_domain"`
	Proof      []byte          `json:"proof"`
}

func (a *AddSecp256K1) ID() AuthenticatorID { return a.Id }
func (a *AddEd25519) ID() AuthenticatorID   { return a.Id }
func (a *AddEthWallet) ID() AuthenticatorID { return a.Id }
func (a *AddSecp256R1) ID() AuthenticatorID { return a.Id }
func (a *AddJWT) ID() AuthenticatorID       { return a.Id }
func (a *AddPasskey) ID() AuthenticatorID   { return a.Id }
func (a *AddZKEmail) ID() AuthenticatorID   { return a.Id }

func (*AddSecp256K1) Kind() AuthenticatorKind { return KindSecp256K1 }
func (*AddEd25519) Kind() AuthenticatorKind   { return KindEd25519 }
func (*AddEthWallet) Kind() AuthenticatorKind { return KindEthWallet }
func (*AddSecp256R1) Kind() AuthenticatorKind { return KindSecp256R1 }
func (*AddJWT) Kind() AuthenticatorKind       { return KindJWT }
func (*AddPasskey) Kind() AuthenticatorKind   { return KindPasskey }
func (*AddZKEmail) Kind() AuthenticatorKind   { return KindZKEmail }

func (a *AddSecp256K1) Project() Authenticator {
	return &Secp256K1Authenticator{PubKey: cloneBytes(a.PubKey)}
}

func (a *AddEd25519) Project() Authenticator {
	return &Ed25519Authenticator{PubKey: cloneBytes(a.PubKey)}
}

func (a *AddEthWallet) Project() Authenticator {
	return &EthWalletAuthenticator{Address: a.Address}
}

func (a *AddSecp256R1) Project() Authenticator {
	return &Secp256R1Authenticator{PubKey: cloneBytes(a.PubKey)}
}

func (a *AddJWT) Project() Authenticator {
	return &JWTAuthenticator{Aud: a.Aud, Sub: a.Sub}
}

// Project passkey 的投影在预言机注册之前只有 URL，Passkey 由注册流程填充
func (a *AddPasskey) Project() Authenticator {
	return &PasskeyAuthenticator{URL: a.URL}
}

func (a *AddZKEmail) Project() Authenticator {
	return &ZKEmailAuthenticator{
		VKey:       cloneBytes(a.VKey),
		EmailHash:  cloneBytes(a.EmailHash),
		DkimDomain: a.DkimDomain,
	}
}

func (*AddSecp256K1) sealedAddAuthenticator() {}
func (*AddEd25519) sealedAddAuthenticator()   {}
func (*AddEthWallet) sealedAddAuthenticator() {}
func (*AddSecp256R1) sealedAddAuthenticator() {}
func (*AddJWT) sealedAddAuthenticator()       {}
func (*AddPasskey) sealedAddAuthenticator()   {}
func (*AddZKEmail) sealedAddAuthenticator()   {}

func newAddAuthenticator(kind AuthenticatorKind) (AddAuthenticator, error) {
	switch kind {
	case KindSecp256K1:
		return &AddSecp256K1{}, nil
	case KindEd25519:
		return &AddEd25519{}, nil
	case KindEthWallet:
		return &AddEthWallet{}, nil
	case KindSecp256R1:
		return &AddSecp256R1{}, nil
	case KindJWT:
		return &AddJWT{}, nil
	case KindPasskey:
		return &AddPasskey{}, nil
	case KindZKEmail:
		return &AddZKEmail{}, nil
	default:
		return nil, unknownKind(kind)
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
