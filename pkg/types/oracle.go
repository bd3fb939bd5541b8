package types

import "encoding/hex"

// DkimPubKeysRequest DKIM 公钥查询
type DkimPubKeysRequest struct {
	Selector     string `json:"selector"`
	Domain       string `json:"domain"`
	PoseidonHash []byte `json:"poseidon_hash"`
}

// DkimPubKey DKIM 公钥记录
type DkimPubKey struct {
	Domain       string `json:"domain"`
	PubKey       string `json:"pub_key"`
	PoseidonHash []byte `json:"poseidon_hash"`
	Selector     string `json:"selector"`
}

// DkimPubKeysResponse DKIM 公钥查询结果，空列表表示没有匹配的信任锚
type DkimPubKeysResponse struct {
	DkimPubKeys []DkimPubKey `json:"dkim_pub_keys"`
}

// WebAuthnRegisterRequest WebAuthn 注册校验请求
type WebAuthnRegisterRequest struct {
	Addr      string `json:"addr"`
	Challenge string `json:"challenge"`
	RP        string `json:"rp"`
	Data      []byte `json:"data"`
}

// WebAuthnRegisterResponse 注册成功后需要持久化的 passkey 凭证
type WebAuthnRegisterResponse struct {
	Credential []byte `json:"credential"`
}

// WebAuthnAuthenticateRequest WebAuthn 断言校验请求，Challenge 为 base64url(交易摘要)
type WebAuthnAuthenticateRequest struct {
	Addr       string `json:"addr"`
	Challenge  string `json:"challenge"`
	RP         string `json:"rp"`
	Credential []byte `json:"credential"`
	Data       []byte `json:"data"`
}

// WebAuthnAuthenticateResponse 断言校验结果
type WebAuthnAuthenticateResponse struct{}

// JWTValidateRequest 委托 JWT 校验请求
type JWTValidateRequest struct {
	Aud      string `json:"aud"`
	Sub      string `json:"sub"`
	SigBytes string `json:"sig_bytes"`
	TxHash   []byte `json:"tx_hash"`
}

// JWTValidateResponse 委托 JWT 校验结果
type JWTValidateResponse struct{}

// DkimHashKey 以 DKIM 哈希块前 32 字节（小端序域元素）的十六进制作为索引键
func DkimHashKey(poseidonHash []byte) string {
	if len(poseidonHash) > 32 {
		poseidonHash = poseidonHash[:32]
	}
	return hex.EncodeToString(poseidonHash)
}
