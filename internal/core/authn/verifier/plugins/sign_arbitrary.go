package plugins

import (
	"encoding/base64"
	"encoding/json"
)

// signDoc ADR-36 离线签名文档，字段顺序即序列化顺序（按键名排序）
type signDoc struct {
	AccountNumber string    `json:"account_number"`
	ChainID       string    `json:"chain_id"`
	Fee           signFee   `json:"fee"`
	Memo          string    `json:"memo"`
	Msgs          []signMsg `json:"msgs"`
	Sequence      string    `json:"sequence"`
}

type signFee struct {
	Amount []struct{} `json:"amount"`
	Gas    string     `json:"gas"`
}

type signMsg struct {
	Type  string       `json:"type"`
	Value signMsgValue `json:"value"`
}

type signMsgValue struct {
	Data   string `json:"data"`
	Signer string `json:"signer"`
}

// WrapSignArbitrary 构造 sign-arbitrary 信封
//
// data 为消息的标准 base64 编码，signer 为签名者 bech32 地址。
func WrapSignArbitrary(msg []byte, signer string) []byte {
	doc := signDoc{
		AccountNumber: "0",
		Fee: signFee{
			Amount: []struct{}{},
			Gas:    "0",
		},
		Msgs: []signMsg{{
			Type: "sign/MsgSignData",
			Value: signMsgValue{
				Data:   base64.StdEncoding.EncodeToString(msg),
				Signer: signer,
			},
		}},
		Sequence: "0",
	}
	// 结构体只含字符串与切片，序列化不会失败
	out, _ := json.Marshal(doc)
	return out
}
