package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName 内容子类型，请求头为 application/grpc+json
const CodecName = "json"

// jsonCodec 以 JSON 编码查询消息，避免为宿主链查询服务生成 protobuf 代码
type jsonCodec struct{}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}
