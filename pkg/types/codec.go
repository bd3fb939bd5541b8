package types

import (
	"encoding/json"
	"fmt"
)

// taggedEnvelope 和类型的 JSON 外壳：{"kind": "...", "data": {...}}
type taggedEnvelope struct {
	Kind AuthenticatorKind `json:"kind"`
	Data json.RawMessage   `json:"data"`
}

// MarshalAuthenticator 将认证器编码为带标签的 JSON
func MarshalAuthenticator(a Authenticator) ([]byte, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil authenticator", ErrMalformedInput)
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("编码认证器失败: %w", err)
	}
	return json.Marshal(taggedEnvelope{Kind: a.Kind(), Data: data})
}

// UnmarshalAuthenticator 解码带标签的认证器 JSON
func UnmarshalAuthenticator(raw []byte) (Authenticator, error) {
	var env taggedEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	a, err := newAuthenticator(env.Kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(env.Data, a); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedInput, env.Kind, err)
	}
	return a, nil
}

// MarshalAddAuthenticator 将注册期认证器编码为带标签的 JSON
func MarshalAddAuthenticator(a AddAuthenticator) ([]byte, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil add authenticator", ErrMalformedInput)
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("编码注册认证器失败: %w", err)
	}
	return json.Marshal(taggedEnvelope{Kind: a.Kind(), Data: data})
}

// UnmarshalAddAuthenticator 解码带标签的注册期认证器 JSON
func UnmarshalAddAuthenticator(raw []byte) (AddAuthenticator, error) {
	var env taggedEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	a, err := newAddAuthenticator(env.Kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(env.Data, a); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedInput, env.Kind, err)
	}
	return a, nil
}
