package types

import (
	"errors"
	"fmt"
)

// 认证错误（哨兵值，调用方使用 errors.Is 判断）
var (
	// 授权类
	ErrInvalidSignature = errors.New("invalid signature")
	ErrUnauthorized     = errors.New("unauthorized")

	// 输入格式类
	ErrEmptySignature       = errors.New("signature is empty")
	ErrShortSignature       = errors.New("signature is too short")
	ErrSignatureLength      = errors.New("signature length does not match scheme")
	ErrMalformedInput       = errors.New("malformed input")
	ErrInvalidToken         = errors.New("invalid jwt token")
	ErrInvalidEthAddress    = errors.New("invalid ethereum address")
	ErrRebuildingKey        = errors.New("error rebuilding key")
	ErrEmissionSizeExceeded = errors.New("emission size exceeded")

	// 密码学拒绝类
	ErrInvalidRecoveryID       = errors.New("recovery id can only be one of 0, 1, 27, 28")
	ErrRecoveredPubkeyMismatch = errors.New("recovered pubkey does not match stored pubkey")

	// 信任锚查找类
	ErrInvalidJWTAud = errors.New("invalid jwt aud")
	ErrInvalidDkim   = errors.New("invalid dkim public key")

	// 注册表不变量类
	ErrMinimumAuthenticatorCount = errors.New("cannot delete the last authenticator")
	ErrAuthenticatorNotFound     = errors.New("authenticator not found")

	// 预言机类
	ErrOracleUnavailable = errors.New("oracle call failed")
)

// InvalidTimeError JWT 时间窗口错误
type InvalidTimeError struct {
	Current  uint64
	Received uint64
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid time on signature. current: %d received: %d", e.Current, e.Received)
}

// InvalidSignatureDetailError 交易哈希绑定不一致，两端均为 URL-safe 无填充 base64
type InvalidSignatureDetailError struct {
	Expected string
	Received string
}

func (e *InvalidSignatureDetailError) Error() string {
	return fmt.Sprintf("signature is invalid. expected: %s, received %s", e.Expected, e.Received)
}

// OverridingIndexError 注册编号已被占用
type OverridingIndexError struct {
	Index AuthenticatorID
}

func (e *OverridingIndexError) Error() string {
	return fmt.Sprintf("cannot override existing authenticator at index %d", e.Index)
}

// URLParseError 依赖方 URL 无法解析
type URLParseError struct {
	URL string
}

func (e *URLParseError) Error() string {
	return fmt.Sprintf("url parse error: %s", e.URL)
}

// ErrorKind 错误分类
type ErrorKind string

const (
	KindMalformedInput    ErrorKind = "malformed_input"
	KindCryptoRejection   ErrorKind = "crypto_rejection"
	KindTrustLookup       ErrorKind = "trust_lookup"
	KindTimeWindow        ErrorKind = "time_window"
	KindRegistryInvariant ErrorKind = "registry_invariant"
	KindAuthorization     ErrorKind = "authorization"
	KindOracle            ErrorKind = "oracle"
	KindInternal          ErrorKind = "internal"
)

// ClassifyError 将任意错误归入错误分类
func ClassifyError(err error) ErrorKind {
	var (
		timeErr     *InvalidTimeError
		detailErr   *InvalidSignatureDetailError
		overrideErr *OverridingIndexError
		urlErr      *URLParseError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &timeErr):
		return KindTimeWindow
	case errors.As(err, &overrideErr),
		errors.Is(err, ErrMinimumAuthenticatorCount),
		errors.Is(err, ErrAuthenticatorNotFound):
		return KindRegistryInvariant
	case errors.Is(err, ErrInvalidJWTAud), errors.Is(err, ErrInvalidDkim):
		return KindTrustLookup
	case errors.Is(err, ErrOracleUnavailable):
		return KindOracle
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidSignature):
		return KindAuthorization
	case errors.As(err, &detailErr),
		errors.Is(err, ErrInvalidRecoveryID),
		errors.Is(err, ErrRecoveredPubkeyMismatch):
		return KindCryptoRejection
	case errors.As(err, &urlErr),
		errors.Is(err, ErrEmptySignature),
		errors.Is(err, ErrShortSignature),
		errors.Is(err, ErrSignatureLength),
		errors.Is(err, ErrMalformedInput),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrInvalidEthAddress),
		errors.Is(err, ErrRebuildingKey),
		errors.Is(err, ErrEmissionSizeExceeded):
		return KindMalformedInput
	default:
		return KindInternal
	}
}
