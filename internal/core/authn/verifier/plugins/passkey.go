package plugins

import (
	"context"
	"encoding/base64"
	"net/url"

	"github.com/weisyn/absacc/pkg/interfaces/authn"
	"github.com/weisyn/absacc/pkg/types"
)

// PasskeyPlugin WebAuthn/passkey 验证插件
//
// 断言验证完全委托给依赖方预言机，挑战值为 base64url(交易摘要)。
// 预言机返回错误或不可达时一律失败（fail closed）。
type PasskeyPlugin struct {
	oracle authn.WebAuthnVerifier
}

// NewPasskeyPlugin 创建 passkey 插件
func NewPasskeyPlugin(oracle authn.WebAuthnVerifier) *PasskeyPlugin {
	return &PasskeyPlugin{oracle: oracle}
}

// Name 返回插件名称
func (p *PasskeyPlugin) Name() string {
	return types.KindPasskey.String()
}

// Verify 通过预言机校验断言
func (p *PasskeyPlugin) Verify(
	ctx context.Context,
	auth *types.PasskeyAuthenticator,
	vctx *types.VerificationContext,
	sig []byte,
) (bool, error) {
	if err := validateOrigin(auth.URL); err != nil {
		return false, err
	}
	if p.oracle == nil {
		return false, types.ErrOracleUnavailable
	}
	err := p.oracle.VerifyAuthenticate(ctx, &types.WebAuthnAuthenticateRequest{
		Addr:       vctx.AccountAddress,
		Challenge:  base64.RawURLEncoding.EncodeToString(vctx.BindingHash()),
		RP:         auth.URL,
		Credential: auth.Passkey,
		Data:       sig,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Register 通过预言机校验注册数据，返回携带预言机凭证的投影
//
// 注册挑战为账户地址本身。
func (p *PasskeyPlugin) Register(
	ctx context.Context,
	vctx *types.VerificationContext,
	add *types.AddPasskey,
) (types.Authenticator, error) {
	if err := validateOrigin(add.URL); err != nil {
		return nil, err
	}
	if p.oracle == nil {
		return nil, types.ErrOracleUnavailable
	}
	resp, err := p.oracle.VerifyRegister(ctx, &types.WebAuthnRegisterRequest{
		Addr:      vctx.AccountAddress,
		Challenge: vctx.AccountAddress,
		RP:        add.URL,
		Data:      add.Credential,
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Credential) == 0 {
		return nil, types.ErrInvalidSignature
	}

	auth := add.Project().(*types.PasskeyAuthenticator)
	auth.Passkey = append([]byte(nil), resp.Credential...)
	return auth, nil
}

// validateOrigin 依赖方来源必须是带 host 的绝对 URL
func validateOrigin(origin string) error {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &types.URLParseError{URL: origin}
	}
	return nil
}
