package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	authnconfig "github.com/weisyn/absacc/internal/config/authn"
	"github.com/weisyn/absacc/internal/core/authn"
	oraclegrpc "github.com/weisyn/absacc/internal/core/authn/oracle/grpc"
	"github.com/weisyn/absacc/internal/core/authn/oracle/static"
	"github.com/weisyn/absacc/internal/core/authn/verifier"
	"github.com/weisyn/absacc/internal/core/infrastructure/crypto/address"
	"github.com/weisyn/absacc/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/absacc/internal/core/infrastructure/crypto/secp256k1"
	logimpl "github.com/weisyn/absacc/internal/core/infrastructure/log"
	authnif "github.com/weisyn/absacc/pkg/interfaces/authn"
	"github.com/weisyn/absacc/pkg/types"
)

// verifyFlags verify 子命令参数
type verifyFlags struct {
	authFile  string
	account   string
	tx        string
	sig       string
	blockTime uint64
	oracle    string
	timeout   time.Duration
}

// verifyResult 验证结果
type verifyResult struct {
	Kind     string `json:"kind"`
	Verified bool   `json:"verified"`
	Error    string `json:"error,omitempty"`
	Class    string `json:"class,omitempty"`
}

func newVerifyCmd() *cobra.Command {
	var f verifyFlags
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "离线验证交易签名",
		Long: `使用已注册的认证器（带标签 JSON，与 GET /v1/accounts/:address/authenticators/:id 的 data 一致）
离线验证交易签名。

未指定 --oracle 时 passkey 与 zk_email 因缺少预言机而失败，JWT 使用内置 audience 公钥表。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runVerify(cmd.Context(), f)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&f.authFile, "authenticator", "", "认证器 JSON 文件")
	cmd.Flags().StringVar(&f.account, "account", "", "账户地址")
	cmd.Flags().StringVar(&f.tx, "tx", "", "交易字节（base64）")
	cmd.Flags().StringVar(&f.sig, "sig", "", "签名（base64）")
	cmd.Flags().Uint64Var(&f.blockTime, "block-time", 0, "区块时间（秒），默认当前时间")
	cmd.Flags().StringVar(&f.oracle, "oracle", "", "宿主链 gRPC 端点，用于 passkey / zk_email / JWT 委托")
	cmd.Flags().DurationVar(&f.timeout, "oracle-timeout", 5*time.Second, "预言机调用超时")
	_ = cmd.MarkFlagRequired("authenticator")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("sig")
	return cmd
}

// runVerify 验证失败以结果形式返回，只有参数错误才返回 error
func runVerify(ctx context.Context, f verifyFlags) (*verifyResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	raw, err := os.ReadFile(f.authFile)
	if err != nil {
		return nil, fmt.Errorf("读取认证器失败: %w", err)
	}
	auth, err := types.UnmarshalAuthenticator(raw)
	if err != nil {
		return nil, err
	}
	tx, err := base64.StdEncoding.DecodeString(f.tx)
	if err != nil {
		return nil, fmt.Errorf("交易不是合法 base64: %w", err)
	}
	sig, err := base64.StdEncoding.DecodeString(f.sig)
	if err != nil {
		return nil, fmt.Errorf("签名不是合法 base64: %w", err)
	}
	blockTime := f.blockTime
	if blockTime == 0 {
		blockTime = uint64(time.Now().Unix())
	}

	kernel, closeFn, err := newOfflineKernel(f)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	res := &verifyResult{Kind: auth.Kind().String()}
	ok, err := kernel.Verify(ctx, types.NewTxContext(f.account, blockTime, tx), auth, sig)
	if err != nil {
		res.Error = err.Error()
		res.Class = string(types.ClassifyError(err))
		return res, nil
	}
	res.Verified = ok
	return res, nil
}

// newOfflineKernel 构建与 authd 相同的插件集合，预言机按参数选择
func newOfflineKernel(f verifyFlags) (*verifier.Kernel, func(), error) {
	opts := authnconfig.New(nil).GetOptions()
	logger := logimpl.NewNop()

	var dkim authnif.DkimKeyLookup = static.NewDkimRegistry()
	var webauthn authnif.WebAuthnVerifier = &static.WebAuthn{
		AuthenticateFunc: func(*types.WebAuthnAuthenticateRequest) error {
			return fmt.Errorf("%w: no oracle configured", types.ErrOracleUnavailable)
		},
	}
	var jwt authnif.JWTValidator = &static.JWTValidator{}
	closeFn := func() {}
	if f.oracle != "" {
		client, err := oraclegrpc.Dial(f.oracle, f.timeout, logger)
		if err != nil {
			return nil, nil, err
		}
		dkim, webauthn, jwt = client, client, client
		opts.JWTMode = authnconfig.JWTModeOracle
		closeFn = func() { _ = client.Close() }
	}

	hasher := hash.NewHashService()
	p, err := authn.ProvidePlugins(authn.PluginParams{
		Options:        opts,
		HashManager:    hasher,
		AddressManager: address.NewAddressService(hasher),
		Curve:          secp256k1.NewCurve(),
		Dkim:           dkim,
		WebAuthn:       webauthn,
		JWTValidator:   jwt,
		Logger:         logger,
	})
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	kernel, _ := authn.ProvideKernel(p, logger)
	return kernel, closeFn, nil
}
