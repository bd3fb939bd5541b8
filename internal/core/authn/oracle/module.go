// Package oracle 装配认证引擎使用的外部预言机
package oracle

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	oracleconfig "github.com/weisyn/absacc/internal/config/oracle"
	"github.com/weisyn/absacc/internal/core/authn/oracle/cache"
	oraclegrpc "github.com/weisyn/absacc/internal/core/authn/oracle/grpc"
	"github.com/weisyn/absacc/internal/core/authn/oracle/redisdkim"
	"github.com/weisyn/absacc/internal/core/authn/oracle/static"
	logimpl "github.com/weisyn/absacc/internal/core/infrastructure/log"
	"github.com/weisyn/absacc/pkg/interfaces/authn"
	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/log"
)

// ModuleParams 预言机模块依赖
type ModuleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Options   *oracleconfig.OracleOptions
	Logger    log.Logger
}

// ModuleOutput 预言机模块输出
type ModuleOutput struct {
	fx.Out

	Dkim     authn.DkimKeyLookup
	WebAuthn authn.WebAuthnVerifier
	JWT      authn.JWTValidator
}

// Module 返回预言机模块
func Module() fx.Option {
	return fx.Module("oracle",
		fx.Provide(ProvideOracles),
	)
}

// ProvideOracles 按配置创建预言机客户端
//
// WebAuthn 与 JWT 委托始终走 gRPC；DKIM 来源可选 grpc、redis 或 static。
// gRPC 连接惰性建立，宿主链不可达时启动不失败，调用时按失败处理。
func ProvideOracles(params ModuleParams) (ModuleOutput, error) {
	opts := params.Options
	logger := logimpl.NewModuleLogger(params.Logger, "oracle")

	client, err := oraclegrpc.Dial(opts.GRPCEndpoint, opts.Timeout, logger)
	if err != nil {
		return ModuleOutput{}, err
	}
	closers := []func() error{client.Close}

	var dkim authn.DkimKeyLookup
	switch opts.DkimSource {
	case oracleconfig.DkimSourceGRPC, "":
		dkim = client
	case oracleconfig.DkimSourceRedis:
		reg, err := redisdkim.New(opts.RedisAddr, opts.Timeout)
		if err != nil {
			_ = client.Close()
			return ModuleOutput{}, fmt.Errorf("初始化Redis DKIM注册表失败: %w", err)
		}
		closers = append(closers, reg.Close)
		dkim = reg
	case oracleconfig.DkimSourceStatic:
		logger.Warn("DKIM 来源为 static，所有 ZK-Email 认证都会因缺少信任锚而失败")
		dkim = static.NewDkimRegistry()
	default:
		_ = client.Close()
		return ModuleOutput{}, fmt.Errorf("unknown dkim source %q", opts.DkimSource)
	}

	if opts.DkimCacheTTL > 0 {
		cached, err := cache.NewDkimLookup(context.Background(), dkim, opts.DkimCacheTTL, logger)
		if err != nil {
			for _, c := range closers {
				_ = c()
			}
			return ModuleOutput{}, err
		}
		closers = append(closers, cached.Close)
		dkim = cached
		logger.Infof("DKIM 查询缓存已启用: ttl=%s", opts.DkimCacheTTL)
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			for _, c := range closers {
				if err := c(); err != nil {
					logger.Warnf("关闭预言机连接失败: %v", err)
				}
			}
			return nil
		},
	})

	logger.Infof("预言机已配置: endpoint=%s dkim=%s", opts.GRPCEndpoint, opts.DkimSource)
	return ModuleOutput{Dkim: dkim, WebAuthn: client, JWT: client}, nil
}
