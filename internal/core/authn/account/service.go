// Package account 账户宿主入口与交易前授权流程
package account

import (
	"context"
	"fmt"
	"strconv"

	"github.com/weisyn/absacc/internal/core/authn/registry"
	"github.com/weisyn/absacc/internal/core/authn/zkemail"
	"github.com/weisyn/absacc/pkg/interfaces/authn"
	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/absacc/pkg/types"
)

// EventTopic 账户事件在事件总线上的主题，订阅者签名为 func(account string, ev types.Event)
const EventTopic event.EventType = "authn.account"

// 固定长度方案的签名字节数
const (
	compactSignatureSize = 64
	ethSignatureSize     = 65
)

// DefaultMaxEmitBytes Emit 数据默认上限
const DefaultMaxEmitBytes = 1024

var _ authn.AccountService = (*Service)(nil)

// Service 账户服务
//
// 🎯 **核心职责**：
// - 实例化、增删认证方式（仅账户自身可调用）
// - before_tx：解析凭证、按方案做长度检查、分派验证
// - 每个成功的变更都产生事件，同时发布到事件总线
//
// ⚠️ **核心约束**：同一账户上的变更与 before_tx 共用注册表的账户锁，
// 授权判断总是看到最近一次已提交的注册表状态。
type Service struct {
	registry     *registry.Registry
	dispatcher   authn.Dispatcher
	bus          event.EventBus
	logger       log.Logger
	maxEmitBytes int
}

// Config 账户服务依赖
type Config struct {
	Registry     *registry.Registry
	Dispatcher   authn.Dispatcher
	EventBus     event.EventBus // 可选
	Logger       log.Logger
	MaxEmitBytes int
}

// NewService 创建账户服务
func NewService(cfg Config) *Service {
	maxEmit := cfg.MaxEmitBytes
	if maxEmit <= 0 {
		maxEmit = DefaultMaxEmitBytes
	}
	return &Service{
		registry:     cfg.Registry,
		dispatcher:   cfg.Dispatcher,
		bus:          cfg.EventBus,
		logger:       cfg.Logger,
		maxEmitBytes: maxEmit,
	}
}

// Instantiate 注册首个认证器
func (s *Service) Instantiate(
	ctx context.Context,
	account string,
	blockTime uint64,
	add types.AddAuthenticator,
) (*types.Response, error) {
	auth, err := s.registry.Register(ctx, account, blockTime, add)
	if err != nil {
		return nil, err
	}
	encoded, err := eventAuthenticator(add, auth)
	if err != nil {
		return nil, err
	}
	ev := types.NewEvent(types.EventCreateAbstractAccount,
		"contract_address", account,
		"authenticator", encoded,
		"authenticator_id", strconv.Itoa(int(add.ID())),
	)
	return s.respond(account, ev), nil
}

// AddAuthMethod 添加认证方式
func (s *Service) AddAuthMethod(
	ctx context.Context,
	sender, account string,
	blockTime uint64,
	add types.AddAuthenticator,
) (*types.Response, error) {
	if err := assertSelf(sender, account); err != nil {
		return nil, err
	}
	auth, err := s.registry.Register(ctx, account, blockTime, add)
	if err != nil {
		return nil, err
	}
	encoded, err := eventAuthenticator(add, auth)
	if err != nil {
		return nil, err
	}
	ev := types.NewEvent(types.EventAddAuthMethod,
		"contract_address", account,
		"authenticator", encoded,
	)
	return s.respond(account, ev), nil
}

// RemoveAuthMethod 删除认证方式
func (s *Service) RemoveAuthMethod(
	ctx context.Context,
	sender, account string,
	id types.AuthenticatorID,
) (*types.Response, error) {
	if err := assertSelf(sender, account); err != nil {
		return nil, err
	}
	if err := s.registry.Remove(ctx, account, id); err != nil {
		return nil, err
	}
	ev := types.NewEvent(types.EventRemoveAuthMethod,
		"contract_address", account,
		"authenticator_id", strconv.Itoa(int(id)),
	)
	return s.respond(account, ev), nil
}

// BeforeTx 交易前授权
//
// 凭证格式：[认证器编号 1 字节][方案签名]。simulate 为 true 时跳过全部检查。
func (s *Service) BeforeTx(
	ctx context.Context,
	account string,
	blockTime uint64,
	txBytes, cred []byte,
	simulate bool,
) (*types.Response, error) {
	resp := types.NewResponse().AddAttribute("method", "before_tx")
	if simulate {
		return resp, nil
	}
	if len(cred) == 0 {
		return nil, types.ErrEmptySignature
	}
	if err := s.registry.ValidateAccount(account); err != nil {
		return nil, err
	}

	unlock := s.registry.Locks().Lock(account)
	defer unlock()

	id := types.AuthenticatorID(cred[0])
	auth, err := s.registry.Get(ctx, account, id)
	if err != nil {
		return nil, err
	}
	sig := cred[1:]
	if err := CheckSignatureLength(auth.Kind(), sig); err != nil {
		return nil, err
	}

	ok, err := s.dispatcher.Verify(ctx, types.NewTxContext(account, blockTime, txBytes), auth, sig)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrInvalidSignature
	}
	if s.logger != nil {
		s.logger.Debugf("交易授权通过: account=%s id=%d scheme=%s", account, id, auth.Kind())
	}
	return resp, nil
}

// AfterTx 交易后钩子
func (s *Service) AfterTx(ctx context.Context, account string) (*types.Response, error) {
	return types.NewResponse().AddAttribute("method", "after_tx"), nil
}

// Emit 发出自定义事件
func (s *Service) Emit(ctx context.Context, sender, account, data string) (*types.Response, error) {
	if err := assertSelf(sender, account); err != nil {
		return nil, err
	}
	if len(data) > s.maxEmitBytes {
		return nil, fmt.Errorf("%w: %d > %d", types.ErrEmissionSizeExceeded, len(data), s.maxEmitBytes)
	}
	return s.respond(account, types.NewEvent(types.EventAccountEmit, "data", data)), nil
}

// AuthenticatorIDs 查询已注册编号
func (s *Service) AuthenticatorIDs(ctx context.Context, account string) ([]types.AuthenticatorID, error) {
	return s.registry.IDs(ctx, account)
}

// AuthenticatorByID 查询认证器，返回 JSON 信封
func (s *Service) AuthenticatorByID(ctx context.Context, account string, id types.AuthenticatorID) ([]byte, error) {
	auth, err := s.registry.Get(ctx, account, id)
	if err != nil {
		return nil, err
	}
	return types.MarshalAuthenticator(auth)
}

// CheckSignatureLength 方案级长度检查，在任何曲线运算之前执行
//
//   - secp256k1 / ed25519 / secp256r1：恰好 64 字节
//   - eth_wallet：恰好 65 字节
//   - jwt / passkey：非空
//   - zk_email：不少于 DKIM 哈希块 + 最小证明长度
func CheckSignatureLength(kind types.AuthenticatorKind, sig []byte) error {
	switch kind {
	case types.KindSecp256K1, types.KindEd25519, types.KindSecp256R1:
		return exactLength(sig, compactSignatureSize)
	case types.KindEthWallet:
		return exactLength(sig, ethSignatureSize)
	case types.KindJWT, types.KindPasskey:
		if len(sig) == 0 {
			return types.ErrEmptySignature
		}
	case types.KindZKEmail:
		if len(sig) < zkemail.MinSignatureSize {
			return fmt.Errorf("%w: zk_email signature needs at least %d bytes, got %d",
				types.ErrShortSignature, zkemail.MinSignatureSize, len(sig))
		}
	default:
		return fmt.Errorf("%w: unknown scheme %q", types.ErrMalformedInput, string(kind))
	}
	return nil
}

func exactLength(sig []byte, want int) error {
	switch {
	case len(sig) < want:
		return fmt.Errorf("%w: need %d bytes, got %d", types.ErrShortSignature, want, len(sig))
	case len(sig) > want:
		return fmt.Errorf("%w: need %d bytes, got %d", types.ErrSignatureLength, want, len(sig))
	}
	return nil
}

func assertSelf(sender, account string) error {
	if sender != account {
		return types.ErrUnauthorized
	}
	return nil
}

// eventAuthenticator 事件中的注册请求，passkey 凭证替换为实际持久化的值
func eventAuthenticator(add types.AddAuthenticator, stored types.Authenticator) (string, error) {
	if pk, ok := add.(*types.AddPasskey); ok {
		if storedPk, ok := stored.(*types.PasskeyAuthenticator); ok {
			copied := *pk
			copied.Credential = storedPk.Passkey
			add = &copied
		}
	}
	raw, err := types.MarshalAddAuthenticator(add)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (s *Service) respond(account string, ev types.Event) *types.Response {
	if s.bus != nil {
		s.bus.Publish(EventTopic, account, ev)
	}
	if s.logger != nil {
		s.logger.Infof("账户事件: account=%s type=%s", account, ev.Type)
	}
	return types.NewResponse().AddEvent(ev)
}
