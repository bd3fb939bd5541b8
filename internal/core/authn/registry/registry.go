// Package registry 账户认证器注册表
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/weisyn/absacc/internal/core/authn/metrics"
	"github.com/weisyn/absacc/internal/core/infrastructure/crypto/address"
	"github.com/weisyn/absacc/internal/core/infrastructure/crypto/hash"
	logimpl "github.com/weisyn/absacc/internal/core/infrastructure/log"
	"github.com/weisyn/absacc/pkg/interfaces/authn"
	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/absacc/pkg/types"
)

// 注册表变更操作标签
const (
	OpRegister = "register"
	OpRemove   = "remove"
)

var _ authn.Registry = (*Registry)(nil)

// Registry 账户认证器注册表
//
// 🎯 **核心职责**：先验证再提交的注册流程
//  0. 账户地址须为合法 bech32
//  1. 编号占用预检（避免对注定失败的注册做昂贵的证明验证）
//  2. 对账户地址验证注册证明
//  3. 存储事务内的检查并写入
//
// ⚠️ **核心约束**：
// - 同一账户的变更与 before_tx 由账户锁串行化
// - 任一步骤失败都不会写入状态
type Registry struct {
	store      authn.AuthenticatorStore
	dispatcher authn.Dispatcher
	locks      *AccountLocks
	addresses  crypto.AddressManager
	logger     log.Logger
}

// New 创建注册表；addresses 为 nil 时使用默认地址服务
func New(
	store authn.AuthenticatorStore,
	dispatcher authn.Dispatcher,
	addresses crypto.AddressManager,
	locks *AccountLocks,
	logger log.Logger,
) *Registry {
	if locks == nil {
		locks = NewAccountLocks()
	}
	if addresses == nil {
		addresses = address.NewAddressService(hash.NewHashService())
	}
	if logger == nil {
		logger = logimpl.NewNop()
	}
	return &Registry{
		store:      store,
		dispatcher: dispatcher,
		locks:      locks,
		addresses:  addresses,
		logger:     logger,
	}
}

// Locks 返回注册表使用的账户锁
func (r *Registry) Locks() *AccountLocks {
	return r.locks
}

// ValidateAccount 校验账户地址为合法 bech32
func (r *Registry) ValidateAccount(account string) error {
	if account == "" {
		return fmt.Errorf("%w: empty account address", types.ErrMalformedInput)
	}
	if _, _, err := r.addresses.DecodeBech32(account); err != nil {
		return fmt.Errorf("%w: invalid account address %q: %v", types.ErrMalformedInput, account, err)
	}
	return nil
}

// Register 验证注册证明并持久化公开投影
func (r *Registry) Register(
	ctx context.Context,
	account string,
	blockTime uint64,
	add types.AddAuthenticator,
) (auth types.Authenticator, err error) {
	defer func() { metrics.ObserveRegistry(OpRegister, err) }()

	if add == nil {
		return nil, fmt.Errorf("%w: nil add authenticator", types.ErrMalformedInput)
	}
	if err := r.ValidateAccount(account); err != nil {
		return nil, err
	}

	unlock := r.locks.Lock(account)
	defer unlock()

	id := add.ID()
	if err := r.checkFree(ctx, account, id); err != nil {
		return nil, err
	}

	auth, err = r.dispatcher.VerifyRegistration(ctx, types.NewRegistrationContext(account, blockTime), add)
	if err != nil {
		return nil, err
	}
	if err := r.store.Insert(ctx, account, id, auth); err != nil {
		return nil, err
	}

	r.logger.Infof("认证器已注册: account=%s id=%d scheme=%s", account, id, auth.Kind())
	return auth, nil
}

// Remove 删除认证器，不允许删除最后一个
func (r *Registry) Remove(ctx context.Context, account string, id types.AuthenticatorID) (err error) {
	defer func() { metrics.ObserveRegistry(OpRemove, err) }()

	if err := r.ValidateAccount(account); err != nil {
		return err
	}

	unlock := r.locks.Lock(account)
	defer unlock()

	if err := r.store.RemoveKeepingOne(ctx, account, id); err != nil {
		return err
	}
	r.logger.Infof("认证器已删除: account=%s id=%d", account, id)
	return nil
}

// Get 读取认证器
func (r *Registry) Get(ctx context.Context, account string, id types.AuthenticatorID) (types.Authenticator, error) {
	return r.store.Get(ctx, account, id)
}

// IDs 返回升序编号
func (r *Registry) IDs(ctx context.Context, account string) ([]types.AuthenticatorID, error) {
	return r.store.IDs(ctx, account)
}

// Count 已注册数量
func (r *Registry) Count(ctx context.Context, account string) (int, error) {
	return r.store.Count(ctx, account)
}

func (r *Registry) checkFree(ctx context.Context, account string, id types.AuthenticatorID) error {
	_, err := r.store.Get(ctx, account, id)
	switch {
	case err == nil:
		return &types.OverridingIndexError{Index: id}
	case errors.Is(err, types.ErrAuthenticatorNotFound):
		return nil
	default:
		return err
	}
}

// AccountLocks 按账户划分的互斥锁
//
// 锁对象不回收：账户数量受注册表规模约束。
type AccountLocks struct {
	locks sync.Map // account -> *sync.Mutex
}

// NewAccountLocks 创建账户锁
func NewAccountLocks() *AccountLocks {
	return &AccountLocks{}
}

// Lock 锁定账户，返回解锁函数
func (l *AccountLocks) Lock(account string) func() {
	v, _ := l.locks.LoadOrStore(account, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
