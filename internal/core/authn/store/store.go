// Package store 认证器注册表的 BadgerDB 持久化
//
// 键布局：authn/<hex(account)>/<id 三位十进制>，值为带标签的 JSON 信封。
// 账户段十六进制编码后不含分隔符，任何账户的前缀都不会覆盖另一个账户的键；
// 三位补零保证前缀扫描的字典序与编号升序一致。
package store

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/weisyn/absacc/pkg/interfaces/authn"
	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/absacc/pkg/types"
)

const keyPrefix = "authn/"

var _ authn.AuthenticatorStore = (*BadgerAuthenticatorStore)(nil)

// BadgerAuthenticatorStore 基于 BadgerStore 的认证器存储
//
// ⚠️ **核心约束**：Insert 与 RemoveKeepingOne 在同一个读写事务内完成检查与写入，
// 并发调用方在 badger 冲突检测下至多一个成功。
type BadgerAuthenticatorStore struct {
	db storage.BadgerStore
}

// NewBadgerAuthenticatorStore 创建认证器存储
func NewBadgerAuthenticatorStore(db storage.BadgerStore) *BadgerAuthenticatorStore {
	return &BadgerAuthenticatorStore{db: db}
}

// AccountPrefix 账户下全部认证器的键前缀
func AccountPrefix(account string) []byte {
	return []byte(keyPrefix + hex.EncodeToString([]byte(account)) + "/")
}

// Key 单个认证器的键
func Key(account string, id types.AuthenticatorID) []byte {
	return []byte(fmt.Sprintf("%s%03d", AccountPrefix(account), id))
}

// Get 读取认证器
func (s *BadgerAuthenticatorStore) Get(ctx context.Context, account string, id types.AuthenticatorID) (types.Authenticator, error) {
	raw, err := s.db.Get(ctx, Key(account, id))
	if err != nil {
		return nil, fmt.Errorf("读取认证器失败: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: account=%s id=%d", types.ErrAuthenticatorNotFound, account, id)
	}
	return types.UnmarshalAuthenticator(raw)
}

// Insert 写入认证器，编号已占用时返回 *types.OverridingIndexError
func (s *BadgerAuthenticatorStore) Insert(ctx context.Context, account string, id types.AuthenticatorID, auth types.Authenticator) error {
	value, err := types.MarshalAuthenticator(auth)
	if err != nil {
		return err
	}
	key := Key(account, id)
	return s.db.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		exists, err := tx.Exists(key)
		if err != nil {
			return err
		}
		if exists {
			return &types.OverridingIndexError{Index: id}
		}
		return tx.Set(key, value)
	})
}

// RemoveKeepingOne 删除认证器
//
// 先检查数量再检查存在性：只剩一个认证器时，无论编号是否存在都返回
// types.ErrMinimumAuthenticatorCount。
func (s *BadgerAuthenticatorStore) RemoveKeepingOne(ctx context.Context, account string, id types.AuthenticatorID) error {
	key := Key(account, id)
	return s.db.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		n, err := tx.CountPrefix(AccountPrefix(account))
		if err != nil {
			return err
		}
		if n <= 1 {
			return types.ErrMinimumAuthenticatorCount
		}
		exists, err := tx.Exists(key)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: account=%s id=%d", types.ErrAuthenticatorNotFound, account, id)
		}
		return tx.Delete(key)
	})
}

// IDs 返回升序排列的已注册编号
func (s *BadgerAuthenticatorStore) IDs(ctx context.Context, account string) ([]types.AuthenticatorID, error) {
	prefix := AccountPrefix(account)
	entries, err := s.db.PrefixScan(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("扫描认证器失败: %w", err)
	}
	ids := make([]types.AuthenticatorID, 0, len(entries))
	for key := range entries {
		id, err := parseID(strings.TrimPrefix(key, string(prefix)))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Count 已注册认证器数量
func (s *BadgerAuthenticatorStore) Count(ctx context.Context, account string) (int, error) {
	ids, err := s.IDs(ctx, account)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

var errCorruptKey = errors.New("corrupt authenticator key")

func parseID(suffix string) (types.AuthenticatorID, error) {
	n, err := strconv.ParseUint(suffix, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errCorruptKey, suffix)
	}
	return types.AuthenticatorID(n), nil
}
