package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/absacc/internal/core/infrastructure/log"
	"github.com/weisyn/absacc/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/absacc/pkg/types"
)

const account = "xion1yg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zvfgxvn"

func newTestStore(t *testing.T) *BadgerAuthenticatorStore {
	t.Helper()
	db, err := badger.NewInMemory(log.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewBadgerAuthenticatorStore(db)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "authn/78696f6e3161/007", string(Key("xion1a", 7)))
	assert.Equal(t, "authn/78696f6e3161/255", string(Key("xion1a", 255)))
	assert.Equal(t, "authn/78696f6e3161/", string(AccountPrefix("xion1a")))
	assert.Equal(t, "authn/78696f6e31612f78/", string(AccountPrefix("xion1a/x")))
}

// TestStore_InsertGet 写入后按编号读回同一变体
func TestStore_InsertGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	auth := &types.JWTAuthenticator{Aud: "aud", Sub: "sub"}
	require.NoError(t, s.Insert(ctx, account, 3, auth))

	got, err := s.Get(ctx, account, 3)
	require.NoError(t, err)
	assert.Equal(t, auth, got)

	_, err = s.Get(ctx, account, 4)
	assert.ErrorIs(t, err, types.ErrAuthenticatorNotFound)
}

// TestStore_InsertOccupied 已占用的编号不会被覆盖
func TestStore_InsertOccupied(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &types.Ed25519Authenticator{PubKey: []byte{1}}
	require.NoError(t, s.Insert(ctx, account, 0, first))

	err := s.Insert(ctx, account, 0, &types.Ed25519Authenticator{PubKey: []byte{2}})
	var overriding *types.OverridingIndexError
	require.True(t, errors.As(err, &overriding))
	assert.Equal(t, types.AuthenticatorID(0), overriding.Index)

	got, err := s.Get(ctx, account, 0)
	require.NoError(t, err)
	assert.Equal(t, first, got)
}

// TestStore_IDs 编号升序，账户之间相互隔离
func TestStore_IDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []types.AuthenticatorID{200, 7, 0, 31} {
		require.NoError(t, s.Insert(ctx, account, id, &types.EthWalletAuthenticator{Address: "0x"}))
	}
	require.NoError(t, s.Insert(ctx, account+"x", 1, &types.EthWalletAuthenticator{Address: "0x"}))

	ids, err := s.IDs(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, []types.AuthenticatorID{0, 7, 31, 200}, ids)

	n, err := s.Count(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	ids, err = s.IDs(ctx, "xion1empty")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

// TestStore_RemoveKeepingOne 最后一个认证器不可删除
func TestStore_RemoveKeepingOne(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, account, 0, &types.Ed25519Authenticator{PubKey: []byte{1}}))
	assert.ErrorIs(t, s.RemoveKeepingOne(ctx, account, 0), types.ErrMinimumAuthenticatorCount)
	// 只剩一个时，不存在的编号同样按数量约束拒绝
	assert.ErrorIs(t, s.RemoveKeepingOne(ctx, account, 9), types.ErrMinimumAuthenticatorCount)

	require.NoError(t, s.Insert(ctx, account, 1, &types.Ed25519Authenticator{PubKey: []byte{2}}))
	assert.ErrorIs(t, s.RemoveKeepingOne(ctx, account, 9), types.ErrAuthenticatorNotFound)

	require.NoError(t, s.RemoveKeepingOne(ctx, account, 0))
	ids, err := s.IDs(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, []types.AuthenticatorID{1}, ids)
}

// TestStore_ConcurrentRemove 并发删除后注册表仍非空
func TestStore_ConcurrentRemove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, account, 0, &types.Ed25519Authenticator{PubKey: []byte{1}}))
	require.NoError(t, s.Insert(ctx, account, 1, &types.Ed25519Authenticator{PubKey: []byte{2}}))

	var wg sync.WaitGroup
	for _, id := range []types.AuthenticatorID{0, 1} {
		wg.Add(1)
		go func(id types.AuthenticatorID) {
			defer wg.Done()
			_ = s.RemoveKeepingOne(ctx, account, id)
		}(id)
	}
	wg.Wait()

	n, err := s.Count(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// TestStore_NestedAccountNames 一个账户名是另一个的前缀时互不计数
func TestStore_NestedAccountNames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "acct", 0, &types.Ed25519Authenticator{PubKey: []byte{1}}))
	require.NoError(t, s.Insert(ctx, "acct/x", 0, &types.Ed25519Authenticator{PubKey: []byte{2}}))
	require.NoError(t, s.Insert(ctx, "acct/x", 1, &types.Ed25519Authenticator{PubKey: []byte{3}}))

	assert.ErrorIs(t, s.RemoveKeepingOne(ctx, "acct", 0), types.ErrMinimumAuthenticatorCount)
	got, err := s.Get(ctx, "acct", 0)
	require.NoError(t, err)
	assert.Equal(t, &types.Ed25519Authenticator{PubKey: []byte{1}}, got)

	ids, err := s.IDs(ctx, "acct")
	require.NoError(t, err)
	assert.Equal(t, []types.AuthenticatorID{0}, ids)

	n, err := s.Count(ctx, "acct/x")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
