// Package storage 定义键值存储接口
package storage

import "context"

// BadgerStore 键值存储
//
// Get 在键不存在时返回 (nil, nil)。
type BadgerStore interface {
	// Close 关闭存储并等待写入完成
	Close() error

	Get(ctx context.Context, key []byte) ([]byte, error)
	Set(ctx context.Context, key, value []byte) error
	Delete(ctx context.Context, key []byte) error
	Exists(ctx context.Context, key []byte) (bool, error)

	// PrefixScan 返回所有以 prefix 开头的键值，键为 string(key)
	PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error)

	// RunInTransaction 在读写事务中执行 fn，fn 返回错误时整体回滚
	RunInTransaction(ctx context.Context, fn func(tx BadgerTransaction) error) error
}

// BadgerTransaction 读写事务
type BadgerTransaction interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Exists(key []byte) (bool, error)

	// CountPrefix 统计事务视图中以 prefix 开头的键数量
	CountPrefix(prefix []byte) (int, error)
}
