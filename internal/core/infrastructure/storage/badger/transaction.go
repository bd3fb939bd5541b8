package badger

import (
	"errors"
	"fmt"
	"sync/atomic"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/storage"
)

var _ storage.BadgerTransaction = (*Transaction)(nil)

// ErrTxClosed 事务已提交或丢弃
var ErrTxClosed = errors.New("事务已关闭")

// TransactionState 事务状态
type TransactionState int32

const (
	TxActive TransactionState = iota
	TxCommitted
	TxDiscarded
)

// Transaction BadgerDB 读写事务包装
type Transaction struct {
	txn        *badgerdb.Txn
	state      int32
	operations int // 写操作次数，为 0 时提交退化为丢弃
}

// Get 读取键值，键不存在时返回 (nil, nil)
func (t *Transaction) Get(key []byte) ([]byte, error) {
	if !t.IsActive() {
		return nil, ErrTxClosed
	}
	item, err := t.txn.Get(key)
	if err != nil {
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("复制键值失败: %w", err)
	}
	return val, nil
}

// Set 写入键值
func (t *Transaction) Set(key, value []byte) error {
	if !t.IsActive() {
		return ErrTxClosed
	}
	if err := t.txn.Set(key, value); err != nil {
		return fmt.Errorf("设置键值失败: %w", err)
	}
	t.operations++
	return nil
}

// Delete 删除键
func (t *Transaction) Delete(key []byte) error {
	if !t.IsActive() {
		return ErrTxClosed
	}
	if err := t.txn.Delete(key); err != nil {
		return fmt.Errorf("删除键值失败: %w", err)
	}
	t.operations++
	return nil
}

// Exists 检查键是否存在
func (t *Transaction) Exists(key []byte) (bool, error) {
	if !t.IsActive() {
		return false, ErrTxClosed
	}
	_, err := t.txn.Get(key)
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("检查键存在性失败: %w", err)
	}
	return true, nil
}

// CountPrefix 统计以 prefix 开头的键数量，包含本事务内未提交的写入
func (t *Transaction) CountPrefix(prefix []byte) (int, error) {
	if !t.IsActive() {
		return 0, ErrTxClosed
	}
	opts := badgerdb.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := t.txn.NewIterator(opts)
	defer it.Close()

	n := 0
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		// Item 将键登记到读集合，并发删除在提交时产生冲突
		_ = it.Item()
		n++
	}
	return n, nil
}

// Commit 提交事务
func (t *Transaction) Commit() error {
	if !atomic.CompareAndSwapInt32(&t.state, int32(TxActive), int32(TxCommitted)) {
		if t.getState() == TxCommitted {
			return fmt.Errorf("事务已提交")
		}
		return fmt.Errorf("事务已丢弃，无法提交")
	}
	if t.operations == 0 {
		t.txn.Discard()
		return nil
	}
	if err := t.txn.Commit(); err != nil {
		// 回到活动状态，由调用方统一丢弃
		atomic.StoreInt32(&t.state, int32(TxActive))
		return err
	}
	return nil
}

// Discard 丢弃事务中的所有更改
func (t *Transaction) Discard() {
	if atomic.CompareAndSwapInt32(&t.state, int32(TxActive), int32(TxDiscarded)) {
		t.txn.Discard()
	}
}

func (t *Transaction) getState() TransactionState {
	return TransactionState(atomic.LoadInt32(&t.state))
}

// IsActive 检查事务是否处于活动状态
func (t *Transaction) IsActive() bool {
	return t.getState() == TxActive
}

// IsDiscarded 检查事务是否已丢弃
func (t *Transaction) IsDiscarded() bool {
	return t.getState() == TxDiscarded
}
