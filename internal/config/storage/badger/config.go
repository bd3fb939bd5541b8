// Package badger 提供认证器注册表 BadgerDB 存储配置
package badger

import (
	"path/filepath"

	configtypes "github.com/weisyn/absacc/pkg/types"
)

// BadgerOptions BadgerDB存储配置选项
type BadgerOptions struct {
	Path       string `json:"path"`        // 数据库存储路径
	InMemory   bool   `json:"in_memory"`   // 内存模式（测试与演示用，数据不落盘）
	SyncWrites bool   `json:"sync_writes"` // 是否同步写入

	MemTableSize int64 `json:"mem_table_size"` // 内存表大小

	// 维护配置
	EnableAutoCompaction bool `json:"enable_auto_compaction"`
	GCIntervalSeconds    int  `json:"gc_interval_seconds"` // value log GC 周期，0 关闭
}

// Config BadgerDB配置实现
type Config struct {
	options *BadgerOptions
}

// New 创建BadgerDB配置，userConfig 为 *types.UserStorageConfig 或 nil
//
// 路径规则：配置了 storage.data_root 时使用 {data_root}/badger/，否则使用 ./data/badger。
func New(userConfig interface{}) *Config {
	options := createDefaultBadgerOptions()
	if userConfig != nil {
		applyUserConfig(options, userConfig)
	}
	return &Config{options: options}
}

// NewFromOptions 从BadgerOptions创建配置实现
func NewFromOptions(options *BadgerOptions) *Config {
	return &Config{options: options}
}

// NewInMemory 内存模式配置
func NewInMemory() *Config {
	options := createDefaultBadgerOptions()
	options.Path = ""
	options.InMemory = true
	options.SyncWrites = false
	return &Config{options: options}
}

func createDefaultBadgerOptions() *BadgerOptions {
	return &BadgerOptions{
		Path:                 defaultPath,
		SyncWrites:           defaultSyncWrites,
		MemTableSize:         defaultMemTableSize,
		EnableAutoCompaction: defaultEnableAutoCompaction,
		GCIntervalSeconds:    defaultGCIntervalSeconds,
	}
}

func applyUserConfig(options *BadgerOptions, userConfig interface{}) {
	storageConfig, ok := userConfig.(*configtypes.UserStorageConfig)
	if !ok || storageConfig == nil {
		return
	}
	if storageConfig.DataRoot != nil && *storageConfig.DataRoot != "" {
		options.Path = filepath.Join(*storageConfig.DataRoot, "badger")
	}
	if storageConfig.MemoryOnly != nil && *storageConfig.MemoryOnly {
		options.InMemory = true
		options.Path = ""
		options.SyncWrites = false
	}
}

// GetOptions 获取完整的BadgerDB配置选项
func (c *Config) GetOptions() *BadgerOptions {
	return c.options
}

// GetPath 获取数据库路径
func (c *Config) GetPath() string {
	return c.options.Path
}

// IsInMemory 是否内存模式
func (c *Config) IsInMemory() bool {
	return c.options.InMemory
}
