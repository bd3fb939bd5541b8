package badger

const (
	defaultPath = "./data/badger"

	// defaultSyncWrites 注册表写入必须持久，默认同步写
	defaultSyncWrites = true

	defaultMemTableSize = 64 << 20 // 64MB

	defaultEnableAutoCompaction = true

	defaultGCIntervalSeconds = 600
)
