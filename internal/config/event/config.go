// Package event 提供账户事件总线配置
package event

// EventOptions 事件系统配置选项
type EventOptions struct {
	Enabled bool `json:"enabled"` // 是否启用事件总线

	// AsyncDelivery 是否异步投递给订阅者
	AsyncDelivery bool `json:"async_delivery"`
}

// Config 事件配置实现
type Config struct {
	options *EventOptions
}

// New 创建事件配置
func New() *Config {
	return &Config{options: &EventOptions{
		Enabled:       defaultEnabled,
		AsyncDelivery: defaultAsyncDelivery,
	}}
}

// GetOptions 获取事件配置选项
func (c *Config) GetOptions() *EventOptions {
	return c.options
}
