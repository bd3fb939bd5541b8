// Package event 基于 asaskevich/EventBus 的事件总线实现
package event

import (
	"sync/atomic"

	evbus "github.com/asaskevich/EventBus"
	eventconfig "github.com/weisyn/absacc/internal/config/event"
	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/event"
)

// EventBus 事件总线，未启用时所有操作静默成功
type EventBus struct {
	bus     evbus.Bus
	options *eventconfig.EventOptions

	published atomic.Uint64
}

var _ event.EventBus = (*EventBus)(nil)

// New 创建事件总线实例
func New(config *eventconfig.Config) *EventBus {
	if config == nil {
		config = eventconfig.New()
	}
	return &EventBus{
		bus:     evbus.New(),
		options: config.GetOptions(),
	}
}

// Subscribe 实现订阅
func (eb *EventBus) Subscribe(eventType event.EventType, handler interface{}) error {
	if !eb.options.Enabled {
		return nil
	}
	return eb.bus.Subscribe(string(eventType), handler)
}

// SubscribeAsync 实现异步订阅
func (eb *EventBus) SubscribeAsync(eventType event.EventType, handler interface{}, transactional bool) error {
	if !eb.options.Enabled {
		return nil
	}
	if !eb.options.AsyncDelivery {
		return eb.bus.Subscribe(string(eventType), handler)
	}
	return eb.bus.SubscribeAsync(string(eventType), handler, transactional)
}

// Unsubscribe 取消订阅
func (eb *EventBus) Unsubscribe(eventType event.EventType, handler interface{}) error {
	if !eb.options.Enabled {
		return nil
	}
	return eb.bus.Unsubscribe(string(eventType), handler)
}

// Publish 发布事件
func (eb *EventBus) Publish(eventType event.EventType, args ...interface{}) {
	if !eb.options.Enabled {
		return
	}
	eb.published.Add(1)
	eb.bus.Publish(string(eventType), args...)
}

// WaitAsync 等待异步处理完成
func (eb *EventBus) WaitAsync() {
	eb.bus.WaitAsync()
}

// HasCallback 是否存在订阅者
func (eb *EventBus) HasCallback(eventType event.EventType) bool {
	return eb.bus.HasCallback(string(eventType))
}

// PublishedCount 已发布事件数
func (eb *EventBus) PublishedCount() uint64 {
	return eb.published.Load()
}
