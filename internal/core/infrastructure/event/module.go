package event

import (
	"context"

	eventconfig "github.com/weisyn/absacc/internal/config/event"
	"github.com/weisyn/absacc/pkg/interfaces/config"
	eventInterface "github.com/weisyn/absacc/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/log"
	"go.uber.org/fx"
)

// ModuleInput 事件模块输入依赖
type ModuleInput struct {
	fx.In

	Provider  config.Provider
	Logger    log.Logger `optional:"true"`
	Lifecycle fx.Lifecycle
}

// ModuleOutput 事件模块输出服务
type ModuleOutput struct {
	fx.Out

	EventBus eventInterface.EventBus
}

// Module 返回事件模块
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(ProvideEventBus),
	)
}

// ProvideEventBus 创建事件总线，停止时等待异步订阅者处理完毕
func ProvideEventBus(input ModuleInput) ModuleOutput {
	cfg := eventconfig.New()
	if opts := input.Provider.GetEvent(); opts != nil {
		*cfg.GetOptions() = *opts
	}
	bus := New(cfg)

	input.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			bus.WaitAsync()
			if input.Logger != nil {
				input.Logger.Infof("事件总线已停止，累计发布 %d 个事件", bus.PublishedCount())
			}
			return nil
		},
	})
	return ModuleOutput{EventBus: bus}
}
