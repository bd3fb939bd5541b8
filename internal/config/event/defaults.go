package event

const (
	defaultEnabled = true

	// defaultAsyncDelivery 订阅者不得阻塞注册表写路径
	defaultAsyncDelivery = true
)
