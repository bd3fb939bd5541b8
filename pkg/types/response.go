package types

// 账户事件类型
const (
	EventCreateAbstractAccount = "create_abstract_account"
	EventAddAuthMethod         = "add_auth_method"
	EventRemoveAuthMethod      = "remove_auth_method"
	EventAccountEmit           = "account_emit"
)

// Attribute 键值属性
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event 账户操作事件
type Event struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

// Attr 按键取属性值
func (e Event) Attr(key string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Response 宿主调用的返回值
type Response struct {
	Attributes []Attribute `json:"attributes,omitempty"`
	Events     []Event     `json:"events,omitempty"`
}

// NewResponse 创建空响应
func NewResponse() *Response {
	return &Response{}
}

// AddAttribute 追加属性
func (r *Response) AddAttribute(key, value string) *Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

// AddEvent 追加事件
func (r *Response) AddEvent(ev Event) *Response {
	r.Events = append(r.Events, ev)
	return r
}

// NewEvent 创建事件，kv 按 key, value 成对给出
func NewEvent(eventType string, kv ...string) Event {
	ev := Event{Type: eventType}
	for i := 0; i+1 < len(kv); i += 2 {
		ev.Attributes = append(ev.Attributes, Attribute{Key: kv[i], Value: kv[i+1]})
	}
	return ev
}
