package notify

// Event 是推送给用户的领域事件名
type Event string

const (
	EventXPEarned    Event = "xp:earned"
	EventLevelUp     Event = "level:up"
	EventBadgeEarned Event = "badge:earned"
)

// Notifier 是通知出口的端口接口。
//
// 契约：投递语义是至多一次(at-most-once)，没有重试也没有回执；
// 实现必须把投递失败吞掉（只记日志），调用方的正确性不依赖投递成功。
// 引擎在没有可用通知通道时传入Nop即可。
type Notifier interface {
	Notify(userID string, event Event, payload interface{})
}

// Nop 是什么都不做的Notifier实现
type Nop struct{}

// Notify 空实现
func (Nop) Notify(string, Event, interface{}) {}
