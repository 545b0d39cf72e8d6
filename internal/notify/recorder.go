package notify

import (
	"sync"
)

// Recorded 是Recorder捕获的一条通知
type Recorded struct {
	UserID  string
	Event   Event
	Payload interface{}
}

// Recorder 是测试用的Notifier实现，按顺序记录收到的全部通知。
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

// Notify 记录一条通知
func (r *Recorder) Notify(userID string, event Event, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Recorded{UserID: userID, Event: event, Payload: payload})
}

// Events 返回已记录通知的副本
func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Recorded, len(r.events))
	copy(out, r.events)
	return out
}

// ByEvent 返回指定事件类型的通知
func (r *Recorder) ByEvent(event Event) []Recorded {
	var out []Recorded
	for _, e := range r.Events() {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
