package notify

import (
	"encoding/json"
	"time"

	"github.com/tiejeevan/gsale-backend/internal/platform/database"
	"github.com/tiejeevan/gsale-backend/pkg/logger"
)

// channelPrefix 是每用户通知频道的前缀，推送网关按用户订阅对应频道
const channelPrefix = "notify:user:"

// envelope 是发布到Redis频道的消息结构
type envelope struct {
	Event     Event       `json:"event"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// RedisNotifier 把领域事件发布到用户的Redis频道。
// Redis不可用时直接跳过：通知是尽力而为的附属功能。
type RedisNotifier struct{}

// NewRedisNotifier 创建一个基于Redis发布订阅的Notifier
func NewRedisNotifier() *RedisNotifier {
	return &RedisNotifier{}
}

// Notify 发布一条事件。任何失败只记日志，不向调用方传播。
func (n *RedisNotifier) Notify(userID string, event Event, payload interface{}) {
	if userID == "" || !database.IsRedisHealthy() {
		return
	}

	body, err := json.Marshal(envelope{
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		logger.Errorf("通知序列化失败 (event=%s user=%s): %v", event, userID, err)
		return
	}

	if err := database.RDB.Publish(database.Ctx, channelPrefix+userID, body).Err(); err != nil {
		logger.Warnf("通知发布失败 (event=%s user=%s): %v", event, userID, err)
	}
}
