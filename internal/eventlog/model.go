package eventlog

import (
	"time"

	"gorm.io/datatypes"
)

// EventLog 是只追加的审计流水，记录XP入账、升级、徽章授予
// 以及管理员操作。它只用于分析和排障，引擎的控制流从不读它。
type EventLog struct {
	ID        uint              `gorm:"primarykey" json:"id"`
	UserID    string            `gorm:"type:varchar(36);index" json:"userId"`
	EventType string            `gorm:"type:varchar(50);index" json:"eventType"`
	Payload   datatypes.JSONMap `json:"payload,omitempty"`
	CreatedAt time.Time         `gorm:"index" json:"createdAt"`
}

// TableName 指定表名
func (EventLog) TableName() string { return "event_logs" }

// --- 事件类型 ---

const (
	TypeXPEarned    = "xp_earned"
	TypeLevelUp     = "level_up"
	TypeBadgeEarned = "badge_earned"

	TypeAdminXPAdjustment  = "admin_xp_adjustment"
	TypeAdminRuleUpdate    = "admin_rule_update"
	TypeAdminBadgeChange   = "admin_badge_change"
	TypeAdminEventChange   = "admin_event_change"
	TypeAdminSettingChange = "admin_setting_change"
	TypeAdminForcedRebuild = "admin_forced_rebuild"
)
