package xp

import (
	"time"

	"gorm.io/datatypes"
)

// XPRule 定义了每种动作类型的加分规则，是一张管理员可改的配置表。
type XPRule struct {
	ID uint `gorm:"primarykey" json:"id"`

	// ActionType 是规则的唯一键，如 post_created / daily_login。
	ActionType string `gorm:"uniqueIndex;type:varchar(50);not null" json:"actionType"`

	// XPAmount 是基础分值，实际入账金额还要乘以当时的倍率。
	XPAmount int `gorm:"not null" json:"xpAmount"`

	// EntityType 标记动作作用的对象类型，如 post / order。
	EntityType string `gorm:"type:varchar(50)" json:"entityType"`

	Category string `gorm:"type:varchar(50)" json:"category"`

	// DailyLimit 是每用户每个UTC日历日的加分次数上限，0表示不限。
	DailyLimit int `gorm:"not null;default:0" json:"dailyLimit"`

	IsActive bool `gorm:"not null;default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (XPRule) TableName() string { return "xp_rules" }

// XPTransaction 是只追加的XP流水。
// 它是每日上限计数和用户侧历史视图的数据来源，永不更新或删除。
type XPTransaction struct {
	ID uint `gorm:"primarykey" json:"id"`

	UserID     string `gorm:"type:varchar(36);index:idx_user_action_day,priority:1;not null" json:"userId"`
	ActionType string `gorm:"type:varchar(50);index:idx_user_action_day,priority:2;not null" json:"actionType"`

	// XPAmount 是实际入账金额（倍率之后），管理员修正时可以为负。
	XPAmount int `gorm:"not null" json:"xpAmount"`

	EntityType string  `gorm:"type:varchar(50)" json:"entityType"`
	EntityID   *string `gorm:"type:varchar(36)" json:"entityId,omitempty"`

	Metadata datatypes.JSONMap `json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"index:idx_user_action_day,priority:3" json:"createdAt"`
}

// TableName 指定表名
func (XPTransaction) TableName() string { return "xp_transactions" }

// ActionDailyLogin 是每日签到的动作类型，签到接口直接引用
const ActionDailyLogin = "daily_login"

// ActionAdminAdjustment 是管理员手工调整流水使用的动作类型
const ActionAdminAdjustment = "admin_adjustment"
