package event

import (
	"time"

	"gorm.io/datatypes"
)

// SeasonalEvent 定义了限时活动在数据库中的模型。
// 活动期间XP按倍率放大，也可以附带奖励徽章。
type SeasonalEvent struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	Description string `gorm:"type:varchar(500)" json:"description"`

	StartDate time.Time `gorm:"not null;index" json:"startDate"`
	EndDate   time.Time `gorm:"not null;index" json:"endDate"`

	// XPMultiplier 是活动期间的XP倍率，必须 >= 0。
	// 多个活动重叠时只取最高的一个，不做叠乘。
	XPMultiplier float64 `gorm:"not null;default:1" json:"xpMultiplier"`

	// BadgeRewards / EventRules 是产品侧消费的不透明载荷
	BadgeRewards datatypes.JSONMap `json:"badgeRewards,omitempty"`
	EventRules   datatypes.JSONMap `json:"eventRules,omitempty"`

	IsActive bool `gorm:"not null;default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (SeasonalEvent) TableName() string { return "seasonal_events" }

// InWindow 判断活动在某个时刻是否处于生效窗口内
func (e *SeasonalEvent) InWindow(at time.Time) bool {
	return e.IsActive && !at.Before(e.StartDate) && !at.After(e.EndDate)
}
