package profile

import (
	"time"
)

// UserGamificationProfile 定义了每个用户一行的游戏化档案。
// 行在用户第一次触发XP动作时惰性创建，之后永不硬删除。
type UserGamificationProfile struct {
	// UserID 来自外部认证系统，是档案的主键。
	UserID string `gorm:"primarykey;type:varchar(36)" json:"userId"`

	// TotalXP 是累计经验值。除管理员修正外单调不减。
	// 并发加分时必须走存储层的原子自增，绝不能读-改-写。
	TotalXP int `gorm:"not null;default:0" json:"totalXp"`

	// CurrentLevel 由TotalXP推导，但为了快速读取而持久化。
	CurrentLevel int `gorm:"not null;default:1" json:"currentLevel"`

	// ReputationScore / ReputationLevel 是声誉引擎写回的摘要字段。
	ReputationScore int    `gorm:"not null;default:0" json:"reputationScore"`
	ReputationLevel string `gorm:"type:varchar(32);default:'Beginner'" json:"reputationLevel"`

	// CurrentStreak 是连续登录天数，由每日签到维护。
	CurrentStreak int `gorm:"not null;default:0" json:"currentStreak"`

	// LastLoginAt 记录上一次签到时间（UTC），用于判定连击的延续或重置。
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (UserGamificationProfile) TableName() string {
	return "user_gamification_profiles"
}
