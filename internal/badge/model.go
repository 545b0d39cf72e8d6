package badge

import (
	"time"

	"gorm.io/datatypes"
)

// Badge 定义了一种徽章。
// Criteria 是一组命名阈值（如 min_posts: 50），在判定时解析为类型化的条件列表。
type Badge struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;type:varchar(100);not null" json:"slug"`
	Description string `gorm:"type:varchar(500)" json:"description"`
	Category    string `gorm:"type:varchar(50)" json:"category"`

	// Rarity 的序关系: common < rare < epic < legendary
	Rarity string `gorm:"type:varchar(20);not null;default:'common'" json:"rarity"`

	IconURL string `gorm:"type:varchar(255)" json:"iconUrl"`

	Criteria datatypes.JSONMap `json:"criteria"`

	// Benefits 是产品其他部分消费的不透明载荷
	Benefits datatypes.JSONMap `json:"benefits,omitempty"`

	IsActive bool `gorm:"not null;default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (Badge) TableName() string { return "badges" }

// --- 稀有度取值 ---

const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// ValidRarity 判断稀有度取值是否合法
func ValidRarity(rarity string) bool {
	switch rarity {
	case RarityCommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	}
	return false
}

// UserBadge 记录用户已获得的徽章。
// (user_id, badge_id)上的唯一索引保证同一徽章至多授予一次，
// 即使用户的统计之后回落到阈值以下，徽章也永久保留。
type UserBadge struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	UserID  string `gorm:"type:varchar(36);uniqueIndex:idx_user_badge,priority:1;not null" json:"userId"`
	BadgeID uint   `gorm:"uniqueIndex:idx_user_badge,priority:2;not null" json:"badgeId"`

	EarnedAt time.Time `gorm:"not null" json:"earnedAt"`

	// ProgressData 是授予时刻用户各项指标的快照，仅用于展示
	ProgressData datatypes.JSONMap `json:"progressData,omitempty"`
}

// TableName 指定表名
func (UserBadge) TableName() string { return "user_badges" }
