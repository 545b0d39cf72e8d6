package leaderboard

import (
	"time"

	"gorm.io/datatypes"
)

// --- 排行榜类型 ---

const (
	TypeTopLevel        = "top_level"
	TypeWeeklySellers   = "weekly_sellers"
	TypeMonthlyCreators = "monthly_creators"
	TypeTopHelpers      = "top_helpers"
)

// AllTypes 是全部排行榜类型，重建时按此顺序逐个处理
var AllTypes = []string{TypeTopLevel, TypeWeeklySellers, TypeMonthlyCreators, TypeTopHelpers}

// ValidType 判断排行榜类型是否合法
func ValidType(t string) bool {
	for _, known := range AllTypes {
		if known == t {
			return true
		}
	}
	return false
}

// TopN 是每个排行榜保留的名次数
const TopN = 100

// LeaderboardEntry 是排行榜的一行，每个重建周期整表替换。
// Rank从1开始密集连续，并列时按次序键的先后定序。
type LeaderboardEntry struct {
	ID uint `gorm:"primarykey" json:"-"`

	LeaderboardType string `gorm:"type:varchar(30);index:idx_type_rank,priority:1;not null" json:"leaderboardType"`
	Rank            int    `gorm:"index:idx_type_rank,priority:2;not null" json:"rank"`

	UserID string `gorm:"type:varchar(36);index;not null" json:"userId"`
	Score  int64  `gorm:"not null" json:"score"`

	Metadata datatypes.JSONMap `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"-"`
}

// TableName 指定表名
func (LeaderboardEntry) TableName() string { return "leaderboard_entries" }
