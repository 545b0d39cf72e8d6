package settings

import (
	"time"
)

// Setting 定义了运行时功能开关在SQLite中的持久化模型。
// 与config.yaml不同，这张表里的键值可以由管理端在运行时修改。
type Setting struct {
	Key       string `gorm:"primarykey;type:varchar(64)" json:"key"`
	Value     string `gorm:"type:varchar(255)" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// --- 网关消费的配置键 ---

const (
	// KeyEnabled 是游戏化系统的总开关。缺失时视为开启（fail open）。
	KeyEnabled = "gamification_enabled"

	// KeyXPMultiplier 是全局XP倍率，没有活动赛季事件时生效。
	KeyXPMultiplier = "gamification_xp_multiplier"

	// KeyLeaderboardInterval 是排行榜重建的间隔（分钟）。
	KeyLeaderboardInterval = "gamification_leaderboard_update_interval"
)

// --- 子功能名 ---
// 子功能开关的键名形如 gamification_{feature}_enabled，
// 缺失时视为关闭（与总开关的缺省相反，更严格）。

const (
	FeatureXP             = "xp"
	FeatureBadges         = "badges"
	FeatureLeaderboards   = "leaderboards"
	FeatureReputation     = "reputation"
	FeatureSeasonalEvents = "seasonal_events"
)

// FeatureKey 拼出某个子功能开关的完整键名
func FeatureKey(feature string) string {
	return "gamification_" + feature + "_enabled"
}
