package reputation

import (
	"time"
)

// ReputationScore 是每个卖家一行的声誉计算结果。
// 每次调用更新例程时整体重算并覆盖写入，不做增量。
type ReputationScore struct {
	UserID string `gorm:"primarykey;type:varchar(36)" json:"userId"`

	ReputationScore int    `gorm:"not null;default:0" json:"reputationScore"`
	ReputationLevel string `gorm:"type:varchar(32);not null;default:'Beginner'" json:"reputationLevel"`

	PositiveFeedbackCount  int     `gorm:"not null;default:0" json:"positiveFeedbackCount"`
	NegativeFeedbackCount  int     `gorm:"not null;default:0" json:"negativeFeedbackCount"`
	CompletedSalesCount    int     `gorm:"not null;default:0" json:"completedSalesCount"`
	ResponseTimeAvgMinutes float64 `gorm:"not null;default:0" json:"responseTimeAvgMinutes"`
	ReportsAgainstCount    int     `gorm:"not null;default:0" json:"reportsAgainstCount"`

	// TrustScore 是独立口径的信任分，取值范围 [0, 100]。
	TrustScore int `gorm:"not null;default:50" json:"trustScore"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (ReputationScore) TableName() string { return "reputation_scores" }

// --- 声誉等级 ---

const (
	LevelElite       = "Elite Seller"
	LevelTrusted     = "Trusted Seller"
	LevelEstablished = "Established Seller"
	LevelRising      = "Rising Seller"
	LevelBeginner    = "Beginner"
)
