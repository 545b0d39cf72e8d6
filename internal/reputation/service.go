package reputation

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tiejeevan/gsale-backend/internal/platform/database"
	"github.com/tiejeevan/gsale-backend/internal/profile"
	"github.com/tiejeevan/gsale-backend/internal/settings"
	"github.com/tiejeevan/gsale-backend/internal/stats"
	"github.com/tiejeevan/gsale-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Factors 是声誉计算的输入因子，随结果一起返回供前端展示
type Factors struct {
	PositiveFeedback int     `json:"positiveFeedback"`
	NegativeFeedback int     `json:"negativeFeedback"`
	CompletedSales   int     `json:"completedSales"`
	AvgResponseTime  float64 `json:"avgResponseTimeMinutes"`
	ReportsAgainst   int     `json:"reportsAgainst"`
}

// Result 是一次声誉更新的结果
type Result struct {
	Score      int     `json:"score"`
	TrustScore int     `json:"trustScore"`
	Level      string  `json:"level"`
	Factors    Factors `json:"factors"`
}

// UpdateReputation 从头重算用户的声誉并覆盖写入。
// 功能关闭或计算失败时返回nil，错误只记日志，不向触发方传播。
func UpdateReputation(userID string) *Result {
	if userID == "" || !settings.IsFeatureEnabled(settings.FeatureReputation) {
		return nil
	}

	result, err := recompute(userID)
	if err != nil {
		logger.Errorf("用户 %s 的声誉计算失败: %v", userID, err)
		return nil
	}
	return result
}

func recompute(userID string) (*Result, error) {
	factors, err := collectFactors(userID)
	if err != nil {
		return nil, err
	}

	score := computeScore(factors)
	trust := computeTrustScore(factors)
	level := levelForScore(score)

	row := ReputationScore{
		UserID:                 userID,
		ReputationScore:        score,
		ReputationLevel:        level,
		PositiveFeedbackCount:  factors.PositiveFeedback,
		NegativeFeedbackCount:  factors.NegativeFeedback,
		CompletedSalesCount:    factors.CompletedSales,
		ResponseTimeAvgMinutes: factors.AvgResponseTime,
		ReportsAgainstCount:    factors.ReportsAgainst,
		TrustScore:             trust,
	}
	err = database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("无法写入声誉结果: %w", err)
	}

	// 把摘要镜像到游戏化档案，供资料页快速读取
	if err := profile.Ensure(userID); err != nil {
		return nil, err
	}
	if err := profile.UpdateReputationSummary(userID, score, level); err != nil {
		return nil, err
	}

	return &Result{Score: score, TrustScore: trust, Level: level, Factors: factors}, nil
}

func collectFactors(userID string) (Factors, error) {
	var factors Factors

	// 本设计中好评数与已完成交易数同源（卖家侧已送达订单）
	var delivered int64
	err := database.DB.Model(&stats.Order{}).
		Where("seller_id = ? AND status = ?", userID, stats.OrderStatusDelivered).
		Count(&delivered).Error
	if err != nil {
		return factors, fmt.Errorf("无法统计已送达订单: %w", err)
	}
	factors.PositiveFeedback = int(delivered)
	factors.CompletedSales = int(delivered)

	var negative int64
	err = database.DB.Model(&stats.Feedback{}).
		Where("seller_id = ? AND positive = ?", userID, false).
		Count(&negative).Error
	if err != nil {
		return factors, fmt.Errorf("无法统计差评数: %w", err)
	}
	factors.NegativeFeedback = int(negative)

	var reports int64
	err = database.DB.Model(&stats.Report{}).
		Where("target_user_id = ?", userID).
		Count(&reports).Error
	if err != nil {
		return factors, fmt.Errorf("无法统计举报数: %w", err)
	}
	factors.ReportsAgainst = int(reports)

	avg, err := avgResponseMinutes(userID)
	if err != nil {
		return factors, err
	}
	factors.AvgResponseTime = avg

	return factors, nil
}

// avgResponseMinutes 计算用户的平均响应时长（分钟）。
// 口径：对每条收到的私信，找用户当天（UTC）内对同一发件人的下一条回复，
// 取时间差的平均值。只看最近30天，没有样本时返回0。
func avgResponseMinutes(userID string) (float64, error) {
	since := time.Now().UTC().AddDate(0, 0, -30)

	var inbound []stats.Message
	err := database.DB.
		Where("recipient_id = ? AND created_at >= ?", userID, since).
		Order("created_at asc").
		Find(&inbound).Error
	if err != nil {
		return 0, fmt.Errorf("无法读取收到的私信: %w", err)
	}
	if len(inbound) == 0 {
		return 0, nil
	}

	var outbound []stats.Message
	err = database.DB.
		Where("sender_id = ? AND created_at >= ?", userID, since).
		Order("created_at asc").
		Find(&outbound).Error
	if err != nil {
		return 0, fmt.Errorf("无法读取发出的私信: %w", err)
	}

	// 按收件人分组的已排序回复列表
	repliesTo := make(map[string][]time.Time)
	for _, msg := range outbound {
		repliesTo[msg.RecipientID] = append(repliesTo[msg.RecipientID], msg.CreatedAt)
	}

	var totalMinutes float64
	var samples int
	for _, msg := range inbound {
		replies := repliesTo[msg.SenderID]
		idx := sort.Search(len(replies), func(i int) bool {
			return replies[i].After(msg.CreatedAt)
		})
		if idx >= len(replies) {
			continue
		}
		reply := replies[idx]
		if !sameUTCDay(msg.CreatedAt, reply) {
			continue
		}
		totalMinutes += reply.Sub(msg.CreatedAt).Minutes()
		samples++
	}

	if samples == 0 {
		return 0, nil
	}
	return totalMinutes / float64(samples), nil
}

func sameUTCDay(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Year() == bu.Year() && au.YearDay() == bu.YearDay()
}

// computeScore 计算声誉分，下限0
func computeScore(f Factors) int {
	score := 4*f.PositiveFeedback + 2*f.CompletedSales
	score += responseBonus(f.AvgResponseTime)
	score -= 5 * f.NegativeFeedback
	score -= 10 * f.ReportsAgainst
	if score < 0 {
		score = 0
	}
	return score
}

// responseBonus 按平均响应时长给出加分档位
func responseBonus(avgMinutes float64) int {
	if avgMinutes <= 0 {
		return 0
	}
	switch {
	case avgMinutes < 5:
		return 30
	case avgMinutes < 15:
		return 20
	case avgMinutes < 60:
		return 10
	}
	return 0
}

// computeTrustScore 计算信任分，独立口径，钳制在 [0, 100]
func computeTrustScore(f Factors) int {
	trust := 50

	positiveBonus := 2 * f.PositiveFeedback
	if positiveBonus > 30 {
		positiveBonus = 30
	}
	trust += positiveBonus

	if f.AvgResponseTime > 0 && f.AvgResponseTime < 30 {
		trust += 10
	}

	trust -= 10 * f.NegativeFeedback
	trust -= 15 * f.ReportsAgainst

	if trust < 0 {
		trust = 0
	}
	if trust > 100 {
		trust = 100
	}
	return trust
}

// levelForScore 是声誉分到等级的阶梯函数
func levelForScore(score int) string {
	switch {
	case score >= 500:
		return LevelElite
	case score >= 300:
		return LevelTrusted
	case score >= 150:
		return LevelEstablished
	case score >= 50:
		return LevelRising
	}
	return LevelBeginner
}

// Get 读取用户已存储的声誉结果，不存在时返回nil
func Get(userID string) (*ReputationScore, error) {
	var row ReputationScore
	err := database.DB.Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("无法读取用户 %s 的声誉: %w", userID, err)
	}
	return &row, nil
}

// PrimeModule 负责迁移声誉表
func PrimeModule() error {
	if err := database.DB.AutoMigrate(&ReputationScore{}); err != nil {
		return fmt.Errorf("无法迁移reputation_scores表: %w", err)
	}
	fmt.Println("ReputationScore数据库表迁移成功。")
	return nil
}
