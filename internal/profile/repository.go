package profile

import (
	"errors"
	"fmt"
	"time"

	"github.com/tiejeevan/gsale-backend/internal/platform/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ensure 保证用户的档案行存在，不存在时以初始值创建。
// 使用ON CONFLICT DO NOTHING，并发的首个动作同时创建也不会出错。
func Ensure(userID string) error {
	row := UserGamificationProfile{
		UserID:          userID,
		TotalXP:         0,
		CurrentLevel:    1,
		ReputationLevel: "Beginner",
	}
	err := database.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("无法创建用户档案 %s: %w", userID, err)
	}
	return nil
}

// Get 读取用户的档案，不存在时返回nil
func Get(userID string) (*UserGamificationProfile, error) {
	var row UserGamificationProfile
	err := database.DB.Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("无法读取用户档案 %s: %w", userID, err)
	}
	return &row, nil
}

// AddXP 对TotalXP做一次存储层的原子自增，然后读回最新的档案。
// 返回的档案里TotalXP是增量后的新值，CurrentLevel仍是增量前持久化的等级。
func AddXP(userID string, delta int) (*UserGamificationProfile, error) {
	err := database.DB.Model(&UserGamificationProfile{}).
		Where("user_id = ?", userID).
		UpdateColumn("total_xp", gorm.Expr("total_xp + ?", delta)).Error
	if err != nil {
		return nil, fmt.Errorf("无法累加用户 %s 的XP: %w", userID, err)
	}

	updated, err := Get(userID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("用户档案 %s 在累加XP后消失", userID)
	}
	return updated, nil
}

// PromoteLevel 把档案等级提升到newLevel。
// 带有current_level < newLevel的条件保护，等级只升不降；
// 并发的升级写入也只会有一个生效。
func PromoteLevel(userID string, newLevel int) error {
	err := database.DB.Model(&UserGamificationProfile{}).
		Where("user_id = ? AND current_level < ?", userID, newLevel).
		UpdateColumn("current_level", newLevel).Error
	if err != nil {
		return fmt.Errorf("无法提升用户 %s 的等级: %w", userID, err)
	}
	return nil
}

// UpdateReputationSummary 把声誉引擎的计算结果镜像到档案的摘要字段
func UpdateReputationSummary(userID string, score int, level string) error {
	err := database.DB.Model(&UserGamificationProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"reputation_score": score,
			"reputation_level": level,
		}).Error
	if err != nil {
		return fmt.Errorf("无法更新用户 %s 的声誉摘要: %w", userID, err)
	}
	return nil
}

// UpdateStreak 写入新的连击天数和签到时间
func UpdateStreak(userID string, streak int, at time.Time) error {
	err := database.DB.Model(&UserGamificationProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"current_streak": streak,
			"last_login_at":  at,
		}).Error
	if err != nil {
		return fmt.Errorf("无法更新用户 %s 的连击: %w", userID, err)
	}
	return nil
}

// Count 返回已有档案的用户数，供管理端统计
func Count() (int64, error) {
	var total int64
	if err := database.DB.Model(&UserGamificationProfile{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("无法统计用户档案数: %w", err)
	}
	return total, nil
}
