package xp

import (
	"errors"
	"fmt"
	"time"

	"github.com/tiejeevan/gsale-backend/internal/platform/database"
	"gorm.io/gorm"
)

// GetActiveRule 查找某个动作类型的有效规则。
// 规则不存在或已停用都返回nil——对调用方而言这两种情况没有区别。
func GetActiveRule(actionType string) (*XPRule, error) {
	var rule XPRule
	err := database.DB.Where("action_type = ?", actionType).First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("无法查询XP规则 %s: %w", actionType, err)
	}
	if !rule.IsActive {
		return nil, nil
	}
	return &rule, nil
}

// utcDayStart 返回某个时刻所在UTC日历日的零点。
// 每日上限统一按UTC结算，保证跨地域部署时的确定性。
func utcDayStart(at time.Time) time.Time {
	utc := at.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

// CountToday 统计用户今天（UTC）某个动作已入账的流水条数。
// 这个计数和之后的插入不在同一个事务里：并发下的少量超发是可接受的。
func CountToday(userID, actionType string, now time.Time) (int64, error) {
	var count int64
	err := database.DB.Model(&XPTransaction{}).
		Where("user_id = ? AND action_type = ? AND created_at >= ?", userID, actionType, utcDayStart(now)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("无法统计用户 %s 今日的 %s 流水: %w", userID, actionType, err)
	}
	return count, nil
}

// InsertTransaction 追加一条流水
func InsertTransaction(txn *XPTransaction) error {
	if err := database.DB.Create(txn).Error; err != nil {
		return fmt.Errorf("无法写入XP流水: %w", err)
	}
	return nil
}

// History 返回用户的流水历史，按时间倒序
func History(userID string, limit, offset int) ([]XPTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var rows []XPTransaction
	err := database.DB.Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("无法读取用户 %s 的XP历史: %w", userID, err)
	}
	return rows, nil
}

// BreakdownRow 是按动作类型汇总的一行
type BreakdownRow struct {
	ActionType string `json:"actionType"`
	TotalXP    int    `json:"totalXp"`
	Count      int    `json:"count"`
}

// Breakdown 按动作类型汇总用户的全部流水
func Breakdown(userID string) ([]BreakdownRow, error) {
	var rows []BreakdownRow
	err := database.DB.Model(&XPTransaction{}).
		Select("action_type, SUM(xp_amount) AS total_xp, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("action_type").
		Order("total_xp desc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("无法汇总用户 %s 的XP明细: %w", userID, err)
	}
	return rows, nil
}

// CountTransactions 返回流水总条数，供管理端统计
func CountTransactions() (int64, error) {
	var total int64
	if err := database.DB.Model(&XPTransaction{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("无法统计XP流水总数: %w", err)
	}
	return total, nil
}

// ListRules 返回全部规则，供管理端展示
func ListRules() ([]XPRule, error) {
	var rules []XPRule
	if err := database.DB.Order("action_type asc").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("无法读取XP规则表: %w", err)
	}
	return rules, nil
}

// RulePatch 描述一次对规则的部分更新，nil字段表示不修改。
type RulePatch struct {
	XPAmount   *int    `json:"xpAmount"`
	EntityType *string `json:"entityType"`
	Category   *string `json:"category"`
	DailyLimit *int    `json:"dailyLimit"`
	IsActive   *bool   `json:"isActive"`
}

// UpdateRule 按patch更新一条规则。规则不存在时返回gorm.ErrRecordNotFound。
func UpdateRule(actionType string, patch RulePatch) (*XPRule, error) {
	var rule XPRule
	if err := database.DB.Where("action_type = ?", actionType).First(&rule).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.XPAmount != nil {
		updates["xp_amount"] = *patch.XPAmount
	}
	if patch.EntityType != nil {
		updates["entity_type"] = *patch.EntityType
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.DailyLimit != nil {
		updates["daily_limit"] = *patch.DailyLimit
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&rule).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("无法更新XP规则 %s: %w", actionType, err)
		}
	}
	return &rule, nil
}
