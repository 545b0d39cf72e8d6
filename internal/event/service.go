package event

import (
	"errors"
	"fmt"
	"time"

	"github.com/tiejeevan/gsale-backend/internal/platform/database"
	"github.com/tiejeevan/gsale-backend/internal/settings"
	"github.com/tiejeevan/gsale-backend/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GetActiveEvents 返回当前生效的全部活动，按倍率从高到低排序
func GetActiveEvents(now time.Time) ([]SeasonalEvent, error) {
	var rows []SeasonalEvent
	err := database.DB.
		Where("is_active = ? AND start_date <= ? AND end_date >= ?", true, now, now).
		Order("xp_multiplier desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("无法查询生效中的活动: %w", err)
	}
	return rows, nil
}

// ActiveMultiplier 返回XP引擎当前应使用的倍率。
// 有生效活动时取其中最高的倍率；否则退回全局倍率设置（缺省1.0）。
// 多个活动重叠时只取最高，绝不叠乘，避免倍率失控。
// 赛季活动功能关闭时活动一律不参与，直接退回全局倍率。
func ActiveMultiplier(now time.Time) float64 {
	if !settings.IsFeatureEnabled(settings.FeatureSeasonalEvents) {
		return settings.GetFloat(settings.KeyXPMultiplier, 1.0)
	}

	active, err := GetActiveEvents(now)
	if err != nil {
		logger.Errorf("查询活动倍率失败，退回全局倍率: %v", err)
		return settings.GetFloat(settings.KeyXPMultiplier, 1.0)
	}
	if len(active) > 0 {
		// 查询已按倍率降序排序
		return active[0].XPMultiplier
	}
	return settings.GetFloat(settings.KeyXPMultiplier, 1.0)
}

// List 返回全部活动（含未生效和已停用的），供管理端使用
func List() ([]SeasonalEvent, error) {
	var rows []SeasonalEvent
	if err := database.DB.Order("start_date desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("无法读取活动表: %w", err)
	}
	return rows, nil
}

// GetByID 按ID读取一个活动，不存在时返回nil
func GetByID(id uint) (*SeasonalEvent, error) {
	var row SeasonalEvent
	err := database.DB.First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("无法读取活动 %d: %w", id, err)
	}
	return &row, nil
}

// validate 校验活动字段的基本合法性
func validate(name string, start, end time.Time, multiplier float64) error {
	if name == "" {
		return errors.New("活动名称不能为空")
	}
	if !end.After(start) {
		return errors.New("活动结束时间必须晚于开始时间")
	}
	if multiplier < 0 {
		return errors.New("XP倍率不能为负数")
	}
	return nil
}

// Create 创建一个新活动
func Create(row *SeasonalEvent) error {
	if err := validate(row.Name, row.StartDate, row.EndDate, row.XPMultiplier); err != nil {
		return err
	}
	if err := database.DB.Create(row).Error; err != nil {
		return fmt.Errorf("无法创建活动: %w", err)
	}
	return nil
}

// Patch 描述一次对活动的部分更新，nil字段表示不修改。
type Patch struct {
	Name         *string            `json:"name"`
	Description  *string            `json:"description"`
	StartDate    *time.Time         `json:"startDate"`
	EndDate      *time.Time         `json:"endDate"`
	XPMultiplier *float64           `json:"xpMultiplier"`
	BadgeRewards *datatypes.JSONMap `json:"badgeRewards"`
	EventRules   *datatypes.JSONMap `json:"eventRules"`
	IsActive     *bool              `json:"isActive"`
}

// Update 按patch更新一个活动。活动不存在时返回nil, nil。
func Update(id uint, patch Patch) (*SeasonalEvent, error) {
	row, err := GetByID(id)
	if err != nil || row == nil {
		return row, err
	}

	name := row.Name
	if patch.Name != nil {
		name = *patch.Name
	}
	start := row.StartDate
	if patch.StartDate != nil {
		start = *patch.StartDate
	}
	end := row.EndDate
	if patch.EndDate != nil {
		end = *patch.EndDate
	}
	multiplier := row.XPMultiplier
	if patch.XPMultiplier != nil {
		multiplier = *patch.XPMultiplier
	}
	if err := validate(name, start, end, multiplier); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.StartDate != nil {
		updates["start_date"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		updates["end_date"] = *patch.EndDate
	}
	if patch.XPMultiplier != nil {
		updates["xp_multiplier"] = *patch.XPMultiplier
	}
	if patch.BadgeRewards != nil {
		updates["badge_rewards"] = *patch.BadgeRewards
	}
	if patch.EventRules != nil {
		updates["event_rules"] = *patch.EventRules
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}

	if len(updates) > 0 {
		if err := database.DB.Model(row).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("无法更新活动 %d: %w", id, err)
		}
	}
	return row, nil
}

// Delete 删除一个活动，返回是否确实删除了一行
func Delete(id uint) (bool, error) {
	result := database.DB.Delete(&SeasonalEvent{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("无法删除活动 %d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// CountActive 返回当前生效的活动数，供管理端统计
func CountActive(now time.Time) (int64, error) {
	var total int64
	err := database.DB.Model(&SeasonalEvent{}).
		Where("is_active = ? AND start_date <= ? AND end_date >= ?", true, now, now).
		Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("无法统计生效中的活动数: %w", err)
	}
	return total, nil
}

// PrimeModule 负责迁移活动表
func PrimeModule() error {
	if err := database.DB.AutoMigrate(&SeasonalEvent{}); err != nil {
		return fmt.Errorf("无法迁移seasonal_events表: %w", err)
	}
	fmt.Println("SeasonalEvent数据库表迁移成功。")
	return nil
}
