package settings

import (
	"errors"
	"fmt"

	"github.com/tiejeevan/gsale-backend/internal/platform/database"
	"gorm.io/gorm"
)

// defaultSettings 是新部署时写入的缺省配置
var defaultSettings = map[string]string{
	KeyEnabled:                        "true",
	FeatureKey(FeatureXP):             "true",
	FeatureKey(FeatureBadges):         "true",
	FeatureKey(FeatureLeaderboards):   "true",
	FeatureKey(FeatureReputation):     "true",
	FeatureKey(FeatureSeasonalEvents): "true",
	KeyXPMultiplier:                   "1.0",
	KeyLeaderboardInterval:            "60",
}

// PrimeModule 负责迁移settings表并补齐缺失的缺省配置项。
// 已存在的配置行不会被覆盖。
func PrimeModule() error {
	if err := database.DB.AutoMigrate(&Setting{}); err != nil {
		return fmt.Errorf("无法迁移settings表: %w", err)
	}

	for key, value := range defaultSettings {
		var existing Setting
		err := database.DB.Where("key = ?", key).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("无法检查设置项 %s: %w", key, err)
		}
		if err := database.DB.Create(&Setting{Key: key, Value: value}).Error; err != nil {
			return fmt.Errorf("无法写入缺省设置项 %s: %w", key, err)
		}
	}

	Invalidate()
	fmt.Println("Settings数据库表迁移成功。")
	return nil
}
