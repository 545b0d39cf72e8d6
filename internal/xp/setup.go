package xp

import (
	"errors"
	"fmt"

	"github.com/tiejeevan/gsale-backend/internal/platform/database"
	"gorm.io/gorm"
)

// defaultRules 是新部署时写入的缺省加分规则
var defaultRules = []XPRule{
	{ActionType: "post_created", XPAmount: 15, EntityType: "post", Category: "content"},
	{ActionType: "comment_created", XPAmount: 5, EntityType: "comment", Category: "content"},
	{ActionType: "like_received", XPAmount: 2, EntityType: "post", Category: "engagement", DailyLimit: 100},
	{ActionType: "like_given", XPAmount: 1, EntityType: "post", Category: "engagement", DailyLimit: 50},
	{ActionType: "follow_received", XPAmount: 3, EntityType: "user", Category: "social"},
	{ActionType: "message_sent", XPAmount: 1, EntityType: "message", Category: "social", DailyLimit: 20},
	{ActionType: ActionDailyLogin, XPAmount: 10, EntityType: "user", Category: "retention", DailyLimit: 1},
	{ActionType: "profile_completed", XPAmount: 25, EntityType: "user", Category: "retention", DailyLimit: 1},
	{ActionType: "sale_completed", XPAmount: 50, EntityType: "order", Category: "marketplace"},
	{ActionType: "purchase_completed", XPAmount: 20, EntityType: "order", Category: "marketplace"},
}

// PrimeModule 负责迁移XP相关的表并补齐缺省规则。
// 已存在的规则不会被覆盖，管理员的修改在重启后保留。
func PrimeModule() error {
	if err := database.DB.AutoMigrate(&XPRule{}, &XPTransaction{}); err != nil {
		return fmt.Errorf("无法迁移XP表: %w", err)
	}

	for _, rule := range defaultRules {
		var existing XPRule
		err := database.DB.Where("action_type = ?", rule.ActionType).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("无法检查XP规则 %s: %w", rule.ActionType, err)
		}
		toCreate := rule
		toCreate.IsActive = true
		if err := database.DB.Create(&toCreate).Error; err != nil {
			return fmt.Errorf("无法写入缺省XP规则 %s: %w", rule.ActionType, err)
		}
	}

	fmt.Println("XP数据库表迁移成功。")
	return nil
}
