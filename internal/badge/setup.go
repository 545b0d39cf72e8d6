package badge

import (
	"errors"
	"fmt"

	"github.com/tiejeevan/gsale-backend/internal/platform/database"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// defaultBadges 是新部署时写入的缺省徽章集
var defaultBadges = []Badge{
	{
		Name: "First Steps", Slug: "first-steps", Category: "content", Rarity: RarityCommon,
		Description: "发布你的第一个帖子",
		Criteria:    datatypes.JSONMap{"min_posts": 1},
	},
	{
		Name: "Content Creator", Slug: "content-creator", Category: "content", Rarity: RarityRare,
		Description: "发布50个帖子",
		Criteria:    datatypes.JSONMap{"min_posts": 50},
	},
	{
		Name: "Conversation Starter", Slug: "conversation-starter", Category: "content", Rarity: RarityCommon,
		Description: "发表100条评论",
		Criteria:    datatypes.JSONMap{"min_comments": 100},
	},
	{
		Name: "Crowd Favorite", Slug: "crowd-favorite", Category: "engagement", Rarity: RarityRare,
		Description: "帖子累计获得100个赞",
		Criteria:    datatypes.JSONMap{"min_likes_received": 100},
	},
	{
		Name: "Supporter", Slug: "supporter", Category: "engagement", Rarity: RarityCommon,
		Description: "送出100个赞",
		Criteria:    datatypes.JSONMap{"min_likes_given": 100},
	},
	{
		Name: "Rising Star", Slug: "rising-star", Category: "progression", Rarity: RarityRare,
		Description: "达到5级",
		Criteria:    datatypes.JSONMap{"min_level": 5},
	},
	{
		Name: "Veteran", Slug: "veteran", Category: "progression", Rarity: RarityEpic,
		Description: "达到10级",
		Criteria:    datatypes.JSONMap{"min_level": 10},
	},
	{
		Name: "Trusted Trader", Slug: "trusted-trader", Category: "marketplace", Rarity: RarityEpic,
		Description: "完成10笔交易并获得10个好评",
		Criteria:    datatypes.JSONMap{"min_completed_sales": 10, "min_positive_feedback": 10},
	},
	{
		Name: "Dedicated", Slug: "dedicated", Category: "retention", Rarity: RarityRare,
		Description: "连续签到7天",
		Criteria:    datatypes.JSONMap{"min_login_streak": 7},
	},
	{
		Name: "Marketplace Legend", Slug: "marketplace-legend", Category: "marketplace", Rarity: RarityLegendary,
		Description: "完成100笔交易并达到15级",
		Criteria:    datatypes.JSONMap{"min_completed_sales": 100, "min_level": 15},
	},
}

// PrimeModule 负责迁移徽章相关的表并补齐缺省徽章。
// 已存在的徽章（按slug判断）不会被覆盖。
func PrimeModule() error {
	if err := database.DB.AutoMigrate(&Badge{}, &UserBadge{}); err != nil {
		return fmt.Errorf("无法迁移徽章表: %w", err)
	}

	for _, b := range defaultBadges {
		var existing Badge
		err := database.DB.Where("slug = ?", b.Slug).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("无法检查徽章 %s: %w", b.Slug, err)
		}
		toCreate := b
		toCreate.IsActive = true
		if err := database.DB.Create(&toCreate).Error; err != nil {
			return fmt.Errorf("无法写入缺省徽章 %s: %w", b.Slug, err)
		}
	}

	fmt.Println("Badge数据库表迁移成功。")
	return nil
}
