package stats

import (
	"fmt"

	"github.com/tiejeevan/gsale-backend/internal/platform/database"
	"github.com/tiejeevan/gsale-backend/internal/profile"
)

// GetUserSnapshot 聚合出一份用户当前状态的快照。
// 快照里的每个维度独立查询，不在一个事务里：徽章判定容忍轻微的读偏差。
func GetUserSnapshot(userID string) (*UserSnapshot, error) {
	snapshot := &UserSnapshot{UserID: userID}

	userProfile, err := profile.Get(userID)
	if err != nil {
		return nil, err
	}
	if userProfile != nil {
		snapshot.Level = userProfile.CurrentLevel
		snapshot.TotalXP = userProfile.TotalXP
		snapshot.LoginStreak = userProfile.CurrentStreak
	} else {
		snapshot.Level = 1
	}

	if err := database.DB.Model(&Post{}).Where("author_id = ?", userID).Count(&snapshot.PostCount).Error; err != nil {
		return nil, fmt.Errorf("无法统计用户 %s 的帖子数: %w", userID, err)
	}
	if err := database.DB.Model(&Comment{}).Where("author_id = ?", userID).Count(&snapshot.CommentCount).Error; err != nil {
		return nil, fmt.Errorf("无法统计用户 %s 的评论数: %w", userID, err)
	}
	if err := database.DB.Model(&PostLike{}).
		Joins("JOIN posts ON posts.id = post_likes.post_id").
		Where("posts.author_id = ?", userID).
		Count(&snapshot.LikesReceived).Error; err != nil {
		return nil, fmt.Errorf("无法统计用户 %s 获得的点赞数: %w", userID, err)
	}
	if err := database.DB.Model(&PostLike{}).Where("user_id = ?", userID).Count(&snapshot.LikesGiven).Error; err != nil {
		return nil, fmt.Errorf("无法统计用户 %s 送出的点赞数: %w", userID, err)
	}
	if err := database.DB.Model(&Order{}).
		Where("seller_id = ? AND status = ?", userID, OrderStatusDelivered).
		Count(&snapshot.CompletedSales).Error; err != nil {
		return nil, fmt.Errorf("无法统计用户 %s 的已完成交易数: %w", userID, err)
	}
	// 本设计中好评数与已完成交易数同源
	snapshot.PositiveFeedback = snapshot.CompletedSales

	return snapshot, nil
}

// PrimeModule 迁移协作表。
// 正式部署中这些表由社交/交易服务负责建表和写入，
// 这里的迁移只为单机部署和测试提供空表。
func PrimeModule() error {
	err := database.DB.AutoMigrate(&Post{}, &Comment{}, &PostLike{}, &Order{}, &Message{}, &Feedback{}, &Report{})
	if err != nil {
		return fmt.Errorf("无法迁移协作表: %w", err)
	}
	fmt.Println("协作表迁移成功。")
	return nil
}
