package leaderboard

import (
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/tiejeevan/gsale-backend/internal/platform/database"
	"github.com/tiejeevan/gsale-backend/internal/profile"
	"github.com/tiejeevan/gsale-backend/internal/settings"
	"github.com/tiejeevan/gsale-backend/internal/stats"
	"github.com/tiejeevan/gsale-backend/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// rebuildInFlight 防止两个重建周期重叠执行。
// 上一轮还没结束时，新的一轮直接跳过并记日志。
var rebuildInFlight atomic.Bool

// UpdateAllLeaderboards 是权威的全量重建入口。
// 排行榜功能关闭时是空操作；单个榜的失败不影响其余榜的重建。
func UpdateAllLeaderboards() {
	if !settings.IsFeatureEnabled(settings.FeatureLeaderboards) {
		return
	}
	if !rebuildInFlight.CompareAndSwap(false, true) {
		logger.Warn("上一轮排行榜重建尚未结束，本轮跳过")
		return
	}
	defer rebuildInFlight.Store(false)

	started := time.Now()
	for _, lbType := range AllTypes {
		if err := rebuildType(lbType); err != nil {
			logger.Errorf("排行榜 %s 重建失败: %v", lbType, err)
			continue
		}
		mirrorToRedis(lbType)
	}
	logger.Infof("排行榜全量重建完成，耗时 %v", time.Since(started))
}

// rebuildType 在单个数据库事务内完成一个榜的删除和重灌。
// 事务外的读者要么看到旧的完整榜单，要么看到新的完整榜单，不会看到半成品。
func rebuildType(lbType string) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		entries, err := computeEntries(tx, lbType)
		if err != nil {
			return err
		}

		if err := tx.Where("leaderboard_type = ?", lbType).Delete(&LeaderboardEntry{}).Error; err != nil {
			return fmt.Errorf("无法清空排行榜 %s: %w", lbType, err)
		}
		if len(entries) == 0 {
			return nil
		}
		if err := tx.Create(&entries).Error; err != nil {
			return fmt.Errorf("无法写入排行榜 %s: %w", lbType, err)
		}
		return nil
	})
}

// rankedRow 是聚合查询的中间结果
type rankedRow struct {
	UserID string
	Score  int64
}

func computeEntries(tx *gorm.DB, lbType string) ([]LeaderboardEntry, error) {
	var rows []rankedRow
	var err error

	switch lbType {
	case TypeTopLevel:
		return computeTopLevel(tx)
	case TypeWeeklySellers:
		rows, err = computeWeeklySellers(tx)
	case TypeMonthlyCreators:
		rows, err = computeMonthlyCreators(tx)
	case TypeTopHelpers:
		rows, err = computeTopHelpers(tx)
	default:
		return nil, fmt.Errorf("未知的排行榜类型: %s", lbType)
	}
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, LeaderboardEntry{
			LeaderboardType: lbType,
			Rank:            i + 1,
			UserID:          row.UserID,
			Score:           row.Score,
		})
	}
	return entries, nil
}

// computeTopLevel 按 (等级, 总XP) 降序取前N名
func computeTopLevel(tx *gorm.DB) ([]LeaderboardEntry, error) {
	var profiles []profile.UserGamificationProfile
	err := tx.Order("current_level desc, total_xp desc, user_id asc").
		Limit(TopN).
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("无法查询等级排行: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(profiles))
	for i, p := range profiles {
		entries = append(entries, LeaderboardEntry{
			LeaderboardType: TypeTopLevel,
			Rank:            i + 1,
			UserID:          p.UserID,
			Score:           int64(p.TotalXP),
			Metadata:        datatypes.JSONMap{"level": p.CurrentLevel},
		})
	}
	return entries, nil
}

// computeWeeklySellers 统计最近7天内已送达订单的卖家排行
func computeWeeklySellers(tx *gorm.DB) ([]rankedRow, error) {
	since := time.Now().UTC().AddDate(0, 0, -7)
	var rows []rankedRow
	err := tx.Model(&stats.Order{}).
		Select("seller_id AS user_id, COUNT(*) AS score").
		Where("status = ? AND delivered_at >= ?", stats.OrderStatusDelivered, since).
		Group("seller_id").
		Order("score desc, seller_id asc").
		Limit(TopN).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("无法查询周销量排行: %w", err)
	}
	return rows, nil
}

// computeMonthlyCreators 统计最近30天内创建的帖子获得的点赞数排行
func computeMonthlyCreators(tx *gorm.DB) ([]rankedRow, error) {
	since := time.Now().UTC().AddDate(0, 0, -30)
	var rows []rankedRow
	err := tx.Model(&stats.PostLike{}).
		Select("posts.author_id AS user_id, COUNT(DISTINCT post_likes.id) AS score").
		Joins("JOIN posts ON posts.id = post_likes.post_id").
		Where("posts.created_at >= ?", since).
		Group("posts.author_id").
		Order("score desc, posts.author_id asc").
		Limit(TopN).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("无法查询月度创作者排行: %w", err)
	}
	return rows, nil
}

// computeTopHelpers 按 评论数 + 送出点赞数 之和排行。
// 两个来源分别聚合后在内存里合并，避免跨表的复杂SQL。
func computeTopHelpers(tx *gorm.DB) ([]rankedRow, error) {
	var commentRows []rankedRow
	err := tx.Model(&stats.Comment{}).
		Select("author_id AS user_id, COUNT(*) AS score").
		Group("author_id").
		Scan(&commentRows).Error
	if err != nil {
		return nil, fmt.Errorf("无法统计评论数: %w", err)
	}

	var likeRows []rankedRow
	err = tx.Model(&stats.PostLike{}).
		Select("user_id, COUNT(*) AS score").
		Group("user_id").
		Scan(&likeRows).Error
	if err != nil {
		return nil, fmt.Errorf("无法统计送出的点赞数: %w", err)
	}

	combined := make(map[string]int64, len(commentRows)+len(likeRows))
	for _, row := range commentRows {
		combined[row.UserID] += row.Score
	}
	for _, row := range likeRows {
		combined[row.UserID] += row.Score
	}

	rows := make([]rankedRow, 0, len(combined))
	for userID, score := range combined {
		rows = append(rows, rankedRow{UserID: userID, Score: score})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].UserID < rows[j].UserID
	})
	if len(rows) > TopN {
		rows = rows[:TopN]
	}
	return rows, nil
}

// GetLeaderboard 返回某个榜的前N名，按名次升序
func GetLeaderboard(lbType string, limit int) ([]LeaderboardEntry, error) {
	if !ValidType(lbType) {
		return nil, fmt.Errorf("未知的排行榜类型: %s", lbType)
	}
	if limit <= 0 || limit > TopN {
		limit = TopN
	}
	var rows []LeaderboardEntry
	err := database.DB.Where("leaderboard_type = ?", lbType).
		Order("rank asc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("无法读取排行榜 %s: %w", lbType, err)
	}
	return rows, nil
}

// GetUserRank 点查用户在某个榜上的名次。
// 用户不在榜上（没进前N或榜从未构建）时返回nil。
func GetUserRank(userID, lbType string) (*LeaderboardEntry, error) {
	if !ValidType(lbType) {
		return nil, fmt.Errorf("未知的排行榜类型: %s", lbType)
	}

	// Redis镜像命中时走缓存路径
	if entry, ok := rankFromRedis(userID, lbType); ok {
		return entry, nil
	}

	var row LeaderboardEntry
	err := database.DB.Where("leaderboard_type = ? AND user_id = ?", lbType, userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("无法查询用户 %s 在 %s 的名次: %w", userID, lbType, err)
	}
	return &row, nil
}

// PrimeModule 负责迁移排行榜表
func PrimeModule() error {
	if err := database.DB.AutoMigrate(&LeaderboardEntry{}); err != nil {
		return fmt.Errorf("无法迁移leaderboard_entries表: %w", err)
	}
	fmt.Println("LeaderboardEntry数据库表迁移成功。")
	return nil
}
