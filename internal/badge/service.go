package badge

import (
	"errors"
	"fmt"
	"time"

	"github.com/tiejeevan/gsale-backend/internal/eventlog"
	"github.com/tiejeevan/gsale-backend/internal/notify"
	"github.com/tiejeevan/gsale-backend/internal/platform/database"
	"github.com/tiejeevan/gsale-backend/internal/settings"
	"github.com/tiejeevan/gsale-backend/internal/stats"
	"github.com/tiejeevan/gsale-backend/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CheckAndAwardBadges 评估用户对全部有效徽章的资格，授予新达标的徽章。
// 返回本次新授予的徽章列表；功能关闭或出错时返回空（绝不向触发方抛错）。
func CheckAndAwardBadges(userID string, notifier notify.Notifier) []Badge {
	if userID == "" || !settings.IsFeatureEnabled(settings.FeatureBadges) {
		return nil
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}

	awarded, err := checkAndAward(userID, notifier)
	if err != nil {
		logger.Errorf("用户 %s 的徽章判定失败: %v", userID, err)
	}
	return awarded
}

func checkAndAward(userID string, notifier notify.Notifier) ([]Badge, error) {
	var activeBadges []Badge
	if err := database.DB.Where("is_active = ?", true).Find(&activeBadges).Error; err != nil {
		return nil, fmt.Errorf("无法读取徽章表: %w", err)
	}
	if len(activeBadges) == 0 {
		return nil, nil
	}

	owned, err := ownedBadgeIDs(userID)
	if err != nil {
		return nil, err
	}

	snapshot, err := stats.GetUserSnapshot(userID)
	if err != nil {
		return nil, fmt.Errorf("无法获取用户 %s 的统计快照: %w", userID, err)
	}

	var newlyAwarded []Badge
	for _, candidate := range activeBadges {
		if owned[candidate.ID] {
			continue
		}
		if !MeetsAll(ParseCriteria(candidate.Criteria), snapshot) {
			continue
		}

		granted, err := award(userID, &candidate, snapshot)
		if err != nil {
			// 单个徽章授予失败不应阻断其余徽章的评估
			logger.Errorf("授予徽章 %s 给用户 %s 失败: %v", candidate.Slug, userID, err)
			continue
		}
		if !granted {
			continue
		}

		eventlog.Record(userID, eventlog.TypeBadgeEarned, map[string]interface{}{
			"badgeId":   candidate.ID,
			"badgeSlug": candidate.Slug,
		})
		notifier.Notify(userID, notify.EventBadgeEarned, map[string]interface{}{
			"badgeId":     candidate.ID,
			"badgeName":   candidate.Name,
			"badgeIcon":   candidate.IconURL,
			"badgeRarity": candidate.Rarity,
		})
		newlyAwarded = append(newlyAwarded, candidate)
	}
	return newlyAwarded, nil
}

// award 在插入前做二次存在性检查，近似"不存在才插入"。
// 并发评估仍可能同时走到插入，这时唯一索引冲突被当作成功的空操作。
func award(userID string, candidate *Badge, snapshot *stats.UserSnapshot) (bool, error) {
	var existing UserBadge
	err := database.DB.Where("user_id = ? AND badge_id = ?", userID, candidate.ID).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("无法检查徽章持有记录: %w", err)
	}

	row := UserBadge{
		UserID:   userID,
		BadgeID:  candidate.ID,
		EarnedAt: time.Now().UTC(),
		ProgressData: datatypes.JSONMap{
			"level":            snapshot.Level,
			"totalXp":          snapshot.TotalXP,
			"posts":            snapshot.PostCount,
			"comments":         snapshot.CommentCount,
			"likesReceived":    snapshot.LikesReceived,
			"likesGiven":       snapshot.LikesGiven,
			"completedSales":   snapshot.CompletedSales,
			"positiveFeedback": snapshot.PositiveFeedback,
			"loginStreak":      snapshot.LoginStreak,
		},
	}
	if err := database.DB.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		// 二次检查之后仍可能撞上并发插入；以重新查询兜底
		var recheck UserBadge
		if recheckErr := database.DB.Where("user_id = ? AND badge_id = ?", userID, candidate.ID).
			First(&recheck).Error; recheckErr == nil {
			return false, nil
		}
		return false, fmt.Errorf("无法写入徽章持有记录: %w", err)
	}
	return true, nil
}

func ownedBadgeIDs(userID string) (map[uint]bool, error) {
	var rows []UserBadge
	if err := database.DB.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("无法读取用户 %s 的徽章持有记录: %w", userID, err)
	}
	owned := make(map[uint]bool, len(rows))
	for _, row := range rows {
		owned[row.BadgeID] = true
	}
	return owned, nil
}

// OwnedBadge 是用户已获得徽章的DTO，带授予时间
type OwnedBadge struct {
	Badge
	EarnedAt time.Time `json:"earnedAt"`
}

// GetUserBadges 返回用户已获得的全部徽章，按授予时间倒序
func GetUserBadges(userID string) ([]OwnedBadge, error) {
	var userBadges []UserBadge
	err := database.DB.Where("user_id = ?", userID).Order("earned_at desc").Find(&userBadges).Error
	if err != nil {
		return nil, fmt.Errorf("无法读取用户 %s 的徽章: %w", userID, err)
	}
	if len(userBadges) == 0 {
		return []OwnedBadge{}, nil
	}

	ids := make([]uint, len(userBadges))
	for i, ub := range userBadges {
		ids[i] = ub.BadgeID
	}
	var badges []Badge
	if err := database.DB.Where("id IN ?", ids).Find(&badges).Error; err != nil {
		return nil, fmt.Errorf("无法读取徽章定义: %w", err)
	}
	byID := make(map[uint]Badge, len(badges))
	for _, b := range badges {
		byID[b.ID] = b
	}

	out := make([]OwnedBadge, 0, len(userBadges))
	for _, ub := range userBadges {
		if b, ok := byID[ub.BadgeID]; ok {
			out = append(out, OwnedBadge{Badge: b, EarnedAt: ub.EarnedAt})
		}
	}
	return out, nil
}

// ProgressItem 是徽章进度条的一项
type ProgressItem struct {
	Requirement string `json:"requirement"`
	Current     int64  `json:"current"`
	Required    int64  `json:"required"`
	Percent     int    `json:"percent"`
}

// GetProgress 返回用户对某个徽章各条件的完成进度。
// 百分比封顶100，只用于进度条展示，与授予逻辑无关。
func GetProgress(userID string, badgeID uint) ([]ProgressItem, error) {
	var target Badge
	if err := database.DB.First(&target, badgeID).Error; err != nil {
		return nil, err
	}

	snapshot, err := stats.GetUserSnapshot(userID)
	if err != nil {
		return nil, err
	}

	reqs := ParseCriteria(target.Criteria)
	items := make([]ProgressItem, 0, len(reqs))
	for _, req := range reqs {
		current := req.CurrentValue(snapshot)
		percent := 100
		if req.Threshold > 0 {
			percent = int(current * 100 / req.Threshold)
			if percent > 100 {
				percent = 100
			}
		}
		items = append(items, ProgressItem{
			Requirement: string(req.Kind),
			Current:     current,
			Required:    req.Threshold,
			Percent:     percent,
		})
	}
	return items, nil
}

// ListActive 返回全部有效徽章
func ListActive() ([]Badge, error) {
	var rows []Badge
	if err := database.DB.Where("is_active = ?", true).Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("无法读取徽章表: %w", err)
	}
	return rows, nil
}

// ListAll 返回全部徽章（含停用的），供管理端使用
func ListAll() ([]Badge, error) {
	var rows []Badge
	if err := database.DB.Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("无法读取徽章表: %w", err)
	}
	return rows, nil
}

// GetByID 按ID读取徽章，不存在时返回nil
func GetByID(id uint) (*Badge, error) {
	var row Badge
	err := database.DB.First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("无法读取徽章 %d: %w", id, err)
	}
	return &row, nil
}

// CreateBadge 创建一个新徽章定义
func CreateBadge(row *Badge) error {
	if row.Name == "" || row.Slug == "" {
		return errors.New("徽章名称和slug不能为空")
	}
	if !ValidRarity(row.Rarity) {
		return errors.New("无效的稀有度: " + row.Rarity)
	}
	if err := database.DB.Create(row).Error; err != nil {
		return fmt.Errorf("无法创建徽章: %w", err)
	}
	return nil
}

// BadgePatch 描述一次对徽章定义的部分更新，nil字段表示不修改。
type BadgePatch struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Category    *string            `json:"category"`
	Rarity      *string            `json:"rarity"`
	IconURL     *string            `json:"iconUrl"`
	Criteria    *datatypes.JSONMap `json:"criteria"`
	Benefits    *datatypes.JSONMap `json:"benefits"`
	IsActive    *bool              `json:"isActive"`
}

// UpdateBadge 按patch更新徽章定义。徽章不存在时返回nil, nil。
func UpdateBadge(id uint, patch BadgePatch) (*Badge, error) {
	row, err := GetByID(id)
	if err != nil || row == nil {
		return row, err
	}

	if patch.Rarity != nil && !ValidRarity(*patch.Rarity) {
		return nil, errors.New("无效的稀有度: " + *patch.Rarity)
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.Rarity != nil {
		updates["rarity"] = *patch.Rarity
	}
	if patch.IconURL != nil {
		updates["icon_url"] = *patch.IconURL
	}
	if patch.Criteria != nil {
		updates["criteria"] = *patch.Criteria
	}
	if patch.Benefits != nil {
		updates["benefits"] = *patch.Benefits
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}

	if len(updates) > 0 {
		if err := database.DB.Model(row).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("无法更新徽章 %d: %w", id, err)
		}
	}
	return row, nil
}

// DeleteBadge 删除一个徽章定义，返回是否确实删除了一行。
// 已授予的UserBadge记录保留，徽章授予是永久性的。
func DeleteBadge(id uint) (bool, error) {
	result := database.DB.Delete(&Badge{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("无法删除徽章 %d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// CountAwarded 返回已授予的徽章总数，供管理端统计
func CountAwarded() (int64, error) {
	var total int64
	if err := database.DB.Model(&UserBadge{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("无法统计已授予的徽章数: %w", err)
	}
	return total, nil
}
