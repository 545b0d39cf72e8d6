package gamification

import (
	"fmt"
	"math"
	"time"

	"github.com/tiejeevan/gsale-backend/internal/badge"
	"github.com/tiejeevan/gsale-backend/internal/event"
	"github.com/tiejeevan/gsale-backend/internal/eventlog"
	"github.com/tiejeevan/gsale-backend/internal/notify"
	"github.com/tiejeevan/gsale-backend/internal/profile"
	"github.com/tiejeevan/gsale-backend/internal/settings"
	"github.com/tiejeevan/gsale-backend/internal/xp"
	"github.com/tiejeevan/gsale-backend/pkg/logger"
)

// AwardResult 是一次加分的结果
type AwardResult struct {
	XPEarned     int  `json:"xpEarned"`
	TotalXP      int  `json:"totalXp"`
	CurrentLevel int  `json:"currentLevel"`
	LeveledUp    bool `json:"leveledUp"`
}

// AwardXP 是XP引擎的入口，由帖子、订单、点赞等业务路径在动作完成后调用。
//
// 加分是业务操作的尽力而为的附属品：功能关闭、规则缺失、达到每日上限
// 以及任何存储故障都表现为返回nil，绝不向触发方抛错——发帖请求不能
// 因为XP记账失败而失败。notifier可以为nil，此时跳过通知。
func AwardXP(userID, actionType string, entityID *string, metadata map[string]interface{}, notifier notify.Notifier) *AwardResult {
	if userID == "" || actionType == "" {
		return nil
	}
	if !settings.IsFeatureEnabled(settings.FeatureXP) {
		return nil
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}

	result, err := awardXP(userID, actionType, entityID, metadata, notifier)
	if err != nil {
		logger.Errorf("用户 %s 的 %s 加分失败: %v", userID, actionType, err)
		return nil
	}
	return result
}

func awardXP(userID, actionType string, entityID *string, metadata map[string]interface{}, notifier notify.Notifier) (*AwardResult, error) {
	rule, err := xp.GetActiveRule(actionType)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		// 未知动作或规则已停用，静默跳过
		return nil, nil
	}

	now := time.Now()
	if rule.DailyLimit > 0 {
		count, err := xp.CountToday(userID, actionType, now)
		if err != nil {
			return nil, err
		}
		// 计数和插入之间没有原子性保护，并发下的少量超发是设计允许的
		if count >= int64(rule.DailyLimit) {
			return nil, nil
		}
	}

	multiplier := event.ActiveMultiplier(now.UTC())
	amount := int(math.Floor(float64(rule.XPAmount) * multiplier))

	if err := profile.Ensure(userID); err != nil {
		return nil, err
	}

	txn := xp.XPTransaction{
		UserID:     userID,
		ActionType: actionType,
		XPAmount:   amount,
		EntityType: rule.EntityType,
		EntityID:   entityID,
		Metadata:   metadata,
	}
	if err := xp.InsertTransaction(&txn); err != nil {
		return nil, err
	}

	updated, err := profile.AddXP(userID, amount)
	if err != nil {
		return nil, err
	}

	storedLevel := updated.CurrentLevel
	newLevel := xp.LevelForXP(updated.TotalXP)
	leveledUp := false
	finalLevel := storedLevel
	if newLevel > storedLevel && handleLevelUp(userID, storedLevel, newLevel, notifier) {
		leveledUp = true
		finalLevel = newLevel
	}

	eventlog.Record(userID, eventlog.TypeXPEarned, map[string]interface{}{
		"actionType": actionType,
		"xpAmount":   amount,
		"multiplier": multiplier,
		"totalXp":    updated.TotalXP,
	})
	notifier.Notify(userID, notify.EventXPEarned, map[string]interface{}{
		"xpAmount":     amount,
		"actionType":   actionType,
		"totalXP":      updated.TotalXP,
		"currentLevel": finalLevel,
	})

	return &AwardResult{
		XPEarned:     amount,
		TotalXP:      updated.TotalXP,
		CurrentLevel: finalLevel,
		LeveledUp:    leveledUp,
	}, nil
}

// handleLevelUp 处理一次向上的等级跨越：
// 持久化新等级、写审计、触发徽章重新评估、向用户推送。
// 等级只会向上调整，向下的跨越（管理员扣分）不会走到这里。
// 新等级没能落库时返回false，调用方按原等级对外报告。
func handleLevelUp(userID string, oldLevel, newLevel int, notifier notify.Notifier) bool {
	if err := profile.PromoteLevel(userID, newLevel); err != nil {
		logger.Errorf("持久化用户 %s 的新等级失败: %v", userID, err)
		return false
	}

	eventlog.Record(userID, eventlog.TypeLevelUp, map[string]interface{}{
		"oldLevel": oldLevel,
		"newLevel": newLevel,
	})

	badge.CheckAndAwardBadges(userID, notifier)

	notifier.Notify(userID, notify.EventLevelUp, map[string]interface{}{
		"oldLevel": oldLevel,
		"newLevel": newLevel,
	})
	return true
}

// DailyBonusResult 是一次每日签到的结果
type DailyBonusResult struct {
	AwardResult
	Streak int `json:"streak"`
}

// ClaimDailyBonus 领取每日登录奖励（daily_login规则的薄封装），
// 并维护连续登录天数：隔天签到连击+1，断档重置为1。
// 当天已领取（每日上限命中）或功能关闭时返回nil。
func ClaimDailyBonus(userID string, notifier notify.Notifier) *DailyBonusResult {
	award := AwardXP(userID, xp.ActionDailyLogin, nil, nil, notifier)
	if award == nil {
		return nil
	}

	streak := advanceStreak(userID)
	return &DailyBonusResult{AwardResult: *award, Streak: streak}
}

func advanceStreak(userID string) int {
	userProfile, err := profile.Get(userID)
	if err != nil || userProfile == nil {
		logger.Errorf("读取用户 %s 的档案以更新连击失败: %v", userID, err)
		return 0
	}

	now := time.Now().UTC()
	streak := 1
	if last := userProfile.LastLoginAt; last != nil {
		lastDay := truncateToUTCDay(*last)
		switch truncateToUTCDay(now).Sub(lastDay) {
		case 0:
			// 同一天重复领取（理论上被每日上限挡住，这里兜底）
			streak = userProfile.CurrentStreak
		case 24 * time.Hour:
			streak = userProfile.CurrentStreak + 1
		}
	}

	if err := profile.UpdateStreak(userID, streak, now); err != nil {
		logger.Errorf("更新用户 %s 的连击失败: %v", userID, err)
	}
	return streak
}

func truncateToUTCDay(at time.Time) time.Time {
	utc := at.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

// AdjustXP 是管理员的手工积分调整：绕过规则查找，直接写流水。
// 金额可以为负。向上跨越等级正常触发升级流程；
// 向下跨越时等级保持不变（等级只升不降的既定策略）。
func AdjustXP(adminID, userID string, amount int, reason string, notifier notify.Notifier) (*AwardResult, error) {
	if userID == "" || amount == 0 {
		return nil, fmt.Errorf("无效的调整参数")
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}

	if err := profile.Ensure(userID); err != nil {
		return nil, err
	}

	txn := xp.XPTransaction{
		UserID:     userID,
		ActionType: xp.ActionAdminAdjustment,
		XPAmount:   amount,
		EntityType: "user",
		Metadata: map[string]interface{}{
			"adminId": adminID,
			"reason":  reason,
		},
	}
	if err := xp.InsertTransaction(&txn); err != nil {
		return nil, err
	}

	updated, err := profile.AddXP(userID, amount)
	if err != nil {
		return nil, err
	}

	storedLevel := updated.CurrentLevel
	newLevel := xp.LevelForXP(updated.TotalXP)
	leveledUp := false
	finalLevel := storedLevel
	if newLevel > storedLevel && handleLevelUp(userID, storedLevel, newLevel, notifier) {
		leveledUp = true
		finalLevel = newLevel
	}

	eventlog.Record(userID, eventlog.TypeAdminXPAdjustment, map[string]interface{}{
		"adminId": adminID,
		"amount":  amount,
		"reason":  reason,
		"totalXp": updated.TotalXP,
	})

	return &AwardResult{
		XPEarned:     amount,
		TotalXP:      updated.TotalXP,
		CurrentLevel: finalLevel,
		LeveledUp:    leveledUp,
	}, nil
}
