package gamification

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tiejeevan/gsale-backend/internal/badge"
	"github.com/tiejeevan/gsale-backend/internal/event"
	"github.com/tiejeevan/gsale-backend/internal/eventlog"
	"github.com/tiejeevan/gsale-backend/internal/notify"
	"github.com/tiejeevan/gsale-backend/internal/platform/database"
	"github.com/tiejeevan/gsale-backend/internal/profile"
	"github.com/tiejeevan/gsale-backend/internal/settings"
	"github.com/tiejeevan/gsale-backend/internal/stats"
	"github.com/tiejeevan/gsale-backend/internal/xp"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	database.DB = db
	require.NoError(t, settings.PrimeModule())
	require.NoError(t, profile.PrimeModule())
	require.NoError(t, stats.PrimeModule())
	require.NoError(t, xp.PrimeModule())
	require.NoError(t, eventlog.PrimeModule())
	require.NoError(t, badge.PrimeModule())
	require.NoError(t, event.PrimeModule())
	settings.Invalidate()
}

func transactionCount(t *testing.T, userID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, database.DB.Model(&xp.XPTransaction{}).
		Where("user_id = ?", userID).Count(&count).Error)
	return count
}

func TestAwardXPHappyPath(t *testing.T) {
	setupTestDB(t)
	userID := uuid.NewString()
	recorder := &notify.Recorder{}

	entityID := uuid.NewString()
	result := AwardXP(userID, "post_created", &entityID, map[string]interface{}{"postId": entityID}, recorder)
	require.NotNil(t, result)
	assert.Equal(t, 15, result.XPEarned)
	assert.Equal(t, 15, result.TotalXP)
	assert.Equal(t, 1, result.CurrentLevel)
	assert.False(t, result.LeveledUp)

	// 流水、档案和通知各写了一次
	assert.Equal(t, int64(1), transactionCount(t, userID))
	p, err := profile.Get(userID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 15, p.TotalXP)
	assert.Equal(t, 1, p.CurrentLevel)

	earned := recorder.ByEvent(notify.EventXPEarned)
	require.Len(t, earned, 1)
	assert.Equal(t, userID, earned[0].UserID)
}

func TestAwardXPLevelUp(t *testing.T) {
	setupTestDB(t)
	userID := uuid.NewString()
	recorder := &notify.Recorder{}

	require.NoError(t, profile.Ensure(userID))
	_, err := profile.AddXP(userID, 90)
	require.NoError(t, err)

	// 90 + 15 = 105，跨过2级的100阈值
	result := AwardXP(userID, "post_created", nil, nil, recorder)
	require.NotNil(t, result)
	assert.Equal(t, 105, result.TotalXP)
	assert.Equal(t, 2, result.CurrentLevel)
	assert.True(t, result.LeveledUp)

	p, err := profile.Get(userID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.CurrentLevel)

	levelUps := recorder.ByEvent(notify.EventLevelUp)
	require.Len(t, levelUps, 1)

	// 审计日志里有level_up事件
	logs, err := eventlog.List(eventlog.TypeLevelUp, 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, userID, logs[0].UserID)
}

func TestLevelUpNotReportedWhenPromoteFails(t *testing.T) {
	setupTestDB(t)
	userID := uuid.NewString()

	require.NoError(t, profile.Ensure(userID))
	healthy := &notify.Recorder{}
	assert.True(t, handleLevelUp(userID, 1, 2, healthy))
	assert.Len(t, healthy.ByEvent(notify.EventLevelUp), 1)

	// 新等级写不进档案时升级不算成立，不发通知也不评估徽章
	require.NoError(t, database.DB.Migrator().DropTable(&profile.UserGamificationProfile{}))
	broken := &notify.Recorder{}
	assert.False(t, handleLevelUp(userID, 2, 3, broken))
	assert.Empty(t, broken.Events())
}

func TestAwardXPUnknownActionIsSilentNoOp(t *testing.T) {
	setupTestDB(t)
	const userID = "user-3"

	assert.Nil(t, AwardXP(userID, "unknown_action", nil, nil, nil))
	assert.Zero(t, transactionCount(t, userID))
}

func TestAwardXPInactiveRuleIsSkipped(t *testing.T) {
	setupTestDB(t)
	const userID = "user-4"

	inactive := false
	_, err := xp.UpdateRule("post_created", xp.RulePatch{IsActive: &inactive})
	require.NoError(t, err)

	assert.Nil(t, AwardXP(userID, "post_created", nil, nil, nil))
	assert.Zero(t, transactionCount(t, userID))
}

func TestAwardXPMasterSwitchOff(t *testing.T) {
	setupTestDB(t)
	const userID = "user-5"

	require.NoError(t, settings.Update(settings.KeyEnabled, "false"))
	assert.Nil(t, AwardXP(userID, "post_created", nil, nil, nil))
	assert.Zero(t, transactionCount(t, userID))

	// 重新开启后立即恢复加分
	require.NoError(t, settings.Update(settings.KeyEnabled, "true"))
	result := AwardXP(userID, "post_created", nil, nil, nil)
	require.NotNil(t, result)
	assert.Equal(t, 15, result.XPEarned)
}

func TestAwardXPRespectsDailyLimit(t *testing.T) {
	setupTestDB(t)
	const userID = "user-6"

	// daily_login的每日上限是1
	first := AwardXP(userID, xp.ActionDailyLogin, nil, nil, nil)
	require.NotNil(t, first)
	assert.Equal(t, 10, first.XPEarned)

	assert.Nil(t, AwardXP(userID, xp.ActionDailyLogin, nil, nil, nil))
	assert.Equal(t, int64(1), transactionCount(t, userID))
}

func TestAwardXPAppliesEventMultiplier(t *testing.T) {
	setupTestDB(t)
	const userID = "user-7"

	now := time.Now().UTC()
	require.NoError(t, event.Create(&event.SeasonalEvent{
		Name:         "Double XP Weekend",
		StartDate:    now.Add(-time.Hour),
		EndDate:      now.Add(time.Hour),
		XPMultiplier: 2.0,
		IsActive:     true,
	}))

	result := AwardXP(userID, "post_created", nil, nil, nil)
	require.NotNil(t, result)
	assert.Equal(t, 30, result.XPEarned)
	assert.Equal(t, 30, result.TotalXP)

	// 倍率作用于单次加分，流水里记录的是实际入账值
	var txn xp.XPTransaction
	require.NoError(t, database.DB.Where("user_id = ?", userID).First(&txn).Error)
	assert.Equal(t, 30, txn.XPAmount)
}

func TestAwardXPIgnoresEventMultiplierWhenFeatureDisabled(t *testing.T) {
	setupTestDB(t)
	const userID = "user-8"

	now := time.Now().UTC()
	require.NoError(t, event.Create(&event.SeasonalEvent{
		Name:         "Double XP Weekend",
		StartDate:    now.Add(-time.Hour),
		EndDate:      now.Add(time.Hour),
		XPMultiplier: 2.0,
		IsActive:     true,
	}))
	require.NoError(t, settings.Update(settings.FeatureKey(settings.FeatureSeasonalEvents), "false"))

	// 赛季活动关闭后进行中的活动不影响加分，按规则原值入账
	result := AwardXP(userID, "post_created", nil, nil, nil)
	require.NotNil(t, result)
	assert.Equal(t, 15, result.XPEarned)
	assert.Equal(t, 15, result.TotalXP)
}

func TestClaimDailyBonusMaintainsStreak(t *testing.T) {
	setupTestDB(t)
	const userID = "user-8"

	first := ClaimDailyBonus(userID, nil)
	require.NotNil(t, first)
	assert.Equal(t, 10, first.XPEarned)
	assert.Equal(t, 1, first.Streak)

	// 当天重复领取被每日上限挡住
	assert.Nil(t, ClaimDailyBonus(userID, nil))

	// 把上次签到改成昨天，连击应该+1
	yesterday := time.Now().UTC().Add(-24 * time.Hour)
	require.NoError(t, profile.UpdateStreak(userID, 3, yesterday))
	require.NoError(t, database.DB.Where("user_id = ? AND action_type = ?", userID, xp.ActionDailyLogin).
		Delete(&xp.XPTransaction{}).Error)

	next := ClaimDailyBonus(userID, nil)
	require.NotNil(t, next)
	assert.Equal(t, 4, next.Streak)

	// 断档超过一天后连击重置为1
	lastWeek := time.Now().UTC().Add(-7 * 24 * time.Hour)
	require.NoError(t, profile.UpdateStreak(userID, 9, lastWeek))
	require.NoError(t, database.DB.Where("user_id = ? AND action_type = ?", userID, xp.ActionDailyLogin).
		Delete(&xp.XPTransaction{}).Error)

	reset := ClaimDailyBonus(userID, nil)
	require.NotNil(t, reset)
	assert.Equal(t, 1, reset.Streak)
}

func TestAdjustXPNegativeNeverLowersLevel(t *testing.T) {
	setupTestDB(t)
	const userID = "user-9"

	require.NoError(t, profile.Ensure(userID))
	_, err := profile.AddXP(userID, 150)
	require.NoError(t, err)
	require.NoError(t, profile.PromoteLevel(userID, 2))

	result, err := AdjustXP("admin-1", userID, -100, "fraudulent likes", nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 50, result.TotalXP)
	assert.False(t, result.LeveledUp)

	// 总XP降到了2级阈值以下，但等级保持不变
	p, err := profile.Get(userID)
	require.NoError(t, err)
	assert.Equal(t, 50, p.TotalXP)
	assert.Equal(t, 2, p.CurrentLevel)

	// 调整有流水和审计记录
	var txn xp.XPTransaction
	require.NoError(t, database.DB.Where("user_id = ? AND action_type = ?", userID, xp.ActionAdminAdjustment).
		First(&txn).Error)
	assert.Equal(t, -100, txn.XPAmount)

	logs, err := eventlog.List(eventlog.TypeAdminXPAdjustment, 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
}

func TestAdjustXPPositiveCanLevelUp(t *testing.T) {
	setupTestDB(t)
	const userID = "user-10"

	result, err := AdjustXP("admin-1", userID, 450, "contest prize", nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 450, result.TotalXP)
	assert.Equal(t, 3, result.CurrentLevel)
	assert.True(t, result.LeveledUp)

	p, err := profile.Get(userID)
	require.NoError(t, err)
	assert.Equal(t, 3, p.CurrentLevel)
}
