package badge

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tiejeevan/gsale-backend/internal/eventlog"
	"github.com/tiejeevan/gsale-backend/internal/notify"
	"github.com/tiejeevan/gsale-backend/internal/platform/database"
	"github.com/tiejeevan/gsale-backend/internal/profile"
	"github.com/tiejeevan/gsale-backend/internal/settings"
	"github.com/tiejeevan/gsale-backend/internal/stats"
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
	require.NoError(t, eventlog.PrimeModule())
	require.NoError(t, PrimeModule())
	settings.Invalidate()
}

func createPosts(t *testing.T, userID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, database.DB.Create(&stats.Post{AuthorID: userID}).Error)
	}
}

func badgeBySlug(t *testing.T, slug string) *Badge {
	t.Helper()
	var row Badge
	require.NoError(t, database.DB.Where("slug = ?", slug).First(&row).Error)
	return &row
}

func TestCheckAndAwardIsIdempotent(t *testing.T) {
	setupTestDB(t)
	const userID = "user-1"
	require.NoError(t, profile.Ensure(userID))
	createPosts(t, userID, 1)

	recorder := &notify.Recorder{}

	first := CheckAndAwardBadges(userID, recorder)
	require.Len(t, first, 1)
	assert.Equal(t, "first-steps", first[0].Slug)

	// 重复评估不再授予，也不再推送
	for i := 0; i < 3; i++ {
		assert.Empty(t, CheckAndAwardBadges(userID, recorder))
	}

	var count int64
	require.NoError(t, database.DB.Model(&UserBadge{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Len(t, recorder.ByEvent(notify.EventBadgeEarned), 1)
}

func TestThresholdCrossedExactlyAtRequiredCount(t *testing.T) {
	setupTestDB(t)
	const userID = "user-2"
	require.NoError(t, profile.Ensure(userID))

	createPosts(t, userID, 49)
	awarded := CheckAndAwardBadges(userID, &notify.Recorder{})
	slugs := make([]string, len(awarded))
	for i, b := range awarded {
		slugs[i] = b.Slug
	}
	assert.Contains(t, slugs, "first-steps")
	assert.NotContains(t, slugs, "content-creator")

	// 第50个帖子之后达标
	createPosts(t, userID, 1)
	awarded = CheckAndAwardBadges(userID, &notify.Recorder{})
	require.Len(t, awarded, 1)
	assert.Equal(t, "content-creator", awarded[0].Slug)
}

func TestFeatureGateBlocksAwards(t *testing.T) {
	setupTestDB(t)
	const userID = "user-3"
	createPosts(t, userID, 10)

	require.NoError(t, settings.Update(settings.FeatureKey(settings.FeatureBadges), "false"))
	assert.Nil(t, CheckAndAwardBadges(userID, &notify.Recorder{}))

	var count int64
	require.NoError(t, database.DB.Model(&UserBadge{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestInactiveBadgeIsSkipped(t *testing.T) {
	setupTestDB(t)
	const userID = "user-4"
	createPosts(t, userID, 1)

	require.NoError(t, database.DB.Model(&Badge{}).
		Where("slug = ?", "first-steps").
		Update("is_active", false).Error)

	assert.Empty(t, CheckAndAwardBadges(userID, &notify.Recorder{}))
}

func TestGetProgressCapsAtHundredPercent(t *testing.T) {
	setupTestDB(t)
	const userID = "user-5"
	require.NoError(t, profile.Ensure(userID))
	createPosts(t, userID, 25)

	creator := badgeBySlug(t, "content-creator")
	items, err := GetProgress(userID, creator.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, string(ReqMinPosts), items[0].Requirement)
	assert.Equal(t, int64(25), items[0].Current)
	assert.Equal(t, int64(50), items[0].Required)
	assert.Equal(t, 50, items[0].Percent)

	firstSteps := badgeBySlug(t, "first-steps")
	items, err = GetProgress(userID, firstSteps.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 100, items[0].Percent)
}

func TestDeleteBadgeKeepsAwardedRows(t *testing.T) {
	setupTestDB(t)
	const userID = "user-6"
	require.NoError(t, profile.Ensure(userID))
	createPosts(t, userID, 1)
	require.Len(t, CheckAndAwardBadges(userID, &notify.Recorder{}), 1)

	firstSteps := badgeBySlug(t, "first-steps")
	deleted, err := DeleteBadge(firstSteps.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// 定义已删除，但持有记录永久保留
	var count int64
	require.NoError(t, database.DB.Model(&UserBadge{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
