package leaderboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

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
	require.NoError(t, PrimeModule())
	settings.Invalidate()
}

func seedProfile(t *testing.T, userID string, level, totalXP int) {
	t.Helper()
	require.NoError(t, database.DB.Create(&profile.UserGamificationProfile{
		UserID:       userID,
		TotalXP:      totalXP,
		CurrentLevel: level,
	}).Error)
}

func TestTopLevelRanksAreDenseAndOrdered(t *testing.T) {
	setupTestDB(t)

	seedProfile(t, "user-a", 3, 500)
	seedProfile(t, "user-b", 5, 1700)
	seedProfile(t, "user-c", 5, 1900)
	seedProfile(t, "user-d", 1, 0)

	UpdateAllLeaderboards()

	entries, err := GetLeaderboard(TypeTopLevel, 10)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	// 名次从1开始连续递增，先按等级后按总XP降序
	wantOrder := []string{"user-c", "user-b", "user-a", "user-d"}
	for i, entry := range entries {
		assert.Equal(t, i+1, entry.Rank)
		assert.Equal(t, wantOrder[i], entry.UserID)
	}
	assert.Equal(t, int64(1900), entries[0].Score)
	assert.Equal(t, 5, int(entries[0].Metadata["level"].(float64)))
}

func TestRebuildReplacesPreviousEntries(t *testing.T) {
	setupTestDB(t)

	seedProfile(t, "user-a", 2, 150)
	UpdateAllLeaderboards()

	entries, err := GetLeaderboard(TypeTopLevel, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// 新用户反超后，旧榜单被整体替换而不是追加
	seedProfile(t, "user-b", 4, 1000)
	UpdateAllLeaderboards()

	entries, err = GetLeaderboard(TypeTopLevel, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "user-b", entries[0].UserID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "user-a", entries[1].UserID)
	assert.Equal(t, 2, entries[1].Rank)

	var total int64
	require.NoError(t, database.DB.Model(&LeaderboardEntry{}).
		Where("leaderboard_type = ?", TypeTopLevel).Count(&total).Error)
	assert.Equal(t, int64(2), total)
}

func TestWeeklySellersOnlyCountsRecentDeliveredOrders(t *testing.T) {
	setupTestDB(t)

	now := time.Now().UTC()
	recent := now.Add(-24 * time.Hour)
	stale := now.Add(-10 * 24 * time.Hour)

	for i := 0; i < 3; i++ {
		require.NoError(t, database.DB.Create(&stats.Order{
			SellerID: "seller-1", Status: stats.OrderStatusDelivered, DeliveredAt: &recent,
		}).Error)
	}
	// 窗口外和未送达的订单不计入
	require.NoError(t, database.DB.Create(&stats.Order{
		SellerID: "seller-1", Status: stats.OrderStatusDelivered, DeliveredAt: &stale,
	}).Error)
	require.NoError(t, database.DB.Create(&stats.Order{
		SellerID: "seller-2", Status: "pending",
	}).Error)
	require.NoError(t, database.DB.Create(&stats.Order{
		SellerID: "seller-2", Status: stats.OrderStatusDelivered, DeliveredAt: &recent,
	}).Error)

	require.NoError(t, rebuildType(TypeWeeklySellers))

	entries, err := GetLeaderboard(TypeWeeklySellers, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "seller-1", entries[0].UserID)
	assert.Equal(t, int64(3), entries[0].Score)
	assert.Equal(t, "seller-2", entries[1].UserID)
	assert.Equal(t, int64(1), entries[1].Score)
}

func TestTopHelpersMergesCommentsAndLikes(t *testing.T) {
	setupTestDB(t)

	for i := 0; i < 2; i++ {
		require.NoError(t, database.DB.Create(&stats.Comment{AuthorID: "helper-1"}).Error)
	}
	require.NoError(t, database.DB.Create(&stats.PostLike{UserID: "helper-1", PostID: 1}).Error)
	require.NoError(t, database.DB.Create(&stats.Comment{AuthorID: "helper-2"}).Error)

	require.NoError(t, rebuildType(TypeTopHelpers))

	entries, err := GetLeaderboard(TypeTopHelpers, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "helper-1", entries[0].UserID)
	assert.Equal(t, int64(3), entries[0].Score)
	assert.Equal(t, "helper-2", entries[1].UserID)
	assert.Equal(t, int64(1), entries[1].Score)
}

func TestGetUserRank(t *testing.T) {
	setupTestDB(t)

	seedProfile(t, "user-a", 2, 150)
	UpdateAllLeaderboards()

	entry, err := GetUserRank("user-a", TypeTopLevel)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 1, entry.Rank)

	// 不在榜上的用户返回nil
	missing, err := GetUserRank("nobody", TypeTopLevel)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = GetUserRank("user-a", "bogus_type")
	assert.Error(t, err)
}

func TestFeatureGateSkipsRebuild(t *testing.T) {
	setupTestDB(t)

	seedProfile(t, "user-a", 2, 150)
	require.NoError(t, settings.Update(settings.FeatureKey(settings.FeatureLeaderboards), "false"))

	UpdateAllLeaderboards()

	entries, err := GetLeaderboard(TypeTopLevel, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
