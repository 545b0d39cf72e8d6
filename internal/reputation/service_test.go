package reputation

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

func TestComputeScore(t *testing.T) {
	// 4*好评 + 2*交易 + 响应加分 - 5*差评 - 10*举报
	assert.Equal(t, 0, computeScore(Factors{}))
	assert.Equal(t, 60, computeScore(Factors{PositiveFeedback: 10, CompletedSales: 10}))
	assert.Equal(t, 90, computeScore(Factors{PositiveFeedback: 10, CompletedSales: 10, AvgResponseTime: 3}))
	assert.Equal(t, 35, computeScore(Factors{PositiveFeedback: 10, CompletedSales: 10, NegativeFeedback: 5}))

	// 分数下限为0，不会为负
	assert.Equal(t, 0, computeScore(Factors{NegativeFeedback: 20, ReportsAgainst: 5}))
}

func TestResponseBonusTiers(t *testing.T) {
	assert.Equal(t, 0, responseBonus(0))
	assert.Equal(t, 0, responseBonus(-1))
	assert.Equal(t, 30, responseBonus(4.9))
	assert.Equal(t, 20, responseBonus(5))
	assert.Equal(t, 20, responseBonus(14.9))
	assert.Equal(t, 10, responseBonus(15))
	assert.Equal(t, 10, responseBonus(59.9))
	assert.Equal(t, 0, responseBonus(60))
}

func TestComputeTrustScoreIsClamped(t *testing.T) {
	assert.Equal(t, 50, computeTrustScore(Factors{}))

	// 好评加分封顶30
	assert.Equal(t, 80, computeTrustScore(Factors{PositiveFeedback: 100}))
	assert.Equal(t, 90, computeTrustScore(Factors{PositiveFeedback: 100, AvgResponseTime: 10}))

	// 下限钳制，不会为负
	assert.Equal(t, 0, computeTrustScore(Factors{NegativeFeedback: 10, ReportsAgainst: 10}))
}

func TestLevelForScore(t *testing.T) {
	assert.Equal(t, LevelBeginner, levelForScore(0))
	assert.Equal(t, LevelBeginner, levelForScore(49))
	assert.Equal(t, LevelRising, levelForScore(50))
	assert.Equal(t, LevelEstablished, levelForScore(150))
	assert.Equal(t, LevelTrusted, levelForScore(300))
	assert.Equal(t, LevelElite, levelForScore(500))
	assert.Equal(t, LevelElite, levelForScore(9999))
}

func TestUpdateReputationPersistsAndMirrorsToProfile(t *testing.T) {
	setupTestDB(t)
	const sellerID = "seller-1"

	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		deliveredAt := now.Add(-time.Duration(i) * time.Hour)
		require.NoError(t, database.DB.Create(&stats.Order{
			BuyerID:     "buyer",
			SellerID:    sellerID,
			Status:      stats.OrderStatusDelivered,
			DeliveredAt: &deliveredAt,
		}).Error)
	}
	require.NoError(t, database.DB.Create(&stats.Feedback{SellerID: sellerID, Positive: false}).Error)

	result := UpdateReputation(sellerID)
	require.NotNil(t, result)

	// 5笔已送达订单: 4*5 + 2*5 - 5*1 = 25
	assert.Equal(t, 25, result.Score)
	assert.Equal(t, LevelBeginner, result.Level)
	assert.Equal(t, 5, result.Factors.CompletedSales)
	assert.Equal(t, 1, result.Factors.NegativeFeedback)
	assert.GreaterOrEqual(t, result.TrustScore, 0)
	assert.LessOrEqual(t, result.TrustScore, 100)

	stored, err := Get(sellerID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 25, stored.ReputationScore)

	// 摘要已镜像到游戏化档案
	p, err := profile.Get(sellerID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 25, p.ReputationScore)
	assert.Equal(t, LevelBeginner, p.ReputationLevel)

	// 重算是覆盖写而非累加
	again := UpdateReputation(sellerID)
	require.NotNil(t, again)
	assert.Equal(t, 25, again.Score)
}

func TestUpdateReputationRespectsFeatureGate(t *testing.T) {
	setupTestDB(t)
	require.NoError(t, settings.Update(settings.FeatureKey(settings.FeatureReputation), "false"))
	assert.Nil(t, UpdateReputation("seller-2"))
}

func TestGetMissingUserReturnsNil(t *testing.T) {
	setupTestDB(t)
	row, err := Get("nobody")
	require.NoError(t, err)
	assert.Nil(t, row)
}
