package event

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
	"github.com/tiejeevan/gsale-backend/internal/settings"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	database.DB = db
	require.NoError(t, settings.PrimeModule())
	require.NoError(t, PrimeModule())
	settings.Invalidate()
}

func createEvent(t *testing.T, name string, multiplier float64, start, end time.Time, active bool) *SeasonalEvent {
	t.Helper()
	row := SeasonalEvent{
		Name:         name,
		StartDate:    start,
		EndDate:      end,
		XPMultiplier: multiplier,
		IsActive:     active,
	}
	require.NoError(t, Create(&row))
	if !active {
		// gorm的Create不会写入零值bool，停用状态需要显式更新
		require.NoError(t, database.DB.Model(&row).Update("is_active", false).Error)
	}
	return &row
}

func TestActiveMultiplierPicksHighestOverlapping(t *testing.T) {
	setupTestDB(t)
	now := time.Now().UTC()

	createEvent(t, "Spring Sale", 1.5, now.Add(-time.Hour), now.Add(time.Hour), true)
	createEvent(t, "Anniversary", 2.0, now.Add(-2*time.Hour), now.Add(2*time.Hour), true)
	createEvent(t, "Expired", 3.0, now.Add(-48*time.Hour), now.Add(-24*time.Hour), true)
	createEvent(t, "Disabled", 5.0, now.Add(-time.Hour), now.Add(time.Hour), false)

	// 重叠时取最高倍率，不叠乘；过期和停用的活动不参与
	assert.Equal(t, 2.0, ActiveMultiplier(now))

	active, err := GetActiveEvents(now)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Anniversary", active[0].Name)
}

func TestActiveMultiplierFallsBackToGlobalSetting(t *testing.T) {
	setupTestDB(t)
	now := time.Now().UTC()

	assert.Equal(t, 1.0, ActiveMultiplier(now))

	require.NoError(t, settings.Update(settings.KeyXPMultiplier, "1.25"))
	assert.Equal(t, 1.25, ActiveMultiplier(now))

	// 有活动时全局倍率被覆盖
	createEvent(t, "Flash", 3.0, now.Add(-time.Minute), now.Add(time.Minute), true)
	assert.Equal(t, 3.0, ActiveMultiplier(now))
}

func TestActiveMultiplierIgnoresEventsWhenFeatureDisabled(t *testing.T) {
	setupTestDB(t)
	now := time.Now().UTC()

	createEvent(t, "Flash", 2.0, now.Add(-time.Hour), now.Add(time.Hour), true)
	assert.Equal(t, 2.0, ActiveMultiplier(now))

	// 功能开关关闭后进行中的活动也不再生效，退回全局倍率
	require.NoError(t, settings.Update(settings.FeatureKey(settings.FeatureSeasonalEvents), "false"))
	assert.Equal(t, 1.0, ActiveMultiplier(now))

	require.NoError(t, settings.Update(settings.KeyXPMultiplier, "1.5"))
	assert.Equal(t, 1.5, ActiveMultiplier(now))
}

func TestCreateValidation(t *testing.T) {
	setupTestDB(t)
	now := time.Now().UTC()

	assert.Error(t, Create(&SeasonalEvent{Name: "", StartDate: now, EndDate: now.Add(time.Hour), XPMultiplier: 1}))
	assert.Error(t, Create(&SeasonalEvent{Name: "Bad Window", StartDate: now, EndDate: now, XPMultiplier: 1}))
	assert.Error(t, Create(&SeasonalEvent{Name: "Negative", StartDate: now, EndDate: now.Add(time.Hour), XPMultiplier: -1}))
}

func TestUpdateValidatesMergedValues(t *testing.T) {
	setupTestDB(t)
	now := time.Now().UTC()
	row := createEvent(t, "Winter", 1.5, now, now.Add(24*time.Hour), true)

	// 把结束时间改到开始之前应该被拒绝
	badEnd := now.Add(-time.Hour)
	_, err := Update(row.ID, Patch{EndDate: &badEnd})
	assert.Error(t, err)

	newMultiplier := 2.5
	updated, err := Update(row.ID, Patch{XPMultiplier: &newMultiplier})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 2.5, updated.XPMultiplier)

	missing, err := Update(9999, Patch{XPMultiplier: &newMultiplier})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDelete(t *testing.T) {
	setupTestDB(t)
	now := time.Now().UTC()
	row := createEvent(t, "Temp", 1.0, now, now.Add(time.Hour), true)

	deleted, err := Delete(row.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = Delete(row.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
