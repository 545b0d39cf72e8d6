package leaderboard

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"

	"github.com/tiejeevan/gsale-backend/internal/platform/database"
	"github.com/tiejeevan/gsale-backend/pkg/lifecycle"
	"github.com/tiejeevan/gsale-backend/pkg/logger"
)

// Redis镜像只是点查名次的读缓存，SQLite里的榜单才是权威数据。
// 镜像在每次重建提交后刷新，Redis不可用时所有读写直接跳过。

const (
	// rankKeyPrefix + 类型 是一个Sorted Set: member=用户ID, score=名次
	rankKeyPrefix = "leaderboard:rank:"
	// scoreKeyPrefix + 类型 是一个Hash: field=用户ID, value=分数
	scoreKeyPrefix = "leaderboard:score:"
	// metaKeyPrefix + 类型 是一个Hash: field=用户ID, value=JSON编码的附加信息
	metaKeyPrefix = "leaderboard:meta:"
)

// encodeMetadata 把榜单条目的附加信息编码成镜像存储的JSON，无附加信息返回空串。
func encodeMetadata(metadata datatypes.JSONMap) string {
	if len(metadata) == 0 {
		return ""
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(raw)
}

func decodeMetadata(raw string) datatypes.JSONMap {
	if raw == "" {
		return nil
	}
	var metadata datatypes.JSONMap
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		return nil
	}
	return metadata
}

// mirrorToRedis 把某个榜的最新榜单刷进Redis镜像。失败只记日志。
func mirrorToRedis(lbType string) {
	if !database.IsRedisHealthy() {
		return
	}

	entries, err := GetLeaderboard(lbType, TopN)
	if err != nil {
		logger.Errorf("读取排行榜 %s 以刷新镜像失败: %v", lbType, err)
		return
	}

	pipe := database.RDB.Pipeline()
	pipe.Del(database.Ctx, rankKeyPrefix+lbType, scoreKeyPrefix+lbType, metaKeyPrefix+lbType)
	for _, entry := range entries {
		pipe.ZAdd(database.Ctx, rankKeyPrefix+lbType, redis.Z{
			Score:  float64(entry.Rank),
			Member: entry.UserID,
		})
		pipe.HSet(database.Ctx, scoreKeyPrefix+lbType, entry.UserID, entry.Score)
		if raw := encodeMetadata(entry.Metadata); raw != "" {
			pipe.HSet(database.Ctx, metaKeyPrefix+lbType, entry.UserID, raw)
		}
	}
	if _, err := pipe.Exec(database.Ctx); err != nil {
		logger.Warnf("刷新排行榜 %s 的Redis镜像失败: %v", lbType, err)
	}
}

// rankFromRedis 尝试从镜像里点查名次，附加信息一并还原，
// 保证命中镜像和回落SQLite返回同样形状的条目。任何一步失败都视为未命中。
func rankFromRedis(userID, lbType string) (*LeaderboardEntry, bool) {
	if !database.IsRedisHealthy() {
		return nil, false
	}

	rank, err := database.RDB.ZScore(database.Ctx, rankKeyPrefix+lbType, userID).Result()
	if err != nil {
		return nil, false
	}
	scoreRaw, err := database.RDB.HGet(database.Ctx, scoreKeyPrefix+lbType, userID).Result()
	if err != nil {
		return nil, false
	}
	score, err := strconv.ParseInt(scoreRaw, 10, 64)
	if err != nil {
		return nil, false
	}

	entry := &LeaderboardEntry{
		LeaderboardType: lbType,
		Rank:            int(rank),
		UserID:          userID,
		Score:           score,
	}
	// 附加信息只有部分榜有，缺失不算未命中
	if metaRaw, err := database.RDB.HGet(database.Ctx, metaKeyPrefix+lbType, userID).Result(); err == nil {
		entry.Metadata = decodeMetadata(metaRaw)
	}
	return entry, true
}

// watchdogInterval 是Redis可用性探测的间隔
const watchdogInterval = 15 * time.Second

// StartMirrorWatchdog 启动后台探测循环：定期ping Redis并维护可用性标记，
// 在Redis从故障中恢复时重刷全部排行榜镜像。
func StartMirrorWatchdog(handle *lifecycle.Handle) {
	defer handle.Close()
	logger.Info("Redis镜像看门狗已启动")

	for {
		if err := handle.Sleep(watchdogInterval); err != nil {
			logger.Info("Redis镜像看门狗已停止")
			return
		}

		healthy := database.RDB != nil && database.RDB.Ping(database.Ctx).Err() == nil
		recovered := database.UpdateRedisStatus(healthy)
		if recovered {
			logger.Info("检测到Redis已恢复，重刷排行榜镜像...")
			for _, lbType := range AllTypes {
				mirrorToRedis(lbType)
			}
		}
	}
}
