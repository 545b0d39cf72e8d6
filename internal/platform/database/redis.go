package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/tiejeevan/gsale-backend/internal/platform/config"
)

// RDB 是全局的Redis客户端实例。
// Redis在本服务中只承担尽力而为的角色：通知频道和排行榜读缓存。
// SQLite才是唯一的数据权威，因此Redis不可用时服务照常运行。
var RDB *redis.Client

// Ctx 是一个全局的上下文，用于Redis操作
var Ctx = context.Background()

// InitRedis 初始化与Redis数据库的连接。
// 连接失败不会panic，只会把可用性标记置为不健康。
func InitRedis(cfg config.RedisConfig) {
	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if _, err := RDB.Ping(Ctx).Result(); err != nil {
		fmt.Printf("警告: 无法连接到Redis (%v)，通知与排行榜缓存将被跳过\n", err)
		UpdateRedisStatus(false)
		return
	}

	UpdateRedisStatus(true)
	fmt.Println("Redis 连接成功！")
}
