package database

import (
	"sync"
)

// redisStatus 负责线程安全地管理Redis的可用性标记。
type redisStatus struct {
	mu      sync.RWMutex
	healthy bool
}

var globalRedisStatus = &redisStatus{}

// IsRedisHealthy 返回当前Redis是否可用。
// 依赖Redis的尽力而为路径（通知、排行榜缓存）在不可用时应直接跳过。
func IsRedisHealthy() bool {
	globalRedisStatus.mu.RLock()
	defer globalRedisStatus.mu.RUnlock()
	return globalRedisStatus.healthy
}

// UpdateRedisStatus 更新Redis的可用性标记。
// 返回值表示这次更新是否是从不可用恢复为可用的状态翻转。
func UpdateRedisStatus(healthy bool) (recovered bool) {
	globalRedisStatus.mu.Lock()
	defer globalRedisStatus.mu.Unlock()
	recovered = healthy && !globalRedisStatus.healthy
	globalRedisStatus.healthy = healthy
	return recovered
}
