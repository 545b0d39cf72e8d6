package settings

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/tiejeevan/gsale-backend/internal/platform/database"
	"github.com/tiejeevan/gsale-backend/pkg/logger"
)

// cacheTTL 是设置缓存的有效期。
// 管理端修改设置时会显式调用Invalidate，所以这里只兜底普通的过期刷新。
const cacheTTL = 30 * time.Second

// gateCache 在内存中缓存整张settings表，避免每次开关检查都打到SQLite。
type gateCache struct {
	mu        sync.RWMutex
	values    map[string]string
	expiresAt time.Time
}

var globalCache = &gateCache{}

// snapshot 返回当前缓存的键值表，过期时先重新加载。
// 数据库故障时返回上一次的快照（可能为空），开关逻辑据此退回到缺省值。
func (c *gateCache) snapshot() map[string]string {
	c.mu.RLock()
	if c.values != nil && time.Now().Before(c.expiresAt) {
		defer c.mu.RUnlock()
		return c.values
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values != nil && time.Now().Before(c.expiresAt) {
		return c.values
	}

	var rows []Setting
	if err := database.DB.Find(&rows).Error; err != nil {
		logger.Errorf("设置缓存刷新失败: %v", err)
		if c.values == nil {
			c.values = map[string]string{}
		}
		// 故障期间短暂续用旧快照，避免每个请求都重试数据库
		c.expiresAt = time.Now().Add(cacheTTL)
		return c.values
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	c.values = values
	c.expiresAt = time.Now().Add(cacheTTL)
	return c.values
}

// Invalidate 使缓存立即失效。管理端修改设置后必须调用。
func Invalidate() {
	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()
	globalCache.expiresAt = time.Time{}
}

func parseBool(value string) bool {
	switch value {
	case "false", "0", "off":
		return false
	}
	return true
}

// IsEnabled 返回游戏化系统总开关的状态。
// 设置行缺失时视为开启：总开关只用来显式地关停整个系统。
func IsEnabled() bool {
	value, ok := globalCache.snapshot()[KeyEnabled]
	if !ok {
		return true
	}
	return parseBool(value)
}

// IsFeatureEnabled 返回某个子功能的开关状态。
// 总开关关闭时一律返回false；子功能行缺失时也返回false。
func IsFeatureEnabled(feature string) bool {
	if !IsEnabled() {
		return false
	}
	value, ok := globalCache.snapshot()[FeatureKey(feature)]
	if !ok {
		return false
	}
	return value == "true" || value == "1" || value == "on"
}

// GetFloat 读取一个浮点设置，缺失或无法解析时返回缺省值
func GetFloat(key string, fallback float64) float64 {
	value, ok := globalCache.snapshot()[key]
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// GetInt 读取一个整数设置，缺失或无法解析时返回缺省值
func GetInt(key string, fallback int) int {
	value, ok := globalCache.snapshot()[key]
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// GetAll 返回整张设置表，供管理端展示
func GetAll() ([]Setting, error) {
	var rows []Setting
	if err := database.DB.Order("key asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("无法读取设置表: %w", err)
	}
	return rows, nil
}

// Update 写入一个设置项并使缓存失效
func Update(key, value string) error {
	row := Setting{Key: key, Value: value}
	if err := database.DB.Save(&row).Error; err != nil {
		return fmt.Errorf("无法写入设置项 %s: %w", key, err)
	}
	Invalidate()
	return nil
}
