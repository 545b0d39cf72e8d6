package startup

import (
	"fmt"

	"github.com/tiejeevan/gsale-backend/internal/badge"
	"github.com/tiejeevan/gsale-backend/internal/event"
	"github.com/tiejeevan/gsale-backend/internal/eventlog"
	"github.com/tiejeevan/gsale-backend/internal/leaderboard"
	"github.com/tiejeevan/gsale-backend/internal/profile"
	"github.com/tiejeevan/gsale-backend/internal/reputation"
	"github.com/tiejeevan/gsale-backend/internal/settings"
	"github.com/tiejeevan/gsale-backend/internal/stats"
	"github.com/tiejeevan/gsale-backend/internal/xp"
)

// InitializeApplication 是应用首次启动时执行的总入口
// 按依赖顺序迁移并播种各模块：settings在最前（所有引擎都依赖开关），
// leaderboard在最后（读取其他模块的表）。
func InitializeApplication() error {
	fmt.Println("开始应用初始化...")

	if err := settings.PrimeModule(); err != nil {
		return fmt.Errorf("初始化settings模块失败: %w", err)
	}
	if err := profile.PrimeModule(); err != nil {
		return fmt.Errorf("初始化profile模块失败: %w", err)
	}
	if err := stats.PrimeModule(); err != nil {
		return fmt.Errorf("初始化stats模块失败: %w", err)
	}
	if err := xp.PrimeModule(); err != nil {
		return fmt.Errorf("初始化xp模块失败: %w", err)
	}
	if err := eventlog.PrimeModule(); err != nil {
		return fmt.Errorf("初始化eventlog模块失败: %w", err)
	}
	if err := badge.PrimeModule(); err != nil {
		return fmt.Errorf("初始化badge模块失败: %w", err)
	}
	if err := event.PrimeModule(); err != nil {
		return fmt.Errorf("初始化event模块失败: %w", err)
	}
	if err := reputation.PrimeModule(); err != nil {
		return fmt.Errorf("初始化reputation模块失败: %w", err)
	}
	if err := leaderboard.PrimeModule(); err != nil {
		return fmt.Errorf("初始化leaderboard模块失败: %w", err)
	}

	fmt.Println("应用初始化完成！")
	return nil
}
