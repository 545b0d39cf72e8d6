package leaderboard

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tiejeevan/gsale-backend/internal/settings"
	"github.com/tiejeevan/gsale-backend/pkg/lifecycle"
	"github.com/tiejeevan/gsale-backend/pkg/logger"
)

// initialRebuildDelay 是进程启动后首次重建的延迟，
// 留出让HTTP服务先就绪的时间。
const initialRebuildDelay = 10 * time.Second

// StartScheduler 启动排行榜的周期性重建。
// 间隔来自 gamification_leaderboard_update_interval 设置（分钟），
// 在启动时读取一次，修改后下次重启生效。
func StartScheduler(handle *lifecycle.Handle) (*cron.Cron, error) {
	intervalMinutes := settings.GetInt(settings.KeyLeaderboardInterval, 60)
	if intervalMinutes < 1 {
		intervalMinutes = 60
	}

	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %dm", intervalMinutes), UpdateAllLeaderboards)
	if err != nil {
		return nil, fmt.Errorf("无法注册排行榜重建任务: %w", err)
	}
	c.Start()
	logger.Infof("排行榜调度器已启动，重建间隔 %d 分钟", intervalMinutes)

	// 启动后不久先做一次全量重建，保证新部署尽快有榜单可读
	go func() {
		defer handle.Close()
		if err := handle.Sleep(initialRebuildDelay); err != nil {
			return
		}
		UpdateAllLeaderboards()
	}()

	return c, nil
}
