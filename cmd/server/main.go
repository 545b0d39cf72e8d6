package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/tiejeevan/gsale-backend/api"
	"github.com/tiejeevan/gsale-backend/internal/leaderboard"
	"github.com/tiejeevan/gsale-backend/internal/notify"
	"github.com/tiejeevan/gsale-backend/internal/platform/config"
	"github.com/tiejeevan/gsale-backend/internal/platform/database"
	"github.com/tiejeevan/gsale-backend/internal/platform/shutdown"
	"github.com/tiejeevan/gsale-backend/internal/platform/startup"
	"github.com/tiejeevan/gsale-backend/pkg/lifecycle"
	"github.com/tiejeevan/gsale-backend/pkg/logger"
)

func main() {
	// .env 文件可选，用于本地开发覆盖环境变量
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("加载配置失败: %v", err))
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	database.InitDB(cfg.Database.Sqlite)
	database.InitRedis(cfg.Database.Redis)

	// 执行应用启动初始化流程
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 后台服务的两阶段生命周期管理
	gracefulMgr := lifecycle.NewManager()
	forcefulMgr := lifecycle.NewManager()

	schedulerHandle, err := gracefulMgr.NewServiceHandle("leaderboard-scheduler")
	if err != nil {
		panic(fmt.Sprintf("创建调度器句柄失败: %v", err))
	}
	scheduler, err := leaderboard.StartScheduler(schedulerHandle)
	if err != nil {
		panic(fmt.Sprintf("启动榜单调度器失败: %v", err))
	}

	watchdogHandle, err := forcefulMgr.NewServiceHandle("redis-watchdog")
	if err != nil {
		panic(fmt.Sprintf("创建看门狗句柄失败: %v", err))
	}
	go leaderboard.StartMirrorWatchdog(watchdogHandle)

	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-User-Id", "X-User-Role"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r, notify.NewRedisNotifier())

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic("Failed to start server: " + err.Error())
		}
	}()

	coordinator := shutdown.NewCoordinator(gracefulMgr, forcefulMgr, scheduler)
	coordinator.ListenForSignalsAndShutdown(server)
}
