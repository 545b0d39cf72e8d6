package profile

import (
	"fmt"

	"github.com/tiejeevan/gsale-backend/internal/platform/database"
)

// PrimeModule 负责迁移档案表
func PrimeModule() error {
	if err := database.DB.AutoMigrate(&UserGamificationProfile{}); err != nil {
		return fmt.Errorf("无法迁移user_gamification_profiles表: %w", err)
	}
	fmt.Println("UserGamificationProfile数据库表迁移成功。")
	return nil
}
