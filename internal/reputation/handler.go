package reputation

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tiejeevan/gsale-backend/internal/identity"
	"github.com/tiejeevan/gsale-backend/internal/settings"
)

// GetMyReputation 返回当前用户的声誉。
// 没有存储结果时现算一次；声誉功能关闭时返回空对象。
func GetMyReputation(c *gin.Context) {
	if !settings.IsFeatureEnabled(settings.FeatureReputation) {
		c.JSON(http.StatusOK, gin.H{"reputation": nil})
		return
	}

	userID := identity.UserID(c)

	stored, err := Get(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取声誉失败"})
		return
	}
	if stored == nil {
		if result := UpdateReputation(userID); result != nil {
			c.JSON(http.StatusOK, gin.H{"reputation": result})
			return
		}
		c.JSON(http.StatusOK, gin.H{"reputation": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reputation": stored})
}
