package badge

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tiejeevan/gsale-backend/internal/identity"
	"gorm.io/gorm"
)

// ListBadges 返回全部有效徽章的定义
func ListBadges(c *gin.Context) {
	rows, err := ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取徽章列表失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"badges": rows})
}

// ListMyBadges 返回当前用户已获得的徽章
func ListMyBadges(c *gin.Context) {
	userID := identity.UserID(c)

	rows, err := GetUserBadges(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取我的徽章失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"badges": rows})
}

// GetBadgeProgress 返回当前用户对某个徽章的进度
func GetBadgeProgress(c *gin.Context) {
	userID := identity.UserID(c)

	badgeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的徽章ID"})
		return
	}

	items, err := GetProgress(userID, uint(badgeID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "找不到该徽章"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取徽章进度失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": items})
}
