package xp

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tiejeevan/gsale-backend/internal/identity"
)

// GetHistory 返回当前用户的XP流水历史
func GetHistory(c *gin.Context) {
	userID := identity.UserID(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	rows, err := History(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取XP历史失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": rows})
}

// GetBreakdown 返回当前用户按动作类型汇总的XP明细
func GetBreakdown(c *gin.Context) {
	userID := identity.UserID(c)

	rows, err := Breakdown(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取XP明细失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"breakdown": rows})
}
