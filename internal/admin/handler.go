package admin

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tiejeevan/gsale-backend/internal/badge"
	"github.com/tiejeevan/gsale-backend/internal/event"
	"github.com/tiejeevan/gsale-backend/internal/eventlog"
	"github.com/tiejeevan/gsale-backend/internal/gamification"
	"github.com/tiejeevan/gsale-backend/internal/identity"
	"github.com/tiejeevan/gsale-backend/internal/leaderboard"
	"github.com/tiejeevan/gsale-backend/internal/notify"
	"github.com/tiejeevan/gsale-backend/internal/profile"
	"github.com/tiejeevan/gsale-backend/internal/settings"
	"github.com/tiejeevan/gsale-backend/internal/xp"
)

// 管理端写操作触发的推送走同一个通知端口
var handlerNotifier notify.Notifier = notify.Nop{}

// SetNotifier 设置管理端入口使用的通知端口
func SetNotifier(n notify.Notifier) {
	if n != nil {
		handlerNotifier = n
	}
}

// --- XP规则管理 ---

// ListXPRules 处理 GET /api/admin/gamification/xp-rules
func ListXPRules(c *gin.Context) {
	rules, err := xp.ListRules()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取XP规则失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// UpdateXPRule 处理 PATCH /api/admin/gamification/xp-rules/:actionType
// 只更新请求体里出现的字段。
func UpdateXPRule(c *gin.Context) {
	actionType := c.Param("actionType")

	var patch xp.RulePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}
	if patch.XPAmount == nil && patch.EntityType == nil && patch.Category == nil &&
		patch.DailyLimit == nil && patch.IsActive == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "没有可更新的字段"})
		return
	}

	rule, err := xp.UpdateRule(actionType, patch)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "规则不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "更新XP规则失败"})
		return
	}

	eventlog.Record(identity.UserID(c), eventlog.TypeAdminRuleUpdate, map[string]interface{}{
		"actionType": actionType,
	})
	c.JSON(http.StatusOK, gin.H{"rule": rule})
}

// --- 徽章管理 ---

// ListBadges 处理 GET /api/admin/gamification/badges（含停用的）
func ListBadges(c *gin.Context) {
	badges, err := badge.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取徽章失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"badges": badges})
}

// CreateBadge 处理 POST /api/admin/gamification/badges
func CreateBadge(c *gin.Context) {
	var row badge.Badge
	if err := c.ShouldBindJSON(&row); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	if err := badge.CreateBadge(&row); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eventlog.Record(identity.UserID(c), eventlog.TypeAdminBadgeChange, map[string]interface{}{
		"op":      "create",
		"badgeId": row.ID,
		"slug":    row.Slug,
	})
	c.JSON(http.StatusCreated, gin.H{"badge": row})
}

// UpdateBadge 处理 PATCH /api/admin/gamification/badges/:id
func UpdateBadge(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var patch badge.BadgePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	row, err := badge.UpdateBadge(id, patch)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if row == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "徽章不存在"})
		return
	}

	eventlog.Record(identity.UserID(c), eventlog.TypeAdminBadgeChange, map[string]interface{}{
		"op":      "update",
		"badgeId": id,
	})
	c.JSON(http.StatusOK, gin.H{"badge": row})
}

// DeleteBadge 处理 DELETE /api/admin/gamification/badges/:id
// 只删除定义，已发放的记录保留。
func DeleteBadge(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	deleted, err := badge.DeleteBadge(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除徽章失败"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "徽章不存在"})
		return
	}

	eventlog.Record(identity.UserID(c), eventlog.TypeAdminBadgeChange, map[string]interface{}{
		"op":      "delete",
		"badgeId": id,
	})
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// --- 季节性活动管理 ---

// ListEvents 处理 GET /api/admin/gamification/events
func ListEvents(c *gin.Context) {
	events, err := event.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取活动失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// CreateEvent 处理 POST /api/admin/gamification/events
func CreateEvent(c *gin.Context) {
	var row event.SeasonalEvent
	if err := c.ShouldBindJSON(&row); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	if err := event.Create(&row); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eventlog.Record(identity.UserID(c), eventlog.TypeAdminEventChange, map[string]interface{}{
		"op":      "create",
		"eventId": row.ID,
		"name":    row.Name,
	})
	c.JSON(http.StatusCreated, gin.H{"event": row})
}

// UpdateEvent 处理 PATCH /api/admin/gamification/events/:id
func UpdateEvent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var patch event.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	row, err := event.Update(id, patch)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if row == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "活动不存在"})
		return
	}

	eventlog.Record(identity.UserID(c), eventlog.TypeAdminEventChange, map[string]interface{}{
		"op":      "update",
		"eventId": id,
	})
	c.JSON(http.StatusOK, gin.H{"event": row})
}

// DeleteEvent 处理 DELETE /api/admin/gamification/events/:id
func DeleteEvent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	deleted, err := event.Delete(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除活动失败"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "活动不存在"})
		return
	}

	eventlog.Record(identity.UserID(c), eventlog.TypeAdminEventChange, map[string]interface{}{
		"op":      "delete",
		"eventId": id,
	})
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// --- 系统开关 ---

// GetSettings 处理 GET /api/admin/gamification/settings
func GetSettings(c *gin.Context) {
	rows, err := settings.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取配置失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": rows})
}

type settingUpdateRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// UpdateSetting 处理 PUT /api/admin/gamification/settings
// 写库后使配置缓存失效，新值立即对所有引擎可见。
func UpdateSetting(c *gin.Context) {
	var req settingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	if err := settings.Update(req.Key, req.Value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "更新配置失败"})
		return
	}

	eventlog.Record(identity.UserID(c), eventlog.TypeAdminSettingChange, map[string]interface{}{
		"key":   req.Key,
		"value": req.Value,
	})
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// --- 手工调整与运维 ---

type adjustXPRequest struct {
	UserID string `json:"userId" binding:"required"`
	Amount int    `json:"amount" binding:"required"`
	Reason string `json:"reason"`
}

// AdjustUserXP 处理 POST /api/admin/gamification/xp-adjustments
func AdjustUserXP(c *gin.Context) {
	var req adjustXPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	result, err := gamification.AdjustXP(identity.UserID(c), req.UserID, req.Amount, req.Reason, handlerNotifier)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// ForceLeaderboardRebuild 处理 POST /api/admin/gamification/leaderboards/rebuild
// 同步重建全部榜单，已有重建进行中时本次为无操作。
func ForceLeaderboardRebuild(c *gin.Context) {
	leaderboard.UpdateAllLeaderboards()

	eventlog.Record(identity.UserID(c), eventlog.TypeAdminForcedRebuild, map[string]interface{}{
		"at": time.Now().UTC(),
	})
	c.JSON(http.StatusOK, gin.H{"rebuilt": true})
}

// GetSystemStats 处理 GET /api/admin/gamification/stats
func GetSystemStats(c *gin.Context) {
	profiles, _ := profile.Count()
	transactions, _ := xp.CountTransactions()
	awarded, _ := badge.CountAwarded()
	activeEvents, _ := event.CountActive(time.Now().UTC())

	c.JSON(http.StatusOK, gin.H{
		"profileCount":     profiles,
		"transactionCount": transactions,
		"badgesAwarded":    awarded,
		"activeEvents":     activeEvents,
	})
}

// GetAuditLog 处理 GET /api/admin/gamification/audit-log
// 可用 type 查询参数按事件类型过滤。
func GetAuditLog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := eventlog.List(c.Query("type"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取审计日志失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID"})
		return 0, false
	}
	return uint(id), true
}
