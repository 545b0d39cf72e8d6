package eventlog

import (
	"fmt"

	"github.com/tiejeevan/gsale-backend/internal/platform/database"
	"github.com/tiejeevan/gsale-backend/pkg/logger"
)

// Record 追加一条审计流水。
// 审计写入是尽力而为的：失败只记日志，绝不影响触发它的业务操作。
func Record(userID, eventType string, payload map[string]interface{}) {
	row := EventLog{
		UserID:    userID,
		EventType: eventType,
		Payload:   payload,
	}
	if err := database.DB.Create(&row).Error; err != nil {
		logger.Errorf("审计流水写入失败 (type=%s user=%s): %v", eventType, userID, err)
	}
}

// List 按时间倒序返回审计流水，eventType为空时不过滤
func List(eventType string, limit, offset int) ([]EventLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := database.DB.Model(&EventLog{})
	if eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}

	var rows []EventLog
	err := query.Order("created_at desc, id desc").Limit(limit).Offset(offset).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("无法读取审计流水: %w", err)
	}
	return rows, nil
}

// PrimeModule 负责迁移审计表
func PrimeModule() error {
	if err := database.DB.AutoMigrate(&EventLog{}); err != nil {
		return fmt.Errorf("无法迁移event_logs表: %w", err)
	}
	fmt.Println("EventLog数据库表迁移成功。")
	return nil
}
