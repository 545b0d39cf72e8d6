package badge

import (
	"github.com/tiejeevan/gsale-backend/internal/stats"
	"gorm.io/datatypes"
)

// RequirementKind 枚举了徽章条件支持的阈值类型
type RequirementKind string

const (
	ReqMinLevel            RequirementKind = "min_level"
	ReqMinPosts            RequirementKind = "min_posts"
	ReqMinComments         RequirementKind = "min_comments"
	ReqMinLikesReceived    RequirementKind = "min_likes_received"
	ReqMinLikesGiven       RequirementKind = "min_likes_given"
	ReqMinCompletedSales   RequirementKind = "min_completed_sales"
	ReqMinPositiveFeedback RequirementKind = "min_positive_feedback"
	ReqMinLoginStreak      RequirementKind = "min_login_streak"
)

// knownKinds 是解析顺序固定的全部已知条件类型
var knownKinds = []RequirementKind{
	ReqMinLevel,
	ReqMinPosts,
	ReqMinComments,
	ReqMinLikesReceived,
	ReqMinLikesGiven,
	ReqMinCompletedSales,
	ReqMinPositiveFeedback,
	ReqMinLoginStreak,
}

// Requirement 是一条类型化的阈值条件
type Requirement struct {
	Kind      RequirementKind `json:"kind"`
	Threshold int64           `json:"threshold"`
}

// ParseCriteria 把徽章的JSON条件解析为类型化的条件列表。
// 无法识别的键被忽略（视为自动满足），这是刻意保留的扩展口子。
func ParseCriteria(criteria datatypes.JSONMap) []Requirement {
	var reqs []Requirement
	for _, kind := range knownKinds {
		raw, ok := criteria[string(kind)]
		if !ok {
			continue
		}
		threshold, ok := asInt64(raw)
		if !ok {
			continue
		}
		reqs = append(reqs, Requirement{Kind: kind, Threshold: threshold})
	}
	return reqs
}

// asInt64 兼容JSON反序列化可能出现的数值类型
func asInt64(raw interface{}) (int64, bool) {
	switch v := raw.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}

// CurrentValue 返回快照中该条件对应的当前值
func (r Requirement) CurrentValue(snapshot *stats.UserSnapshot) int64 {
	switch r.Kind {
	case ReqMinLevel:
		return int64(snapshot.Level)
	case ReqMinPosts:
		return snapshot.PostCount
	case ReqMinComments:
		return snapshot.CommentCount
	case ReqMinLikesReceived:
		return snapshot.LikesReceived
	case ReqMinLikesGiven:
		return snapshot.LikesGiven
	case ReqMinCompletedSales:
		return snapshot.CompletedSales
	case ReqMinPositiveFeedback:
		return snapshot.PositiveFeedback
	case ReqMinLoginStreak:
		return int64(snapshot.LoginStreak)
	}
	return 0
}

// Met 判断单条条件是否满足
func (r Requirement) Met(snapshot *stats.UserSnapshot) bool {
	return r.CurrentValue(snapshot) >= r.Threshold
}

// MeetsAll 对条件列表做逻辑与。空列表视为满足。
func MeetsAll(reqs []Requirement, snapshot *stats.UserSnapshot) bool {
	for _, req := range reqs {
		if !req.Met(snapshot) {
			return false
		}
	}
	return true
}
