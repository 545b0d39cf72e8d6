package stats

import (
	"time"
)

// 本文件定义了社交/交易侧协作表的只读模型。
// 这些表由帖子、订单、私信等外部服务负责写入，
// 游戏化引擎只在徽章判定、排行榜和声誉计算时做聚合查询。

// Post 是帖子表的只读投影
type Post struct {
	ID        uint      `gorm:"primarykey"`
	AuthorID  string    `gorm:"type:varchar(36);index"`
	CreatedAt time.Time `gorm:"index"`
}

func (Post) TableName() string { return "posts" }

// Comment 是评论表的只读投影
type Comment struct {
	ID        uint   `gorm:"primarykey"`
	PostID    uint   `gorm:"index"`
	AuthorID  string `gorm:"type:varchar(36);index"`
	CreatedAt time.Time
}

func (Comment) TableName() string { return "comments" }

// PostLike 是帖子点赞表的只读投影
type PostLike struct {
	ID        uint   `gorm:"primarykey"`
	PostID    uint   `gorm:"index"`
	UserID    string `gorm:"type:varchar(36);index"`
	CreatedAt time.Time
}

func (PostLike) TableName() string { return "post_likes" }

// Order 是订单表的只读投影。
// Status为delivered的订单视为已完成的交易。
type Order struct {
	ID          uint   `gorm:"primarykey"`
	BuyerID     string `gorm:"type:varchar(36);index"`
	SellerID    string `gorm:"type:varchar(36);index"`
	Status      string `gorm:"type:varchar(20);index"`
	DeliveredAt *time.Time
	CreatedAt   time.Time
}

func (Order) TableName() string { return "orders" }

// OrderStatusDelivered 是订单完成状态的取值
const OrderStatusDelivered = "delivered"

// Message 是私信表的只读投影，声誉计算用它推导平均响应时间
type Message struct {
	ID          uint   `gorm:"primarykey"`
	SenderID    string `gorm:"type:varchar(36);index"`
	RecipientID string `gorm:"type:varchar(36);index"`
	CreatedAt   time.Time
}

func (Message) TableName() string { return "messages" }

// Feedback 是买家评价表的只读投影
type Feedback struct {
	ID        uint   `gorm:"primarykey"`
	OrderID   uint   `gorm:"index"`
	SellerID  string `gorm:"type:varchar(36);index"`
	Positive  bool
	CreatedAt time.Time
}

func (Feedback) TableName() string { return "order_feedbacks" }

// Report 是用户举报表的只读投影
type Report struct {
	ID           uint   `gorm:"primarykey"`
	TargetUserID string `gorm:"type:varchar(36);index"`
	CreatedAt    time.Time
}

func (Report) TableName() string { return "user_reports" }

// UserSnapshot 是徽章判定使用的用户聚合快照。
// 每次判定前整体取数，判定本身是对快照的纯计算。
type UserSnapshot struct {
	UserID           string
	Level            int
	TotalXP          int
	PostCount        int64
	CommentCount     int64
	LikesReceived    int64
	LikesGiven       int64
	CompletedSales   int64
	PositiveFeedback int64
	LoginStreak      int
}
