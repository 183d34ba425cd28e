package core

import (
	"time"

	"github.com/rushteam/feedkit/pkg/utils"
)

// Source 标识一页 Feed 的数据来源。
type Source string

const (
	SourceCache    Source = "cache"    // 预计算缓存（按 region/locale 分区）
	SourceFallback Source = "fallback" // 公开内容的实时兜底查询
)

// ContentEntity 是规范化的内容实体：互动计数、创建时间、公开标记、嵌套子资源。
// 由上游创作管线拥有并写入，本引擎只读。
//
// CreatedAt 保留存储中的原始字符串：解析留给排序阶段，解析失败按
// “无时效信号”处理（recency 记 0），不上抛错误。
type ContentEntity struct {
	ID            string         `json:"id"`
	OwnerID       string         `json:"owner_id"`
	LikeCount     int64          `json:"like_count"`
	FavoriteCount int64          `json:"favorite_count"`
	ShareCount    int64          `json:"share_count"`
	CommentCount  int64          `json:"comment_count"`
	RemakeCount   int64          `json:"remake_count"`
	OrderCount    int64          `json:"order_count"`
	CreatedAt     string         `json:"created_at"`
	Public        bool           `json:"public"`
	Sub           map[string]any `json:"sub,omitempty"` // 嵌套子资源，原样透传
}

// CacheRow 是预计算 Feed 缓存中的一行，按 content_id 引用一个 ContentEntity。
// 同一个实体可以在不同 region/locale 分区下出现多行。
// 由外部填充任务写入；本引擎从不修改。
type CacheRow struct {
	DocID          string
	ContentID      string
	Region         string
	Locale         string
	PersonaVector  []float64
	RankingSignals map[string]float64
	UpdatedAt      time.Time
}

// RankingBreakdown 是分数的三个分量，便于 explain 与回归排查。
type RankingBreakdown struct {
	Engagement      float64 `json:"engagement"`
	Recency         float64 `json:"recency"`
	Personalization float64 `json:"personalization"`
}

// RankingResult 是纯派生值：每次请求重新计算，从不缓存，
// 保证分数始终反映当前开关状态与当前计数。
type RankingResult struct {
	Score     float64            `json:"score"`
	Breakdown RankingBreakdown   `json:"breakdown"`
	Signals   map[string]float64 `json:"signals,omitempty"`
}

// FeedItem 是引擎的输出条目：单次请求内构建，响应序列化后即丢弃，从不持久化。
// Labels 沿用链路标签机制，用于 explain / 观测 / 策略驱动。
type FeedItem struct {
	ID             string
	Entity         *ContentEntity
	Source         Source
	Region         string
	Locale         string
	RankingSignals map[string]float64
	PersonaVector  []float64
	UpdatedAt      time.Time
	Ranking        *RankingResult
	Labels         map[string]utils.Label
}

func NewFeedItem(id string, entity *ContentEntity, source Source) *FeedItem {
	return &FeedItem{
		ID:     id,
		Entity: entity,
		Source: source,
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；同名 key 按默认 Merge 规则累积。
func (it *FeedItem) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// FeedResponse 是引擎对表现层的统一出参。
// NextCursor 为空字符串表示 Feed 已读尽（无下一页）。
type FeedResponse struct {
	Items      []*FeedItem `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
	Source     Source      `json:"source"`
}
