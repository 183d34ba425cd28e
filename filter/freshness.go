package filter

import (
	"context"
	"time"

	"github.com/rushteam/feedkit/core"
)

// Freshness 是增量刷新用的水位过滤器：只保留 updated_at 严格晚于
// 水位的条目。没有 updated_at 的条目（例如兜底来源）视为不新鲜。
type Freshness struct {
	After time.Time
}

func (f *Freshness) Name() string { return "filter.freshness" }

func (f *Freshness) ShouldFilter(_ context.Context, _ *core.FeedContext, item *core.FeedItem) (bool, error) {
	return !item.UpdatedAt.After(f.After), nil
}
