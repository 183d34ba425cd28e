package rerank

import (
	"context"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pipeline"
)

// TopN 是页内截断节点：过滤/排序之后把结果压回请求量。
//
// 使用场景：
//   - 排序后只保留前 limit 条
//   - 策略过滤放大了候选时兜住响应大小
type TopN struct {
	// N 要保留的条目数量。
	// 如果 N <= 0，则返回所有条目（不截断）。
	N int
}

func (n *TopN) Name() string {
	return "rerank.topn"
}

func (n *TopN) Kind() pipeline.Kind {
	return pipeline.KindPostProcess
}

func (n *TopN) Process(
	_ context.Context,
	_ *core.FeedContext,
	items []*core.FeedItem,
) ([]*core.FeedItem, error) {
	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
