package pipeline

import (
	"context"

	"github.com/rushteam/feedkit/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindSource      Kind = "source"      // 取数阶段：缓存/兜底读取
	KindFilter      Kind = "filter"      // 过滤阶段：剔除不符合约束的条目
	KindRank        Kind = "rank"        // 排序阶段：对页内条目打分并排序
	KindPostProcess Kind = "postprocess" // 后处理阶段：截断/最终结果修饰
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态，方便过滤截断、重排等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		fctx *core.FeedContext,
		items []*core.FeedItem,
	) ([]*core.FeedItem, error)
}
