package reader

import (
	"context"

	"github.com/rushteam/feedkit/core"
)

// Page 是一次取数的结果。LastDocID 跟踪本次查询物理扫过的最后一行，
// 与解引用后剩下多少条目无关——游标必须按物理位置推进，否则下一页
// 会重扫被丢弃的行。
type Page struct {
	Items     []*core.FeedItem
	LastDocID string
}

// Request 是取数入参。Region/Locale 缺省表示匹配任意分区；
// AfterDocID 缺省表示从头开始。
type Request struct {
	Limit      int
	Region     string
	Locale     string
	AfterDocID string
}

// Source 表示一个可复用的取数来源（缓存 / 兜底）。
// 编排层按“缓存优先、空则兜底”的策略串联它们。
type Source interface {
	Name() string
	Fetch(ctx context.Context, fctx *core.FeedContext, req Request) (*Page, error)
}
