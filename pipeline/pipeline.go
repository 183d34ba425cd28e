package pipeline

import (
	"context"

	"github.com/rushteam/feedkit/core"
)

// Pipeline 把一页 Feed 的后处理拆成可组合的 Node 链（过滤 → 排序 → 截断）。
// 取数完成后，编排层用它对当前页做统一加工；重排只作用于当前页，
// 不做全局 top-k。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	fctx *core.FeedContext,
	items []*core.FeedItem,
) ([]*core.FeedItem, error) {
	cur := items
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, fctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
