package rank

import (
	"context"
	"sort"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pipeline"
	"github.com/rushteam/feedkit/pkg/utils"
)

// Node 是排序 Node：给页内每个条目挂上 RankingResult，并按分数降序稳定重排。
// 重排只作用于当前页——这是刻意的延迟换精度取舍，不做全局 top-k。
// - 写入 labels：rank_model
type Node struct {
	Scorer *Scorer
}

func (n *Node) Name() string        { return "rank.engagement_recency" }
func (n *Node) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *Node) Process(
	_ context.Context,
	fctx *core.FeedContext,
	items []*core.FeedItem,
) ([]*core.FeedItem, error) {
	if n.Scorer == nil || len(items) == 0 {
		return items, nil
	}

	now := fctx.Time()
	for _, it := range items {
		if it == nil {
			continue
		}
		res := n.Scorer.Score(it.Entity, it.RankingSignals, now)
		it.Ranking = &res
		it.PutLabel("rank_model", utils.Label{Value: "engagement_recency", Source: "rank"})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil || items[i].Ranking == nil {
			return false
		}
		if items[j] == nil || items[j].Ranking == nil {
			return true
		}
		return items[i].Ranking.Score > items[j].Ranking.Score
	})
	return items, nil
}
