package reader

import (
	"context"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pkg/utils"
)

const defaultFallbackCollection = "contents"

// FallbackReader 直接查询原始公开内容库，在缓存为空或读尽时兜底。
//
// 降级策略：存储报缺复合索引时不让请求失败，改用只保留等值过滤、
// 放弃排序的简化查询（接受存储自定义顺序）。这是刻意的可用性优先——
// 缺一个索引绝不能变成用户可见的故障。其他错误类别原样上抛，
// 重试/退避由调用方决定。
type FallbackReader struct {
	Store core.DocStore
	Log   core.Logger

	// Collection 内容集合名，默认 "contents"
	Collection string
}

func NewFallbackReader(store core.DocStore, log core.Logger) *FallbackReader {
	if log == nil {
		log = core.NopLogger{}
	}
	return &FallbackReader{
		Store:      store,
		Log:        log,
		Collection: defaultFallbackCollection,
	}
}

func (r *FallbackReader) Name() string { return "reader.fallback" }

func (r *FallbackReader) Fetch(ctx context.Context, fctx *core.FeedContext, req Request) (*Page, error) {
	q := core.Query{
		Collection: r.collection(),
		Filters:    []core.Filter{{Field: FieldPublic, Value: true}},
		OrderBy:    FieldCreatedAt,
		Desc:       true,
		Limit:      req.Limit,
		StartAfter: req.AfterDocID,
	}

	docs, err := r.Store.Query(ctx, q)
	if core.IsStoreMissingIndex(err) {
		r.Log.Warn("fallback_degraded_query", map[string]any{
			"collection": q.Collection,
			"order_by":   q.OrderBy,
		})
		q.OrderBy = ""
		q.Desc = false
		docs, err = r.Store.Query(ctx, q)
	}
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return &Page{}, nil
	}

	items := make([]*core.FeedItem, 0, len(docs))
	for _, doc := range docs {
		entity := DocToEntity(doc)
		item := core.NewFeedItem(entity.ID, entity, core.SourceFallback)
		item.PutLabel("feed_source", utils.Label{Value: r.Name(), Source: "reader"})
		items = append(items, item)
	}

	r.Log.Info("fallback_hit", map[string]any{"items": len(items)})
	return &Page{Items: items, LastDocID: docs[len(docs)-1].ID}, nil
}

func (r *FallbackReader) collection() string {
	if r.Collection != "" {
		return r.Collection
	}
	return defaultFallbackCollection
}

var _ Source = (*FallbackReader)(nil)
