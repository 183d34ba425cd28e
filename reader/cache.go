package reader

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pkg/utils"
)

const (
	defaultCacheCollection   = "feed_cache"
	defaultLookupConcurrency = 8
)

// CacheReader 查询预计算 Feed 缓存并逐行解引用内容实体。
//
// 关键约定：
//   - region/locale 只在给出时加等值过滤，缺省维度匹配任意值
//   - 按 updated_at 降序，AfterDocID 之后严格续读（pivot 失效则从头开始，由驱动保证）
//   - 解引用失败（查找错误或实体不存在）只丢行不报错，响应条目数可以少于请求量
//   - LastDocID 始终指向物理扫过的最后一行，与丢了多少行无关
type CacheReader struct {
	Store    core.DocStore
	Entities core.EntityStore
	Log      core.Logger

	// Collection 缓存集合名，默认 "feed_cache"
	Collection string

	// LookupConcurrency 逐行实体解引用的并发上限，默认 8。
	// 有界并发 + ctx 透传：慢存储不能把单个请求挂死。
	LookupConcurrency int
}

func NewCacheReader(store core.DocStore, entities core.EntityStore, log core.Logger) *CacheReader {
	if log == nil {
		log = core.NopLogger{}
	}
	return &CacheReader{
		Store:             store,
		Entities:          entities,
		Log:               log,
		Collection:        defaultCacheCollection,
		LookupConcurrency: defaultLookupConcurrency,
	}
}

func (r *CacheReader) Name() string { return "reader.cache" }

func (r *CacheReader) Fetch(ctx context.Context, fctx *core.FeedContext, req Request) (*Page, error) {
	q := core.Query{
		Collection: r.collection(),
		OrderBy:    FieldUpdatedAt,
		Desc:       true,
		Limit:      req.Limit,
		StartAfter: req.AfterDocID,
	}
	if req.Region != "" {
		q.Filters = append(q.Filters, core.Filter{Field: FieldRegion, Value: req.Region})
	}
	if req.Locale != "" {
		q.Filters = append(q.Filters, core.Filter{Field: FieldLocale, Value: req.Locale})
	}

	docs, err := r.Store.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		r.Log.Info("cache_miss", map[string]any{
			"region": req.Region,
			"locale": req.Locale,
		})
		return &Page{}, nil
	}
	lastDocID := docs[len(docs)-1].ID

	rows := make([]*core.CacheRow, 0, len(docs))
	for _, doc := range docs {
		row, err := DocToCacheRow(doc)
		if err != nil {
			// 填充管线契约被破坏：记 warn 丢行，不让一条脏行拖垮整页
			r.Log.Warn("cache_row_invalid", map[string]any{"doc_id": doc.ID})
			continue
		}
		rows = append(rows, row)
	}

	items, dropped := r.resolve(ctx, rows)

	switch {
	case len(items) > 0:
		r.Log.Info("cache_hit", map[string]any{
			"rows":    len(docs),
			"items":   len(items),
			"dropped": dropped,
		})
		if dropped > 0 {
			r.Log.Warn("cache_items_dropped", map[string]any{
				"rows":    len(docs),
				"dropped": dropped,
			})
		}
	default:
		// 行存在但全部解引用失败：上游填充/创作数据不一致的信号
		r.Log.Warn("cache_empty_items", map[string]any{"rows": len(docs)})
	}

	return &Page{Items: items, LastDocID: lastDocID}, nil
}

// resolve 有界并发解引用内容实体，保持缓存行原有顺序。
func (r *CacheReader) resolve(ctx context.Context, rows []*core.CacheRow) ([]*core.FeedItem, int) {
	results := make([]*core.FeedItem, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency())
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			entity, err := r.Entities.FindByID(gctx, row.ContentID)
			if err != nil {
				// 悬空引用或查找失败：丢行（行级日志，页级汇总在上层）
				r.Log.Info("entity_lookup_failed", map[string]any{
					"content_id": row.ContentID,
					"doc_id":     row.DocID,
					"reason":     err.Error(),
				})
				return nil
			}
			item := core.NewFeedItem(row.ContentID, entity, core.SourceCache)
			item.Region = row.Region
			item.Locale = row.Locale
			item.RankingSignals = row.RankingSignals
			item.PersonaVector = row.PersonaVector
			item.UpdatedAt = row.UpdatedAt
			item.PutLabel("feed_source", utils.Label{Value: r.Name(), Source: "reader"})
			results[i] = item
			return nil
		})
	}
	// Go 闭包永远返回 nil，Wait 只等待收尾
	_ = g.Wait()

	items := make([]*core.FeedItem, 0, len(results))
	for _, it := range results {
		if it != nil {
			items = append(items, it)
		}
	}
	return items, len(rows) - len(items)
}

func (r *CacheReader) collection() string {
	if r.Collection != "" {
		return r.Collection
	}
	return defaultCacheCollection
}

func (r *CacheReader) concurrency() int {
	if r.LookupConcurrency > 0 {
		return r.LookupConcurrency
	}
	return defaultLookupConcurrency
}

var _ Source = (*CacheReader)(nil)
