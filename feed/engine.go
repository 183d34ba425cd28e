// Package feed 是引擎的编排层：串起取数（缓存优先、空则兜底）、
// 信号补全、Pipeline 加工（过滤 → 排序 → 截断）、游标铸造与指标上报。
package feed

import (
	"context"
	"time"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/cursor"
	"github.com/rushteam/feedkit/filter"
	"github.com/rushteam/feedkit/flags"
	"github.com/rushteam/feedkit/pipeline"
	"github.com/rushteam/feedkit/rank"
	"github.com/rushteam/feedkit/reader"
	"github.com/rushteam/feedkit/rerank"
	"github.com/rushteam/feedkit/signals"
)

// 指标与日志里的操作名。
const (
	OpInitialFeed = "initial_feed"
	OpMoreFeed    = "more_feed"
	OpFeedUpdates = "feed_updates"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Engine 是 Feed 引擎的入口。
//
// 取数规则：
//   - 首屏：先查缓存，缓存一条可用条目都没有时降级兜底查询
//   - 续读：游标指向哪个来源就只查哪个来源，绝不中途切换——
//     切换会导致重复或跳条
//   - 空页 + 空 NextCursor 表示 Feed 已读尽，不算错误
//
// Scorer/Signals/Policy 均可缺省：缺排序器等价于排序开关关闭，
// 缺信号源只用缓存行自带信号，缺策略则不做策略过滤。
type Engine struct {
	Cache    *reader.CacheReader
	Fallback *reader.FallbackReader
	Codec    *cursor.Codec
	Flags    core.FlagProvider
	Scorer   *rank.Scorer
	Signals  signals.Provider
	Policy   *filter.Policy
	Log      core.Logger
	Metrics  core.Metrics

	// DefaultLimit limit<=0 时的页大小，默认 20
	DefaultLimit int

	// MaxLimit 页大小上限，默认 100
	MaxLimit int
}

// NewEngine 构造带默认协作方的引擎。log/metrics 可为 nil（空实现）。
func NewEngine(cache *reader.CacheReader, fallback *reader.FallbackReader, log core.Logger, metrics core.Metrics) *Engine {
	if log == nil {
		log = core.NopLogger{}
	}
	if metrics == nil {
		metrics = core.NopMetrics{}
	}
	return &Engine{
		Cache:        cache,
		Fallback:     fallback,
		Codec:        cursor.NewCodec(log),
		Flags:        flags.NewProvider(nil, nil),
		Scorer:       rank.NewScorer(rank.DefaultConfig()),
		Log:          log,
		Metrics:      metrics,
		DefaultLimit: defaultLimit,
		MaxLimit:     maxLimit,
	}
}

// GetInitialFeed 返回首屏 Feed：缓存优先，缓存空则兜底。
func (e *Engine) GetInitialFeed(ctx context.Context, limit int, region, locale string) (*core.FeedResponse, error) {
	return e.serve(ctx, OpInitialFeed, limit, region, locale, nil, time.Time{})
}

// GetMoreFeed 按游标续读。token 畸形或过期时解码得到 nil，
// 行为退化为首屏请求——分页永远不会因为坏令牌失败。
func (e *Engine) GetMoreFeed(ctx context.Context, limit int, token, region, locale string) (*core.FeedResponse, error) {
	cur := e.codec().Decode(token)
	return e.serve(ctx, OpMoreFeed, limit, region, locale, cur, time.Time{})
}

// GetFeedUpdates 返回水位之后的增量更新。
// updatedAfter 是 RFC3339 时间戳；解析失败记 warn 并忽略水位（返回全量首屏），
// 刷新开关关闭时同样忽略水位。
func (e *Engine) GetFeedUpdates(ctx context.Context, limit int, region, locale, updatedAfter string) (*core.FeedResponse, error) {
	var watermark time.Time
	if updatedAfter != "" {
		ts, err := time.Parse(time.RFC3339, updatedAfter)
		if err != nil {
			e.logger().Warn("updated_after_unparsable", map[string]any{"value": updatedAfter})
		} else {
			watermark = ts
		}
	}
	if !e.flagProvider().RefreshEnabled() {
		watermark = time.Time{}
	}
	return e.serve(ctx, OpFeedUpdates, limit, region, locale, nil, watermark)
}

func (e *Engine) serve(ctx context.Context, op string, limit int, region, locale string, cur *cursor.Cursor, watermark time.Time) (*core.FeedResponse, error) {
	limit = e.clampLimit(limit)
	start := time.Now()

	// 缓存游标携带铸造时的分区条件，续读沿用原分区，
	// 请求参数与游标不一致时以游标为准。
	if cur != nil && cur.Source == core.SourceCache {
		region = cur.Region
		locale = cur.Locale
	}

	fctx := &core.FeedContext{
		Region: region,
		Locale: locale,
		Limit:  limit,
		Now:    start,
	}
	req := reader.Request{Limit: limit, Region: region, Locale: locale}

	page, source, err := e.fetch(ctx, op, fctx, req, cur)
	if err != nil {
		return nil, err
	}

	cacheHits := 0
	for _, it := range page.Items {
		if it.Source == core.SourceCache {
			cacheHits++
		}
	}

	e.enrichSignals(ctx, fctx, page.Items)

	rankingOn := e.flagProvider().RankingEnabled() && e.Scorer != nil
	items, err := e.buildPipeline(rankingOn, limit, watermark).Run(ctx, fctx, page.Items)
	if err != nil {
		return nil, err
	}

	next := e.mintCursor(source, page.LastDocID, region, locale)

	e.metricsSink().ObserveQueryDuration(op, source, time.Since(start).Seconds())
	e.metricsSink().SetCacheHitRatio(op, float64(cacheHits)/float64(maxInt(1, limit)))
	if rankingOn && len(items) > 0 {
		min, max, mean := scoreStats(items)
		e.metricsSink().SetPageScoreStats(op, min, max, mean)
	}

	return &core.FeedResponse{Items: items, NextCursor: next, Source: source}, nil
}

// fetch 按游标决定取数来源。无游标时缓存优先、空则兜底；
// 有游标时只查游标指向的来源。
func (e *Engine) fetch(ctx context.Context, op string, fctx *core.FeedContext, req reader.Request, cur *cursor.Cursor) (*reader.Page, core.Source, error) {
	if cur != nil {
		req.AfterDocID = cur.DocID
		switch cur.Source {
		case core.SourceFallback:
			page, err := e.Fallback.Fetch(ctx, fctx, req)
			return page, core.SourceFallback, err
		default:
			page, err := e.Cache.Fetch(ctx, fctx, req)
			return page, core.SourceCache, err
		}
	}

	page, err := e.Cache.Fetch(ctx, fctx, req)
	if err != nil {
		return nil, core.SourceCache, err
	}
	if len(page.Items) > 0 {
		return page, core.SourceCache, nil
	}

	e.logger().Warn("feed_fallback", map[string]any{
		"op":     op,
		"region": req.Region,
		"locale": req.Locale,
	})
	page, err = e.Fallback.Fetch(ctx, fctx, req)
	return page, core.SourceFallback, err
}

// enrichSignals 从个性化信号源拉取条目信号并合并进 RankingSignals，
// 信号源的值覆盖缓存行自带的同名信号。拉取失败只记 warn，
// 排序退化为使用缓存行信号。
func (e *Engine) enrichSignals(ctx context.Context, fctx *core.FeedContext, items []*core.FeedItem) {
	if e.Signals == nil || len(items) == 0 {
		return
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	userID, _ := fctx.Params["user_id"].(string)

	fetched, err := e.Signals.ContentSignals(ctx, userID, ids)
	if err != nil {
		e.logger().Warn("signals_unavailable", map[string]any{
			"provider": e.Signals.Name(),
			"reason":   err.Error(),
		})
		return
	}

	for _, it := range items {
		values, ok := fetched[it.ID]
		if !ok {
			continue
		}
		if it.RankingSignals == nil {
			it.RankingSignals = make(map[string]float64, len(values))
		}
		for k, v := range values {
			it.RankingSignals[k] = v
		}
	}
}

// buildPipeline 按本次请求的开关状态组装加工链：
// 过滤（策略 + 可选水位）→ 排序（开关开启时）→ 截断。
func (e *Engine) buildPipeline(rankingOn bool, limit int, watermark time.Time) *pipeline.Pipeline {
	var nodes []pipeline.Node

	var filters []filter.Filter
	if e.Policy != nil {
		filters = append(filters, e.Policy)
	}
	if !watermark.IsZero() {
		filters = append(filters, &filter.Freshness{After: watermark})
	}
	if len(filters) > 0 {
		nodes = append(nodes, &filter.Node{Filters: filters})
	}

	if rankingOn {
		nodes = append(nodes, &rank.Node{Scorer: e.Scorer})
	}
	nodes = append(nodes, &rerank.TopN{N: limit})

	return &pipeline.Pipeline{Nodes: nodes}
}

// mintCursor 基于物理扫描位置铸造下一页游标。
// LastDocID 为空（本页没扫到任何行）表示读尽，返回空串。
func (e *Engine) mintCursor(source core.Source, lastDocID, region, locale string) string {
	if lastDocID == "" {
		return ""
	}
	cur := &cursor.Cursor{Source: source, DocID: lastDocID}
	if source == core.SourceCache {
		cur.Region = region
		cur.Locale = locale
	}
	return e.codec().Encode(cur)
}

func (e *Engine) clampLimit(limit int) int {
	def := e.DefaultLimit
	if def <= 0 {
		def = defaultLimit
	}
	max := e.MaxLimit
	if max <= 0 {
		max = maxLimit
	}
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func (e *Engine) codec() *cursor.Codec {
	if e.Codec != nil {
		return e.Codec
	}
	return cursor.NewCodec(e.Log)
}

func (e *Engine) flagProvider() core.FlagProvider {
	if e.Flags != nil {
		return e.Flags
	}
	return flags.NewProvider(nil, nil)
}

func (e *Engine) logger() core.Logger {
	if e.Log != nil {
		return e.Log
	}
	return core.NopLogger{}
}

func (e *Engine) metricsSink() core.Metrics {
	if e.Metrics != nil {
		return e.Metrics
	}
	return core.NopMetrics{}
}

func scoreStats(items []*core.FeedItem) (min, max, mean float64) {
	n := 0
	for _, it := range items {
		if it == nil || it.Ranking == nil {
			continue
		}
		s := it.Ranking.Score
		if n == 0 || s < min {
			min = s
		}
		if n == 0 || s > max {
			max = s
		}
		mean += s
		n++
	}
	if n == 0 {
		return 0, 0, 0
	}
	return min, max, mean / float64(n)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
