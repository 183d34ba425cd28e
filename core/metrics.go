package core

// Metrics 是引擎的指标出口。
// 指标语义：
//   - 查询耗时：按入口（initial/more/updates）与来源（cache/fallback）打点
//   - 缓存命中率：cacheHits / max(1, requestedLimit)，按入口打点
//   - 页内分数统计：仅在排序开启且页非空时上报，用于发现排序回归
type Metrics interface {
	ObserveQueryDuration(op string, source Source, seconds float64)
	SetCacheHitRatio(op string, ratio float64)
	SetPageScoreStats(op string, min, max, mean float64)
}

// NopMetrics 丢弃所有指标。
type NopMetrics struct{}

func (NopMetrics) ObserveQueryDuration(string, Source, float64)        {}
func (NopMetrics) SetCacheHitRatio(string, float64)                    {}
func (NopMetrics) SetPageScoreStats(string, float64, float64, float64) {}
