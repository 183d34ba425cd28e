// Package metrics 提供 core.Metrics 的 Prometheus 实现。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rushteam/feedkit/core"
)

// Prom 按引擎的指标语义暴露三组指标：
//   - feedkit_query_duration_seconds{op,source}：取数+加工全程耗时
//   - feedkit_cache_hit_ratio{op}：cacheHits / max(1, requestedLimit)
//   - feedkit_page_score{op,stat}：页内分数 min/max/mean（仅排序开启且页非空）
type Prom struct {
	queryDuration *prometheus.HistogramVec
	cacheHitRatio *prometheus.GaugeVec
	pageScore     *prometheus.GaugeVec
}

// New 在 reg 上注册指标；reg 为 nil 时使用默认注册表。
func New(reg prometheus.Registerer) *Prom {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Prom{
		queryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "feedkit_query_duration_seconds",
			Help:    "Feed query latency by operation and serving source.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "source"}),
		cacheHitRatio: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "feedkit_cache_hit_ratio",
			Help: "Cache hits over requested limit, per operation.",
		}, []string{"op"}),
		pageScore: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "feedkit_page_score",
			Help: "Per-page ranking score statistics (min/max/mean).",
		}, []string{"op", "stat"}),
	}
}

func (p *Prom) ObserveQueryDuration(op string, source core.Source, seconds float64) {
	p.queryDuration.WithLabelValues(op, string(source)).Observe(seconds)
}

func (p *Prom) SetCacheHitRatio(op string, ratio float64) {
	p.cacheHitRatio.WithLabelValues(op).Set(ratio)
}

func (p *Prom) SetPageScoreStats(op string, min, max, mean float64) {
	p.pageScore.WithLabelValues(op, "min").Set(min)
	p.pageScore.WithLabelValues(op, "max").Set(max)
	p.pageScore.WithLabelValues(op, "mean").Set(mean)
}

var _ core.Metrics = (*Prom)(nil)
