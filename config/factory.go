package config

import (
	"fmt"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/cursor"
	"github.com/rushteam/feedkit/feed"
	"github.com/rushteam/feedkit/filter"
	"github.com/rushteam/feedkit/flags"
	"github.com/rushteam/feedkit/rank"
	"github.com/rushteam/feedkit/reader"
	"github.com/rushteam/feedkit/signals"
	"github.com/rushteam/feedkit/store"
)

// BuildEngine 按配置装配一台完整的引擎：
// Redis 存储 → 缓存/兜底读取器 → 开关/打分/策略/信号源 → 编排层。
// log/metrics 由调用方注入（nil 为空实现）。
func BuildEngine(cfg *Config, log core.Logger, metrics core.Metrics) (*feed.Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis.addr is required")
	}
	if log == nil {
		log = core.NopLogger{}
	}
	if metrics == nil {
		metrics = core.NopMetrics{}
	}

	rs, err := store.NewRedisStore(cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("redis store: %w", err)
	}

	cache := reader.NewCacheReader(rs, rs, log)
	if cfg.CacheCollection != "" {
		cache.Collection = cfg.CacheCollection
	}
	if cfg.LookupConcurrency > 0 {
		cache.LookupConcurrency = cfg.LookupConcurrency
	}

	fallback := reader.NewFallbackReader(rs, log)
	if cfg.FallbackCollection != "" {
		fallback.Collection = cfg.FallbackCollection
	}

	engine := feed.NewEngine(cache, fallback, log, metrics)
	engine.Codec = cursor.NewCodec(log)
	engine.Flags = flags.NewProvider(nil, cfg.Flags)
	engine.Scorer = rank.NewScorer(cfg.Ranking)
	if cfg.DefaultLimit > 0 {
		engine.DefaultLimit = cfg.DefaultLimit
	}
	if cfg.MaxLimit > 0 {
		engine.MaxLimit = cfg.MaxLimit
	}

	if cfg.Policy != "" {
		policy, err := filter.NewPolicy(cfg.Policy)
		if err != nil {
			return nil, fmt.Errorf("policy: %w", err)
		}
		engine.Policy = policy
	}

	if cfg.Feast.Host != "" {
		provider, err := signals.NewFeastProvider(cfg.Feast.Host, cfg.Feast.Port, cfg.Feast.Project)
		if err != nil {
			return nil, fmt.Errorf("feast provider: %w", err)
		}
		engine.Signals = provider
	}

	return engine, nil
}
