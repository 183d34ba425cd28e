package core

// FlagProvider 是特性开关的消费接口。
// 每次调用实时求值、无副作用、不缓存结果：动态配置源可以在不重启进程的
// 情况下翻转行为。引擎不持有任何进程级可变开关状态。
type FlagProvider interface {
	// RankingEnabled 控制是否对页内条目打分并按分数重排
	RankingEnabled() bool

	// RefreshEnabled 控制增量刷新是否按水位过滤
	RefreshEnabled() bool
}

// ConfigSource 是环境/配置源的最小抽象：string key -> string value。
// 空字符串表示该 key 未设置。
type ConfigSource interface {
	Get(key string) string
}
