// Package flags 实现特性开关的三级解析：
// 显式运行时覆盖（最高） → 显式环境开关 → 继承主 beta 开关（最低）。
//
// 注意主 beta 开关是“默认值”而不是“覆盖”：某个功能一旦有显式
// 开关（覆盖或环境变量），主开关持相反意见也不生效。
// 每次调用都实时求值、不缓存结果，动态配置源可以不重启翻转行为。
package flags

import (
	"os"
	"strings"

	"github.com/rushteam/feedkit/core"
)

// 开关名（Overrides 的 key）。
const (
	FlagRanking = "ranking"
	FlagRefresh = "refresh"
	FlagBeta    = "beta"
)

// 环境变量名。
const (
	EnvRankingEnabled = "FEED_RANKING_ENABLED"
	EnvRefreshEnabled = "FEED_REFRESH_ENABLED"
	EnvBetaEnabled    = "FEED_BETA_ENABLED"
)

// Provider 实现 core.FlagProvider。
// Overrides 在构造时注入（通常来自配置文件或管理接口），
// Source 每次求值时重新读取。
type Provider struct {
	Source    core.ConfigSource
	Overrides map[string]bool
}

func NewProvider(source core.ConfigSource, overrides map[string]bool) *Provider {
	if source == nil {
		source = EnvSource{}
	}
	return &Provider{Source: source, Overrides: overrides}
}

func (p *Provider) RankingEnabled() bool {
	return p.resolve(FlagRanking, EnvRankingEnabled)
}

func (p *Provider) RefreshEnabled() bool {
	return p.resolve(FlagRefresh, EnvRefreshEnabled)
}

// resolve 按 覆盖 → 环境 → 主开关 的顺序取第一个显式值。
func (p *Provider) resolve(flag, envKey string) bool {
	if v, ok := p.Overrides[flag]; ok {
		return v
	}
	if v, ok := parseBool(p.Source.Get(envKey)); ok {
		return v
	}
	return p.beta()
}

func (p *Provider) beta() bool {
	if v, ok := p.Overrides[FlagBeta]; ok {
		return v
	}
	if v, ok := parseBool(p.Source.Get(EnvBetaEnabled)); ok {
		return v
	}
	return false
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}

// EnvSource 是进程环境变量实现的 ConfigSource。
type EnvSource struct{}

func (EnvSource) Get(key string) string { return os.Getenv(key) }

// MapSource 是 map 实现的 ConfigSource，用于测试或静态配置。
type MapSource map[string]string

func (m MapSource) Get(key string) string { return m[key] }

var _ core.FlagProvider = (*Provider)(nil)
