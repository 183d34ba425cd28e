// Package config 提供引擎的 YAML 配置加载与装配。
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/feedkit/rank"
)

// Config 是引擎的完整配置（支持 YAML）。
// 零值字段在装配时回落到各组件默认值。
type Config struct {
	// Redis 在线存储连接参数
	Redis RedisConfig `yaml:"redis"`

	// Feast 个性化信号源；Host 为空表示不启用
	Feast FeastConfig `yaml:"feast"`

	// CacheCollection 预计算缓存集合名，默认 "feed_cache"
	CacheCollection string `yaml:"cache_collection"`

	// FallbackCollection 兜底内容集合名，默认 "contents"
	FallbackCollection string `yaml:"fallback_collection"`

	// LookupConcurrency 实体解引用并发上限，默认 8
	LookupConcurrency int `yaml:"lookup_concurrency"`

	// DefaultLimit / MaxLimit 页大小默认值与上限
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`

	// Policy CEL 策略表达式（保留条件）；为空表示不做策略过滤
	Policy string `yaml:"policy"`

	// Ranking 打分参数
	Ranking rank.Config `yaml:"ranking"`

	// Flags 特性开关的运行时覆盖（ranking / refresh / beta）
	Flags map[string]bool `yaml:"flags"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

type FeastConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Project string `yaml:"project"`
}

// LoadFromYAML 从 YAML 文件加载配置。
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	return &cfg, nil
}
