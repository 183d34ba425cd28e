// Package feedkit 是一个 Feed 检索与排序引擎工具包（Feed Kit）。
//
// 设计要点：
// - 缓存优先: 预计算 Feed 缓存 + 公开内容兜底查询，缺索引自动降级
// - Pipeline-first: 取数后的加工通过 Node 串联（Filter → Rank → PostProcess）
// - 游标安全: 不透明分页令牌，解码绝不失败，畸形令牌退化为首屏
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
package feedkit

import "github.com/rushteam/feedkit/pipeline"

// 轻量 facade：便于用户直接 import "feedkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindSource      = pipeline.KindSource
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindPostProcess = pipeline.KindPostProcess
)
