package core

import (
	"time"

	"github.com/rushteam/feedkit/pkg/utils"
)

// FeedContext 承载单次 Feed 请求的检索条件，贯穿整个 Pipeline 透传。
// region/locale 缺省表示“匹配任意分区”，不做推断。
type FeedContext struct {
	Region string
	Locale string
	Limit  int

	// Now 是本次请求的时间基准；排序阶段的 recency 以它为准，
	// 保证同一次请求内所有条目可比、可复现。
	Now time.Time

	// Params 请求级上下文参数（user_id、device_type 等），供策略表达式使用。
	Params map[string]any

	// Labels 是请求级标签，可驱动 Pipeline 行为。
	Labels map[string]utils.Label
}

// Time 返回请求时间基准；未设置时取当前时间。
func (fctx *FeedContext) Time() time.Time {
	if fctx == nil || fctx.Now.IsZero() {
		return time.Now()
	}
	return fctx.Now
}

// PutLabel 写入请求级 Label。
func (fctx *FeedContext) PutLabel(key string, lbl utils.Label) {
	if fctx.Labels == nil {
		fctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := fctx.Labels[key]; ok {
		fctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	fctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (fctx *FeedContext) GetLabel(key string) (utils.Label, bool) {
	if fctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := fctx.Labels[key]
	return lbl, ok
}
