// Package signals 对接外部个性化管线：按内容 ID 拉取预计算的排序信号
// （engagement_score / personal_boost / persona_affinity / diversity_penalty），
// 在打分前合并进条目的 ranking_signals。
//
// 信号源是可选协作方：拉取失败只会降级为使用缓存行自带的信号，
// 不影响请求成败。
package signals

import "context"

// Provider 是个性化信号源的抽象。
// 返回 map[contentID]map[signalKey]value；缺失的内容 ID 直接不出现在结果里。
type Provider interface {
	Name() string
	ContentSignals(ctx context.Context, userID string, contentIDs []string) (map[string]map[string]float64, error)
}
