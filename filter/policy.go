package filter

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/feedkit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("fctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Policy 是 CEL (Common Expression Language) 驱动的策略过滤器：
// 运营方用一条表达式声明“保留条件”，求值为 false 的条目被过滤。
// 求值出错时保留条目——策略引擎故障不该吃掉内容（可用性优先）。
//
// 表达式可访问：
//   - item: id / source / region / locale / score / signals
//   - label: 顶层标签值，例如 label.feed_source
//   - fctx: region / locale / params
//
// 示例：
//   - `item.region == "" || item.region == fctx.region`
//   - `item.signals.diversity_penalty < 5.0`
type Policy struct {
	Expr string

	prg cel.Program
}

// NewPolicy 编译表达式并返回策略过滤器；表达式非法时报错。
func NewPolicy(expr string) (*Policy, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile policy: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program policy: %w", err)
	}
	return &Policy{Expr: expr, prg: prg}, nil
}

func (p *Policy) Name() string { return "filter.policy" }

func (p *Policy) ShouldFilter(_ context.Context, fctx *core.FeedContext, item *core.FeedItem) (bool, error) {
	if p.prg == nil {
		return false, nil
	}
	out, _, err := p.prg.Eval(buildPolicyInput(fctx, item))
	if err != nil {
		// 表达式访问了不存在的 key 等：保留条目
		return false, nil
	}
	keep, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("policy expression must return boolean, got %T", out.Value())
	}
	return !keep, nil
}

func buildPolicyInput(fctx *core.FeedContext, item *core.FeedItem) map[string]any {
	labels := make(map[string]any, len(item.Labels))
	for k, v := range item.Labels {
		labels[k] = v.Value
	}

	score := 0.0
	if item.Ranking != nil {
		score = item.Ranking.Score
	}
	signals := make(map[string]any, len(item.RankingSignals))
	for k, v := range item.RankingSignals {
		signals[k] = v
	}

	itemInput := map[string]any{
		"id":      item.ID,
		"source":  string(item.Source),
		"region":  item.Region,
		"locale":  item.Locale,
		"score":   score,
		"signals": signals,
	}

	fctxInput := map[string]any{}
	if fctx != nil {
		fctxInput["region"] = fctx.Region
		fctxInput["locale"] = fctx.Locale
		fctxInput["params"] = fctx.Params
	}

	return map[string]any{
		"item":  itemInput,
		"label": labels,
		"fctx":  fctxInput,
	}
}
