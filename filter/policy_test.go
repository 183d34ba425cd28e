package filter

import (
	"context"
	"testing"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pkg/utils"
)

func policyItem() *core.FeedItem {
	item := core.NewFeedItem("c1", &core.ContentEntity{ID: "c1"}, core.SourceCache)
	item.Region = "us"
	item.Locale = "en"
	item.RankingSignals = map[string]float64{"diversity_penalty": 2.0}
	return item
}

func TestNewPolicy_InvalidExpression(t *testing.T) {
	if _, err := NewPolicy("item.region =="); err == nil {
		t.Error("NewPolicy() with invalid expression, want error")
	}
}

func TestPolicy_KeepSemantics(t *testing.T) {
	fctx := &core.FeedContext{Region: "us"}

	tests := []struct {
		name       string
		expr       string
		wantFilter bool
	}{
		{name: "true keeps", expr: `item.region == "us"`, wantFilter: false},
		{name: "false filters", expr: `item.region == "jp"`, wantFilter: true},
		{name: "signals accessible", expr: `item.signals.diversity_penalty < 5.0`, wantFilter: false},
		{name: "fctx accessible", expr: `item.region == fctx.region`, wantFilter: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPolicy(tt.expr)
			if err != nil {
				t.Fatalf("NewPolicy(%q): %v", tt.expr, err)
			}
			got, err := p.ShouldFilter(context.Background(), fctx, policyItem())
			if err != nil {
				t.Fatalf("ShouldFilter(): %v", err)
			}
			if got != tt.wantFilter {
				t.Errorf("ShouldFilter() = %v, want %v", got, tt.wantFilter)
			}
		})
	}
}

func TestPolicy_EvalErrorKeepsItem(t *testing.T) {
	// 访问不存在的 signal key：求值出错，条目保留
	p, err := NewPolicy(`item.signals.no_such_key > 1.0`)
	if err != nil {
		t.Fatalf("NewPolicy(): %v", err)
	}
	got, err := p.ShouldFilter(context.Background(), &core.FeedContext{}, policyItem())
	if err != nil {
		t.Fatalf("ShouldFilter(): %v", err)
	}
	if got {
		t.Error("ShouldFilter() = true on eval error, want keep")
	}
}

func TestPolicy_NonBooleanResult(t *testing.T) {
	p, err := NewPolicy(`item.id`)
	if err != nil {
		t.Fatalf("NewPolicy(): %v", err)
	}
	if _, err := p.ShouldFilter(context.Background(), &core.FeedContext{}, policyItem()); err == nil {
		t.Error("ShouldFilter() with non-boolean expression, want error")
	}
}

func TestPolicy_LabelsAccessible(t *testing.T) {
	p, err := NewPolicy(`label.feed_source == "reader.cache"`)
	if err != nil {
		t.Fatalf("NewPolicy(): %v", err)
	}

	item := policyItem()
	item.PutLabel("feed_source", utils.Label{Value: "reader.cache", Source: "reader"})
	got, err := p.ShouldFilter(context.Background(), &core.FeedContext{}, item)
	if err != nil {
		t.Fatalf("ShouldFilter(): %v", err)
	}
	if got {
		t.Error("ShouldFilter() = true, want keep by label match")
	}
}
