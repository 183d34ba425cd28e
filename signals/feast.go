package signals

import (
	"context"
	"fmt"
	"strings"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"
)

// 默认的特征引用（feature_view:feature）。
var defaultFeatureRefs = []string{
	"content_signals:engagement_score",
	"content_signals:personal_boost",
	"content_signals:persona_affinity",
	"content_signals:diversity_penalty",
}

// FeastProvider 是基于官方 Feast Go SDK 的信号源实现。
// 个性化管线把信号物化到 Feast 在线存储；本引擎只按内容 ID 读取，
// 不关心特征怎么算出来。
type FeastProvider struct {
	client *feastsdk.GrpcClient

	// Project 项目名称
	Project string

	// EntityKey 实体字段名，默认 "content_id"
	EntityKey string

	// FeatureRefs 拉取的特征引用列表；信号 key 取冒号后的特征名
	FeatureRefs []string
}

// NewFeastProvider 创建连接 Feast Feature Server 的信号源。
func NewFeastProvider(host string, port int, project string) (*FeastProvider, error) {
	if port == 0 {
		port = 6565
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("feast grpc client: %w", err)
	}
	return &FeastProvider{
		client:      client,
		Project:     project,
		EntityKey:   "content_id",
		FeatureRefs: defaultFeatureRefs,
	}, nil
}

func (p *FeastProvider) Name() string { return "signals.feast" }

func (p *FeastProvider) ContentSignals(ctx context.Context, _ string, contentIDs []string) (map[string]map[string]float64, error) {
	if len(contentIDs) == 0 {
		return map[string]map[string]float64{}, nil
	}

	refs := p.FeatureRefs
	if len(refs) == 0 {
		refs = defaultFeatureRefs
	}
	entityKey := p.EntityKey
	if entityKey == "" {
		entityKey = "content_id"
	}

	rows := make([]feastsdk.Row, len(contentIDs))
	for i, id := range contentIDs {
		rows[i] = feastsdk.Row{entityKey: feastsdk.StrVal(id)}
	}

	resp, err := p.client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: refs,
		Entities: rows,
		Project:  p.Project,
	})
	if err != nil {
		return nil, fmt.Errorf("feast get online features: %w", err)
	}

	respRows := resp.Rows()
	if len(respRows) != len(contentIDs) {
		return nil, fmt.Errorf("feast row count mismatch: expected %d, got %d", len(contentIDs), len(respRows))
	}

	out := make(map[string]map[string]float64, len(contentIDs))
	for i, row := range respRows {
		values := make(map[string]float64, len(refs))
		for _, ref := range refs {
			val, exists := row[ref]
			if !exists {
				// 部分 serving 版本返回的 key 不带 feature_view 前缀
				val, exists = row[SignalKey(ref)]
			}
			if !exists {
				continue
			}
			if f, ok := ValueToFloat(val); ok {
				values[SignalKey(ref)] = f
			}
		}
		if len(values) > 0 {
			out[contentIDs[i]] = values
		}
	}
	return out, nil
}

// SignalKey 从特征引用里取信号 key："content_signals:personal_boost" -> "personal_boost"。
func SignalKey(ref string) string {
	if i := strings.LastIndex(ref, ":"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// ValueToFloat 把 Feast 的 protobuf Value 转成 float64。
func ValueToFloat(v *feasttypes.Value) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.Val.(type) {
	case *feasttypes.Value_DoubleVal:
		return val.DoubleVal, true
	case *feasttypes.Value_FloatVal:
		return float64(val.FloatVal), true
	case *feasttypes.Value_Int64Val:
		return float64(val.Int64Val), true
	case *feasttypes.Value_Int32Val:
		return float64(val.Int32Val), true
	case *feasttypes.Value_BoolVal:
		if val.BoolVal {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
