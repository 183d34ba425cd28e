package reader

import (
	"time"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pkg/conv"
)

// 缓存行与内容文档的字段名（与填充管线的写入契约一致）。
const (
	FieldContentID      = "content_id"
	FieldRegion         = "region"
	FieldLocale         = "locale"
	FieldPersonaVector  = "persona_vector"
	FieldRankingSignals = "ranking_signals"
	FieldUpdatedAt      = "updated_at"

	FieldOwnerID   = "owner_id"
	FieldPublic    = "public"
	FieldCreatedAt = "created_at"
)

// DocToCacheRow 把无类型缓存文档解码为 CacheRow（decode-or-reject）。
// 缺少 content_id 视为与填充管线的契约被破坏：返回错误，由调用方
// 记 warn 并丢行，绝不让一条脏行拖垮整页结果。
func DocToCacheRow(doc core.Document) (*core.CacheRow, error) {
	contentID, ok := conv.ToString(doc.Data[FieldContentID])
	if !ok || contentID == "" {
		return nil, core.NewDomainError(core.ModuleReader, core.ErrorCodeInvalidInput, "reader: cache row missing content_id")
	}

	row := &core.CacheRow{
		DocID:          doc.ID,
		ContentID:      contentID,
		PersonaVector:  conv.ToFloat64Slice(doc.Data[FieldPersonaVector]),
		RankingSignals: conv.MapToFloat64(doc.Data[FieldRankingSignals]),
	}
	if region, ok := conv.ToString(doc.Data[FieldRegion]); ok {
		row.Region = region
	}
	if locale, ok := conv.ToString(doc.Data[FieldLocale]); ok {
		row.Locale = locale
	}
	if raw, ok := conv.ToString(doc.Data[FieldUpdatedAt]); ok {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			row.UpdatedAt = t
		}
	}
	return row, nil
}

// DocToEntity 把原始内容文档解码为 ContentEntity。
// 兜底路径读到什么算什么：缺字段取零值，不报错。
func DocToEntity(doc core.Document) *core.ContentEntity {
	e := &core.ContentEntity{ID: doc.ID}
	if id, ok := conv.ToString(doc.Data["id"]); ok && id != "" {
		e.ID = id
	}
	if owner, ok := conv.ToString(doc.Data[FieldOwnerID]); ok {
		e.OwnerID = owner
	}
	e.LikeCount, _ = conv.ToInt64(doc.Data["like_count"])
	e.FavoriteCount, _ = conv.ToInt64(doc.Data["favorite_count"])
	e.ShareCount, _ = conv.ToInt64(doc.Data["share_count"])
	e.CommentCount, _ = conv.ToInt64(doc.Data["comment_count"])
	e.RemakeCount, _ = conv.ToInt64(doc.Data["remake_count"])
	e.OrderCount, _ = conv.ToInt64(doc.Data["order_count"])
	if created, ok := conv.ToString(doc.Data[FieldCreatedAt]); ok {
		e.CreatedAt = created
	}
	e.Public, _ = conv.ToBool(doc.Data[FieldPublic])
	if sub, ok := doc.Data["sub"].(map[string]any); ok {
		e.Sub = sub
	}
	return e
}
