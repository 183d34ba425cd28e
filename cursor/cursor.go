// Package cursor 实现不透明分页令牌的编解码。
//
// 令牌只是“从哪一行之后继续”的标识：紧凑 JSON + base64，无加密、
// 不承载安全语义。解码绝不失败——任何畸形输入都返回 nil 并记一条
// warn 日志，调用方一律把 nil 当作“从头开始查询”，保证分页路径对
// 被篡改或过期的令牌也是安全的。
package cursor

import (
	"encoding/base64"
	"encoding/json"

	"github.com/rushteam/feedkit/core"
)

// Cursor 记录续读位置：来源 + 文档 ID + 铸造时的分区条件。
// 游标只对铸造它的来源有效；continuation 只会重查它指向的来源。
type Cursor struct {
	Source core.Source `json:"s"`
	DocID  string      `json:"d"`
	Region string      `json:"r,omitempty"`
	Locale string      `json:"l,omitempty"`
}

// Codec 负责 Cursor <-> token 的确定性可逆变换。
type Codec struct {
	Log core.Logger
}

func NewCodec(log core.Logger) *Codec {
	if log == nil {
		log = core.NopLogger{}
	}
	return &Codec{Log: log}
}

// Encode 把 Cursor 编码为不透明 token。nil 游标编码为空字符串。
func (c *Codec) Encode(cur *Cursor) string {
	if cur == nil || cur.DocID == "" {
		return ""
	}
	data, err := json.Marshal(cur)
	if err != nil {
		// Cursor 全部是纯值字段，Marshal 不会失败；保守起见仍然兜底。
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// Decode 解析 token。畸形 base64、坏 JSON、缺少必填字段（source/docId）
// 一律返回 nil 并记 warn，从不上抛。
func (c *Codec) Decode(token string) *Cursor {
	if token == "" {
		return nil
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		c.Log.Warn("cursor_decode_failed", map[string]any{"reason": "bad_base64"})
		return nil
	}
	var cur Cursor
	if err := json.Unmarshal(data, &cur); err != nil {
		c.Log.Warn("cursor_decode_failed", map[string]any{"reason": "bad_payload"})
		return nil
	}
	if cur.DocID == "" || (cur.Source != core.SourceCache && cur.Source != core.SourceFallback) {
		c.Log.Warn("cursor_decode_failed", map[string]any{"reason": "missing_fields"})
		return nil
	}
	return &cur
}
