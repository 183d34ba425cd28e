// Package conv 提供无类型存储文档到领域类型的转换工具，用于 decode-or-reject 边界。
package conv

// ToFloat64 将 any 转为 float64。
// 支持 float64、float32、int、int64、int32；bool 视为 1.0/0.0。
func ToFloat64(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case bool:
		if val {
			return 1.0, true
		}
		return 0.0, true
	default:
		return 0, false
	}
}

// ToInt64 将 any 转为 int64（JSON 解码后的计数通常是 float64）。
func ToInt64(v any) (int64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	case int32:
		return int64(val), true
	case float64:
		return int64(val), true
	case float32:
		return int64(val), true
	default:
		return 0, false
	}
}

// ToString 将 any 转为 string；非字符串返回 false，不做格式化兜底。
func ToString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// ToBool 将 any 转为 bool；数值非零视为 true。
func ToBool(v any) (bool, bool) {
	if v == nil {
		return false, false
	}
	switch val := v.(type) {
	case bool:
		return val, true
	case float64:
		return val != 0, true
	case int:
		return val != 0, true
	case int64:
		return val != 0, true
	default:
		return false, false
	}
}

// MapToFloat64 将 map[string]any 转为 map[string]float64，跳过无法转换的值。
// 已经是 map[string]float64 的输入原样复制。
func MapToFloat64(v any) map[string]float64 {
	switch m := v.(type) {
	case map[string]float64:
		out := make(map[string]float64, len(m))
		for k, fv := range m {
			out[k] = fv
		}
		return out
	case map[string]any:
		out := make(map[string]float64, len(m))
		for k, raw := range m {
			if fv, ok := ToFloat64(raw); ok {
				out[k] = fv
			}
		}
		return out
	default:
		return nil
	}
}

// ToFloat64Slice 将 any 转为 []float64，跳过无法转换的元素。
func ToFloat64Slice(v any) []float64 {
	switch s := v.(type) {
	case []float64:
		out := make([]float64, len(s))
		copy(out, s)
		return out
	case []any:
		out := make([]float64, 0, len(s))
		for _, raw := range s {
			if fv, ok := ToFloat64(raw); ok {
				out = append(out, fv)
			}
		}
		return out
	default:
		return nil
	}
}
