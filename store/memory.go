package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pkg/conv"
)

// MemoryStore 是内存实现的 DocStore + EntityStore，用于测试/开发/原型。
// 进程重启后数据丢失。
//
// 索引模拟：默认任何带排序的查询都可执行；调用 RequireIndexes 之后，
// 带排序的过滤查询必须先 RegisterIndex，否则返回 ErrStoreMissingIndex，
// 行为与生产驱动一致，便于在测试里覆盖降级路径。
type MemoryStore struct {
	mu           sync.RWMutex
	colls        map[string]map[string]core.Document
	entities     map[string]*core.ContentEntity
	indexes      map[string]bool
	requireIndex bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		colls:    make(map[string]map[string]core.Document),
		entities: make(map[string]*core.ContentEntity),
		indexes:  make(map[string]bool),
	}
}

func (m *MemoryStore) Name() string { return "memory" }

// RequireIndexes 开启索引检查：带排序的查询必须先注册索引。
func (m *MemoryStore) RequireIndexes() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requireIndex = true
}

// RegisterIndex 注册一个复合索引（过滤字段集 + 排序字段）。
func (m *MemoryStore) RegisterIndex(collection string, filterFields []string, orderBy string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexes[indexSpecKey(collection, filterFields, orderBy)] = true
}

// Put 写入/覆盖一个文档（填充任务和测试用；引擎只读）。
func (m *MemoryStore) Put(collection string, doc core.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	coll, ok := m.colls[collection]
	if !ok {
		coll = make(map[string]core.Document)
		m.colls[collection] = coll
	}
	coll[doc.ID] = doc
}

// Remove 删除一个文档（测试 pivot 失效场景用）。
func (m *MemoryStore) Remove(collection, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if coll, ok := m.colls[collection]; ok {
		delete(coll, id)
	}
}

// PutEntity 写入/覆盖一个内容实体。
func (m *MemoryStore) PutEntity(e *core.ContentEntity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[e.ID] = e
}

// RemoveEntity 删除一个内容实体（制造悬空缓存行用）。
func (m *MemoryStore) RemoveEntity(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entities, id)
}

func (m *MemoryStore) Query(ctx context.Context, q core.Query) ([]core.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if q.OrderBy != "" && m.requireIndex {
		fields := make([]string, 0, len(q.Filters))
		for _, f := range q.Filters {
			fields = append(fields, f.Field)
		}
		if !m.indexes[indexSpecKey(q.Collection, fields, q.OrderBy)] {
			return nil, core.ErrStoreMissingIndex
		}
	}

	matched := make([]core.Document, 0)
	for _, doc := range m.colls[q.Collection] {
		if matchesFilters(doc, q.Filters) {
			matched = append(matched, doc)
		}
	}

	if q.OrderBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			c := compareValues(matched[i].Data[q.OrderBy], matched[j].Data[q.OrderBy])
			if c == 0 {
				// 排序字段相同的行按 ID 定序，保证分页稳定
				return matched[i].ID < matched[j].ID
			}
			if q.Desc {
				return c > 0
			}
			return c < 0
		})
	} else {
		// 无排序时按 ID 定序：这就是“存储自定义顺序”，但对分页保持确定性
		sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	}

	start := 0
	if q.StartAfter != "" {
		// pivot 还在就从它之后继续；已被删除则从头重新开始
		for i, doc := range matched {
			if doc.ID == q.StartAfter {
				start = i + 1
				break
			}
		}
	}
	if start >= len(matched) {
		return nil, nil
	}
	out := matched[start:]
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	result := make([]core.Document, len(out))
	copy(result, out)
	return result, nil
}

func (m *MemoryStore) FindByID(ctx context.Context, id string) (*core.ContentEntity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entities[id]
	if !ok {
		return nil, core.ErrEntityNotFound
	}
	return e, nil
}

func (m *MemoryStore) Close() error { return nil }

func indexSpecKey(collection string, filterFields []string, orderBy string) string {
	fields := make([]string, len(filterFields))
	copy(fields, filterFields)
	sort.Strings(fields)
	return collection + "|" + strings.Join(fields, ",") + "|" + orderBy
}

func matchesFilters(doc core.Document, filters []core.Filter) bool {
	for _, f := range filters {
		v, ok := doc.Data[f.Field]
		if !ok || compareValues(v, f.Value) != 0 {
			return false
		}
	}
	return true
}

// compareValues 对文档字段值做全序比较：数值 > 时间字符串 > 字符串字面量。
func compareValues(a, b any) int {
	if fa, ok := conv.ToFloat64(a); ok {
		if fb, ok := conv.ToFloat64(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	sa, aok := conv.ToString(a)
	sb, bok := conv.ToString(b)
	if aok && bok {
		ta, errA := time.Parse(time.RFC3339, sa)
		tb, errB := time.Parse(time.RFC3339, sb)
		if errA == nil && errB == nil {
			switch {
			case ta.Before(tb):
				return -1
			case ta.After(tb):
				return 1
			default:
				return 0
			}
		}
		return strings.Compare(sa, sb)
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
