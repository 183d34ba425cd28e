package store

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/feedkit/core"
)

func seedDocs(m *MemoryStore, collection string, n int) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		m.Put(collection, core.Document{
			ID: []string{"d1", "d2", "d3", "d4", "d5"}[i],
			Data: map[string]any{
				"region":     "us",
				"updated_at": base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
			},
		})
	}
}

func TestMemoryStore_OrderedQuery(t *testing.T) {
	m := NewMemoryStore()
	seedDocs(m, "feed_cache", 5)

	docs, err := m.Query(context.Background(), core.Query{
		Collection: "feed_cache",
		OrderBy:    "updated_at",
		Desc:       true,
		Limit:      3,
	})
	if err != nil {
		t.Fatalf("Query(): %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("len(docs) = %d, want 3", len(docs))
	}
	// 最新的排最前
	want := []string{"d5", "d4", "d3"}
	for i, doc := range docs {
		if doc.ID != want[i] {
			t.Errorf("docs[%d].ID = %s, want %s", i, doc.ID, want[i])
		}
	}
}

func TestMemoryStore_StartAfter(t *testing.T) {
	m := NewMemoryStore()
	seedDocs(m, "feed_cache", 5)

	q := core.Query{
		Collection: "feed_cache",
		OrderBy:    "updated_at",
		Desc:       true,
		Limit:      2,
		StartAfter: "d4",
	}
	docs, err := m.Query(context.Background(), q)
	if err != nil {
		t.Fatalf("Query(): %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "d3" || docs[1].ID != "d2" {
		t.Fatalf("continuation mismatch: %+v", docIDs(docs))
	}

	// pivot 被删除：从头重新开始，不报错
	m.Remove("feed_cache", "d4")
	docs, err = m.Query(context.Background(), q)
	if err != nil {
		t.Fatalf("Query() after pivot removal: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "d5" {
		t.Fatalf("restart mismatch: %+v", docIDs(docs))
	}
}

func TestMemoryStore_MissingIndex(t *testing.T) {
	m := NewMemoryStore()
	m.RequireIndexes()
	seedDocs(m, "feed_cache", 3)

	q := core.Query{
		Collection: "feed_cache",
		Filters:    []core.Filter{{Field: "region", Value: "us"}},
		OrderBy:    "updated_at",
		Desc:       true,
	}

	_, err := m.Query(context.Background(), q)
	if !core.IsStoreMissingIndex(err) {
		t.Fatalf("Query() error = %v, want missing index", err)
	}

	// 无排序的查询不需要索引
	qNoOrder := q
	qNoOrder.OrderBy = ""
	if _, err := m.Query(context.Background(), qNoOrder); err != nil {
		t.Fatalf("unordered Query(): %v", err)
	}

	m.RegisterIndex("feed_cache", []string{"region"}, "updated_at")
	docs, err := m.Query(context.Background(), q)
	if err != nil {
		t.Fatalf("Query() after RegisterIndex: %v", err)
	}
	if len(docs) != 3 {
		t.Errorf("len(docs) = %d, want 3", len(docs))
	}
}

func TestMemoryStore_EqualityFilters(t *testing.T) {
	m := NewMemoryStore()
	m.Put("feed_cache", core.Document{ID: "a", Data: map[string]any{"region": "us", "locale": "en"}})
	m.Put("feed_cache", core.Document{ID: "b", Data: map[string]any{"region": "jp", "locale": "ja"}})
	m.Put("feed_cache", core.Document{ID: "c", Data: map[string]any{"region": "us", "locale": "es"}})

	docs, err := m.Query(context.Background(), core.Query{
		Collection: "feed_cache",
		Filters: []core.Filter{
			{Field: "region", Value: "us"},
			{Field: "locale", Value: "en"},
		},
	})
	if err != nil {
		t.Fatalf("Query(): %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "a" {
		t.Errorf("filtered docs = %+v, want [a]", docIDs(docs))
	}
}

func TestMemoryStore_FindByID(t *testing.T) {
	m := NewMemoryStore()
	m.PutEntity(&core.ContentEntity{ID: "c1", LikeCount: 3})

	e, err := m.FindByID(context.Background(), "c1")
	if err != nil {
		t.Fatalf("FindByID(): %v", err)
	}
	if e.LikeCount != 3 {
		t.Errorf("LikeCount = %d, want 3", e.LikeCount)
	}

	_, err = m.FindByID(context.Background(), "missing")
	if !core.IsNotFound(err) {
		t.Errorf("FindByID(missing) error = %v, want not found", err)
	}
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	m := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.Query(ctx, core.Query{Collection: "feed_cache"}); err == nil {
		t.Error("Query() with canceled context, want error")
	}
	if _, err := m.FindByID(ctx, "c1"); err == nil {
		t.Error("FindByID() with canceled context, want error")
	}
}

func docIDs(docs []core.Document) []string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids
}
