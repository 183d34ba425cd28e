package reader

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/store"
)

func seedContents(m *store.MemoryStore, n int) {
	for i := 1; i <= n; i++ {
		m.Put("contents", core.Document{
			ID: fmt.Sprintf("c%d", i),
			Data: map[string]any{
				FieldPublic:    true,
				FieldCreatedAt: cacheBase.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
				"like_count":   int64(i * 10),
			},
		})
	}
	m.Put("contents", core.Document{
		ID:   "private",
		Data: map[string]any{FieldPublic: false, FieldCreatedAt: cacheBase.Format(time.RFC3339)},
	})
}

func TestFallbackReader_OrderedQuery(t *testing.T) {
	m := store.NewMemoryStore()
	seedContents(m, 3)
	log := &captureLogger{}
	r := NewFallbackReader(m, log)

	page, err := r.Fetch(context.Background(), &core.FeedContext{}, Request{Limit: 10})
	if err != nil {
		t.Fatalf("Fetch(): %v", err)
	}
	if len(page.Items) != 3 {
		t.Fatalf("len(items) = %d, want 3 (private excluded)", len(page.Items))
	}
	// created_at 降序
	if page.Items[0].ID != "c3" {
		t.Errorf("items[0].ID = %s, want c3", page.Items[0].ID)
	}
	if page.Items[0].Source != core.SourceFallback {
		t.Errorf("Source = %s, want fallback", page.Items[0].Source)
	}
	if page.Items[0].Entity.LikeCount != 30 {
		t.Errorf("LikeCount = %d, want 30", page.Items[0].Entity.LikeCount)
	}
	if log.count("fallback_degraded_query") != 0 {
		t.Error("degraded query logged on healthy index")
	}
}

func TestFallbackReader_MissingIndexDegrades(t *testing.T) {
	m := store.NewMemoryStore()
	m.RequireIndexes()
	seedContents(m, 3)
	log := &captureLogger{}
	r := NewFallbackReader(m, log)

	page, err := r.Fetch(context.Background(), &core.FeedContext{}, Request{Limit: 10})
	if err != nil {
		t.Fatalf("Fetch(): %v", err)
	}
	// 降级后放弃排序但保留 public 过滤
	if len(page.Items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(page.Items))
	}
	for _, it := range page.Items {
		if it.ID == "private" {
			t.Error("degraded query leaked non-public content")
		}
	}
	if log.count("fallback_degraded_query") != 1 {
		t.Errorf("fallback_degraded_query logged %d times, want 1", log.count("fallback_degraded_query"))
	}
}

func TestFallbackReader_RegisteredIndexKeepsOrder(t *testing.T) {
	m := store.NewMemoryStore()
	m.RequireIndexes()
	m.RegisterIndex("contents", []string{FieldPublic}, FieldCreatedAt)
	seedContents(m, 3)
	log := &captureLogger{}
	r := NewFallbackReader(m, log)

	page, err := r.Fetch(context.Background(), &core.FeedContext{}, Request{Limit: 10})
	if err != nil {
		t.Fatalf("Fetch(): %v", err)
	}
	if page.Items[0].ID != "c3" {
		t.Errorf("items[0].ID = %s, want c3", page.Items[0].ID)
	}
	if log.count("fallback_degraded_query") != 0 {
		t.Error("degraded query logged despite registered index")
	}
}

// failingStore 总是返回同一个错误，用于验证非缺索引错误原样上抛。
type failingStore struct {
	err error
}

func (s *failingStore) Name() string { return "failing" }
func (s *failingStore) Close() error { return nil }

func (s *failingStore) Query(context.Context, core.Query) ([]core.Document, error) {
	return nil, s.err
}

func TestFallbackReader_OtherErrorsPropagate(t *testing.T) {
	unavailable := core.NewDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "store: connection refused")
	r := NewFallbackReader(&failingStore{err: unavailable}, nil)

	_, err := r.Fetch(context.Background(), &core.FeedContext{}, Request{Limit: 10})
	if !core.IsUnavailable(err) {
		t.Fatalf("Fetch() error = %v, want unavailable passthrough", err)
	}
}

func TestFallbackReader_EmptyCollection(t *testing.T) {
	m := store.NewMemoryStore()
	r := NewFallbackReader(m, nil)

	page, err := r.Fetch(context.Background(), &core.FeedContext{}, Request{Limit: 10})
	if err != nil {
		t.Fatalf("Fetch(): %v", err)
	}
	if len(page.Items) != 0 || page.LastDocID != "" {
		t.Errorf("page = %+v, want empty", page)
	}
}
