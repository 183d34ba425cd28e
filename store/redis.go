package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pkg/conv"
)

// RedisStore 是 Redis 实现的 DocStore + EntityStore。
//
// 数据布局：
//   - 文档本体：doc:{coll}:{id} -> Data 的 JSON
//   - 集合成员：coll:{coll}    -> set(docID)
//   - 索引注册：idx:{coll}     -> set("f1,f2|orderBy")
//   - 索引本体：idx:{coll}:{spec}:{f1=v1,f2=v2} -> zset(docID, score(orderBy))
//
// 带排序的过滤查询依赖预建 zset 索引；索引规格未注册即返回
// ErrStoreMissingIndex（对应托管文档库的 FAILED_PRECONDITION），
// 上层据此降级为无排序扫描。
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) Query(ctx context.Context, q core.Query) ([]core.Document, error) {
	if q.OrderBy == "" {
		return r.queryUnordered(ctx, q)
	}
	return r.queryOrdered(ctx, q)
}

func (r *RedisStore) queryOrdered(ctx context.Context, q core.Query) ([]core.Document, error) {
	spec := redisIndexSpec(q.Filters, q.OrderBy)
	ok, err := r.client.SIsMember(ctx, registryKey(q.Collection), spec).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, core.ErrStoreMissingIndex
	}

	zkey := indexZSetKey(q.Collection, spec, q.Filters)
	start := int64(0)
	if q.StartAfter != "" {
		var rank int64
		var rankErr error
		if q.Desc {
			rank, rankErr = r.client.ZRevRank(ctx, zkey, q.StartAfter).Result()
		} else {
			rank, rankErr = r.client.ZRank(ctx, zkey, q.StartAfter).Result()
		}
		switch {
		case rankErr == redis.Nil:
			// pivot 已不在索引里：从头重新开始
			start = 0
		case rankErr != nil:
			return nil, rankErr
		default:
			start = rank + 1
		}
	}

	stop := int64(-1)
	if q.Limit > 0 {
		stop = start + int64(q.Limit) - 1
	}
	var ids []string
	if q.Desc {
		ids, err = r.client.ZRevRange(ctx, zkey, start, stop).Result()
	} else {
		ids, err = r.client.ZRange(ctx, zkey, start, stop).Result()
	}
	if err != nil {
		return nil, err
	}
	return r.fetchDocs(ctx, q.Collection, ids)
}

// queryUnordered 是降级路径：按集合成员扫描，只保留等值过滤，
// 顺序为成员 ID 字典序（“存储自定义顺序”，但对分页保持确定性）。
func (r *RedisStore) queryUnordered(ctx context.Context, q core.Query) ([]core.Document, error) {
	ids, err := r.client.SMembers(ctx, collectionKey(q.Collection)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)

	docs, err := r.fetchDocs(ctx, q.Collection, ids)
	if err != nil {
		return nil, err
	}

	matched := make([]core.Document, 0, len(docs))
	for _, doc := range docs {
		if matchesFilters(doc, q.Filters) {
			matched = append(matched, doc)
		}
	}

	start := 0
	if q.StartAfter != "" {
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
	matched = matched[start:]
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (r *RedisStore) fetchDocs(ctx context.Context, collection string, ids []string) ([]core.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(collection, id)
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	docs := make([]core.Document, 0, len(ids))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			// 文档在索引和本体之间被删除：跳过，不视为错误
			continue
		}
		var data map[string]any
		if json.Unmarshal([]byte(s), &data) != nil {
			continue
		}
		docs = append(docs, core.Document{ID: ids[i], Data: data})
	}
	return docs, nil
}

func (r *RedisStore) FindByID(ctx context.Context, id string) (*core.ContentEntity, error) {
	val, err := r.client.Get(ctx, entityKey(id)).Bytes()
	if err == redis.Nil {
		return nil, core.ErrEntityNotFound
	}
	if err != nil {
		return nil, err
	}
	var e core.ContentEntity
	if err := json.Unmarshal(val, &e); err != nil {
		return nil, core.NewDomainError(core.ModuleEntity, core.ErrorCodeInternalError, "entity: corrupt payload")
	}
	return &e, nil
}

// RegisterIndex 注册一个复合索引规格（填充任务在建库时调用）。
func (r *RedisStore) RegisterIndex(ctx context.Context, collection string, filterFields []string, orderBy string) error {
	fields := make([]core.Filter, 0, len(filterFields))
	for _, f := range filterFields {
		fields = append(fields, core.Filter{Field: f})
	}
	return r.client.SAdd(ctx, registryKey(collection), redisIndexSpec(fields, orderBy)).Err()
}

// Put 写入一个文档并维护所有已注册索引（填充任务和测试用；引擎只读）。
func (r *RedisStore) Put(ctx context.Context, collection string, doc core.Document) error {
	payload, err := json.Marshal(doc.Data)
	if err != nil {
		return err
	}
	pipe := r.client.Pipeline()
	pipe.Set(ctx, docKey(collection, doc.ID), payload, 0)
	pipe.SAdd(ctx, collectionKey(collection), doc.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	specs, err := r.client.SMembers(ctx, registryKey(collection)).Result()
	if err != nil {
		return err
	}
	for _, spec := range specs {
		fields, orderBy, ok := parseIndexSpec(spec)
		if !ok {
			continue
		}
		filters := make([]core.Filter, 0, len(fields))
		complete := true
		for _, f := range fields {
			v, ok := doc.Data[f]
			if !ok {
				complete = false
				break
			}
			filters = append(filters, core.Filter{Field: f, Value: v})
		}
		if !complete {
			continue
		}
		score, ok := scoreValue(doc.Data[orderBy])
		if !ok {
			continue
		}
		zkey := indexZSetKey(collection, spec, filters)
		if err := r.client.ZAdd(ctx, zkey, redis.Z{Score: score, Member: doc.ID}).Err(); err != nil {
			return err
		}
	}
	return nil
}

// PutEntity 写入一个内容实体。
func (r *RedisStore) PutEntity(ctx context.Context, e *core.ContentEntity) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, entityKey(e.ID), payload, 0).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func docKey(collection, id string) string    { return "doc:" + collection + ":" + id }
func collectionKey(collection string) string { return "coll:" + collection }
func registryKey(collection string) string   { return "idx:" + collection }
func entityKey(id string) string             { return "content:" + id }

// redisIndexSpec 生成索引规格："f1,f2|orderBy"，过滤字段按字典序。
func redisIndexSpec(filters []core.Filter, orderBy string) string {
	fields := make([]string, 0, len(filters))
	for _, f := range filters {
		fields = append(fields, f.Field)
	}
	sort.Strings(fields)
	return strings.Join(fields, ",") + "|" + orderBy
}

func parseIndexSpec(spec string) ([]string, string, bool) {
	parts := strings.SplitN(spec, "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, "", false
	}
	if parts[0] == "" {
		return nil, parts[1], true
	}
	return strings.Split(parts[0], ","), parts[1], true
}

// indexZSetKey 生成具体过滤值下的索引 zset key。
func indexZSetKey(collection, spec string, filters []core.Filter) string {
	pairs := make([]string, 0, len(filters))
	for _, f := range filters {
		pairs = append(pairs, f.Field+"="+fmt.Sprint(f.Value))
	}
	sort.Strings(pairs)
	vals := strings.Join(pairs, ",")
	if vals == "" {
		vals = "-"
	}
	return "idx:" + collection + ":" + spec + ":" + vals
}

// scoreValue 把排序字段值转成 zset 分数：数值直接用，RFC3339 时间转 Unix 秒。
func scoreValue(v any) (float64, bool) {
	if f, ok := conv.ToFloat64(v); ok {
		return f, true
	}
	if s, ok := conv.ToString(v); ok {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return float64(t.UnixNano()) / float64(time.Second), true
		}
	}
	return 0, false
}
