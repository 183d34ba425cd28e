package core

import "context"

// EntityStore 是内容实体查找的领域接口（findById）。
// 缓存行只存引用；逐行解引用由 reader 通过它完成。
type EntityStore interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// FindByID 按 id 查找内容实体；不存在时返回 ErrEntityNotFound
	FindByID(ctx context.Context, id string) (*ContentEntity, error)
}

// ErrEntityNotFound 表示 content_id 指向的实体已不存在（缓存行悬空）。
// 对引擎而言这是“脏行”，调用方应丢弃该行而不是上抛。
var ErrEntityNotFound = NewDomainError(ModuleEntity, ErrorCodeNotFound, "entity: content not found")
