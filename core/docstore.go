package core

import "context"

// Document 是文档存储返回的一条无类型记录。
// 类型化解码（decode-or-reject）发生在 reader 边界，不在存储驱动里。
type Document struct {
	ID   string
	Data map[string]any
}

// Filter 是等值过滤条件。
type Filter struct {
	Field string
	Value any
}

// Query 描述一次文档查询：等值过滤 + 单字段排序 + 限量 + “从某行之后继续”。
// StartAfter 指向上一页最后一行的文档 ID（不含该行本身）；
// 若该行已被删除，分页从头重新开始而不是报错。
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Desc       bool
	Limit      int
	StartAfter string
}

// DocStore 是文档存储的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//
// 实现约定：
//   - 带排序的过滤查询若缺少对应的复合索引，必须返回可识别的
//     ErrStoreMissingIndex（而不是笼统的内部错误），上层据此降级。
//   - OrderBy 为空表示接受存储自身的返回顺序（降级路径）。
type DocStore interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// Query 执行一次文档查询
	Query(ctx context.Context, q Query) ([]Document, error)

	// Close 关闭连接/释放资源
	Close() error
}

// DocStore 错误定义（使用统一的 DomainError）
var (
	// ErrStoreNotFound 表示文档不存在
	ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: document not found")

	// ErrStoreMissingIndex 表示查询所需的复合索引不存在
	ErrStoreMissingIndex = NewDomainError(ModuleStore, ErrorCodeMissingIndex, "store: missing composite index")
)

// IsStoreNotFound 检查错误是否为文档不存在
func IsStoreNotFound(err error) bool {
	domainErr := GetDomainError(err)
	return domainErr != nil && domainErr.Module == ModuleStore && domainErr.Code == ErrorCodeNotFound
}

// IsStoreMissingIndex 检查错误是否为缺少复合索引
func IsStoreMissingIndex(err error) bool {
	domainErr := GetDomainError(err)
	return domainErr != nil && domainErr.Module == ModuleStore && domainErr.Code == ErrorCodeMissingIndex
}
