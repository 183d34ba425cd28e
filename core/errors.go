package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 错误分两类：数据质量问题（脏行、坏游标、无法解析的水位）只记日志、
// 不产生 DomainError；真正的基础设施错误（存储不可用、缺索引）才走这里。
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "MISSING_INDEX"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "reader"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeMissingIndex  = "MISSING_INDEX"  // 存储缺少复合索引
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 服务不可用
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
)

// 模块名称常量
const (
	ModuleStore   = "store"   // 文档存储
	ModuleEntity  = "entity"  // 实体查找
	ModuleReader  = "reader"  // 缓存/兜底读取
	ModuleFeed    = "feed"    // 编排层
	ModuleSignals = "signals" // 个性化信号
)

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsMissingIndex 检查错误是否为 MISSING_INDEX。
// 这是唯一触发降级重试的错误类别（见兜底读取的降级策略）。
func IsMissingIndex(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeMissingIndex
	}
	return false
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeUnavailable
	}
	return false
}
