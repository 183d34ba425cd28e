package store

// 注意：此包只包含实现，接口定义在 core 包。
// 使用 core.DocStore 和 core.EntityStore 接口。
//
// 示例：
//   var docs core.DocStore = NewMemoryStore()
//   var entities core.EntityStore = NewMemoryStore()
//
// 写入方法（Put/PutEntity/RegisterIndex）是给外部填充任务和测试用的；
// 引擎自身对这两类数据只读。
