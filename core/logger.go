package core

// Logger 是结构化日志的消费接口：事件名 + 属性表。
// 引擎只依赖这三个级别；具体后端（zerolog / slog / 测试桩）由调用方注入。
type Logger interface {
	Info(event string, attrs map[string]any)
	Warn(event string, attrs map[string]any)
	Error(event string, attrs map[string]any)
}

// NopLogger 丢弃所有日志，用于测试或未注入日志器的场景。
type NopLogger struct{}

func (NopLogger) Info(string, map[string]any)  {}
func (NopLogger) Warn(string, map[string]any)  {}
func (NopLogger) Error(string, map[string]any) {}
