// Package logging 提供 core.Logger 的 zerolog 实现。
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// ZeroLogger 把引擎的 事件名 + 属性表 映射为 zerolog 的结构化输出。
type ZeroLogger struct {
	logger zerolog.Logger
}

// New 构造写到 w 的 ZeroLogger；w 为 nil 时写 stderr。
func New(w io.Writer) *ZeroLogger {
	if w == nil {
		w = os.Stderr
	}
	return &ZeroLogger{logger: zerolog.New(w).With().Timestamp().Logger()}
}

// NewWith 复用调用方已有的 zerolog.Logger（沿用其上下文字段）。
func NewWith(logger zerolog.Logger) *ZeroLogger {
	return &ZeroLogger{logger: logger}
}

func (l *ZeroLogger) Info(event string, attrs map[string]any) {
	l.logger.Info().Fields(attrs).Msg(event)
}

func (l *ZeroLogger) Warn(event string, attrs map[string]any) {
	l.logger.Warn().Fields(attrs).Msg(event)
}

func (l *ZeroLogger) Error(event string, attrs map[string]any) {
	l.logger.Error().Fields(attrs).Msg(event)
}
