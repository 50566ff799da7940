// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// Init 配置全局 zerolog，并附加服务名字段
func Init(serviceName string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zlog.Logger = zerolog.New(os.Stderr).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Ctx 返回与请求上下文绑定的 logger。
// 优先取 context 中由中间件注入的 logger；否则在有活跃 Span 时
// 附加 trace_id，保证日志可以和链路关联起来。
func Ctx(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		l := zlog.With().Str("trace_id", sc.TraceID().String()).Logger()
		return &l
	}
	return &zlog.Logger
}

// WithTraceContext 把带 trace_id 的 logger 存入 context，供下游 handler 使用
func WithTraceContext(ctx context.Context) context.Context {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ctx
	}
	l := zlog.With().Str("trace_id", sc.TraceID().String()).Logger()
	return l.WithContext(ctx)
}
