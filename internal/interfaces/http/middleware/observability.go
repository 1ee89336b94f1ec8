package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// HTTPMetrics is the subset of monitoring.Metrics the HTTP layer records into.
// HTTPMetrics 是 HTTP 层使用的监控指标子集，由 monitoring.Metrics 实现。
type HTTPMetrics interface {
	ActiveRequestsInc(path, method string)
	ActiveRequestsDec(path, method string)
	ObserveRequestDuration(path, method string, status int, seconds float64)
	IncRequestErrors(path, method string, status int)
}

// ObservabilityMiddleware returns a Gin middleware that integrates Prometheus metrics and OpenTelemetry tracing.
// For each HTTP request, it continues any incoming trace context, starts a server span and records
// request totals, duration, in-flight count and errors labeled by route template, method and status.
// ObservabilityMiddleware 返回一个集成了 Prometheus 指标和 OpenTelemetry 跟踪的 Gin 中间件。
// 对于每个 HTTP 请求，它会延续上游的跟踪上下文并启动服务端 Span，
// 同时按路由模板、方法和状态码记录请求总数、耗时、并发数和错误数。
func ObservabilityMiddleware(tracer trace.Tracer, metrics HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		// Use c.FullPath() to get the route template (e.g., "/risk-stats/:college_id") for low-cardinality labels.
		path := c.FullPath()
		if path == "" {
			path = "not_found"
		}

		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, method+" "+path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		if metrics != nil {
			metrics.ActiveRequestsInc(path, method)
			defer metrics.ActiveRequestsDec(path, method)
		}

		c.Next()

		status := c.Writer.Status()
		if metrics != nil {
			metrics.ObserveRequestDuration(path, method, status, time.Since(start).Seconds())
			if status >= 400 {
				metrics.IncRequestErrors(path, method, status)
			}
		}

		span.SetAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", path),
			attribute.Int("http.status_code", status),
			attribute.String("http.client_ip", c.ClientIP()),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, c.Errors.String())
		}
	}
}
