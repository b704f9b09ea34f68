// Package metrics 提供 Prometheus helper，包含服务的业务与 HTTP 指标
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyfcoding/stocktrading/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal prometheus.Counter
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 行情查询计数
	QuoteLookupsTotal prometheus.Counter
	// 行情查询耗时
	QuoteLookupDuration prometheus.Histogram

	// 下单成功计数
	OrdersPlacedTotal prometheus.Counter
	// 下单失败计数
	OrdersFailedTotal prometheus.Counter

	// 队列消息消费计数
	MessagesConsumedTotal prometheus.Counter
	// 队列消息丢弃计数
	MessagesDroppedTotal prometheus.Counter

	// 通知发布失败计数
	NotifyFailuresTotal prometheus.Counter
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stocktrading",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stocktrading",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		QuoteLookupsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stocktrading",
			Subsystem: serviceName,
			Name:      "quote_lookups_total",
			Help:      "Total quote provider lookups",
		}),
		QuoteLookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stocktrading",
			Subsystem: serviceName,
			Name:      "quote_lookup_duration_seconds",
			Help:      "Quote provider lookup duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		OrdersPlacedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stocktrading",
			Subsystem: serviceName,
			Name:      "orders_placed_total",
			Help:      "Total buy orders persisted",
		}),
		OrdersFailedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stocktrading",
			Subsystem: serviceName,
			Name:      "orders_failed_total",
			Help:      "Total buy orders that failed before persistence",
		}),
		MessagesConsumedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stocktrading",
			Subsystem: serviceName,
			Name:      "messages_consumed_total",
			Help:      "Total queue messages consumed",
		}),
		MessagesDroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stocktrading",
			Subsystem: serviceName,
			Name:      "messages_dropped_total",
			Help:      "Total queue messages dropped as unprocessable",
		}),
		NotifyFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stocktrading",
			Subsystem: serviceName,
			Name:      "notify_failures_total",
			Help:      "Total order notifications that failed to publish",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.QuoteLookupsTotal,
		m.QuoteLookupDuration,
		m.OrdersPlacedTotal,
		m.OrdersFailedTotal,
		m.MessagesConsumedTotal,
		m.MessagesDroppedTotal,
		m.NotifyFailuresTotal,
	}

	for _, c := range collectors {
		if err := prometheus.DefaultRegisterer.Register(c); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// StartHTTPServer 启动 Prometheus HTTP 服务器
func StartHTTPServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error(context.Background(), "Prometheus HTTP server error", "error", err)
		}
	}()

	return nil
}
