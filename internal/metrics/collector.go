// internal/metrics/collector.go
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goldium-io/gold-core/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gold_core"

// Collector управляет набором метрик на собственном реестре,
// поэтому несколько экземпляров (тесты) не конфликтуют.
type Collector struct {
	registry *prometheus.Registry

	rpcLatency       *prometheus.HistogramVec
	rpcErrors        *prometheus.CounterVec
	transferCounter  *prometheus.CounterVec
	transferDuration *prometheus.HistogramVec
	operations       *prometheus.CounterVec
	balanceDelta     *prometheus.CounterVec
	bridgesSettled   *prometheus.CounterVec
}

// NewCollector создает новый экземпляр коллектора метрик
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		rpcLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rpc_latency_seconds",
				Help:      "RPC request latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
			},
			[]string{"method", "endpoint"},
		),
		rpcErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rpc_errors_total",
				Help:      "Failed RPC requests",
			},
			[]string{"method", "endpoint", "reason"},
		),
		transferCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transfers_total",
				Help:      "Submitted on-chain transactions by kind and status",
			},
			[]string{"status", "kind"},
		),
		transferDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transfer_duration_seconds",
				Help:      "Time from build to confirmation",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"kind"},
		),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_operations_total",
				Help:      "Simulated ledger operations by name and outcome",
			},
			[]string{"operation", "outcome"},
		),
		balanceDelta: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_balance_changes_total",
				Help:      "Balance field mutations by field and direction",
			},
			[]string{"field", "direction"},
		),
		bridgesSettled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bridges_settled_total",
				Help:      "Bridge records moved out of pending",
			},
			[]string{"status"},
		),
	}

	c.registry.MustRegister(
		c.rpcLatency,
		c.rpcErrors,
		c.transferCounter,
		c.transferDuration,
		c.operations,
		c.balanceDelta,
		c.bridgesSettled,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry отдаёт реестр (тесты, дополнительные коллекторы).
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler: обработчик /metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveRPC реализует solbc.Observer.
func (c *Collector) ObserveRPC(method, endpoint string, d time.Duration, err error) {
	c.rpcLatency.WithLabelValues(method, endpoint).Observe(d.Seconds())
	if err != nil {
		c.rpcErrors.WithLabelValues(method, endpoint, errorReason(err)).Inc()
	}
}

// RecordTransfer реализует transfer.Recorder.
func (c *Collector) RecordTransfer(kind string, d time.Duration, err error) {
	status := "success"
	switch {
	case errors.Is(err, context.Canceled):
		status = "cancelled"
	case err != nil:
		status = "failure"
	}
	c.transferCounter.WithLabelValues(status, kind).Inc()
	c.transferDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordOperation учитывает операцию леджера.
func (c *Collector) RecordOperation(operation, outcome string) {
	c.operations.WithLabelValues(operation, outcome).Inc()
}

// HandleEvent подписывается на шину событий леджера.
func (c *Collector) HandleEvent(_ context.Context, e events.Event) error {
	switch ev := e.(type) {
	case events.OperationCompletedEvent:
		c.RecordOperation(ev.Operation, "completed")
	case events.OperationFailedEvent:
		c.RecordOperation(ev.Operation, ev.Kind)
	case events.BalanceChangedEvent:
		direction := "up"
		if ev.Delta() < 0 {
			direction = "down"
		}
		c.balanceDelta.WithLabelValues(ev.Field, direction).Inc()
	case events.BridgeSettledEvent:
		c.bridgesSettled.WithLabelValues(ev.Status).Inc()
	}
	return nil
}

// Subscribe подключает коллектор ко всем типам событий шины.
func (c *Collector) Subscribe(bus *events.Bus) []events.Subscription {
	types := events.AllTypes()
	subs := make([]events.Subscription, 0, len(types))
	for _, t := range types {
		subs = append(subs, bus.SubscribeFunc(t, c.HandleEvent))
	}
	return subs
}
