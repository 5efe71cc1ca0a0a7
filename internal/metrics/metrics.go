// Package metrics собирает метрики магазина в формате Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/shop-pos/internal/model"
)

const namespace = "shop"

// Collector хранит счётчики команд, продаж и HTTP-запросов в собственном реестре.
type Collector struct {
	registry *prometheus.Registry

	commands  *prometheus.CounterVec
	sales     *prometheus.CounterVec
	revenue   *prometheus.CounterVec
	oversells prometheus.Counter
	requests  *prometheus.HistogramVec
}

// New создаёт Collector и регистрирует в нём метрики процесса и Go runtime.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands handled by the shop engine by kind and outcome.",
		}, []string{"kind", "outcome"}),
		sales: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_total",
			Help:      "Recorded sales by payment method.",
		}, []string{"method"}),
		revenue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revenue_total",
			Help:      "Recorded sale amounts by payment method.",
		}, []string{"method"}),
		oversells: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oversells_total",
			Help:      "Sales that exceeded the available stock.",
		}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.commands,
		c.sales,
		c.revenue,
		c.oversells,
		c.requests,
	)
	return c
}

// Command учитывает выполненную команду.
func (c *Collector) Command(kind, outcome string) {
	c.commands.WithLabelValues(kind, outcome).Inc()
}

// Sale учитывает продажу и её сумму.
func (c *Collector) Sale(method model.PaymentMethod, amount decimal.Decimal) {
	c.sales.WithLabelValues(string(method)).Inc()
	f, _ := amount.Float64()
	c.revenue.WithLabelValues(string(method)).Add(f)
}

// Oversell учитывает продажу сверх остатка.
func (c *Collector) Oversell() {
	c.oversells.Inc()
}

// ObserveRequest учитывает HTTP-запрос.
func (c *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler отдаёт метрики в текстовом формате Prometheus.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
