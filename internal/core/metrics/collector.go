package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-socketsys/pkg/interfaces/socket"
	"github.com/dep2p/go-socketsys/pkg/lib/log"
)

var logger = log.Logger("core/metrics")

// DefaultNamespace 默认指标名前缀
const DefaultNamespace = "socketsys"

// Collector Prometheus 指标收集器
//
// nil *Collector 是合法的 Reporter，不记录任何内容。
type Collector struct {
	listens         *prometheus.CounterVec
	openListeners   *prometheus.GaugeVec
	connects        *prometheus.CounterVec
	connectDuration *prometheus.HistogramVec
	refreshes       *prometheus.CounterVec
	localAddresses  prometheus.Gauge
}

var _ Reporter = (*Collector)(nil)

// NewCollector 创建收集器并注册到 reg
//
// reg 为 nil 时使用 prometheus.DefaultRegisterer。已注册的同名指标会被复用，
// 因此同一进程内可以多次创建。
func NewCollector(namespace string, reg prometheus.Registerer) (*Collector, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		listens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listen_total",
			Help:      "Server socket open attempts by backend and result.",
		}, []string{"backend", "result"}),
		openListeners: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "listeners_open",
			Help:      "Server sockets currently open.",
		}, []string{"backend"}),
		connects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_total",
			Help:      "Outbound connect attempts by backend, TLS and result.",
		}, []string{"backend", "tls", "result"}),
		connectDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "connect_duration_seconds",
			Help:      "Outbound connect latency.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"backend"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "address_refresh_total",
			Help:      "Local address enumerations by result.",
		}, []string{"result"}),
		localAddresses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "local_addresses",
			Help:      "Number of cached local addresses.",
		}),
	}

	var err error
	if c.listens, err = register(reg, c.listens); err != nil {
		return nil, err
	}
	if c.openListeners, err = register(reg, c.openListeners); err != nil {
		return nil, err
	}
	if c.connects, err = register(reg, c.connects); err != nil {
		return nil, err
	}
	if c.connectDuration, err = register(reg, c.connectDuration); err != nil {
		return nil, err
	}
	if c.refreshes, err = register(reg, c.refreshes); err != nil {
		return nil, err
	}
	if c.localAddresses, err = register(reg, c.localAddresses); err != nil {
		return nil, err
	}

	logger.Debug("指标收集器已注册", "namespace", namespace)
	return c, nil
}

// register 注册指标，已存在时返回已注册的实例
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// LogListen 记录监听操作
func (c *Collector) LogListen(kind socket.Kind, err error) {
	if c == nil {
		return
	}
	c.listens.WithLabelValues(kind.String(), ResultOf(err)).Inc()
	if err == nil {
		c.openListeners.WithLabelValues(kind.String()).Inc()
	}
}

// LogListenClosed 记录监听关闭
func (c *Collector) LogListenClosed(kind socket.Kind) {
	if c == nil {
		return
	}
	c.openListeners.WithLabelValues(kind.String()).Dec()
}

// LogConnect 记录连接操作
func (c *Collector) LogConnect(kind socket.Kind, tls bool, elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	c.connects.WithLabelValues(kind.String(), strconv.FormatBool(tls), ResultOf(err)).Inc()
	if err == nil {
		c.connectDuration.WithLabelValues(kind.String()).Observe(elapsed.Seconds())
	}
}

// LogAddressRefresh 记录地址枚举
func (c *Collector) LogAddressRefresh(count int, err error) {
	if c == nil {
		return
	}
	c.refreshes.WithLabelValues(ResultOf(err)).Inc()
	c.localAddresses.Set(float64(count))
}
