package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector 指标收集器
type MetricsCollector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 积分业务指标
	pointsAwardedTotal  *prometheus.CounterVec
	pointsRedeemedTotal prometheus.Counter
	checkInsTotal       prometheus.Counter
	redemptionsTotal    *prometheus.CounterVec
}

var (
	globalCollector *MetricsCollector
	once            sync.Once
)

// GetGlobalCollector 获取全局指标收集器（懒加载单例）
func GetGlobalCollector() *MetricsCollector {
	once.Do(func() {
		globalCollector = newMetricsCollector()
	})
	return globalCollector
}

func newMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		pointsAwardedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rewards_points_awarded_total",
				Help: "Total reward points credited, labelled by action",
			},
			[]string{"action"},
		),

		pointsRedeemedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rewards_points_redeemed_total",
				Help: "Total reward points spent on redemptions",
			},
		),

		checkInsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rewards_checkins_total",
				Help: "Total successful daily check-ins",
			},
		),

		redemptionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rewards_redemptions_total",
				Help: "Total catalog redemptions, labelled by reward type",
			},
			[]string{"reward_type"},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint, status string, durationSeconds float64) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordPointsAwarded 记录积分发放
func (m *MetricsCollector) RecordPointsAwarded(action string, points int) {
	m.pointsAwardedTotal.WithLabelValues(action).Add(float64(points))
}

// RecordRedemption 记录一次兑换
func (m *MetricsCollector) RecordRedemption(rewardType string, pointsCost int) {
	m.redemptionsTotal.WithLabelValues(rewardType).Inc()
	m.pointsRedeemedTotal.Add(float64(pointsCost))
}

// RecordCheckIn 记录一次签到
func (m *MetricsCollector) RecordCheckIn() {
	m.checkInsTotal.Inc()
}
