// Prometheus instrumentation for rxcore schedulers
// 调度器的Prometheus指标装饰器：包装任意Scheduler并统计调度/完成/失败与执行耗时
package rxcore

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ============================================================================
// 指标配置
// ============================================================================

// SchedulerMetricsConfig 调度器指标配置
type SchedulerMetricsConfig struct {
	// Registry 指标注册器，nil时使用prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// Namespace 指标命名空间，默认"rxcore"
	Namespace string

	// Name 调度器名称，作为scheduler标签附加到所有指标上
	Name string
}

// ============================================================================
// MonitoredScheduler 带指标的调度器
// ============================================================================

// MonitoredScheduler 包装内部调度器并记录Prometheus指标
// 动作执行时传入的调度器是装饰器自身，动作内的递归调度同样被计量
type MonitoredScheduler struct {
	inner Scheduler

	scheduled prometheus.Counter
	completed prometheus.Counter
	failed    prometheus.Counter
	pending   prometheus.Gauge
	duration  prometheus.Histogram
}

// NewMonitoredScheduler 创建带指标的调度器
func NewMonitoredScheduler(inner Scheduler, config SchedulerMetricsConfig) (*MonitoredScheduler, error) {
	registry := config.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	namespace := config.Namespace
	if namespace == "" {
		namespace = "rxcore"
	}
	labels := prometheus.Labels{"scheduler": config.Name}

	m := &MonitoredScheduler{
		inner: inner,
		scheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "scheduler",
			Name:        "tasks_scheduled_total",
			Help:        "Total number of actions handed to the scheduler.",
			ConstLabels: labels,
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "scheduler",
			Name:        "tasks_completed_total",
			Help:        "Total number of actions that ran to completion.",
			ConstLabels: labels,
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "scheduler",
			Name:        "tasks_failed_total",
			Help:        "Total number of actions that panicked.",
			ConstLabels: labels,
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "scheduler",
			Name:        "tasks_pending",
			Help:        "Number of scheduled actions not yet started.",
			ConstLabels: labels,
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "scheduler",
			Name:        "task_duration_seconds",
			Help:        "Action execution duration in seconds.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}),
	}

	collectors := []prometheus.Collector{m.scheduled, m.completed, m.failed, m.pending, m.duration}
	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Schedule 调度动作并记录指标
func (m *MonitoredScheduler) Schedule(state interface{}, action ScheduledAction) Disposable {
	m.scheduled.Inc()
	m.pending.Inc()
	return m.inner.Schedule(state, m.instrument(action))
}

// ScheduleAt 延迟调度动作并记录指标
func (m *MonitoredScheduler) ScheduleAt(state interface{}, action ScheduledAction, delay time.Duration) Disposable {
	m.scheduled.Inc()
	m.pending.Inc()
	return m.inner.ScheduleAt(state, m.instrument(action), delay)
}

// instrument 包装动作：计量耗时，panic计为失败后继续向外抛出
func (m *MonitoredScheduler) instrument(action ScheduledAction) ScheduledAction {
	return func(_ Scheduler, state interface{}) Disposable {
		m.pending.Dec()
		start := time.Now()
		defer func() {
			m.duration.Observe(time.Since(start).Seconds())
			if r := recover(); r != nil {
				m.failed.Inc()
				panic(r)
			}
			m.completed.Inc()
		}()
		return action(m, state)
	}
}
