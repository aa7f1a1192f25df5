// Scheduler implementations for rxcore
// 调度器实现：立即调度器、蹦床调度器、默认定时调度器以及虚拟时钟测试调度器
package rxcore

import (
	"sync"
	"time"
)

// ============================================================================
// 调度器配置选项
// ============================================================================

// schedulerConfig 调度器配置
type schedulerConfig struct {
	comparer Comparer
}

// SchedulerOption 调度器配置选项
type SchedulerOption func(config *schedulerConfig)

// WithComparer 指定到期时间比较器
func WithComparer(comparer Comparer) SchedulerOption {
	return func(config *schedulerConfig) {
		config.comparer = comparer
	}
}

func newSchedulerConfig(options []SchedulerOption) *schedulerConfig {
	config := &schedulerConfig{comparer: DefaultComparer}
	for _, opt := range options {
		opt(config)
	}
	return config
}

// ============================================================================
// 立即调度器 - Immediate Scheduler
// ============================================================================

// immediateScheduler 在当前goroutine中立即执行动作
type immediateScheduler struct{}

// NewImmediateScheduler 创建立即调度器
func NewImmediateScheduler() Scheduler {
	return &immediateScheduler{}
}

// Schedule 立即执行动作
func (s *immediateScheduler) Schedule(state interface{}, action ScheduledAction) Disposable {
	d := action(s, state)
	if d == nil {
		return Disposed
	}
	return d
}

// ScheduleAt 延迟执行动作
// 单次赋值槽位保证：定时器触发前取消的话动作不再执行，
// 动作执行后取消的话动作产生的资源被释放
func (s *immediateScheduler) ScheduleAt(state interface{}, action ScheduledAction, delay time.Duration) Disposable {
	if delay <= 0 {
		return s.Schedule(state, action)
	}

	sad := NewSingleAssignmentDisposable()
	timer := time.AfterFunc(delay, func() {
		if sad.IsDisposed() {
			return
		}
		d := action(s, state)
		if d == nil {
			d = Disposed
		}
		sad.SetDisposable(d)
	})

	return NewDisposable(func() {
		timer.Stop()
		sad.Dispose()
	})
}

// ============================================================================
// 蹦床调度器 - Trampoline Scheduler
// ============================================================================

// trampolineScheduler 把递归调度的动作放入有序队列逐个执行
// 第一个进入的调用者负责排空队列，动作中再次调度只是入队而不再嵌套执行，
// 调用栈因此不随递归深度增长
type trampolineScheduler struct {
	mu       sync.Mutex
	queue    *scheduledQueue
	draining bool
	comparer Comparer
}

// NewTrampolineScheduler 创建蹦床调度器
func NewTrampolineScheduler(options ...SchedulerOption) Scheduler {
	config := newSchedulerConfig(options)
	return &trampolineScheduler{
		queue:    newScheduledQueue(),
		comparer: config.comparer,
	}
}

// Schedule 调度动作
func (s *trampolineScheduler) Schedule(state interface{}, action ScheduledAction) Disposable {
	return s.ScheduleAt(state, action, 0)
}

// ScheduleAt 延迟调度动作
func (s *trampolineScheduler) ScheduleAt(state interface{}, action ScheduledAction, delay time.Duration) Disposable {
	if delay < 0 {
		delay = 0
	}
	item := NewScheduledItem(s, state, action, time.Now().Add(delay), s.comparer)

	s.mu.Lock()
	s.queue.Enqueue(item)
	if s.draining {
		s.mu.Unlock()
		return item.Disposable()
	}
	s.draining = true
	s.mu.Unlock()

	s.drain()
	return item.Disposable()
}

// drain 排空队列
// 弹出已取消的墓碑项是正常情况，直接跳过
func (s *trampolineScheduler) drain() {
	for {
		s.mu.Lock()
		item, ok := s.queue.Dequeue()
		if !ok {
			s.draining = false
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		if item.IsCancelled() {
			continue
		}
		if wait := time.Until(item.DueTime().(time.Time)); wait > 0 {
			time.Sleep(wait)
		}
		item.Invoke()
	}
}

// ============================================================================
// 默认调度器 - 定时器支撑的并发调度器
// ============================================================================

// timerScheduler 每个动作在独立goroutine中执行
type timerScheduler struct{}

// NewTimerScheduler 创建定时调度器
func NewTimerScheduler() Scheduler {
	return &timerScheduler{}
}

// Schedule 在新goroutine中执行动作
func (s *timerScheduler) Schedule(state interface{}, action ScheduledAction) Disposable {
	item := NewScheduledItem(s, state, action, time.Now(), nil)
	go item.Invoke()
	return item.Disposable()
}

// ScheduleAt 延迟后在新goroutine中执行动作
func (s *timerScheduler) ScheduleAt(state interface{}, action ScheduledAction, delay time.Duration) Disposable {
	if delay < 0 {
		delay = 0
	}
	item := NewScheduledItem(s, state, action, time.Now().Add(delay), nil)
	timer := time.AfterFunc(delay, item.Invoke)

	return NewDisposable(func() {
		timer.Stop()
		item.Cancel()
	})
}

// ============================================================================
// 测试调度器 - 虚拟时钟
// ============================================================================

// TestScheduler 可手动推进时间的调度器，到期时间是纳秒虚拟时钟
type TestScheduler struct {
	mu       sync.Mutex
	clock    int64
	queue    *scheduledQueue
	comparer Comparer
}

// NewTestScheduler 创建测试调度器
func NewTestScheduler(options ...SchedulerOption) *TestScheduler {
	config := newSchedulerConfig(options)
	return &TestScheduler{
		queue:    newScheduledQueue(),
		comparer: config.comparer,
	}
}

// Schedule 在当前虚拟时刻调度动作
func (s *TestScheduler) Schedule(state interface{}, action ScheduledAction) Disposable {
	return s.ScheduleAt(state, action, 0)
}

// ScheduleAt 在虚拟时钟上延迟调度动作
func (s *TestScheduler) ScheduleAt(state interface{}, action ScheduledAction, delay time.Duration) Disposable {
	s.mu.Lock()
	due := s.clock + delay.Nanoseconds()
	item := NewScheduledItem(s, state, action, due, s.comparer)
	s.queue.Enqueue(item)
	s.mu.Unlock()
	return item.Disposable()
}

// Now 当前虚拟时钟
func (s *TestScheduler) Now() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock
}

// AdvanceBy 推进虚拟时钟指定时长，按到期顺序执行期间所有到期动作
func (s *TestScheduler) AdvanceBy(duration time.Duration) {
	s.mu.Lock()
	target := s.clock + duration.Nanoseconds()
	s.mu.Unlock()
	s.AdvanceTo(target)
}

// AdvanceTo 推进虚拟时钟到指定时刻
// 已取消的项弹出后被跳过；动作执行期间不持锁，动作可以继续调度新项
func (s *TestScheduler) AdvanceTo(target int64) {
	for {
		s.mu.Lock()
		item, ok := s.queue.Peek()
		if !ok || s.comparer(item.DueTime(), target) > 0 {
			s.clock = target
			s.mu.Unlock()
			return
		}
		s.queue.Dequeue()
		if item.IsCancelled() {
			s.mu.Unlock()
			continue
		}
		if due := item.DueTime().(int64); due > s.clock {
			s.clock = due
		}
		s.mu.Unlock()

		item.Invoke()
	}
}

// PendingCount 队列中尚未弹出的项数，包含已取消的墓碑项
func (s *TestScheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// ============================================================================
// 默认调度器实例
// ============================================================================

var (
	// ImmediateScheduler 立即调度器实例
	ImmediateScheduler Scheduler = NewImmediateScheduler()

	// TrampolineScheduler 蹦床调度器实例
	TrampolineScheduler Scheduler = NewTrampolineScheduler()

	// DefaultScheduler 默认调度器实例
	DefaultScheduler Scheduler = NewTimerScheduler()
)
