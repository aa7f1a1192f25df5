// Package rxcore provides the subscription and cancellation core for reactive push streams
// 响应式推送流的订阅/取消核心：Observable/Observer推送契约、基于Disposable的生命周期管理、
// 以及调度执行原语ScheduledItem
package rxcore

import (
	"errors"
	"fmt"
	"time"
)

// ============================================================================
// 核心函数类型定义
// ============================================================================

// OnNext 处理下一个值的函数
type OnNext func(value interface{})

// OnError 处理错误的函数
type OnError func(err error)

// OnCompleted 处理完成信号的函数
type OnCompleted func()

// Predicate 谓词函数，用于过滤
type Predicate func(value interface{}) bool

// PredicateWithIndex 带索引的谓词函数，索引从0开始，每个到达回调的元素递增一次
type PredicateWithIndex func(value interface{}, index int) bool

// Transformer 转换函数，用于映射；返回error表示转换失败
type Transformer func(value interface{}) (interface{}, error)

// TransformerWithIndex 带索引的转换函数
type TransformerWithIndex func(value interface{}, index int) (interface{}, error)

// KeySelector 键选择函数，用于Distinct等操作符提取去重键
type KeySelector func(value interface{}) interface{}

// ============================================================================
// 生命周期管理接口
// ============================================================================

// Disposable 一次性、幂等的取消能力
// Dispose之后IsDisposed永远为true，重复Dispose没有任何副作用
type Disposable interface {
	// Dispose 释放资源，幂等且永不panic
	Dispose()
	// IsDisposed 检查是否已释放，纯查询无副作用
	IsDisposed() bool
}

// ============================================================================
// 观察者与可观察序列接口
// ============================================================================

// Observer 观察者接口，接收推送通知
// 协议约定：零个或多个OnNext，之后最多一个OnError或OnCompleted终止通知，
// 终止之后不再有任何通知
type Observer interface {
	// OnNext 接收下一个值
	OnNext(value interface{})
	// OnError 接收错误终止通知
	OnError(err error)
	// OnCompleted 接收完成终止通知
	OnCompleted()
}

// Observable 可观察序列接口
// 每次Subscribe都是独立的订阅：操作符的局部状态（计数器、标志、键集合）
// 在每次订阅时重新创建，不在订阅之间共享
type Observable interface {
	// Subscribe 订阅观察者，返回取消订阅用的Disposable
	Subscribe(observer Observer) Disposable

	// SubscribeWithCallbacks 使用回调函数订阅
	SubscribeWithCallbacks(onNext OnNext, onError OnError, onCompleted OnCompleted) Disposable

	// 转换操作符
	Map(transformer Transformer) Observable
	MapWithIndex(transformer TransformerWithIndex) Observable
	FlatMap(selector func(value interface{}) Observable) Observable
	FlatMapWithIndex(selector func(value interface{}, index int) Observable) Observable

	// 过滤操作符
	Filter(predicate Predicate) Observable
	FilterWithIndex(predicate PredicateWithIndex) Observable
	Take(count int, scheduler ...Scheduler) Observable
	TakeWhile(predicate Predicate) Observable
	TakeWhileWithIndex(predicate PredicateWithIndex) Observable
	Skip(count int) Observable
	SkipWhile(predicate Predicate) Observable
	SkipWhileWithIndex(predicate PredicateWithIndex) Observable
	Distinct() Observable
	DistinctBy(keySelector KeySelector) Observable
	DefaultIfEmpty(defaultValue interface{}) Observable
}

// ============================================================================
// 调度器接口
// ============================================================================

// ScheduledAction 被调度的动作
// 返回的Disposable代表动作自身持有的资源，取消调度时一并释放
type ScheduledAction func(scheduler Scheduler, state interface{}) Disposable

// Scheduler 调度器接口，在指定时机执行动作
// 约定：返回的Disposable被释放后，动作保证不再被调用
type Scheduler interface {
	// Schedule 尽快调度一个动作
	Schedule(state interface{}, action ScheduledAction) Disposable
	// ScheduleAt 延迟调度一个动作
	ScheduleAt(state interface{}, action ScheduledAction, delay time.Duration) Disposable
}

// Comparer 比较函数，返回-1/0/1，用于ScheduledItem的到期时间排序
type Comparer func(a, b interface{}) int

// DefaultComparer 默认比较器，支持time.Time、time.Duration以及整数时钟
func DefaultComparer(a, b interface{}) int {
	switch x := a.(type) {
	case time.Time:
		y := b.(time.Time)
		switch {
		case x.Before(y):
			return -1
		case x.After(y):
			return 1
		}
		return 0
	case time.Duration:
		return compareInt64(int64(x), int64(b.(time.Duration)))
	case int:
		return compareInt64(int64(x), int64(b.(int)))
	case int64:
		return compareInt64(x, b.(int64))
	case float64:
		y := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	panic(fmt.Sprintf("rxcore: no ordering defined for due time of type %T", a))
}

func compareInt64(x, y int64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// ============================================================================
// 错误定义
// ============================================================================

// ErrDisposableAssigned 表示SingleAssignmentDisposable被赋值了第二次
// 这是协议使用错误，在调用点以panic形式抛出，而不是走OnError数据通道
var ErrDisposableAssigned = errors.New("rxcore: single assignment disposable already assigned")

// CallbackPanicError 包装用户回调中被捕获的panic
// 回调边界捕获到panic后转换为该错误并通过OnError下发
type CallbackPanicError struct {
	Value interface{}
}

// Error 实现error接口
func (e *CallbackPanicError) Error() string {
	return fmt.Sprintf("rxcore: panic in user callback: %v", e.Value)
}
