// Observable factory functions for rxcore
// Observable工厂函数：创建基础序列以及FlatMap消费的平铺合并
package rxcore

import (
	"fmt"
	"sync"
)

// ============================================================================
// 创建型工厂
// ============================================================================

// Just 发出给定的值后完成
func Just(values ...interface{}) Observable {
	return FromSlice(values)
}

// FromSlice 依次同步发出切片中的元素后完成
// 生产循环在每个元素之间检查取消标志，取消后不再发出后续元素
func FromSlice(items []interface{}) Observable {
	return NewObservable(func(observer Observer) Disposable {
		flag := NewBooleanDisposable()
		for _, item := range items {
			if flag.IsDisposed() {
				return flag
			}
			observer.OnNext(item)
		}
		if !flag.IsDisposed() {
			observer.OnCompleted()
		}
		return flag
	})
}

// Range 发出从start开始的count个连续整数后完成
func Range(start, count int) Observable {
	return NewObservable(func(observer Observer) Disposable {
		flag := NewBooleanDisposable()
		for i := 0; i < count; i++ {
			if flag.IsDisposed() {
				return flag
			}
			observer.OnNext(start + i)
		}
		if !flag.IsDisposed() {
			observer.OnCompleted()
		}
		return flag
	})
}

// Empty 不发出任何元素，经由给定调度器（缺省为立即调度器）发出单个完成信号
func Empty(scheduler ...Scheduler) Observable {
	sched := ImmediateScheduler
	if len(scheduler) > 0 && scheduler[0] != nil {
		sched = scheduler[0]
	}
	return NewObservable(func(observer Observer) Disposable {
		return sched.Schedule(nil, func(_ Scheduler, _ interface{}) Disposable {
			observer.OnCompleted()
			return Disposed
		})
	})
}

// Never 既不发出元素也不终止
func Never() Observable {
	return NewObservable(func(observer Observer) Disposable {
		return NewBooleanDisposable()
	})
}

// Error 立即发出错误终止通知
func Error(err error) Observable {
	return NewObservable(func(observer Observer) Disposable {
		observer.OnError(err)
		return Disposed
	})
}

// ============================================================================
// 平铺合并
// ============================================================================

// MergeAll 将Observable的Observable平铺为单个Observable
// 外层每发出一个内层Observable就立即订阅，内层元素按到达顺序交错发出；
// 外层与所有内层都完成后才向下游发出完成信号；
// 释放返回的句柄通过一个CompositeSubscription同时取消外层与全部内层订阅
func MergeAll(sources Observable) Observable {
	return NewObservable(func(downstream Observer) Disposable {
		group := NewCompositeSubscription()
		var mu sync.Mutex
		active := 1 // 外层订阅计数

		completeOne := func() {
			mu.Lock()
			active--
			done := active == 0
			mu.Unlock()
			if done {
				downstream.OnCompleted()
			}
		}

		outerSAD := NewSingleAssignmentDisposable()
		group.Add(outerSAD)

		var outer Observer
		outer = DeriveObserver(downstream, func(value interface{}) {
			inner, ok := value.(Observable)
			if !ok {
				outer.OnError(fmt.Errorf("rxcore: merge all received %T, want Observable", value))
				return
			}

			mu.Lock()
			active++
			mu.Unlock()

			innerSAD := NewSingleAssignmentDisposable()
			group.Add(innerSAD)

			innerObserver := DeriveObserver(downstream, nil, nil, func() {
				group.Remove(innerSAD)
				completeOne()
			})
			innerSAD.SetDisposable(inner.Subscribe(innerObserver))
		}, nil, func() {
			completeOne()
		})

		outerSAD.SetDisposable(sources.Subscribe(outer))
		return group
	})
}
