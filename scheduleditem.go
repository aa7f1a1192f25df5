// ScheduledItem implementation for rxcore
// 调度项：对一次延迟执行的有序、可取消封装，调度器用它决定"下一个执行谁"
package rxcore

import "sync"

// ============================================================================
// ScheduledItem 调度项
// ============================================================================

// ScheduledItem 封装一个待执行的调度动作
// 携带所属调度器、闭包状态、动作、到期时间，以及用作取消令牌的
// SingleAssignmentDisposable；动作执行后返回的Disposable被存入令牌，
// 因此执行之后再取消该项也会释放动作创建的资源
type ScheduledItem struct {
	scheduler Scheduler
	state     interface{}
	action    ScheduledAction
	dueTime   interface{}
	comparer  Comparer

	mu      sync.Mutex
	invoked bool
	token   *SingleAssignmentDisposable
}

// NewScheduledItem 创建调度项，comparer为nil时使用DefaultComparer
func NewScheduledItem(scheduler Scheduler, state interface{}, action ScheduledAction, dueTime interface{}, comparer Comparer) *ScheduledItem {
	if comparer == nil {
		comparer = DefaultComparer
	}
	return &ScheduledItem{
		scheduler: scheduler,
		state:     state,
		action:    action,
		dueTime:   dueTime,
		comparer:  comparer,
		token:     NewSingleAssignmentDisposable(),
	}
}

// DueTime 返回只读的排序键
func (si *ScheduledItem) DueTime() interface{} {
	return si.dueTime
}

// IsCancelled 当且仅当取消令牌已释放时为true
func (si *ScheduledItem) IsCancelled() bool {
	return si.token.IsDisposed()
}

// Invoke 执行动作
// 已取消时不执行任何操作——惰性取消：留在优先队列里的已取消项
// 在弹出时被跳过，而不是在取消时从队列中摘除；
// 动作至多执行一次，返回的Disposable存入取消令牌
func (si *ScheduledItem) Invoke() {
	si.mu.Lock()
	if si.invoked || si.token.IsDisposed() {
		si.mu.Unlock()
		return
	}
	si.invoked = true
	si.mu.Unlock()

	d := si.action(si.scheduler, si.state)
	if d == nil {
		d = Disposed
	}
	si.token.SetDisposable(d)
}

// Cancel 释放取消令牌，幂等
// 与Invoke共用锁，二者不会交错出现"取消后仍执行"
func (si *ScheduledItem) Cancel() {
	si.mu.Lock()
	si.token.Dispose()
	si.mu.Unlock()
}

// Disposable 返回以Cancel为释放动作的取消句柄视图
func (si *ScheduledItem) Disposable() Disposable {
	return &scheduledItemDisposable{item: si}
}

// CompareTo 按到期时间全序比较
// other为nil时返回1：缺席的对端视为排在所有具体项之后，
// 为外部优先队列的哨兵提供确定的位置
func (si *ScheduledItem) CompareTo(other *ScheduledItem) int {
	if other == nil {
		return 1
	}
	return si.comparer(si.dueTime, other.dueTime)
}

// scheduledItemDisposable 调度项的取消句柄视图
type scheduledItemDisposable struct {
	item *ScheduledItem
}

func (d *scheduledItemDisposable) Dispose() {
	d.item.Cancel()
}

func (d *scheduledItemDisposable) IsDisposed() bool {
	return d.item.IsCancelled()
}
