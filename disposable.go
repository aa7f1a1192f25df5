// Disposable lifecycle primitives for rxcore
// 取消原语实现：一次性Disposable、单次赋值槽位、组合订阅
package rxcore

import (
	"sync"
	"sync/atomic"
)

// ============================================================================
// 基础Disposable
// ============================================================================

// baseDisposable 基础可释放资源实现，释放时执行一次teardown动作
type baseDisposable struct {
	disposed int32
	action   func()
}

// NewDisposable 创建执行指定teardown动作的Disposable
func NewDisposable(action func()) Disposable {
	return &baseDisposable{action: action}
}

// Dispose 释放资源，只有第一次调用会执行动作
func (d *baseDisposable) Dispose() {
	if atomic.CompareAndSwapInt32(&d.disposed, 0, 1) {
		if d.action != nil {
			d.action()
		}
	}
}

// IsDisposed 检查是否已释放
func (d *baseDisposable) IsDisposed() bool {
	return atomic.LoadInt32(&d.disposed) == 1
}

// ============================================================================
// 已释放哨兵与布尔Disposable
// ============================================================================

// disposedSentinel 永远处于已释放状态的哨兵
type disposedSentinel struct{}

func (disposedSentinel) Dispose()         {}
func (disposedSentinel) IsDisposed() bool { return true }

// Disposed 已释放的Disposable哨兵，用于无需teardown的场合
var Disposed Disposable = disposedSentinel{}

// BooleanDisposable 纯标志位Disposable，供生产循环轮询取消状态
type BooleanDisposable struct {
	disposed int32
}

// NewBooleanDisposable 创建布尔Disposable
func NewBooleanDisposable() *BooleanDisposable {
	return &BooleanDisposable{}
}

// Dispose 置位
func (d *BooleanDisposable) Dispose() {
	atomic.StoreInt32(&d.disposed, 1)
}

// IsDisposed 检查标志位
func (d *BooleanDisposable) IsDisposed() bool {
	return atomic.LoadInt32(&d.disposed) == 1
}

// ============================================================================
// SingleAssignmentDisposable 单次赋值槽位
// ============================================================================

// SingleAssignmentDisposable 最多持有一个内部Disposable的可取消槽位
// 槽位先被释放、后被赋值时，新赋的值立即被释放而不是被保存；
// 这是"资源产生与取消竞争"场景的基础构件：被取消的调度动作即使稍后才产生
// 真正的资源，该资源也会在到达槽位的瞬间被清理
type SingleAssignmentDisposable struct {
	mu       sync.Mutex
	disposed bool
	assigned bool
	current  Disposable
}

// NewSingleAssignmentDisposable 创建单次赋值槽位
func NewSingleAssignmentDisposable() *SingleAssignmentDisposable {
	return &SingleAssignmentDisposable{}
}

// SetDisposable 赋值内部Disposable
// 赋值第二次是协议违规，panic(ErrDisposableAssigned)；
// 槽位已释放时立即释放传入值且不保存
func (d *SingleAssignmentDisposable) SetDisposable(inner Disposable) {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		if inner != nil {
			inner.Dispose()
		}
		return
	}
	if d.assigned {
		d.mu.Unlock()
		panic(ErrDisposableAssigned)
	}
	d.assigned = true
	d.current = inner
	d.mu.Unlock()
}

// Disposable 返回当前持有的内部Disposable，未赋值时为nil
func (d *SingleAssignmentDisposable) Disposable() Disposable {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Dispose 释放槽位以及持有的内部Disposable
func (d *SingleAssignmentDisposable) Dispose() {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return
	}
	d.disposed = true
	inner := d.current
	d.current = nil
	d.mu.Unlock()

	if inner != nil {
		inner.Dispose()
	}
}

// IsDisposed 检查槽位是否已释放
func (d *SingleAssignmentDisposable) IsDisposed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disposed
}

// ============================================================================
// CompositeSubscription 组合订阅
// ============================================================================

// CompositeSubscription 可取消的Disposable聚合
// 释放组合即释放所有成员；组合已释放后再添加的成员立即被释放
type CompositeSubscription struct {
	mu       sync.Mutex
	disposed bool
	members  []Disposable
}

// NewCompositeSubscription 创建组合订阅，可携带初始成员
func NewCompositeSubscription(members ...Disposable) *CompositeSubscription {
	return &CompositeSubscription{members: append([]Disposable(nil), members...)}
}

// Add 添加成员；组合已释放时立即释放该成员
func (c *CompositeSubscription) Add(d Disposable) {
	if d == nil {
		return
	}

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		d.Dispose()
		return
	}
	c.members = append(c.members, d)
	c.mu.Unlock()
}

// Remove 将成员从组合中摘除并释放该成员，不影响其他成员
// 返回是否找到了该成员
func (c *CompositeSubscription) Remove(d Disposable) bool {
	if d == nil {
		return false
	}

	c.mu.Lock()
	found := false
	for i, member := range c.members {
		if member == d {
			c.members = append(c.members[:i], c.members[i+1:]...)
			found = true
			break
		}
	}
	c.mu.Unlock()

	if found {
		d.Dispose()
	}
	return found
}

// Len 当前成员数量
func (c *CompositeSubscription) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.members)
}

// Dispose 释放组合：每个当前成员恰好被释放一次，然后清空成员集合
func (c *CompositeSubscription) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	members := c.members
	c.members = nil
	c.mu.Unlock()

	for _, member := range members {
		member.Dispose()
	}
}

// IsDisposed 检查组合是否已释放
func (c *CompositeSubscription) IsDisposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}
