// Observer builder for rxcore
// 观察者构建器：由最多三个通知处理函数组装观察者，并在边界处闩定终止状态
package rxcore

import "sync/atomic"

// ============================================================================
// 观察者实现
// ============================================================================

// anonymousObserver 由回调函数组装的观察者
// 终止通知（OnError/OnCompleted）只会下发一次，之后所有通知被丢弃，
// 操作符提前合成完成信号后上游的残余通知在这里被拦截
type anonymousObserver struct {
	onNext      OnNext
	onError     OnError
	onCompleted OnCompleted
	done        int32
}

// NewObserver 创建观察者，nil回调默认为空操作
func NewObserver(onNext OnNext, onError OnError, onCompleted OnCompleted) Observer {
	return &anonymousObserver{
		onNext:      onNext,
		onError:     onError,
		onCompleted: onCompleted,
	}
}

// DeriveObserver 为下游观察者派生新观察者，nil回调默认原样透传给下游
// 操作符只需提供自己关心的通知处理，其余通知保持不变
func DeriveObserver(downstream Observer, onNext OnNext, onError OnError, onCompleted OnCompleted) Observer {
	if onNext == nil {
		onNext = downstream.OnNext
	}
	if onError == nil {
		onError = downstream.OnError
	}
	if onCompleted == nil {
		onCompleted = downstream.OnCompleted
	}
	return &anonymousObserver{
		onNext:      onNext,
		onError:     onError,
		onCompleted: onCompleted,
	}
}

// OnNext 接收下一个值；终止后丢弃
func (o *anonymousObserver) OnNext(value interface{}) {
	if atomic.LoadInt32(&o.done) == 1 {
		return
	}
	if o.onNext != nil {
		o.onNext(value)
	}
}

// OnError 接收错误终止通知，至多下发一次
func (o *anonymousObserver) OnError(err error) {
	if atomic.CompareAndSwapInt32(&o.done, 0, 1) {
		if o.onError != nil {
			o.onError(err)
		}
	}
}

// OnCompleted 接收完成终止通知，至多下发一次
func (o *anonymousObserver) OnCompleted() {
	if atomic.CompareAndSwapInt32(&o.done, 0, 1) {
		if o.onCompleted != nil {
			o.onCompleted()
		}
	}
}

// ============================================================================
// 回调边界：错误收容
// ============================================================================

// invokePredicate 调用用户谓词并捕获panic
func invokePredicate(p PredicateWithIndex, value interface{}, index int) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = &CallbackPanicError{Value: r}
		}
	}()
	return p(value, index), nil
}

// invokeTransformer 调用用户转换函数并捕获panic
func invokeTransformer(t TransformerWithIndex, value interface{}, index int) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &CallbackPanicError{Value: r}
		}
	}()
	return t(value, index)
}

// invokeKeySelector 调用用户键选择函数并捕获panic
func invokeKeySelector(k KeySelector, value interface{}) (key interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			key = nil
			err = &CallbackPanicError{Value: r}
		}
	}()
	return k(value), nil
}
