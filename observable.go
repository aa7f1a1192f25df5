// Observable implementation for rxcore
// Observable核心实现：将可观察序列具体化为一个订阅函数
package rxcore

// ============================================================================
// Observable 核心实现
// ============================================================================

// observableImpl Observable的核心实现
// 订阅函数在每次Subscribe时被调用一次，操作符的每订阅状态在函数内部的
// 闭包中重新创建，因此同一个Observable值的多次订阅互不干扰
type observableImpl struct {
	subscribe func(observer Observer) Disposable
}

// NewObservable 由订阅函数创建Observable
func NewObservable(subscribe func(observer Observer) Disposable) Observable {
	return &observableImpl{subscribe: subscribe}
}

// Subscribe 订阅观察者
// 返回的Disposable是消费者手中唯一的取消句柄，取消沿着操作符链反向传播
func (o *observableImpl) Subscribe(observer Observer) Disposable {
	d := o.subscribe(observer)
	if d == nil {
		return Disposed
	}
	return d
}

// SubscribeWithCallbacks 使用回调函数订阅
func (o *observableImpl) SubscribeWithCallbacks(onNext OnNext, onError OnError, onCompleted OnCompleted) Disposable {
	return o.Subscribe(NewObserver(onNext, onError, onCompleted))
}
