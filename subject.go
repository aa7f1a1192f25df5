// PublishSubject implementation for rxcore
// 发布主题：同时是Observer和Observable的多播原语
package rxcore

import "sync"

// ============================================================================
// PublishSubject 发布主题
// ============================================================================

// PublishSubject 将收到的通知多播给当前所有观察者
// 终止通知闩定后，新订阅者立即收到同样的终止通知；
// 观察者的退订句柄统一由一个CompositeSubscription管理，终止时整体释放
type PublishSubject struct {
	Observable

	mu        sync.Mutex
	observers map[int]Observer
	nextID    int
	done      bool
	err       error
	subs      *CompositeSubscription
}

// NewPublishSubject 创建发布主题
func NewPublishSubject() *PublishSubject {
	s := &PublishSubject{
		observers: make(map[int]Observer),
		subs:      NewCompositeSubscription(),
	}
	s.Observable = NewObservable(s.attach)
	return s
}

// attach 登记观察者；主题已终止时立即下发终止通知
func (s *PublishSubject) attach(observer Observer) Disposable {
	s.mu.Lock()
	if s.done {
		err := s.err
		s.mu.Unlock()
		if err != nil {
			observer.OnError(err)
		} else {
			observer.OnCompleted()
		}
		return Disposed
	}

	id := s.nextID
	s.nextID++
	s.observers[id] = observer
	s.mu.Unlock()

	d := NewDisposable(func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	})
	s.subs.Add(d)
	return d
}

// OnNext 将值多播给当前所有观察者
func (s *PublishSubject) OnNext(value interface{}) {
	for _, observer := range s.snapshot() {
		observer.OnNext(value)
	}
}

// OnError 多播错误终止通知并闩定终止状态
func (s *PublishSubject) OnError(err error) {
	observers, first := s.terminate(err)
	if !first {
		return
	}
	for _, observer := range observers {
		observer.OnError(err)
	}
	s.subs.Dispose()
}

// OnCompleted 多播完成终止通知并闩定终止状态
func (s *PublishSubject) OnCompleted() {
	observers, first := s.terminate(nil)
	if !first {
		return
	}
	for _, observer := range observers {
		observer.OnCompleted()
	}
	s.subs.Dispose()
}

// HasObservers 检查当前是否有观察者
func (s *PublishSubject) HasObservers() bool {
	return s.ObserverCount() > 0
}

// ObserverCount 当前观察者数量
func (s *PublishSubject) ObserverCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

// snapshot 在锁内拷贝观察者集合，通知在锁外下发
func (s *PublishSubject) snapshot() []Observer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	observers := make([]Observer, 0, len(s.observers))
	for _, observer := range s.observers {
		observers = append(observers, observer)
	}
	return observers
}

// terminate 闩定终止状态，返回待通知的观察者以及是否为首次终止
func (s *PublishSubject) terminate(err error) ([]Observer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil, false
	}
	s.done = true
	s.err = err
	observers := make([]Observer, 0, len(s.observers))
	for _, observer := range s.observers {
		observers = append(observers, observer)
	}
	s.observers = make(map[int]Observer)
	return observers, true
}
