// Operator implementations for rxcore
// 操作符实现：无状态工厂 + 每订阅闭包状态
// 每个操作符都遵循同一个组合模式：Subscribe时创建新的局部状态，
// 用DeriveObserver派生观察者订阅上游，并原样返回上游的Disposable
// （操作符自身持有额外资源时除外，如FlatMap的组合订阅）
package rxcore

import "reflect"

// ============================================================================
// 转换操作符
// ============================================================================

// Map 将每个元素经转换函数投影后发出
func (o *observableImpl) Map(transformer Transformer) Observable {
	return o.MapWithIndex(func(value interface{}, _ int) (interface{}, error) {
		return transformer(value)
	})
}

// MapWithIndex 带索引的投影，索引从0开始
// 转换失败（返回error或panic）时向下游发出OnError，当前元素被丢弃
func (o *observableImpl) MapWithIndex(transformer TransformerWithIndex) Observable {
	return NewObservable(func(downstream Observer) Disposable {
		index := 0
		var derived Observer
		derived = DeriveObserver(downstream, func(value interface{}) {
			result, err := invokeTransformer(transformer, value, index)
			index++
			if err != nil {
				derived.OnError(err)
				return
			}
			downstream.OnNext(result)
		}, nil, nil)
		return o.Subscribe(derived)
	})
}

// FlatMap 将每个元素投影为Observable后平铺合并
func (o *observableImpl) FlatMap(selector func(value interface{}) Observable) Observable {
	projected := o.Map(func(value interface{}) (interface{}, error) {
		return selector(value), nil
	})
	return MergeAll(projected)
}

// FlatMapWithIndex 带索引的平铺映射
func (o *observableImpl) FlatMapWithIndex(selector func(value interface{}, index int) Observable) Observable {
	projected := o.MapWithIndex(func(value interface{}, index int) (interface{}, error) {
		return selector(value, index), nil
	})
	return MergeAll(projected)
}

// ============================================================================
// 过滤操作符
// ============================================================================

// Filter 只发出谓词为true的元素
func (o *observableImpl) Filter(predicate Predicate) Observable {
	return o.FilterWithIndex(func(value interface{}, _ int) bool {
		return predicate(value)
	})
}

// FilterWithIndex 带索引的过滤
func (o *observableImpl) FilterWithIndex(predicate PredicateWithIndex) Observable {
	return NewObservable(func(downstream Observer) Disposable {
		index := 0
		var derived Observer
		derived = DeriveObserver(downstream, func(value interface{}) {
			ok, err := invokePredicate(predicate, value, index)
			index++
			if err != nil {
				derived.OnError(err)
				return
			}
			if ok {
				downstream.OnNext(value)
			}
		}, nil, nil)
		return o.Subscribe(derived)
	})
}

// Take 发出前count个元素后合成完成信号
// 完成信号紧跟在第count个元素之后的同一通知轮次内发出；
// count<=0时返回经由给定调度器（缺省为立即调度器）完成的空序列
func (o *observableImpl) Take(count int, scheduler ...Scheduler) Observable {
	if count <= 0 {
		return Empty(scheduler...)
	}
	return NewObservable(func(downstream Observer) Disposable {
		remaining := count
		var derived Observer
		derived = DeriveObserver(downstream, func(value interface{}) {
			if remaining <= 0 {
				return
			}
			remaining--
			downstream.OnNext(value)
			if remaining == 0 {
				derived.OnCompleted()
			}
		}, nil, nil)
		return o.Subscribe(derived)
	})
}

// TakeWhile 发出元素直到谓词首次为false，该元素不被发出，改为合成完成信号
func (o *observableImpl) TakeWhile(predicate Predicate) Observable {
	return o.TakeWhileWithIndex(func(value interface{}, _ int) bool {
		return predicate(value)
	})
}

// TakeWhileWithIndex 带索引的TakeWhile
func (o *observableImpl) TakeWhileWithIndex(predicate PredicateWithIndex) Observable {
	return NewObservable(func(downstream Observer) Disposable {
		index := 0
		var derived Observer
		derived = DeriveObserver(downstream, func(value interface{}) {
			ok, err := invokePredicate(predicate, value, index)
			index++
			if err != nil {
				derived.OnError(err)
				return
			}
			if ok {
				downstream.OnNext(value)
			} else {
				derived.OnCompleted()
			}
		}, nil, nil)
		return o.Subscribe(derived)
	})
}

// Skip 丢弃前count个元素，其余原样发出；count<=0时全部发出
func (o *observableImpl) Skip(count int) Observable {
	return NewObservable(func(downstream Observer) Disposable {
		remaining := count
		derived := DeriveObserver(downstream, func(value interface{}) {
			if remaining > 0 {
				remaining--
				return
			}
			downstream.OnNext(value)
		}, nil, nil)
		return o.Subscribe(derived)
	})
}

// SkipWhile 谓词保持true期间丢弃元素；首次为false的元素及之后所有元素
// 原样发出，之后不再对谓词求值
func (o *observableImpl) SkipWhile(predicate Predicate) Observable {
	return o.SkipWhileWithIndex(func(value interface{}, _ int) bool {
		return predicate(value)
	})
}

// SkipWhileWithIndex 带索引的SkipWhile
func (o *observableImpl) SkipWhileWithIndex(predicate PredicateWithIndex) Observable {
	return NewObservable(func(downstream Observer) Disposable {
		skipping := true
		index := 0
		var derived Observer
		derived = DeriveObserver(downstream, func(value interface{}) {
			if skipping {
				ok, err := invokePredicate(predicate, value, index)
				index++
				if err != nil {
					derived.OnError(err)
					return
				}
				if ok {
					return
				}
				skipping = false
			}
			downstream.OnNext(value)
		}, nil, nil)
		return o.Subscribe(derived)
	})
}

// Distinct 只发出本次订阅内首次出现的元素，键为元素自身
func (o *observableImpl) Distinct() Observable {
	return o.DistinctBy(func(value interface{}) interface{} {
		return value
	})
}

// DistinctBy 按键选择函数提取的键去重
// 键按结构相等性（Go的map键语义）比较；不可比较类型的键走错误收容路径
func (o *observableImpl) DistinctBy(keySelector KeySelector) Observable {
	return NewObservable(func(downstream Observer) Disposable {
		seen := make(map[interface{}]struct{})
		var derived Observer
		derived = DeriveObserver(downstream, func(value interface{}) {
			key, err := invokeKeySelector(keySelector, value)
			if err != nil {
				derived.OnError(err)
				return
			}
			if key != nil && !reflect.TypeOf(key).Comparable() {
				derived.OnError(&CallbackPanicError{Value: "distinct key is not comparable"})
				return
			}
			if _, dup := seen[key]; dup {
				return
			}
			seen[key] = struct{}{}
			downstream.OnNext(value)
		}, nil, nil)
		return o.Subscribe(derived)
	})
}

// ============================================================================
// 补缺操作符
// ============================================================================

// DefaultIfEmpty 原样转发所有元素；上游完成时一个元素都没出现过的话，
// 先发出默认值再完成
func (o *observableImpl) DefaultIfEmpty(defaultValue interface{}) Observable {
	return NewObservable(func(downstream Observer) Disposable {
		found := false
		derived := DeriveObserver(downstream, func(value interface{}) {
			found = true
			downstream.OnNext(value)
		}, nil, func() {
			if !found {
				downstream.OnNext(defaultValue)
			}
			downstream.OnCompleted()
		})
		return o.Subscribe(derived)
	})
}
