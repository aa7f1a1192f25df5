// Tests for rxcore operators
// 操作符测试：映射、过滤、截取、去重、补缺以及错误收容
package rxcore

import (
	"errors"
	"reflect"
	"testing"
)

// recorder 记录一次订阅收到的全部通知
type recorder struct {
	values    []interface{}
	err       error
	completed bool
}

func newRecorder() *recorder {
	return &recorder{values: []interface{}{}}
}

func (r *recorder) observer() Observer {
	return NewObserver(
		func(value interface{}) { r.values = append(r.values, value) },
		func(err error) { r.err = err },
		func() { r.completed = true },
	)
}

func (r *recorder) expect(t *testing.T, values []interface{}, completed bool) {
	t.Helper()
	if !reflect.DeepEqual(r.values, values) {
		t.Errorf("期望值序列%v, 实际%v", values, r.values)
	}
	if r.completed != completed {
		t.Errorf("期望completed=%v, 实际%v", completed, r.completed)
	}
	if completed && r.err != nil {
		t.Errorf("不应有错误: %v", r.err)
	}
}

// ============================================================================
// Map / MapWithIndex
// ============================================================================

func TestMap(t *testing.T) {
	t.Run("投影每个元素", func(t *testing.T) {
		rec := newRecorder()
		Just(1, 2, 3).Map(func(v interface{}) (interface{}, error) {
			return v.(int) * 2, nil
		}).Subscribe(rec.observer())

		rec.expect(t, []interface{}{2, 4, 6}, true)
	})

	t.Run("第三个元素转换失败", func(t *testing.T) {
		boom := errors.New("boom")
		rec := newRecorder()
		Just(1, 2, 3, 4).Map(func(v interface{}) (interface{}, error) {
			if v.(int) == 3 {
				return nil, boom
			}
			return v.(int) * 10, nil
		}).Subscribe(rec.observer())

		rec.expect(t, []interface{}{10, 20}, false)
		if rec.err != boom {
			t.Errorf("期望错误boom, 实际%v", rec.err)
		}
	})

	t.Run("转换panic被收容", func(t *testing.T) {
		rec := newRecorder()
		Just(1, 2).Map(func(v interface{}) (interface{}, error) {
			if v.(int) == 2 {
				panic("projection blew up")
			}
			return v, nil
		}).Subscribe(rec.observer())

		rec.expect(t, []interface{}{1}, false)
		var panicErr *CallbackPanicError
		if !errors.As(rec.err, &panicErr) {
			t.Fatalf("期望CallbackPanicError, 实际%v", rec.err)
		}
		if panicErr.Value != "projection blew up" {
			t.Errorf("panic值应被保留, 实际%v", panicErr.Value)
		}
	})

	t.Run("带索引投影", func(t *testing.T) {
		rec := newRecorder()
		Just("a", "b", "c").MapWithIndex(func(v interface{}, i int) (interface{}, error) {
			return []interface{}{i, v}, nil
		}).Subscribe(rec.observer())

		expected := []interface{}{
			[]interface{}{0, "a"},
			[]interface{}{1, "b"},
			[]interface{}{2, "c"},
		}
		rec.expect(t, expected, true)
	})
}

// ============================================================================
// Filter / FilterWithIndex
// ============================================================================

func TestFilter(t *testing.T) {
	t.Run("只保留偶数", func(t *testing.T) {
		rec := newRecorder()
		Just(1, 2, 3, 4, 5, 6).Filter(func(v interface{}) bool {
			return v.(int)%2 == 0
		}).Subscribe(rec.observer())

		rec.expect(t, []interface{}{2, 4, 6}, true)
	})

	t.Run("谓词panic被收容", func(t *testing.T) {
		rec := newRecorder()
		Just(1, 2, 3).Filter(func(v interface{}) bool {
			if v.(int) == 2 {
				panic("bad predicate")
			}
			return true
		}).Subscribe(rec.observer())

		rec.expect(t, []interface{}{1}, false)
		if rec.err == nil {
			t.Error("谓词panic应转为OnError")
		}
	})

	t.Run("带索引过滤", func(t *testing.T) {
		rec := newRecorder()
		Just("a", "b", "c", "d").FilterWithIndex(func(_ interface{}, i int) bool {
			return i%2 == 0
		}).Subscribe(rec.observer())

		rec.expect(t, []interface{}{"a", "c"}, true)
	})
}

// ============================================================================
// Take / TakeWhile
// ============================================================================

func TestTake(t *testing.T) {
	t.Run("取前三个", func(t *testing.T) {
		rec := newRecorder()
		Just(1, 2, 3, 4, 5).Take(3).Subscribe(rec.observer())

		rec.expect(t, []interface{}{1, 2, 3}, true)
	})

	t.Run("完成紧跟第N个元素", func(t *testing.T) {
		order := []string{}
		Just(1, 2, 3).Take(2).Subscribe(NewObserver(
			func(v interface{}) { order = append(order, "next") },
			nil,
			func() { order = append(order, "completed") },
		))

		expected := []string{"next", "next", "completed"}
		if !reflect.DeepEqual(order, expected) {
			t.Errorf("期望通知顺序%v, 实际%v", expected, order)
		}
	})

	t.Run("Take(0)立即完成且无元素", func(t *testing.T) {
		rec := newRecorder()
		Just(1, 2, 3).Take(0).Subscribe(rec.observer())

		rec.expect(t, []interface{}{}, true)
	})

	t.Run("Take(0)经由调度器完成", func(t *testing.T) {
		scheduler := NewTestScheduler()
		rec := newRecorder()
		Just(1, 2, 3).Take(0, scheduler).Subscribe(rec.observer())

		if rec.completed {
			t.Error("推进虚拟时钟前不应完成")
		}
		scheduler.AdvanceBy(0)
		rec.expect(t, []interface{}{}, true)
	})

	t.Run("源溢出时后续通知被丢弃", func(t *testing.T) {
		// 源在完成信号之后仍然违规推送
		rogue := NewObservable(func(observer Observer) Disposable {
			for i := 1; i <= 10; i++ {
				observer.OnNext(i)
			}
			observer.OnCompleted()
			return Disposed
		})

		rec := newRecorder()
		rogue.Take(3).Subscribe(rec.observer())
		rec.expect(t, []interface{}{1, 2, 3}, true)
	})
}

func TestTakeWhile(t *testing.T) {
	t.Run("首个false元素不被发出", func(t *testing.T) {
		rec := newRecorder()
		Just(1, 2, 3, 4, 1).TakeWhile(func(v interface{}) bool {
			return v.(int) < 3
		}).Subscribe(rec.observer())

		rec.expect(t, []interface{}{1, 2}, true)
	})

	t.Run("谓词panic被收容", func(t *testing.T) {
		rec := newRecorder()
		Just(1, 2).TakeWhile(func(v interface{}) bool {
			panic("nope")
		}).Subscribe(rec.observer())

		rec.expect(t, []interface{}{}, false)
		if rec.err == nil {
			t.Error("谓词panic应转为OnError")
		}
	})

	t.Run("带索引", func(t *testing.T) {
		rec := newRecorder()
		Just(9, 9, 9, 9).TakeWhileWithIndex(func(_ interface{}, i int) bool {
			return i < 2
		}).Subscribe(rec.observer())

		rec.expect(t, []interface{}{9, 9}, true)
	})
}

// ============================================================================
// Skip / SkipWhile
// ============================================================================

func TestSkip(t *testing.T) {
	t.Run("跳过前两个", func(t *testing.T) {
		rec := newRecorder()
		Just(1, 2, 3, 4).Skip(2).Subscribe(rec.observer())

		rec.expect(t, []interface{}{3, 4}, true)
	})

	t.Run("跳过数量超过元素总数", func(t *testing.T) {
		rec := newRecorder()
		Just(1, 2, 3).Skip(10).Subscribe(rec.observer())

		rec.expect(t, []interface{}{}, true)
	})

	t.Run("非正数跳过全部发出", func(t *testing.T) {
		rec := newRecorder()
		Just(1, 2).Skip(0).Subscribe(rec.observer())
		rec.expect(t, []interface{}{1, 2}, true)

		rec = newRecorder()
		Just(1, 2).Skip(-5).Subscribe(rec.observer())
		rec.expect(t, []interface{}{1, 2}, true)
	})
}

func TestSkipWhile(t *testing.T) {
	t.Run("首次false后谓词不再求值", func(t *testing.T) {
		evaluations := 0
		rec := newRecorder()
		Just(1, 2, 3, 1, 2).SkipWhile(func(v interface{}) bool {
			evaluations++
			return v.(int) < 3
		}).Subscribe(rec.observer())

		rec.expect(t, []interface{}{3, 1, 2}, true)
		if evaluations != 3 {
			t.Errorf("谓词应求值3次, 实际%d次", evaluations)
		}
	})

	t.Run("谓词panic被收容", func(t *testing.T) {
		rec := newRecorder()
		Just(1).SkipWhile(func(v interface{}) bool {
			panic("nope")
		}).Subscribe(rec.observer())

		rec.expect(t, []interface{}{}, false)
		if rec.err == nil {
			t.Error("谓词panic应转为OnError")
		}
	})

	t.Run("带索引", func(t *testing.T) {
		rec := newRecorder()
		Just("a", "b", "c", "d").SkipWhileWithIndex(func(_ interface{}, i int) bool {
			return i < 2
		}).Subscribe(rec.observer())

		rec.expect(t, []interface{}{"c", "d"}, true)
	})
}

// ============================================================================
// Distinct / DistinctBy
// ============================================================================

func TestDistinct(t *testing.T) {
	t.Run("默认键为元素自身", func(t *testing.T) {
		rec := newRecorder()
		Just(1, 2, 2, 3, 1).Distinct().Subscribe(rec.observer())

		rec.expect(t, []interface{}{1, 2, 3}, true)
	})

	t.Run("按键选择函数去重", func(t *testing.T) {
		rec := newRecorder()
		Just("go", "rx", "core", "push").DistinctBy(func(v interface{}) interface{} {
			return len(v.(string))
		}).Subscribe(rec.observer())

		rec.expect(t, []interface{}{"go", "core"}, true)
	})

	t.Run("键集合不跨订阅共享", func(t *testing.T) {
		source := Just(1, 1, 2).Distinct()

		first := newRecorder()
		source.Subscribe(first.observer())
		second := newRecorder()
		source.Subscribe(second.observer())

		first.expect(t, []interface{}{1, 2}, true)
		second.expect(t, []interface{}{1, 2}, true)
	})

	t.Run("不可比较的键走错误收容", func(t *testing.T) {
		rec := newRecorder()
		Just(1).DistinctBy(func(v interface{}) interface{} {
			return []int{1}
		}).Subscribe(rec.observer())

		rec.expect(t, []interface{}{}, false)
		if rec.err == nil {
			t.Error("不可比较的键应转为OnError")
		}
	})

	t.Run("键选择函数panic被收容", func(t *testing.T) {
		rec := newRecorder()
		Just(1).DistinctBy(func(v interface{}) interface{} {
			panic("bad key")
		}).Subscribe(rec.observer())

		rec.expect(t, []interface{}{}, false)
		if rec.err == nil {
			t.Error("键选择函数panic应转为OnError")
		}
	})
}

// ============================================================================
// DefaultIfEmpty
// ============================================================================

func TestDefaultIfEmpty(t *testing.T) {
	t.Run("空序列发出默认值", func(t *testing.T) {
		rec := newRecorder()
		Empty().DefaultIfEmpty(99).Subscribe(rec.observer())

		rec.expect(t, []interface{}{99}, true)
	})

	t.Run("非空序列抑制默认值", func(t *testing.T) {
		rec := newRecorder()
		Just(5).DefaultIfEmpty(99).Subscribe(rec.observer())

		rec.expect(t, []interface{}{5}, true)
	})

	t.Run("错误终止不发出默认值", func(t *testing.T) {
		boom := errors.New("boom")
		rec := newRecorder()
		Error(boom).DefaultIfEmpty(99).Subscribe(rec.observer())

		rec.expect(t, []interface{}{}, false)
		if rec.err != boom {
			t.Errorf("错误应原样透传, 实际%v", rec.err)
		}
	})
}

// ============================================================================
// FlatMap
// ============================================================================

func TestFlatMap(t *testing.T) {
	t.Run("投影并平铺", func(t *testing.T) {
		rec := newRecorder()
		Just(1, 2).FlatMap(func(v interface{}) Observable {
			n := v.(int)
			return Just(n*10, n*10+1)
		}).Subscribe(rec.observer())

		rec.expect(t, []interface{}{10, 11, 20, 21}, true)
	})

	t.Run("选择函数panic被收容", func(t *testing.T) {
		rec := newRecorder()
		Just(1).FlatMap(func(v interface{}) Observable {
			panic("bad selector")
		}).Subscribe(rec.observer())

		rec.expect(t, []interface{}{}, false)
		if rec.err == nil {
			t.Error("选择函数panic应转为OnError")
		}
	})

	t.Run("带索引", func(t *testing.T) {
		rec := newRecorder()
		Just("a", "b").FlatMapWithIndex(func(v interface{}, i int) Observable {
			return Just(i, v)
		}).Subscribe(rec.observer())

		rec.expect(t, []interface{}{0, "a", 1, "b"}, true)
	})
}

// ============================================================================
// 操作符组合
// ============================================================================

func TestOperatorChaining(t *testing.T) {
	t.Run("链式取消沿上游传播", func(t *testing.T) {
		subject := NewPublishSubject()
		rec := newRecorder()

		d := subject.
			Filter(func(v interface{}) bool { return v.(int)%2 == 0 }).
			Map(func(v interface{}) (interface{}, error) { return v.(int) * 10, nil }).
			Subscribe(rec.observer())

		subject.OnNext(1)
		subject.OnNext(2)
		if subject.ObserverCount() != 1 {
			t.Fatalf("期望1个上游观察者, 实际%d", subject.ObserverCount())
		}

		d.Dispose()
		if subject.ObserverCount() != 0 {
			t.Error("释放下游句柄应退订整条操作符链")
		}

		subject.OnNext(4)
		rec.expect(t, []interface{}{20}, false)
	})

	t.Run("每订阅状态独立", func(t *testing.T) {
		source := Just(1, 2, 3, 4).Take(2)

		first := newRecorder()
		source.Subscribe(first.observer())
		second := newRecorder()
		source.Subscribe(second.observer())

		first.expect(t, []interface{}{1, 2}, true)
		second.expect(t, []interface{}{1, 2}, true)
	})
}
