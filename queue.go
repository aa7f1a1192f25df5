// Priority queue of scheduled items for rxcore
// 调度项优先队列：按到期时间出队，已取消的项以墓碑方式留在队列中由调用方跳过
package rxcore

import "container/heap"

// ============================================================================
// 调度项优先队列
// ============================================================================

// scheduledQueue 按CompareTo排序的最小堆
// 本身不做并发保护，由持有它的调度器加锁；取消不修改队列结构，
// 调用方在弹出时检查IsCancelled并跳过
type scheduledQueue struct {
	items scheduledItemHeap
}

// newScheduledQueue 创建空队列
func newScheduledQueue() *scheduledQueue {
	return &scheduledQueue{}
}

// Enqueue 入队
func (q *scheduledQueue) Enqueue(item *ScheduledItem) {
	heap.Push(&q.items, item)
}

// Dequeue 弹出到期时间最小的项，队列为空时返回false
func (q *scheduledQueue) Dequeue() (*ScheduledItem, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	return heap.Pop(&q.items).(*ScheduledItem), true
}

// Peek 查看队首而不弹出
func (q *scheduledQueue) Peek() (*ScheduledItem, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	return q.items[0], true
}

// Len 当前队列长度，包含已取消但尚未弹出的墓碑项
func (q *scheduledQueue) Len() int {
	return len(q.items)
}

// scheduledItemHeap heap.Interface实现
type scheduledItemHeap []*ScheduledItem

func (h scheduledItemHeap) Len() int           { return len(h) }
func (h scheduledItemHeap) Less(i, j int) bool { return h[i].CompareTo(h[j]) < 0 }
func (h scheduledItemHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *scheduledItemHeap) Push(x interface{}) {
	*h = append(*h, x.(*ScheduledItem))
}

func (h *scheduledItemHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
