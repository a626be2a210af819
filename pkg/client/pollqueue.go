package client

import (
	"container/heap"
	"sync"
	"time"

	"github.com/dwavesystems/dwave-cloud-client-go/pkg/future"
)

// pollItem is one scheduled poll: f is due to be polled at scheduledAt.
// seq breaks ties between items scheduled for the same instant, preserving
// insertion order.
type pollItem struct {
	future      *future.Future
	scheduledAt time.Time
	seq         uint64
}

// itemHeap is a container/heap min-heap over pollItem ordered by
// (scheduledAt, seq). There is no teacher analogue for this: spec.md §4.4's
// poll priority queue has no counterpart in the teacher's worker pool, which
// only ever pulls tasks FIFO.
type itemHeap []*pollItem

func (h itemHeap) Len() int { return len(h) }
func (h itemHeap) Less(i, j int) bool {
	if h[i].scheduledAt.Equal(h[j].scheduledAt) {
		return h[i].seq < h[j].seq
	}
	return h[i].scheduledAt.Before(h[j].scheduledAt)
}
func (h itemHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *itemHeap) Push(x interface{}) {
	*h = append(*h, x.(*pollItem))
}
func (h *itemHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// pollQueue is the blocking priority queue the poll stage workers pull
// from. Push is non-blocking; Pop blocks until an item is available or the
// queue is closed (Go's native equivalent of the "post N sentinels" drain
// protocol spec.md §9 describes for shutdown — closing the queue and
// broadcasting wakes every blocked worker, which then observes it empty and
// returns).
type pollQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  itemHeap
	seq    uint64
	closed bool
}

func newPollQueue() *pollQueue {
	pq := &pollQueue{}
	pq.cond = sync.NewCond(&pq.mu)
	return pq
}

// Push schedules f to be polled at scheduledAt.
func (pq *pollQueue) Push(f *future.Future, scheduledAt time.Time) {
	pq.mu.Lock()
	defer pq.mu.Unlock()
	if pq.closed {
		return
	}
	pq.seq++
	heap.Push(&pq.items, &pollItem{future: f, scheduledAt: scheduledAt, seq: pq.seq})
	pq.cond.Signal()
}

// Pop blocks until the earliest-scheduled item is available or the queue is
// closed and drained, in which case ok is false.
func (pq *pollQueue) Pop() (*pollItem, bool) {
	pq.mu.Lock()
	defer pq.mu.Unlock()
	for len(pq.items) == 0 && !pq.closed {
		pq.cond.Wait()
	}
	if len(pq.items) == 0 {
		return nil, false
	}
	return heap.Pop(&pq.items).(*pollItem), true
}

// DrainWithin non-blockingly pops every item whose scheduledAt falls within
// window of anchor, in priority order, implementing the poll stage's
// grouping window (spec.md §4.4): a batch of problems due at nearly the
// same time is fetched in one request instead of one each.
func (pq *pollQueue) DrainWithin(anchor time.Time, window time.Duration) []*pollItem {
	pq.mu.Lock()
	defer pq.mu.Unlock()
	var drained []*pollItem
	for len(pq.items) > 0 {
		top := pq.items[0]
		if top.scheduledAt.Sub(anchor) > window {
			break
		}
		drained = append(drained, heap.Pop(&pq.items).(*pollItem))
	}
	return drained
}

// Close marks the queue closed and wakes every blocked Pop.
func (pq *pollQueue) Close() {
	pq.mu.Lock()
	pq.closed = true
	pq.mu.Unlock()
	pq.cond.Broadcast()
}

// Len reports the current queue depth.
func (pq *pollQueue) Len() int {
	pq.mu.Lock()
	defer pq.mu.Unlock()
	return len(pq.items)
}
