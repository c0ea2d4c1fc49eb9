package queue

import (
	"sync"
)

// ConsumerQueue is an unbounded FIFO queue. Producers never block. After Stop the pending
// items are dropped and consumers are released
type ConsumerQueue[T any] struct {
	lock    *sync.Cond
	data    []T
	stopped bool
}

func NewConsumerQueue[T any]() *ConsumerQueue[T] {
	return &ConsumerQueue[T]{
		lock: sync.NewCond(&sync.Mutex{}),
		data: []T{},
	}
}

// Add appends item and returns false if the queue has already been stopped
func (cq *ConsumerQueue[T]) Add(item T) bool {
	cq.lock.L.Lock()
	defer cq.lock.L.Unlock()

	if cq.stopped {
		return false
	}

	cq.data = append(cq.data, item)
	cq.lock.Signal()

	return true
}

// WaitForItem blocks until an item is available. ok is false once the queue is stopped
func (cq *ConsumerQueue[T]) WaitForItem() (item T, ok bool) {
	cq.lock.L.Lock()
	defer cq.lock.L.Unlock()

	for len(cq.data) == 0 && !cq.stopped {
		cq.lock.Wait()
	}

	if cq.stopped {
		return item, false
	}

	item = cq.data[0]

	var zero T

	cq.data[0] = zero
	cq.data = cq.data[1:]

	return item, true
}

func (cq *ConsumerQueue[T]) Len() int {
	cq.lock.L.Lock()
	defer cq.lock.L.Unlock()

	return len(cq.data)
}

func (cq *ConsumerQueue[T]) Stop() {
	cq.lock.L.Lock()
	cq.stopped = true
	cq.data = nil
	cq.lock.Broadcast()
	cq.lock.L.Unlock()
}
