// Package mailbox provides the blocking FIFO queue that is the only means of
// communication between the simulation, render and presentation goroutines.
package mailbox

import "sync"

// Mailbox is an unbounded, strictly FIFO, multi-producer single-consumer queue.
// Send never blocks; Take blocks the consumer until a message is available.
// Messages are never dropped or reordered while the mailbox is open.
type Mailbox[T any] struct {
	mu     sync.Mutex
	ready  *sync.Cond
	queue  []T
	head   int
	closed bool
}

// New creates an empty open mailbox.
func New[T any]() *Mailbox[T] {
	m := &Mailbox[T]{}
	m.ready = sync.NewCond(&m.mu)
	return m
}

// Send enqueues a message. It returns false, dropping the message, when the
// mailbox is already closed: a late sender racing a shutdown is not an error.
func (m *Mailbox[T]) Send(msg T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false
	}
	m.queue = append(m.queue, msg)
	m.ready.Signal()
	return true
}

// Take blocks until a message is available and dequeues it.
// After Close, remaining messages are still delivered; once drained, Take
// returns the zero value and false.
func (m *Mailbox[T]) Take() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for m.head == len(m.queue) && !m.closed {
		m.ready.Wait()
	}
	return m.pop()
}

// TryTake dequeues a message without blocking.
func (m *Mailbox[T]) TryTake() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.pop()
}

// pop must be called with the lock held.
func (m *Mailbox[T]) pop() (T, bool) {
	var zero T
	if m.head == len(m.queue) {
		return zero, false
	}
	msg := m.queue[m.head]
	m.queue[m.head] = zero
	m.head++

	// Reclaim the consumed prefix once it dominates the backing array.
	if m.head == len(m.queue) {
		m.queue = m.queue[:0]
		m.head = 0
	} else if m.head > 1024 && m.head*2 > len(m.queue) {
		n := copy(m.queue, m.queue[m.head:])
		clear(m.queue[n:])
		m.queue = m.queue[:n]
		m.head = 0
	}
	return msg, true
}

// Len returns the number of queued messages.
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.queue) - m.head
}

// Close stops accepting messages and wakes a blocked consumer.
// Closing twice is a no-op.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.ready.Broadcast()
}

// Closed reports whether Close has been called.
func (m *Mailbox[T]) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closed
}
