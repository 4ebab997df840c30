package kernel

import "sync"

// TimerQueue is a fixed pool of one-shot callbacks kept in a delta list:
// each entry stores its delay relative to the entry before it.
type TimerQueue struct {
	mu   sync.Mutex
	pool []timerEntry
	head int
	n    int
}

type timerEntry struct {
	delay int64
	fn    func()
	next  int
}

// NewTimerQueue returns a queue with room for n pending callbacks.
func NewTimerQueue(n int) *TimerQueue {
	q := &TimerQueue{pool: make([]timerEntry, n), head: -1}
	for i := range q.pool {
		q.pool[i].next = -1
	}
	return q
}

// Cap returns the pool size.
func (q *TimerQueue) Cap() int { return len(q.pool) }

// Len returns the number of pending callbacks.
func (q *TimerQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}

// Add arms fn to run after delay ticks.
//
// A nil fn is ignored and a non-positive delay runs fn immediately.
// Running out of pool entries is fatal.
func (q *TimerQueue) Add(delay int64, fn func()) {
	if fn == nil {
		return
	}
	if delay <= 0 {
		fn()
		return
	}

	q.mu.Lock()
	i := -1
	for j := range q.pool {
		if q.pool[j].fn == nil {
			i = j
			break
		}
	}
	if i < 0 {
		q.mu.Unlock()
		panic(&Fatal{Slot: NoSlot, Reason: "no more time requests"})
	}

	prev, cur := -1, q.head
	for cur >= 0 && q.pool[cur].delay <= delay {
		delay -= q.pool[cur].delay
		prev, cur = cur, q.pool[cur].next
	}
	q.pool[i] = timerEntry{delay: delay, fn: fn, next: cur}
	if prev < 0 {
		q.head = i
	} else {
		q.pool[prev].next = i
	}
	if cur >= 0 {
		q.pool[cur].delay -= delay
	}
	q.n++
	q.mu.Unlock()
}

// Tick advances the queue by one tick and runs every callback that became
// due, in queue order. Callbacks run without the queue lock held, so they
// may call Add.
func (q *TimerQueue) Tick() {
	q.mu.Lock()
	if q.head < 0 {
		q.mu.Unlock()
		return
	}
	q.pool[q.head].delay--

	var due []func()
	for q.head >= 0 && q.pool[q.head].delay <= 0 {
		e := &q.pool[q.head]
		due = append(due, e.fn)
		q.head = e.next
		*e = timerEntry{next: -1}
		q.n--
	}
	q.mu.Unlock()

	for _, fn := range due {
		fn()
	}
}
