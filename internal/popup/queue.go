package popup

import (
	"container/list"
	"time"
)

// Queue is a FIFO of popups. Only the head animates.
type Queue struct {
	items *list.List // of *Popup
	limit int        // 0 = unbounded
}

// NewQueue creates an empty, unbounded queue.
func NewQueue() *Queue {
	return &Queue{items: list.New()}
}

// SetLimit caps the number of queued popups. Zero disables the cap.
func (q *Queue) SetLimit(n int) {
	if n < 0 {
		n = 0
	}
	q.limit = n
}

// Push appends a popup to the tail.
// When a limit is set and exceeded, the oldest waiting popup (never the head) is
// dropped and returned. With a limit of 1 the only waiting popup is p itself,
// so p is the one dropped.
func (q *Queue) Push(p *Popup) (dropped *Popup) {
	q.items.PushBack(p)
	if q.limit == 0 || q.items.Len() <= q.limit || q.items.Len() < 2 {
		return nil
	}
	victim := q.items.Front().Next()
	q.items.Remove(victim)
	return victim.Value.(*Popup)
}

// Tick advances the head popup. A finished head is evicted and the next
// popup's clock restarts at now so it plays its slide-in from the beginning.
func (q *Queue) Tick(now time.Time) {
	front := q.items.Front()
	if front == nil {
		return
	}
	head := front.Value.(*Popup)
	head.Tick(now)
	if !head.IsDone() {
		return
	}
	q.items.Remove(front)
	if next := q.items.Front(); next != nil {
		next.Value.(*Popup).restart(now)
	}
}

// Current returns the head popup, or nil when the queue is empty.
func (q *Queue) Current() *Popup {
	front := q.items.Front()
	if front == nil {
		return nil
	}
	return front.Value.(*Popup)
}

// Len returns the number of queued popups including the head.
func (q *Queue) Len() int {
	return q.items.Len()
}

// Clear removes every popup.
func (q *Queue) Clear() {
	q.items.Init()
}
