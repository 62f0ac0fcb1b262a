package reconciler

import (
	"sync"
	"time"

	ltime "github.com/avdrh/abtest/pkg/time"
)

type Key interface {
	int64 | uint64 | string
}

// ReconcileQueue tracks ids waiting for a reconcile. An id is pending, running or waiting for a retry, never
// more than one of those; Add ignores ids the queue already tracks.
type ReconcileQueue[T Key] struct {
	Pending    map[T]struct{}
	running    map[T]struct{}
	toRetry    map[T]time.Time
	retryDelay time.Duration
	wakeup     chan struct{}
	done       chan struct{}
	closeOnce  sync.Once
	lock       sync.Mutex
}

// ReconcileItemCallback must be called once the item is reconciled. A non-nil error schedules a retry.
type ReconcileItemCallback func(error)

type ReconcileItem[T Key] struct {
	ID       T
	Callback ReconcileItemCallback
}

func NewReconcileQueue[T Key]() *ReconcileQueue[T] {
	q := &ReconcileQueue[T]{
		Pending:    make(map[T]struct{}),
		running:    make(map[T]struct{}),
		toRetry:    make(map[T]time.Time),
		retryDelay: 5 * time.Second,
		wakeup:     make(chan struct{}, 1),
		done:       make(chan struct{}),
	}

	go q.runRetry()

	return q
}

func (q *ReconcileQueue[T]) runRetry() {
	for {
		select {
		case <-q.done:
			return
		default:
		}

		ltime.Sleep(1 * time.Second)
		q.promoteRetries(time.Now())
	}
}

// promoteRetries moves the ids whose retry time has passed back to pending.
func (q *ReconcileQueue[T]) promoteRetries(now time.Time) {
	q.lock.Lock()
	defer q.lock.Unlock()
	for id, retryTime := range q.toRetry {
		if now.After(retryTime) {
			q.Pending[id] = struct{}{}
			delete(q.toRetry, id)
			q.notify()
		}
	}
}

func (q *ReconcileQueue[T]) notify() {
	select {
	case q.wakeup <- struct{}{}:
	default:
	}
}

func (q *ReconcileQueue[T]) Add(id T) {
	q.lock.Lock()
	defer q.lock.Unlock()
	if _, ok := q.Pending[id]; ok {
		return
	}
	if _, ok := q.running[id]; ok {
		return
	}
	if _, ok := q.toRetry[id]; ok {
		return
	}
	q.Pending[id] = struct{}{}
	q.notify()
}

// Len is the number of pending ids.
func (q *ReconcileQueue[T]) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return len(q.Pending)
}

// Pop moves up to max pending ids to running. It blocks while nothing is pending and returns an empty slice
// once the queue is shut down.
func (q *ReconcileQueue[T]) Pop(max int) []ReconcileItem[T] {
	for {
		if ret := q.take(max); len(ret) > 0 {
			return ret
		}
		select {
		case <-q.wakeup:
		case <-q.done:
			return []ReconcileItem[T]{}
		}
	}
}

func (q *ReconcileQueue[T]) take(max int) []ReconcileItem[T] {
	q.lock.Lock()
	defer q.lock.Unlock()

	ret := make([]ReconcileItem[T], 0)
	for id := range q.Pending {
		ret = append(ret, ReconcileItem[T]{
			ID:       id,
			Callback: q.getCallback(id),
		})
		if len(ret) == max {
			break
		}
	}
	for _, item := range ret {
		delete(q.Pending, item.ID)
		q.running[item.ID] = struct{}{}
	}
	return ret
}

// Shutdown releases every Pop waiting on an empty queue and stops the retry loop.
func (q *ReconcileQueue[T]) Shutdown() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}

func (q *ReconcileQueue[T]) getCallback(id T) ReconcileItemCallback {
	return func(err error) {
		q.lock.Lock()
		defer q.lock.Unlock()
		delete(q.running, id)
		if err != nil {
			q.toRetry[id] = time.Now().Add(ltime.JitteredDuration(q.retryDelay))
		}
	}
}
