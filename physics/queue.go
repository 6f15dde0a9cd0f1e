package physics

// Action is a deferred world mutation.
type Action func(w World)

// Queue holds mutations that could not run because the world was mid-solve.
// It is drained once per tick, before the physics step, by the owner of the
// game loop. Single goroutine only.
type Queue struct {
	pending []Action
	drained int
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{pending: make([]Action, 0, 16)}
}

// Run executes fn now when the world is unlocked, otherwise defers it.
// A nil queue always runs immediately.
func (q *Queue) Run(w World, fn Action) {
	if q == nil || !w.Locked() {
		fn(w)
		return
	}
	q.pending = append(q.pending, fn)
}

// Drain runs all pending actions in FIFO order and returns how many ran.
// Actions queued while draining run in the same call.
func (q *Queue) Drain(w World) int {
	if q == nil {
		return 0
	}
	n := 0
	for len(q.pending) > 0 {
		batch := q.pending
		q.pending = make([]Action, 0, cap(batch))
		for _, fn := range batch {
			fn(w)
			n++
		}
	}
	q.drained += n
	return n
}

// Len returns the number of pending actions.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.pending)
}

// TotalDrained returns the number of actions run by Drain over the queue's life.
func (q *Queue) TotalDrained() int {
	if q == nil {
		return 0
	}
	return q.drained
}
