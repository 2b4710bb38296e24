package telemetry

// Queue is the in-process event queue. Producers push during a tick and the
// game loop drains it once per tick. Single-threaded.
type Queue struct {
	pending []Event
	spare   []Event
}

// NewQueue creates an empty event queue.
func NewQueue() *Queue {
	return &Queue{
		pending: make([]Event, 0, 32),
		spare:   make([]Event, 0, 32),
	}
}

// Push appends an event.
func (q *Queue) Push(e Event) {
	q.pending = append(q.pending, e)
}

// Len returns the pending event count.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Consume returns all pending events in FIFO order and empties the queue.
// The returned slice is only valid until the next Consume.
func (q *Queue) Consume() []Event {
	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = q.spare[:0]
	q.spare = out
	return out
}

// Drain consumes events until the queue is empty, passing each to handle.
// Events pushed by handle are processed in the same drain.
func (q *Queue) Drain(handle func(Event)) int {
	n := 0
	for {
		batch := q.Consume()
		if len(batch) == 0 {
			return n
		}
		for _, e := range batch {
			handle(e)
			n++
		}
	}
}
