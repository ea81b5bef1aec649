package pipeline

import "context"

// inboxBuffer bounds each worker inbox. A full inbox blocks the dispatch
// loop rather than dropping work.
const inboxBuffer = 16

// Queue assigns each incoming transaction id to exactly one worker via
// round-robin over a fixed pool. No reordering, no priority. The rotation
// counter is owned by the single Dispatch goroutine, so it needs no
// synchronization.
type Queue struct {
	inboxes []chan string
}

func NewQueue(workers int) *Queue {
	inboxes := make([]chan string, workers)
	for i := range inboxes {
		inboxes[i] = make(chan string, inboxBuffer)
	}
	return &Queue{inboxes: inboxes}
}

// Inbox returns worker i's receive side.
func (q *Queue) Inbox(i int) <-chan string {
	return q.inboxes[i]
}

// Dispatch forwards ids from in until ctx is cancelled or in closes, then
// closes every inbox so workers drain and exit.
func (q *Queue) Dispatch(ctx context.Context, in <-chan string) {
	defer func() {
		for _, inbox := range q.inboxes {
			close(inbox)
		}
	}()

	next := 0
	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-in:
			if !ok {
				return
			}
			select {
			case q.inboxes[next] <- id:
			case <-ctx.Done():
				return
			}
			next = (next + 1) % len(q.inboxes)
		}
	}
}
