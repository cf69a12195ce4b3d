package worker

import "context"

// Queue is a simple in-memory job queue between the scheduler and the run
// loop. Rotations execute sequentially in submission order.
type Queue struct {
	Ch chan Job
}

func NewQueue(size int) *Queue {
	return &Queue{Ch: make(chan Job, size)}
}

func (q *Queue) Push(j Job) {
	q.Ch <- j
}

func (q *Queue) Pop(ctx context.Context) (Job, bool) {
	select {
	case j := <-q.Ch:
		return j, true
	case <-ctx.Done():
		return Job{}, false
	}
}
