package game

import "time"

type scheduledTask struct {
	due time.Time
	fn  func()
}

// TaskQueue holds callbacks scheduled for a later tick: respawn completion,
// eviction disconnects, anything that must not run while a collection is
// being iterated. It is only touched from the serial game loop. Callbacks
// can fire against stale state and must re-check their preconditions.
type TaskQueue struct {
	tasks []scheduledTask
}

func NewTaskQueue() *TaskQueue {
	return &TaskQueue{}
}

// Schedule queues fn to run once delay has elapsed.
func (q *TaskQueue) Schedule(delay time.Duration, fn func()) {
	q.tasks = append(q.tasks, scheduledTask{
		due: time.Now().Add(delay),
		fn:  fn,
	})
}

// RunDue runs every task whose due time has passed and keeps the rest. Tasks
// scheduled by a running callback wait for the next call.
func (q *TaskQueue) RunDue(now time.Time) {
	pending := q.tasks
	q.tasks = nil
	for _, task := range pending {
		if task.due.After(now) {
			q.tasks = append(q.tasks, task)
			continue
		}
		task.fn()
	}
}

// Len returns the number of pending tasks.
func (q *TaskQueue) Len() int {
	return len(q.tasks)
}
