package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const queueKey = "tasks:pending"

var ErrQueueEmpty = errors.New("tasks: queue empty")

// Queue is a FIFO task queue on a redis list. Unlike a fire-and-forget
// goroutine, an enqueued task survives a server restart and can be drained by
// a separate runner process.
type Queue struct {
	client *redis.Client
}

func NewQueue(client *redis.Client) *Queue {
	return &Queue{client: client}
}

func (q *Queue) Enqueue(ctx context.Context, task Task) error {
	b, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, queueKey, b).Err()
}

// Dequeue blocks up to timeout for the next task. ErrQueueEmpty means the
// wait elapsed with nothing to do.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (Task, error) {
	res, err := q.client.BRPop(ctx, timeout, queueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Task{}, ErrQueueEmpty
		}
		return Task{}, err
	}
	// BRPop returns [key, value].
	if len(res) != 2 {
		return Task{}, ErrQueueEmpty
	}

	var task Task
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		return Task{}, err
	}
	return task, nil
}

func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, queueKey).Result()
}
