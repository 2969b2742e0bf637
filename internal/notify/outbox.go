package notify

import (
	"context"
	"sync"
)

// DefaultOutboxLimit caps queued messages per user.
const DefaultOutboxLimit = 64

// Outbox renders presentations and queues them per user until a
// transport drains them. When a queue is full the oldest message is
// dropped.
type Outbox struct {
	render *Renderer
	limit  int

	mu     sync.Mutex
	queues map[int64][]Message
}

func NewOutbox(r *Renderer, limit int) *Outbox {
	if limit <= 0 {
		limit = DefaultOutboxLimit
	}
	return &Outbox{render: r, limit: limit, queues: make(map[int64][]Message)}
}

func (o *Outbox) PresentQuestion(ctx context.Context, v QuestionView) error {
	o.push(v.UserID, o.render.Question(ctx, v))
	return nil
}

func (o *Outbox) PresentResult(ctx context.Context, v ResultView) error {
	o.push(v.UserID, o.render.Result(ctx, v))
	return nil
}

func (o *Outbox) PresentNotice(ctx context.Context, n Notice) error {
	o.push(n.UserID, o.render.Notice(ctx, n))
	return nil
}

func (o *Outbox) push(userID int64, m Message) {
	o.mu.Lock()
	defer o.mu.Unlock()
	q := append(o.queues[userID], m)
	if len(q) > o.limit {
		q = q[len(q)-o.limit:]
	}
	o.queues[userID] = q
}

// Drain returns and clears the user's queued messages.
func (o *Outbox) Drain(userID int64) []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	q := o.queues[userID]
	delete(o.queues, userID)
	return q
}
