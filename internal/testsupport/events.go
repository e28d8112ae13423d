package testsupport

import (
	"context"
	"sync"

	"github.com/iliyamo/activity-tracker/internal/queue"
)

// Events records published events.
type Events struct {
	mu        sync.Mutex
	Submitted []queue.ActivitiesSubmittedEvent
	Comments  []queue.CommentCreatedEvent
	Err       error
}

func (e *Events) PublishActivitiesSubmitted(_ context.Context, ev queue.ActivitiesSubmittedEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Submitted = append(e.Submitted, ev)
	return e.Err
}

func (e *Events) PublishCommentCreated(_ context.Context, ev queue.CommentCreatedEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Comments = append(e.Comments, ev)
	return e.Err
}
