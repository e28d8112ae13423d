package service

import (
	"context"

	"github.com/iliyamo/activity-tracker/internal/queue"
)

// EventPublisher delivers domain events.  Publishing is best effort:
// failures are logged and never fail the request.
type EventPublisher interface {
	PublishActivitiesSubmitted(ctx context.Context, ev queue.ActivitiesSubmittedEvent) error
	PublishCommentCreated(ctx context.Context, ev queue.CommentCreatedEvent) error
}
