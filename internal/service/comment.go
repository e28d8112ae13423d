package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/activity-tracker/internal/logger"
	"github.com/iliyamo/activity-tracker/internal/model"
	"github.com/iliyamo/activity-tracker/internal/queue"
	"github.com/iliyamo/activity-tracker/internal/repository"
)

// MaxCommentLen bounds the length of a comment in runes.
const MaxCommentLen = 2000

// CommentThread is a top-level comment with its replies.
type CommentThread struct {
	model.Comment
	Replies []model.Comment
}

// CommentService handles comments on activities.  Threads are one level
// deep: a reply's parent must be a top-level comment of the same activity.
type CommentService struct {
	comments CommentStore
	access   *ActivityService
	events   EventPublisher
	log      *logger.Logger
}

func NewCommentService(comments CommentStore, access *ActivityService, events EventPublisher, log *logger.Logger) *CommentService {
	if log == nil {
		log = logger.NewNop()
	}
	return &CommentService{comments: comments, access: access, events: events, log: log}
}

// Create stores a comment by the caller on activityID.
func (s *CommentService) Create(ctx context.Context, caller Caller, activityID uint64, content string, parentID *uint64, now time.Time) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, Invalid("contenido", "contenido requerido")
	}
	if len([]rune(content)) > MaxCommentLen {
		return nil, Invalid("contenido", "el comentario supera los %d caracteres", MaxCommentLen)
	}
	a, err := s.access.load(ctx, caller, activityID, ActionComment)
	if err != nil {
		return nil, err
	}
	if parentID != nil {
		parent, err := s.comments.GetByID(ctx, *parentID)
		if errors.Is(err, repository.ErrCommentNotFound) {
			return nil, newError(ErrNotFound, "comentario padre no encontrado")
		}
		if err != nil {
			return nil, fmt.Errorf("load parent comment: %w", err)
		}
		if parent.ActivityID != a.ID {
			return nil, Invalid("comentarioPadreId", "el comentario padre pertenece a otra actividad")
		}
		if parent.ParentID != nil {
			return nil, Invalid("comentarioPadreId", "solo se permite un nivel de respuestas")
		}
		if parent.Deleted {
			return nil, Invalid("comentarioPadreId", "el comentario padre fue eliminado")
		}
	}

	c := &model.Comment{ActivityID: a.ID, UserID: caller.ID, ParentID: parentID, Content: content}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	if s.events != nil {
		ev := queue.CommentCreatedEvent{
			CommentID:       c.ID,
			ActivityID:      a.ID,
			ActivityOwnerID: a.UserID,
			AuthorID:        caller.ID,
			ParentID:        parentID,
			CreatedAt:       now.UTC().Format(time.RFC3339),
		}
		if err := s.events.PublishCommentCreated(ctx, ev); err != nil {
			s.log.Warn("publish comment created failed", zap.Uint64("comment_id", c.ID), zap.Error(err))
		}
	}
	return c, nil
}

// List returns the threads of an activity in creation order.  Deleted
// comments keep their place with empty content so replies stay attached.
func (s *CommentService) List(ctx context.Context, caller Caller, activityID uint64) ([]CommentThread, error) {
	a, err := s.access.load(ctx, caller, activityID, ActionRead)
	if err != nil {
		return nil, err
	}
	all, err := s.comments.ListByActivity(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	threads := []CommentThread{}
	index := map[uint64]int{}
	for _, c := range all {
		if c.Deleted {
			c.Content = ""
		}
		if c.ParentID == nil {
			index[c.ID] = len(threads)
			threads = append(threads, CommentThread{Comment: c, Replies: []model.Comment{}})
		}
	}
	for _, c := range all {
		if c.ParentID == nil {
			continue
		}
		i, ok := index[*c.ParentID]
		if !ok || c.Deleted {
			continue
		}
		threads[i].Replies = append(threads[i].Replies, c)
	}
	return threads, nil
}

// Delete soft-deletes a comment written by the caller.
func (s *CommentService) Delete(ctx context.Context, caller Caller, id uint64) error {
	c, err := s.comments.GetByID(ctx, id)
	if errors.Is(err, repository.ErrCommentNotFound) {
		return newError(ErrNotFound, "comentario no encontrado")
	}
	if err != nil {
		return fmt.Errorf("load comment: %w", err)
	}
	if err := Authorize(caller, Resource{Kind: KindComment, OwnerID: c.UserID}, ActionDelete); err != nil {
		return err
	}
	if c.Deleted {
		return nil
	}
	if err := s.comments.SoftDelete(ctx, c.ID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
