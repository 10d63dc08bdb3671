package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"todolist/internal/core/domain"
	"todolist/internal/core/port"
	tel "todolist/internal/core/telemetry"
)

type CommentService struct {
	repo      port.CommentRepository
	telemetry port.Telemetry
	logger    *otelzap.Logger
}

func NewCommentService(repo port.CommentRepository, telemetry port.Telemetry, logger *otelzap.Logger) *CommentService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}

	return &CommentService{
		repo:      repo,
		telemetry: telemetry,
		logger:    logger,
	}
}

// Add does not check that the todo exists.
func (cs *CommentService) Add(ctx context.Context, todoID string, text string) (domain.Comment, error) {
	ctx, span := cs.telemetry.StartServiceSpan(ctx, "comment", "Add", map[string]interface{}{
		"todo.id": todoID,
	})
	defer span.End()

	startTime := time.Now()

	comment, err := cs.repo.Create(ctx, domain.Comment{
		ID:        uuid.NewString(),
		TodoID:    todoID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})

	cs.telemetry.RecordServiceOperation(ctx, "comment", "Add", time.Since(startTime), err)

	if err != nil {
		cs.logger.Ctx(ctx).Error("Error adding comment", zap.Error(err), zap.String("todo_id", todoID))
		return domain.Comment{}, err
	}

	return comment, nil
}

func (cs *CommentService) GetByTodoID(ctx context.Context, todoID string) ([]domain.Comment, error) {
	comments, err := cs.repo.GetByTodoID(ctx, todoID)

	if err != nil {
		cs.logger.Ctx(ctx).Error("Error listing comments", zap.Error(err), zap.String("todo_id", todoID))
		return nil, err
	}

	return comments, nil
}
