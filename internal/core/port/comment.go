package port

import (
	"context"

	"todolist/internal/core/domain"
)

type CommentRepository interface {
	Create(ctx context.Context, comment domain.Comment) (domain.Comment, error)
	GetByTodoID(ctx context.Context, todoID string) ([]domain.Comment, error)
}

type CommentService interface {
	Add(ctx context.Context, todoID string, text string) (domain.Comment, error)
	GetByTodoID(ctx context.Context, todoID string) ([]domain.Comment, error)
}
