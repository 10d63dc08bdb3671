package port

import (
	"context"
	"time"

	"todolist/internal/core/domain"
)

type TodoRepository interface {
	Create(ctx context.Context, todo domain.Todo) error
	GetAll(ctx context.Context) ([]domain.Todo, error)
	GetByID(ctx context.Context, id string) (domain.Todo, error)
	Update(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	UpdateStatus(ctx context.Context, id string, completed bool, updatedAt time.Time) (domain.Todo, error)
	Delete(ctx context.Context, id string) error
}

type TodoService interface {
	Create(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	GetAll(ctx context.Context) ([]domain.Todo, error)
	GetByID(ctx context.Context, id string) (domain.Todo, error)
	Update(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	Patch(ctx context.Context, id string, patch domain.TodoPatch) (domain.Todo, error)
	UpdateStatus(ctx context.Context, id string, completed bool) (domain.Todo, error)
	Delete(ctx context.Context, id string) error
}
