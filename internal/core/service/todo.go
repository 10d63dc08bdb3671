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

type TodoService struct {
	repo      port.TodoRepository
	telemetry port.Telemetry
	logger    *otelzap.Logger
	now       func() time.Time
}

func NewTodoService(repo port.TodoRepository, telemetry port.Telemetry, logger *otelzap.Logger) *TodoService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}

	return &TodoService{
		repo:      repo,
		telemetry: telemetry,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create assigns the id and both timestamps; any id on the input is replaced.
func (ts *TodoService) Create(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "todo", "Create", nil)
	defer span.End()

	startTime := time.Now()
	now := ts.now()

	todo.ID = uuid.NewString()
	todo.CreatedAt = now
	todo.UpdatedAt = &now

	if todo.Images == nil {
		todo.Images = domain.Images{}
	}

	err := ts.repo.Create(ctx, todo)
	ts.telemetry.RecordServiceOperation(ctx, "todo", "Create", time.Since(startTime), err)

	if err != nil {
		ts.logger.Ctx(ctx).Error("Error creating todo", zap.Error(err), zap.String("todo_id", todo.ID))
		return domain.Todo{}, err
	}

	return todo, nil
}

func (ts *TodoService) GetAll(ctx context.Context) ([]domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "todo", "GetAll", nil)
	defer span.End()

	startTime := time.Now()

	todos, err := ts.repo.GetAll(ctx)
	ts.telemetry.RecordServiceOperation(ctx, "todo", "GetAll", time.Since(startTime), err)

	if err != nil {
		ts.logger.Ctx(ctx).Error("Error listing todos", zap.Error(err))
		return nil, err
	}

	return todos, nil
}

func (ts *TodoService) GetByID(ctx context.Context, id string) (domain.Todo, error) {
	return ts.repo.GetByID(ctx, id)
}

// Update writes the whole record and stamps UpdatedAt.
func (ts *TodoService) Update(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "todo", "Update", map[string]interface{}{
		"todo.id": todo.ID,
	})
	defer span.End()

	startTime := time.Now()
	now := ts.now()
	todo.UpdatedAt = &now

	updated, err := ts.repo.Update(ctx, todo)
	ts.telemetry.RecordServiceOperation(ctx, "todo", "Update", time.Since(startTime), err)

	if err != nil {
		ts.logger.Ctx(ctx).Warn("Error updating todo", zap.Error(err), zap.String("todo_id", todo.ID))
		return domain.Todo{}, err
	}

	return updated, nil
}

// Patch merges the set fields of patch over the stored row, then writes the
// whole row. Concurrent writers are not serialized; the last one wins.
func (ts *TodoService) Patch(ctx context.Context, id string, patch domain.TodoPatch) (domain.Todo, error) {
	existing, err := ts.repo.GetByID(ctx, id)

	if err != nil {
		return domain.Todo{}, err
	}

	return ts.Update(ctx, existing.Merge(patch))
}

func (ts *TodoService) UpdateStatus(ctx context.Context, id string, completed bool) (domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "todo", "UpdateStatus", map[string]interface{}{
		"todo.id":        id,
		"todo.completed": completed,
	})
	defer span.End()

	startTime := time.Now()

	updated, err := ts.repo.UpdateStatus(ctx, id, completed, ts.now())
	ts.telemetry.RecordServiceOperation(ctx, "todo", "UpdateStatus", time.Since(startTime), err)

	if err != nil {
		ts.logger.Ctx(ctx).Warn("Error updating todo status", zap.Error(err), zap.String("todo_id", id))
		return domain.Todo{}, err
	}

	return updated, nil
}

func (ts *TodoService) Delete(ctx context.Context, id string) error {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "todo", "Delete", map[string]interface{}{
		"todo.id": id,
	})
	defer span.End()

	startTime := time.Now()

	err := ts.repo.Delete(ctx, id)
	ts.telemetry.RecordServiceOperation(ctx, "todo", "Delete", time.Since(startTime), err)

	if err != nil {
		ts.logger.Ctx(ctx).Error("Error deleting todo", zap.Error(err), zap.String("todo_id", id))
	}

	return err
}
