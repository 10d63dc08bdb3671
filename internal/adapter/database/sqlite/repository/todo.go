package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"todolist/internal/adapter/database/sqlite"
	"todolist/internal/core/domain"
	"todolist/internal/core/port"
	tel "todolist/internal/core/telemetry"
	"todolist/internal/core/util"
)

const todoTable = "todolist"

var todoColumns = []string{
	"id", "title", "name", "date", "dueDate", "images",
	"description", "completed", "createdAt", "updatedAt",
}

type TodoRepository struct {
	db        *sqlite.DB
	scanner   *sqlite.Scanner
	telemetry port.Telemetry
}

func NewTodoRepository(db *sqlite.DB, telemetry port.Telemetry) port.TodoRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoRepository{
		db:        db,
		scanner:   sqlite.NewScanner(),
		telemetry: telemetry,
	}
}

func (tr *TodoRepository) Create(ctx context.Context, todo domain.Todo) error {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Create", "todo", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     todoTable,
		"db.operation": "INSERT",
		"todo.id":      todo.ID,
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Insert(todoTable).
		Columns(todoColumns...).
		Values(
			todo.ID,
			util.NullIfEmpty(todo.Title),
			util.NullIfEmpty(todo.Name),
			util.NullTime(todo.Date),
			util.NullTimePtr(todo.DueDate),
			todo.Images,
			util.NullIfEmpty(todo.Description),
			todo.Completed,
			todo.CreatedAt,
			util.NullTimePtr(todo.UpdatedAt),
		).
		ToSql()

	if err != nil {
		return tr.fail(ctx, span, "Create", startTime, fmt.Errorf("build insert: %w", err))
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Create", "todo", query, args)

	if _, err := tr.db.ExecContext(ctx, query, args...); err != nil {
		return tr.fail(ctx, span, "Create", startTime, fmt.Errorf("insert todo %s: %w", todo.ID, err))
	}

	tr.telemetry.RecordBusinessEvent(ctx, "created", "todo", todo.ID, map[string]interface{}{
		"images": len(todo.Images),
	})

	tr.succeed(ctx, span, "Create", startTime)
	return nil
}

func (tr *TodoRepository) GetAll(ctx context.Context) ([]domain.Todo, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "GetAll", "todo", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     todoTable,
		"db.operation": "SELECT",
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Select(todoColumns...).From(todoTable).ToSql()

	if err != nil {
		return nil, tr.fail(ctx, span, "GetAll", startTime, fmt.Errorf("build select: %w", err))
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "GetAll", "todo", query, args)

	rows, err := tr.db.QueryContext(ctx, query, args...)

	if err != nil {
		return nil, tr.fail(ctx, span, "GetAll", startTime, fmt.Errorf("select todos: %w", err))
	}

	defer rows.Close()

	todos := make([]domain.Todo, 0)

	if err := tr.scanner.ScanRowsToSlice(rows, &todos); err != nil {
		return nil, tr.fail(ctx, span, "GetAll", startTime, fmt.Errorf("scan todos: %w", err))
	}

	span.SetAttributes(map[string]interface{}{"db.rows_returned": len(todos)})
	tr.succeed(ctx, span, "GetAll", startTime)

	return todos, nil
}

func (tr *TodoRepository) GetByID(ctx context.Context, id string) (domain.Todo, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "GetByID", "todo", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     todoTable,
		"db.operation": "SELECT",
		"todo.id":      id,
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Select(todoColumns...).
		From(todoTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "GetByID", startTime, fmt.Errorf("build select: %w", err))
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "GetByID", "todo", query, args)

	todo, err := tr.queryOne(ctx, query, args)

	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "GetByID", startTime, err)
	}

	tr.succeed(ctx, span, "GetByID", startTime)
	return todo, nil
}

// Update overwrites every mutable column and returns the row as written by
// the same statement. CreatedAt is never touched.
func (tr *TodoRepository) Update(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Update", "todo", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     todoTable,
		"db.operation": "UPDATE",
		"todo.id":      todo.ID,
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Update(todoTable).
		SetMap(map[string]interface{}{
			"title":       util.NullIfEmpty(todo.Title),
			"name":        util.NullIfEmpty(todo.Name),
			"date":        util.NullTime(todo.Date),
			"dueDate":     util.NullTimePtr(todo.DueDate),
			"images":      todo.Images,
			"description": util.NullIfEmpty(todo.Description),
			"completed":   todo.Completed,
			"updatedAt":   util.NullTimePtr(todo.UpdatedAt),
		}).
		Where(sq.Eq{"id": todo.ID}).
		Suffix("RETURNING " + strings.Join(todoColumns, ", ")).
		ToSql()

	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "Update", startTime, fmt.Errorf("build update: %w", err))
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Update", "todo", query, args)

	updated, err := tr.queryOne(ctx, query, args)

	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "Update", startTime, err)
	}

	tr.telemetry.RecordBusinessEvent(ctx, "updated", "todo", updated.ID, nil)
	tr.succeed(ctx, span, "Update", startTime)

	return updated, nil
}

func (tr *TodoRepository) UpdateStatus(ctx context.Context, id string, completed bool, updatedAt time.Time) (domain.Todo, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "UpdateStatus", "todo", map[string]interface{}{
		"db.system":      "sqlite",
		"db.table":       todoTable,
		"db.operation":   "UPDATE",
		"todo.id":        id,
		"todo.completed": completed,
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Update(todoTable).
		Set("completed", completed).
		Set("updatedAt", updatedAt).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(todoColumns, ", ")).
		ToSql()

	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "UpdateStatus", startTime, fmt.Errorf("build update: %w", err))
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "UpdateStatus", "todo", query, args)

	updated, err := tr.queryOne(ctx, query, args)

	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "UpdateStatus", startTime, err)
	}

	tr.telemetry.RecordBusinessEvent(ctx, "status_changed", "todo", id, map[string]interface{}{
		"completed": completed,
	})
	tr.succeed(ctx, span, "UpdateStatus", startTime)

	return updated, nil
}

// Delete is a no-op for unknown ids. Comments are left in place.
func (tr *TodoRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Delete", "todo", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     todoTable,
		"db.operation": "DELETE",
		"todo.id":      id,
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Delete(todoTable).Where(sq.Eq{"id": id}).ToSql()

	if err != nil {
		return tr.fail(ctx, span, "Delete", startTime, fmt.Errorf("build delete: %w", err))
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Delete", "todo", query, args)

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		return tr.fail(ctx, span, "Delete", startTime, fmt.Errorf("delete todo %s: %w", id, err))
	}

	if affected, err := result.RowsAffected(); err == nil {
		span.SetAttributes(map[string]interface{}{"db.rows_affected": affected})
	}

	tr.telemetry.RecordBusinessEvent(ctx, "deleted", "todo", id, nil)
	tr.succeed(ctx, span, "Delete", startTime)

	return nil
}

func (tr *TodoRepository) queryOne(ctx context.Context, query string, args []interface{}) (domain.Todo, error) {
	rows, err := tr.db.QueryContext(ctx, query, args...)

	if err != nil {
		return domain.Todo{}, fmt.Errorf("query todo: %w", err)
	}

	defer rows.Close()

	var todo domain.Todo

	if err := tr.scanner.ScanRowToStruct(rows, &todo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Todo{}, domain.ErrTodoNotFound
		}

		return domain.Todo{}, fmt.Errorf("scan todo: %w", err)
	}

	return todo, nil
}

func (tr *TodoRepository) fail(ctx context.Context, span port.Span, operation string, startTime time.Time, err error) error {
	if errors.Is(err, domain.ErrTodoNotFound) {
		span.SetAttributes(map[string]interface{}{"db.found": false})
		tr.telemetry.RecordRepositoryOperation(ctx, operation, "todo", time.Since(startTime), nil)
		return err
	}

	span.SetStatus("error", err.Error())
	span.RecordError(err)
	tr.telemetry.RecordRepositoryOperation(ctx, operation, "todo", time.Since(startTime), err)

	return err
}

func (tr *TodoRepository) succeed(ctx context.Context, span port.Span, operation string, startTime time.Time) {
	span.SetStatus("ok", "")
	tr.telemetry.RecordRepositoryOperation(ctx, operation, "todo", time.Since(startTime), nil)
}
