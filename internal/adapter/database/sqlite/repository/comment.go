package repository

import (
	"context"
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

const commentTable = "comments"

var commentColumns = []string{"id", "todoId", "text", "createdAt"}

type CommentRepository struct {
	db        *sqlite.DB
	scanner   *sqlite.Scanner
	telemetry port.Telemetry
}

func NewCommentRepository(db *sqlite.DB, telemetry port.Telemetry) port.CommentRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &CommentRepository{
		db:        db,
		scanner:   sqlite.NewScanner(),
		telemetry: telemetry,
	}
}

func (cr *CommentRepository) Create(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	ctx, span := cr.telemetry.StartRepositorySpan(ctx, "Create", "comment", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     commentTable,
		"db.operation": "INSERT",
		"todo.id":      comment.TodoID,
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := cr.db.QueryBuilder.Insert(commentTable).
		Columns(commentColumns...).
		Values(comment.ID, util.NullIfEmpty(comment.TodoID), util.NullIfEmpty(comment.Text), comment.CreatedAt).
		Suffix("RETURNING " + strings.Join(commentColumns, ", ")).
		ToSql()

	if err != nil {
		return domain.Comment{}, cr.fail(ctx, span, "Create", startTime, fmt.Errorf("build insert: %w", err))
	}

	cr.telemetry.RecordRepositoryQuery(ctx, "Create", "comment", query, args)

	rows, err := cr.db.QueryContext(ctx, query, args...)

	if err != nil {
		return domain.Comment{}, cr.fail(ctx, span, "Create", startTime, fmt.Errorf("insert comment: %w", err))
	}

	defer rows.Close()

	var saved domain.Comment

	if err := cr.scanner.ScanRowToStruct(rows, &saved); err != nil {
		return domain.Comment{}, cr.fail(ctx, span, "Create", startTime, fmt.Errorf("scan comment: %w", err))
	}

	cr.telemetry.RecordBusinessEvent(ctx, "created", "comment", saved.ID, map[string]interface{}{
		"todo_id": saved.TodoID,
	})

	span.SetStatus("ok", "")
	cr.telemetry.RecordRepositoryOperation(ctx, "Create", "comment", time.Since(startTime), nil)

	return saved, nil
}

func (cr *CommentRepository) GetByTodoID(ctx context.Context, todoID string) ([]domain.Comment, error) {
	ctx, span := cr.telemetry.StartRepositorySpan(ctx, "GetByTodoID", "comment", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     commentTable,
		"db.operation": "SELECT",
		"todo.id":      todoID,
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := cr.db.QueryBuilder.Select(commentColumns...).
		From(commentTable).
		Where(sq.Eq{"todoId": todoID}).
		ToSql()

	if err != nil {
		return nil, cr.fail(ctx, span, "GetByTodoID", startTime, fmt.Errorf("build select: %w", err))
	}

	cr.telemetry.RecordRepositoryQuery(ctx, "GetByTodoID", "comment", query, args)

	rows, err := cr.db.QueryContext(ctx, query, args...)

	if err != nil {
		return nil, cr.fail(ctx, span, "GetByTodoID", startTime, fmt.Errorf("select comments: %w", err))
	}

	defer rows.Close()

	comments := make([]domain.Comment, 0)

	if err := cr.scanner.ScanRowsToSlice(rows, &comments); err != nil {
		return nil, cr.fail(ctx, span, "GetByTodoID", startTime, fmt.Errorf("scan comments: %w", err))
	}

	span.SetAttributes(map[string]interface{}{"db.rows_returned": len(comments)})
	span.SetStatus("ok", "")
	cr.telemetry.RecordRepositoryOperation(ctx, "GetByTodoID", "comment", time.Since(startTime), nil)

	return comments, nil
}

func (cr *CommentRepository) fail(ctx context.Context, span port.Span, operation string, startTime time.Time, err error) error {
	span.SetStatus("error", err.Error())
	span.RecordError(err)
	cr.telemetry.RecordRepositoryOperation(ctx, operation, "comment", time.Since(startTime), err)

	return err
}
