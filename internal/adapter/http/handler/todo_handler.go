package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	. "todolist/internal/adapter/http/helper"
	"todolist/internal/core/model/request"
	"todolist/internal/core/model/response"
	"todolist/internal/core/port"
	"todolist/internal/core/util"
	"todolist/pkg/logger"
	. "todolist/pkg/tracing"
)

// TodoHandler serves the JSON API under /api/todos.
type TodoHandler struct {
	svc    port.TodoService
	Logger *logger.Logger
}

func NewTodoHandler(svc port.TodoService, log *logger.Logger) *TodoHandler {
	if log == nil {
		log = logger.NewNop()
	}

	return &TodoHandler{
		svc:    svc,
		Logger: log,
	}
}

func (t *TodoHandler) GetAllTodos(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.GetAllTodos", []attribute.KeyValue{
		attribute.String("handler.operation", "GetAllTodos"),
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
	})

	defer span.End()

	todos, err := t.svc.GetAll(ctx)

	if err != nil {
		AddSpanError(span, err)
		t.Logger.Logger.Ctx(ctx).Error("Failed to get todos", zap.Error(err))
		SendInternalError(c, "Error getting todos")
		return
	}

	span.SetAttributes(attribute.Int("todo.count", len(todos)))

	SendSuccess(c, http.StatusOK, response.NewTodoResponses(todos))
}

func (t *TodoHandler) CreateTodo(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.CreateTodo", []attribute.KeyValue{
		attribute.String("handler.operation", "CreateTodo"),
	})

	defer span.End()

	params, err := util.ParamsToMap[request.TodoRequest](c)

	if err != nil {
		SendBadRequestError(c, "Invalid request body")
		return
	}

	todo, err := t.svc.Create(ctx, params.ToTodo())

	if err != nil {
		AddSpanError(span, err)
		SendServiceError(c, err, "Error creating todo")
		return
	}

	span.SetAttributes(attribute.String("todo.id", todo.ID))

	SendSuccess(c, http.StatusCreated, response.ActionResult{Success: true, ID: todo.ID})
}

func (t *TodoHandler) GetTodo(c *gin.Context) {
	id := c.Param("id")

	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.GetTodo", []attribute.KeyValue{
		attribute.String("todo.id", id),
	})

	defer span.End()

	if id == "" {
		SendBadRequestError(c, "id is required")
		return
	}

	todo, err := t.svc.GetByID(ctx, id)

	if err != nil {
		AddSpanError(span, err)
		SendServiceError(c, err, "Error getting todo")
		return
	}

	SendSuccess(c, http.StatusOK, response.NewTodoResponse(todo))
}

// UpdateTodo merges the body over the stored todo; absent fields keep their
// values.
func (t *TodoHandler) UpdateTodo(c *gin.Context) {
	id := c.Param("id")

	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.UpdateTodo", []attribute.KeyValue{
		attribute.String("todo.id", id),
	})

	defer span.End()

	params, err := util.ParamsToMap[request.TodoRequest](c)

	if err != nil {
		SendBadRequestError(c, "Invalid request body")
		return
	}

	if _, err := t.svc.Patch(ctx, id, params.ToPatch()); err != nil {
		AddSpanError(span, err)
		SendServiceError(c, err, "Error updating todo")
		return
	}

	SendSuccess(c, http.StatusOK, response.ActionResult{Success: true})
}

func (t *TodoHandler) DeleteTodo(c *gin.Context) {
	id := c.Param("id")

	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.DeleteTodo", []attribute.KeyValue{
		attribute.String("todo.id", id),
	})

	defer span.End()

	if id == "" {
		SendBadRequestError(c, "id is required")
		return
	}

	if err := t.svc.Delete(ctx, id); err != nil {
		AddSpanError(span, err)
		SendServiceError(c, err, "Error deleting todo")
		return
	}

	SendSuccess(c, http.StatusOK, response.ActionResult{Success: true})
}
