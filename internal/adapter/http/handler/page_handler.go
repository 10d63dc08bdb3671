package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	. "todolist/internal/adapter/http/helper"
	"todolist/internal/adapter/http/store"
	"todolist/internal/adapter/storage"
	"todolist/internal/core/domain"
	"todolist/internal/core/model/request"
	"todolist/internal/core/model/response"
	"todolist/internal/core/port"
	"todolist/internal/core/util"
	"todolist/pkg/logger"
	. "todolist/pkg/tracing"
)

// PageHandler renders the HTML pages and runs their form actions. It owns
// the UI store; pages embed a snapshot of it for client hydration.
type PageHandler struct {
	todos    port.TodoService
	comments port.CommentService
	images   port.ImageStorage
	store    *store.Store
	Logger   *logger.Logger
}

type pageState struct {
	Todos      []response.TodoResponse    `json:"todos"`
	Comments   []response.CommentResponse `json:"comments"`
	SelectedID string                     `json:"selectedId,omitempty"`
}

type pageData struct {
	Title      string
	Todos      []response.TodoResponse
	Todo       *response.TodoResponse
	Comments   []response.CommentResponse
	SelectedID string
	Status     int
	Message    string
	State      pageState
}

func NewPageHandler(todos port.TodoService, comments port.CommentService, images port.ImageStorage, uiStore *store.Store, log *logger.Logger) *PageHandler {
	if uiStore == nil {
		uiStore = store.New()
	}

	if log == nil {
		log = logger.NewNop()
	}

	return &PageHandler{
		todos:    todos,
		comments: comments,
		images:   images,
		store:    uiStore,
		Logger:   log,
	}
}

func (h *PageHandler) Store() *store.Store {
	return h.store
}

func (h *PageHandler) render(c *gin.Context, status int, name string, data pageData) {
	snapshot := h.store.Snapshot()

	data.State = pageState{
		Todos:      response.NewTodoResponses(snapshot.Todos),
		Comments:   response.NewCommentResponses(snapshot.Comments),
		SelectedID: data.SelectedID,
	}

	c.HTML(status, name, data)
}

func (h *PageHandler) renderError(c *gin.Context, status int, message string) {
	h.render(c, status, "error.html", pageData{
		Title:   http.StatusText(status),
		Status:  status,
		Message: message,
	})
}

// loadTodos reads every todo and refreshes the store with them.
func (h *PageHandler) loadTodos(ctx context.Context) ([]domain.Todo, error) {
	todos, err := h.todos.GetAll(ctx)

	if err != nil {
		return nil, err
	}

	h.store.SetTodos(todos)

	return todos, nil
}

// saveUploads stores every non-empty file of field and returns their public
// paths in upload order. Non-multipart requests carry no files.
func (h *PageHandler) saveUploads(c *gin.Context, field string, name func(string) string) ([]string, error) {
	paths := []string{}

	form, err := c.MultipartForm()

	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return paths, nil
		}

		return nil, fmt.Errorf("parse multipart form: %w", err)
	}

	for _, header := range form.File[field] {
		if header.Size == 0 {
			continue
		}

		file, err := header.Open()

		if err != nil {
			return nil, fmt.Errorf("open upload %s: %w", header.Filename, err)
		}

		path, err := h.images.Save(c.Request.Context(), name(header.Filename), file)
		file.Close()

		if err != nil {
			return nil, err
		}

		paths = append(paths, path)
	}

	return paths, nil
}

func (h *PageHandler) fail(c *gin.Context, err error, message string) {
	h.Logger.ErrorWithTrace(c.Request.Context(), message, zap.Error(err), zap.String("path", c.FullPath()))
	SendActionError(c, StatusFor(err), message)
}

// Index renders "/" with every todo.
func (h *PageHandler) Index(c *gin.Context) {
	todos, err := h.loadTodos(c.Request.Context())

	if err != nil {
		h.Logger.ErrorWithTrace(c.Request.Context(), "Failed to load todos", zap.Error(err))
		h.renderError(c, http.StatusInternalServerError, "Failed to load todos")
		return
	}

	h.store.SetComments(nil)

	h.render(c, http.StatusOK, "index.html", pageData{
		Todos: response.NewTodoResponses(todos),
	})
}

// Create saves the optional "image" upload and inserts a new open todo.
func (h *PageHandler) Create(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.page.Create", nil)
	defer span.End()

	var form request.TodoFields

	if err := c.ShouldBind(&form); err != nil {
		SendActionError(c, http.StatusBadRequest, "Invalid form")
		return
	}

	todo, err := form.ToTodo()

	if err != nil {
		SendActionError(c, http.StatusBadRequest, "Invalid date")
		return
	}

	images, err := h.saveUploads(c, "image", storage.PrefixedName)

	if err != nil {
		AddSpanError(span, err)
		h.fail(c, err, "Failed to save image")
		return
	}

	if len(images) > 0 {
		todo.Images = domain.Images(images)
	}

	todo.Completed = false

	created, err := h.todos.Create(ctx, todo)

	if err != nil {
		AddSpanError(span, err)
		h.fail(c, err, "Failed to create todo")
		return
	}

	h.store.AddTodo(created)

	SendActionResult(c, response.ActionResult{Success: true, ID: created.ID}, "/")
}

// Update overwrites the whole todo named by the "id" field.
func (h *PageHandler) Update(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.page.Update", nil)
	defer span.End()

	var form request.TodoForm

	if err := c.ShouldBind(&form); err != nil {
		SendActionError(c, http.StatusBadRequest, "Invalid form")
		return
	}

	todo, err := form.ToTodo()

	if err != nil {
		SendActionError(c, http.StatusBadRequest, "Invalid date")
		return
	}

	span.SetAttributes(attribute.String("todo.id", todo.ID))

	if _, err := h.todos.Update(ctx, todo); err != nil {
		AddSpanError(span, err)
		h.fail(c, err, "Failed to update todo")
		return
	}

	h.store.Invalidate()

	SendActionResult(c, response.ActionResult{Success: true}, "/")
}

func (h *PageHandler) Delete(c *gin.Context) {
	var form request.DeleteForm

	if err := c.ShouldBind(&form); err != nil {
		SendActionError(c, http.StatusBadRequest, "Invalid form")
		return
	}

	if err := h.todos.Delete(c.Request.Context(), form.ID); err != nil {
		h.fail(c, err, "Failed to delete todo")
		return
	}

	h.store.Invalidate()

	SendActionResult(c, response.ActionResult{Success: true}, "/")
}

// UpdateStatus sets completed to whether the "completed" field is "true".
func (h *PageHandler) UpdateStatus(c *gin.Context) {
	var form request.StatusForm

	if err := c.ShouldBind(&form); err != nil {
		SendActionError(c, http.StatusBadRequest, "Invalid form")
		return
	}

	completed := util.ParseBool(form.Completed)

	if _, err := h.todos.UpdateStatus(c.Request.Context(), form.ID, completed); err != nil {
		h.fail(c, err, "Failed to update status")
		return
	}

	h.store.UpdateTodoStatus(form.ID, completed)

	SendActionResult(c, response.ActionResult{Success: true}, "/")
}

func (h *PageHandler) AddComment(c *gin.Context) {
	var form request.CommentForm

	if err := c.ShouldBind(&form); err != nil {
		SendActionError(c, http.StatusBadRequest, "Invalid form")
		return
	}

	comment, err := h.comments.Add(c.Request.Context(), form.TodoID, form.Comment)

	if err != nil {
		h.fail(c, err, "Failed to add comment")
		return
	}

	h.store.AddComment(comment)

	SendActionResult(c, response.ActionResult{Success: true}, "/")
}

// TodosLayout renders "/todos" with nothing selected.
func (h *PageHandler) TodosLayout(c *gin.Context) {
	todos, err := h.loadTodos(c.Request.Context())

	if err != nil {
		h.Logger.ErrorWithTrace(c.Request.Context(), "Failed to load todos", zap.Error(err))
		h.renderError(c, http.StatusInternalServerError, "Failed to load todos")
		return
	}

	h.store.SetComments(nil)

	h.render(c, http.StatusOK, "todos.html", pageData{
		Title: "Todos",
		Todos: response.NewTodoResponses(todos),
	})
}

// TodosDetail renders "/todos/:id". A missing todo still renders the list.
func (h *PageHandler) TodosDetail(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	todos, err := h.loadTodos(ctx)

	if err != nil {
		h.Logger.ErrorWithTrace(ctx, "Failed to load todos", zap.Error(err))
		h.renderError(c, http.StatusInternalServerError, "Failed to load todos")
		return
	}

	data := pageData{
		Title:      "Todos",
		Todos:      response.NewTodoResponses(todos),
		Comments:   []response.CommentResponse{},
		SelectedID: id,
	}

	todo, err := h.todos.GetByID(ctx, id)

	switch {
	case errors.Is(err, domain.ErrTodoNotFound):
		h.store.SetComments(nil)
	case err != nil:
		h.Logger.ErrorWithTrace(ctx, "Failed to load todo", zap.Error(err), zap.String("todo_id", id))
		h.renderError(c, http.StatusInternalServerError, "Failed to load todo")
		return
	default:
		comments, err := h.comments.GetByTodoID(ctx, todo.ID)

		if err != nil {
			h.Logger.ErrorWithTrace(ctx, "Failed to load comments", zap.Error(err), zap.String("todo_id", id))
			h.renderError(c, http.StatusInternalServerError, "Failed to load comments")
			return
		}

		h.store.SetComments(comments)

		selected := response.NewTodoResponse(todo)
		data.Title = todo.Title
		data.Todo = &selected
		data.Comments = response.NewCommentResponses(comments)
	}

	h.render(c, http.StatusOK, "todos.html", data)
}

func (h *PageHandler) TodosAddComment(c *gin.Context) {
	id := c.Param("id")

	var form request.CommentForm

	if err := c.ShouldBind(&form); err != nil {
		SendActionError(c, http.StatusBadRequest, "Invalid form")
		return
	}

	comment, err := h.comments.Add(c.Request.Context(), id, form.Comment)

	if err != nil {
		h.fail(c, err, "Failed to add comment")
		return
	}

	h.store.AddComment(comment)

	c.Redirect(http.StatusSeeOther, "/todos/"+id)
}

func (h *PageHandler) TodosUpdateStatus(c *gin.Context) {
	id := c.Param("id")

	var form request.StatusForm

	if err := c.ShouldBind(&form); err != nil {
		SendActionError(c, http.StatusBadRequest, "Invalid form")
		return
	}

	completed := util.ParseBool(form.Completed)

	if _, err := h.todos.UpdateStatus(c.Request.Context(), id, completed); err != nil {
		h.fail(c, err, "Failed to update status")
		return
	}

	h.store.UpdateTodoStatus(id, completed)

	c.Redirect(http.StatusSeeOther, "/todos/"+id)
}

// NewTodo renders the "/todo" creation form.
func (h *PageHandler) NewTodo(c *gin.Context) {
	h.store.SetComments(nil)
	h.render(c, http.StatusOK, "todo_new.html", pageData{Title: "New todo"})
}

// CreateTodo inserts a todo with every file of the "images" field.
func (h *PageHandler) CreateTodo(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.page.CreateTodo", nil)
	defer span.End()

	var form request.TodoFields

	if err := c.ShouldBind(&form); err != nil {
		SendActionError(c, http.StatusBadRequest, "Invalid form")
		return
	}

	todo, err := form.ToTodo()

	if err != nil {
		SendActionError(c, http.StatusBadRequest, "Invalid date")
		return
	}

	images, err := h.saveUploads(c, "images", storage.PrefixedName)

	if err != nil {
		AddSpanError(span, err)
		h.fail(c, err, "Failed to save images")
		return
	}

	if len(images) > 0 {
		todo.Images = domain.Images(images)
	}

	todo.Completed = false

	created, err := h.todos.Create(ctx, todo)

	if err != nil {
		AddSpanError(span, err)
		h.fail(c, err, "Failed to create todo")
		return
	}

	h.store.AddTodo(created)

	SendActionResult(c, response.ActionResult{Success: true, ID: created.ID}, "/todos/"+created.ID)
}

// TodoPage renders "/todo/:id" or a 404 page.
func (h *PageHandler) TodoPage(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if id == "" {
		h.renderError(c, http.StatusBadRequest, "Invalid todo ID")
		return
	}

	todo, err := h.todos.GetByID(ctx, id)

	if err != nil {
		if errors.Is(err, domain.ErrTodoNotFound) {
			h.renderError(c, http.StatusNotFound, "Todo not found")
			return
		}

		h.Logger.ErrorWithTrace(ctx, "Failed to load todo", zap.Error(err), zap.String("todo_id", id))
		h.renderError(c, http.StatusInternalServerError, "Failed to load todo")
		return
	}

	comments, err := h.comments.GetByTodoID(ctx, id)

	if err != nil {
		h.Logger.ErrorWithTrace(ctx, "Failed to load comments", zap.Error(err), zap.String("todo_id", id))
		h.renderError(c, http.StatusInternalServerError, "Failed to load comments")
		return
	}

	h.store.SetComments(comments)

	selected := response.NewTodoResponse(todo)

	h.render(c, http.StatusOK, "todo.html", pageData{
		Title:      todo.Title,
		Todo:       &selected,
		Comments:   response.NewCommentResponses(comments),
		SelectedID: id,
	})
}

// TodoCreateTodo inserts a new todo dated now from the "/todo/:id" page.
// Any failure, including an upload, answers 500.
func (h *PageHandler) TodoCreateTodo(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.page.TodoCreateTodo", nil)
	defer span.End()

	var form request.TodoFields

	if err := c.ShouldBind(&form); err != nil {
		h.fail(c, err, "Failed to create todo")
		return
	}

	form.Date = ""

	todo, err := form.ToTodo()

	if err != nil {
		h.fail(c, err, "Failed to create todo")
		return
	}

	images, err := h.saveUploads(c, "images", storage.ExtensionName)

	if err != nil {
		AddSpanError(span, err)
		h.fail(c, err, "Failed to create todo")
		return
	}

	todo.Date = time.Now().UTC()
	if len(images) > 0 {
		todo.Images = domain.Images(images)
	}

	todo.Completed = false

	created, err := h.todos.Create(ctx, todo)

	if err != nil {
		AddSpanError(span, err)
		h.fail(c, err, "Failed to create todo")
		return
	}

	h.store.AddTodo(created)

	SendActionResult(c, response.ActionResult{Success: true, ID: created.ID}, "/todo/"+created.ID)
}

// TodoUpdateTodo overwrites the whole todo and answers with the stored row.
func (h *PageHandler) TodoUpdateTodo(c *gin.Context) {
	id := c.Param("id")

	var form request.TodoForm

	if err := c.ShouldBind(&form); err != nil {
		SendActionError(c, http.StatusBadRequest, "Invalid form")
		return
	}

	form.ID = id

	todo, err := form.ToTodo()

	if err != nil {
		SendActionError(c, http.StatusBadRequest, "Invalid date")
		return
	}

	updated, err := h.todos.Update(c.Request.Context(), todo)

	if err != nil {
		h.fail(c, err, "Failed to update todo")
		return
	}

	h.store.Invalidate()

	updatedTodo := response.NewTodoResponse(updated)

	SendActionResult(c, response.ActionResult{Success: true, UpdatedTodo: &updatedTodo}, "/todo/"+id)
}

// TodoUpdateStatus answers with the stored row and its comments.
func (h *PageHandler) TodoUpdateStatus(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var form request.StatusForm

	if err := c.ShouldBind(&form); err != nil {
		SendActionError(c, http.StatusBadRequest, "Invalid form")
		return
	}

	completed := util.ParseBool(form.Completed)

	updated, err := h.todos.UpdateStatus(ctx, id, completed)

	if err != nil {
		h.fail(c, err, "Failed to update status")
		return
	}

	h.store.UpdateTodoStatus(id, completed)

	comments, err := h.comments.GetByTodoID(ctx, id)

	if err != nil {
		h.fail(c, err, "Failed to load comments")
		return
	}

	updatedTodo := response.NewTodoResponse(updated)
	result := response.ActionResult{Success: true, UpdatedTodo: &updatedTodo}.WithComments(comments)

	SendActionResult(c, result, "/todo/"+id)
}

// TodoAddComment answers with the todo's comments after the insert.
func (h *PageHandler) TodoAddComment(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var form request.CommentForm

	if err := c.ShouldBind(&form); err != nil {
		SendActionError(c, http.StatusBadRequest, "Invalid form")
		return
	}

	comment, err := h.comments.Add(ctx, id, form.Comment)

	if err != nil {
		h.fail(c, err, "Failed to add comment")
		return
	}

	h.store.AddComment(comment)

	comments, err := h.comments.GetByTodoID(ctx, id)

	if err != nil {
		h.fail(c, err, "Failed to load comments")
		return
	}

	SendActionResult(c, response.ActionResult{Success: true}.WithComments(comments), "/todo/"+id)
}
