package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	. "todolist/internal/adapter/http/helper"
	"todolist/internal/core/model/request"
	"todolist/internal/core/model/response"
	"todolist/internal/core/port"
	"todolist/internal/core/util"
	. "todolist/pkg/tracing"
)

type CommentHandler struct {
	svc port.CommentService
}

func NewCommentHandler(svc port.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// GetComments lists the comments of ?todoId=. A missing todoId lists nothing.
func (h *CommentHandler) GetComments(c *gin.Context) {
	todoID := c.Query("todoId")

	ctx, span := CreateChildSpan(c.Request.Context(), "handler.comment.GetComments", []attribute.KeyValue{
		attribute.String("todo.id", todoID),
	})

	defer span.End()

	if todoID == "" {
		SendSuccess(c, http.StatusOK, response.CommentsResponse{Comments: []response.CommentResponse{}})
		return
	}

	comments, err := h.svc.GetByTodoID(ctx, todoID)

	if err != nil {
		AddSpanError(span, err)
		SendInternalError(c, "Error getting comments")
		return
	}

	SendSuccess(c, http.StatusOK, response.CommentsResponse{Comments: response.NewCommentResponses(comments)})
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.comment.CreateComment", nil)

	defer span.End()

	params, err := util.ParamsToMap[request.CommentRequest](c)

	if err != nil {
		SendBadRequestError(c, "Invalid request body")
		return
	}

	span.SetAttributes(attribute.String("todo.id", params.TodoID))

	if _, err := h.svc.Add(ctx, params.TodoID, params.Text); err != nil {
		AddSpanError(span, err)
		SendInternalError(c, "Error adding comment")
		return
	}

	SendSuccess(c, http.StatusOK, response.ActionResult{Success: true})
}
