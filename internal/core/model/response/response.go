package response

import (
	"time"

	"todolist/internal/core/domain"
)

type TodoResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Name        string     `json:"name"`
	Date        time.Time  `json:"date"`
	DueDate     *time.Time `json:"dueDate"`
	Images      []string   `json:"images"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

type CommentResponse struct {
	ID        string    `json:"id"`
	TodoID    string    `json:"todoId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// ActionResult is what page actions return to clients asking for JSON.
// Comments is a pointer so an empty list is still sent when it was loaded.
type ActionResult struct {
	Success     bool               `json:"success"`
	ID          string             `json:"id,omitempty"`
	UpdatedTodo *TodoResponse      `json:"updatedTodo,omitempty"`
	Comments    *[]CommentResponse `json:"comments,omitempty"`
	Error       string             `json:"error,omitempty"`
}

func (r ActionResult) WithComments(comments []domain.Comment) ActionResult {
	data := NewCommentResponses(comments)
	r.Comments = &data
	return r
}

type CommentsResponse struct {
	Comments []CommentResponse `json:"comments"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func NewTodoResponse(todo domain.Todo) TodoResponse {
	return TodoResponse{
		ID:          todo.ID,
		Title:       todo.Title,
		Name:        todo.Name,
		Date:        todo.Date,
		DueDate:     todo.DueDate,
		Images:      todo.Images.Strings(),
		Description: todo.Description,
		Completed:   todo.Completed,
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
	}
}

func NewTodoResponses(todos []domain.Todo) []TodoResponse {
	data := make([]TodoResponse, 0, len(todos))

	for _, todo := range todos {
		data = append(data, NewTodoResponse(todo))
	}

	return data
}

func NewCommentResponse(comment domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		TodoID:    comment.TodoID,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	}
}

func NewCommentResponses(comments []domain.Comment) []CommentResponse {
	data := make([]CommentResponse, 0, len(comments))

	for _, comment := range comments {
		data = append(data, NewCommentResponse(comment))
	}

	return data
}
