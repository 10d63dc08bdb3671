package request

import (
	"encoding/json"
	"time"

	"todolist/internal/core/domain"
	"todolist/internal/core/util"
)

// Time decodes any layout util.ParseTime understands.
type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(data []byte) error {
	var raw string

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed, err := util.ParseTime(raw)

	if err != nil {
		return err
	}

	t.Time = parsed
	return nil
}

// TodoRequest is the JSON body of POST and PUT /api/todos. Every field is
// optional; missing ones are either left untouched (PUT) or stored as NULL (POST).
type TodoRequest struct {
	Title       *string  `json:"title"`
	Name        *string  `json:"name"`
	Date        *Time    `json:"date"`
	DueDate     *Time    `json:"dueDate"`
	Images      []string `json:"images"`
	Image       *string  `json:"image"`
	Description *string  `json:"description"`
	Completed   *bool    `json:"completed"`
}

func (r TodoRequest) ToPatch() domain.TodoPatch {
	patch := domain.TodoPatch{
		Title:       r.Title,
		Name:        r.Name,
		Description: r.Description,
		Completed:   r.Completed,
	}

	if r.Date != nil {
		patch.Date = &r.Date.Time
	}

	if r.DueDate != nil {
		patch.DueDate = &r.DueDate.Time
	}

	if r.Images != nil {
		patch.Images = domain.Images(r.Images)
	} else if r.Image != nil && *r.Image != "" {
		patch.Images = domain.Images{*r.Image}
	}

	return patch
}

// ToTodo builds a new todo from the body. The caller assigns id and timestamps.
func (r TodoRequest) ToTodo() domain.Todo {
	return domain.Todo{}.Merge(r.ToPatch())
}

type CommentRequest struct {
	TodoID string `json:"todoId"`
	Text   string `json:"text"`
}

// TodoFields are the text fields shared by every todo form. Uploaded files
// are read from the multipart parts, not from this struct.
type TodoFields struct {
	ID          string   `form:"id"`
	Title       string   `form:"title"`
	Name        string   `form:"name"`
	Date        string   `form:"date"`
	DueDate     string   `form:"dueDate"`
	Images      []string `form:"existingImages"`
	Description string   `form:"description"`
	Completed   string   `form:"completed"`
}

// ToTodo applies the loose casts of the form actions. Only an unparseable
// date is reported; blank values pass through and reach the database as NULL.
func (f TodoFields) ToTodo() (domain.Todo, error) {
	date, err := util.ParseTime(f.Date)

	if err != nil {
		return domain.Todo{}, err
	}

	todo := domain.Todo{
		ID:          f.ID,
		Title:       f.Title,
		Name:        f.Name,
		Date:        date,
		Description: f.Description,
		Completed:   util.ParseBool(f.Completed),
		Images:      append(domain.Images{}, f.Images...),
	}

	if f.DueDate != "" {
		due, err := util.ParseTime(f.DueDate)

		if err != nil {
			return domain.Todo{}, err
		}

		if !due.IsZero() {
			todo.DueDate = &due
		}
	}

	return todo, nil
}

// TodoForm is the body of the update actions, which may name a single image
// path in "image". Create actions bind TodoFields since their "image" part
// is a file.
type TodoForm struct {
	TodoFields
	Image string `form:"image"`
}

func (f TodoForm) ToTodo() (domain.Todo, error) {
	todo, err := f.TodoFields.ToTodo()

	if err != nil {
		return domain.Todo{}, err
	}

	if len(todo.Images) == 0 && f.Image != "" {
		todo.Images = domain.Images{f.Image}
	}

	return todo, nil
}

type StatusForm struct {
	ID        string `form:"id"`
	Completed string `form:"completed"`
}

type CommentForm struct {
	TodoID  string `form:"todoId"`
	Comment string `form:"comment"`
}

type DeleteForm struct {
	ID string `form:"id"`
}
