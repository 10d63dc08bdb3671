package domain

import (
	"errors"
	"time"
)

var ErrTodoNotFound = errors.New("todo not found")

type Todo struct {
	ID          string     `db:"id"`
	Title       string     `db:"title"`
	Name        string     `db:"name"`
	Date        time.Time  `db:"date"`
	DueDate     *time.Time `db:"dueDate"`
	Images      Images     `db:"images"`
	Description string     `db:"description"`
	Completed   bool       `db:"completed"`
	CreatedAt   time.Time  `db:"createdAt"`
	UpdatedAt   *time.Time `db:"updatedAt"`
}

// Merge overlays the set fields of patch onto t. ID and CreatedAt never move.
func (t Todo) Merge(patch TodoPatch) Todo {
	if patch.Title != nil {
		t.Title = *patch.Title
	}

	if patch.Name != nil {
		t.Name = *patch.Name
	}

	if patch.Date != nil {
		t.Date = *patch.Date
	}

	if patch.DueDate != nil {
		if patch.DueDate.IsZero() {
			t.DueDate = nil
		} else {
			due := *patch.DueDate
			t.DueDate = &due
		}
	}

	if patch.Images != nil {
		t.Images = append(Images{}, patch.Images...)
	}

	if patch.Description != nil {
		t.Description = *patch.Description
	}

	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}

	return t
}

// TodoPatch carries a partial update. Nil fields are left untouched.
type TodoPatch struct {
	Title       *string
	Name        *string
	Date        *time.Time
	DueDate     *time.Time
	Images      Images
	Description *string
	Completed   *bool
}
