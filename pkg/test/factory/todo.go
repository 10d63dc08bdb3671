package factory

import (
	fab "github.com/Goldziher/fabricator"

	"todolist/internal/core/domain"
)

func NewTodo(customData ...map[string]any) domain.Todo {
	instance := fab.New(domain.Todo{})

	if len(customData) > 0 {
		return instance.Build(customData...)
	}

	return instance.Build()
}

// NewComment fills every field with fake data unless overridden.
func NewComment(customData ...map[string]any) domain.Comment {
	return fab.New(domain.Comment{}).Build(customData...)
}
