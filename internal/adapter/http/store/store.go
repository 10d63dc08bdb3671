package store

import (
	"sync"

	"todolist/internal/core/domain"
)

// Store mirrors the todos and comments the pages last loaded. Actions update
// it optimistically; queries never read from it.
type Store struct {
	mu       sync.RWMutex
	todos    []domain.Todo
	comments []domain.Comment
	stale    bool
}

type Snapshot struct {
	Todos    []domain.Todo
	Comments []domain.Comment
	Stale    bool
}

func New() *Store {
	return &Store{
		todos:    []domain.Todo{},
		comments: []domain.Comment{},
		stale:    true,
	}
}

func (s *Store) SetTodos(todos []domain.Todo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.todos = append([]domain.Todo{}, todos...)
	s.stale = false
}

// AddTodo puts todo in front of the list.
func (s *Store) AddTodo(todo domain.Todo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.todos = append([]domain.Todo{todo}, s.todos...)
}

// UpdateTodoStatus replaces the entry with the same id by a copy carrying
// the new completed flag. Unknown ids are ignored.
func (s *Store) UpdateTodoStatus(id string, completed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todos := make([]domain.Todo, len(s.todos))

	for i, current := range s.todos {
		if current.ID == id {
			current.Completed = completed
		}

		todos[i] = current
	}

	s.todos = todos
}

func (s *Store) SetComments(comments []domain.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.comments = append([]domain.Comment{}, comments...)
}

// AddComment puts comment in front of the list.
func (s *Store) AddComment(comment domain.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.comments = append([]domain.Comment{comment}, s.comments...)
}

// Invalidate marks the mirror for reload on the next page load.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stale = true
}

func (s *Store) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.stale
}

// Snapshot returns copies; callers may keep them.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Todos:    append([]domain.Todo{}, s.todos...),
		Comments: append([]domain.Comment{}, s.comments...),
		Stale:    s.stale,
	}
}
