package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"todolist/internal/core/domain"
	"todolist/internal/core/model/response"
)

type TodoHandlerSuite struct {
	HandlerSuite
}

func TestTodoHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoHandlerSuite))
}

func (s *TodoHandlerSuite) create(body map[string]any) string {
	w := s.doJSON(http.MethodPost, "/api/todos", body)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	return decode[response.ActionResult](&s.HandlerSuite, w).ID
}

func (s *TodoHandlerSuite) TestCreateThenGet() {
	w := s.doJSON(http.MethodPost, "/api/todos", map[string]any{
		"title":     "A",
		"name":      "B",
		"date":      "2024-01-01",
		"completed": false,
	})

	Expect(w.Code).To(Equal(http.StatusCreated))

	created := decode[response.ActionResult](&s.HandlerSuite, w)

	Expect(created.Success).To(BeTrue())
	Expect(created.ID).NotTo(BeEmpty())

	w = s.doJSON(http.MethodGet, "/api/todos/"+created.ID, nil)

	Expect(w.Code).To(Equal(http.StatusOK))

	todo := decode[response.TodoResponse](&s.HandlerSuite, w)

	Expect(todo.ID).To(Equal(created.ID))
	Expect(todo.Title).To(Equal("A"))
	Expect(todo.Name).To(Equal("B"))
	Expect(todo.Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))).To(BeTrue())
	Expect(todo.Completed).To(BeFalse())
	Expect(todo.Images).To(BeEmpty())
	Expect(todo.DueDate).To(BeNil())
	Expect(todo.CreatedAt).NotTo(BeZero())
}

func (s *TodoHandlerSuite) TestCreate_KeepsImageOrder() {
	id := s.create(map[string]any{
		"title":  "A",
		"name":   "B",
		"date":   "2024-01-01T10:00:00Z",
		"images": []string{"/uploads/2.png", "/uploads/1.png"},
	})

	todo := decode[response.TodoResponse](&s.HandlerSuite, s.doJSON(http.MethodGet, "/api/todos/"+id, nil))

	Expect(todo.Images).To(Equal([]string{"/uploads/2.png", "/uploads/1.png"}))
}

func (s *TodoHandlerSuite) TestCreate_ClientIDIsIgnored() {
	id := s.create(map[string]any{"id": "mine", "title": "A", "name": "B", "date": "2024-01-01"})

	Expect(id).NotTo(Equal("mine"))
}

func (s *TodoHandlerSuite) TestCreate_InvalidBody() {
	Expect(s.doJSON(http.MethodPost, "/api/todos", "{").Code).To(Equal(http.StatusBadRequest))
	Expect(s.doJSON(http.MethodPost, "/api/todos", map[string]any{"date": "yesterday"}).Code).To(Equal(http.StatusBadRequest))
}

func (s *TodoHandlerSuite) TestCreate_MissingRequiredFieldIsStorageError() {
	w := s.doJSON(http.MethodPost, "/api/todos", map[string]any{"title": "A", "date": "2024-01-01"})

	Expect(w.Code).To(Equal(http.StatusInternalServerError))

	body := decode[response.ErrorResponse](&s.HandlerSuite, w)

	Expect(body.Success).To(BeFalse())
	Expect(body.Error).To(Equal("Error creating todo"))
}

func (s *TodoHandlerSuite) TestGet_NotFound() {
	w := s.doJSON(http.MethodGet, "/api/todos/missing", nil)

	Expect(w.Code).To(Equal(http.StatusNotFound))
	Expect(decode[response.ErrorResponse](&s.HandlerSuite, w).Success).To(BeFalse())
}

func (s *TodoHandlerSuite) TestGetAll() {
	s.create(map[string]any{"title": "A", "name": "B", "date": "2024-01-01"})
	s.create(map[string]any{"title": "C", "name": "D", "date": "2024-01-02"})

	w := s.doJSON(http.MethodGet, "/api/todos", nil)

	Expect(w.Code).To(Equal(http.StatusOK))

	todos := decode[[]response.TodoResponse](&s.HandlerSuite, w)

	Expect(todos).To(HaveLen(2))
}

func (s *TodoHandlerSuite) TestGetAll_EmptyIsArray() {
	w := s.doJSON(http.MethodGet, "/api/todos", nil)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Body.String()).To(Equal("[]"))
}

func (s *TodoHandlerSuite) TestUpdate_MergesPartialBody() {
	id := s.create(map[string]any{"title": "A", "name": "B", "date": "2024-01-01", "description": "keep"})

	w := s.doJSON(http.MethodPut, "/api/todos/"+id, map[string]any{"completed": true, "title": "A2"})

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(decode[response.ActionResult](&s.HandlerSuite, w).Success).To(BeTrue())

	todo, err := s.TodoSvc.GetByID(context.Background(), id)

	Expect(err).To(BeNil())
	Expect(todo.Title).To(Equal("A2"))
	Expect(todo.Name).To(Equal("B"))
	Expect(todo.Description).To(Equal("keep"))
	Expect(todo.Completed).To(BeTrue())
	Expect(todo.UpdatedAt).NotTo(BeNil())
}

func (s *TodoHandlerSuite) TestUpdate_NotFound() {
	w := s.doJSON(http.MethodPut, "/api/todos/missing", map[string]any{"completed": true})

	Expect(w.Code).To(Equal(http.StatusNotFound))
}

func (s *TodoHandlerSuite) TestDelete_IsIdempotent() {
	id := s.create(map[string]any{"title": "A", "name": "B", "date": "2024-01-01"})

	Expect(s.doJSON(http.MethodDelete, "/api/todos/"+id, nil).Code).To(Equal(http.StatusOK))
	Expect(s.doJSON(http.MethodDelete, "/api/todos/"+id, nil).Code).To(Equal(http.StatusOK))

	_, err := s.TodoSvc.GetByID(context.Background(), id)

	Expect(err).To(MatchError(domain.ErrTodoNotFound))
}

func (s *TodoHandlerSuite) TestComments() {
	id := s.create(map[string]any{"title": "A", "name": "B", "date": "2024-01-01"})

	w := s.doJSON(http.MethodPost, "/api/comments", map[string]any{"todoId": id, "text": "first"})

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(decode[response.ActionResult](&s.HandlerSuite, w).Success).To(BeTrue())

	w = s.doJSON(http.MethodGet, "/api/comments?todoId="+id, nil)

	Expect(w.Code).To(Equal(http.StatusOK))

	comments := decode[response.CommentsResponse](&s.HandlerSuite, w).Comments

	Expect(comments).To(HaveLen(1))
	Expect(comments[0].Text).To(Equal("first"))
	Expect(comments[0].TodoID).To(Equal(id))
}

func (s *TodoHandlerSuite) TestComments_WithoutTodoID() {
	w := s.doJSON(http.MethodGet, "/api/comments", nil)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Body.String()).To(MatchJSON(`{"comments":[]}`))
}

func (s *TodoHandlerSuite) TestComments_MissingTextFails() {
	w := s.doJSON(http.MethodPost, "/api/comments", map[string]any{"todoId": "x"})

	Expect(w.Code).To(Equal(http.StatusInternalServerError))
}
