package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"todolist/internal/core/domain"
	"todolist/internal/core/model/response"
)

type PageHandlerSuite struct {
	HandlerSuite
}

func TestPageHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(PageHandlerSuite))
}

func (s *PageHandlerSuite) seed(title string) domain.Todo {
	todo, err := s.TodoSvc.Create(context.Background(), domain.Todo{
		Title: title,
		Name:  "Owner",
		Date:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)

	return todo
}

func (s *PageHandlerSuite) get(path string) *httptest.ResponseRecorder {
	return s.serve(httptest.NewRequest(http.MethodGet, path, nil))
}

func todoForm(title string) url.Values {
	return url.Values{
		"title":       {title},
		"name":        {"Owner"},
		"date":        {"2024-01-01"},
		"dueDate":     {"2024-02-01"},
		"description": {"details"},
	}
}

func (s *PageHandlerSuite) TestIndex_RendersTodosAndFillsStore() {
	s.seed("Buy milk")

	w := s.get("/")

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Body.String()).To(ContainSubstring("Buy milk"))
	Expect(w.Body.String()).To(ContainSubstring(`id="state"`))
	Expect(s.Store.Stale()).To(BeFalse())
	Expect(s.Store.Snapshot().Todos).To(HaveLen(1))
}

func (s *PageHandlerSuite) TestListPages_DropCommentsOfPreviousDetail() {
	todo := s.seed("Task")

	_, err := s.CommentSvc.Add(context.Background(), todo.ID, "detail-only note")
	s.Require().NoError(err)

	Expect(s.get("/todo/" + todo.ID).Body.String()).To(ContainSubstring("detail-only note"))
	Expect(s.Store.Snapshot().Comments).To(HaveLen(1))

	for _, path := range []string{"/", "/todos", "/todo"} {
		s.get("/todo/" + todo.ID)

		w := s.get(path)

		Expect(w.Code).To(Equal(http.StatusOK), path)
		Expect(w.Body.String()).NotTo(ContainSubstring("detail-only note"), path)
		Expect(s.Store.Snapshot().Comments).To(BeEmpty(), path)
	}
}

func (s *PageHandlerSuite) TestCreate_RedirectsBrowsers() {
	w := s.postForm("/actions/create", todoForm("Walk"), false)

	Expect(w.Code).To(Equal(http.StatusSeeOther))
	Expect(w.Header().Get("Location")).To(Equal("/"))

	todos, err := s.TodoSvc.GetAll(context.Background())

	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(1))
	Expect(todos[0].Title).To(Equal("Walk"))
	Expect(todos[0].DueDate).NotTo(BeNil())
	Expect(todos[0].Completed).To(BeFalse())
}

func (s *PageHandlerSuite) TestCreate_JSONAndStore() {
	w := s.postForm("/actions/create", todoForm("Walk"), true)

	Expect(w.Code).To(Equal(http.StatusOK))

	result := decode[response.ActionResult](&s.HandlerSuite, w)

	Expect(result.Success).To(BeTrue())
	Expect(s.Store.Snapshot().Todos[0].ID).To(Equal(result.ID))
}

func (s *PageHandlerSuite) TestCreate_InvalidDate() {
	form := todoForm("Walk")
	form.Set("date", "someday")

	w := s.postForm("/actions/create", form, true)

	Expect(w.Code).To(Equal(http.StatusBadRequest))
	Expect(decode[response.ActionResult](&s.HandlerSuite, w).Success).To(BeFalse())
}

func (s *PageHandlerSuite) TestCreate_MissingNameIsStorageError() {
	form := todoForm("Walk")
	form.Del("name")

	Expect(s.postForm("/actions/create", form, true).Code).To(Equal(http.StatusInternalServerError))
}

func (s *PageHandlerSuite) TestCreate_SavesSingleImage() {
	w := s.postMultipart("/actions/create", todoForm("Photo"), []upload{
		{field: "image", filename: "cat.png", content: "png"},
	})

	Expect(w.Code).To(Equal(http.StatusOK))

	todo, err := s.TodoSvc.GetByID(context.Background(), decode[response.ActionResult](&s.HandlerSuite, w).ID)

	Expect(err).To(BeNil())
	Expect(todo.Images).To(HaveLen(1))
	Expect(todo.Images[0]).To(MatchRegexp(`^/uploads/[0-9a-f-]{36}_cat\.png$`))
	Expect(filepath.Join(s.UploadDir, strings.TrimPrefix(todo.Images[0], "/uploads/"))).To(BeAnExistingFile())

	served := s.get(todo.Images[0])

	Expect(served.Code).To(Equal(http.StatusOK))
	Expect(served.Body.String()).To(Equal("png"))
}

func (s *PageHandlerSuite) TestCreate_EmptyFileIsSkipped() {
	w := s.postMultipart("/actions/create", todoForm("Photo"), []upload{
		{field: "image", filename: "empty.png", content: ""},
	})

	Expect(w.Code).To(Equal(http.StatusOK))

	todo, _ := s.TodoSvc.GetByID(context.Background(), decode[response.ActionResult](&s.HandlerSuite, w).ID)

	Expect(todo.Images).To(BeEmpty())
}

func (s *PageHandlerSuite) TestUpdate_OverwritesRow() {
	todo := s.seed("Old")

	form := todoForm("New")
	form.Set("id", todo.ID)
	form.Set("completed", "true")
	form.Set("image", "/uploads/a.png")

	w := s.postForm("/actions/update", form, true)

	Expect(w.Code).To(Equal(http.StatusOK))

	updated, _ := s.TodoSvc.GetByID(context.Background(), todo.ID)

	Expect(updated.Title).To(Equal("New"))
	Expect(updated.Completed).To(BeTrue())
	Expect(updated.Images).To(Equal(domain.Images{"/uploads/a.png"}))
	Expect(updated.CreatedAt.Equal(todo.CreatedAt)).To(BeTrue())
	Expect(s.Store.Stale()).To(BeTrue())
}

func (s *PageHandlerSuite) TestUpdate_Missing() {
	form := todoForm("New")
	form.Set("id", "missing")

	Expect(s.postForm("/actions/update", form, true).Code).To(Equal(http.StatusNotFound))
}

func (s *PageHandlerSuite) TestDelete() {
	todo := s.seed("Gone")

	w := s.postForm("/actions/delete", url.Values{"id": {todo.ID}}, false)

	Expect(w.Code).To(Equal(http.StatusSeeOther))

	_, err := s.TodoSvc.GetByID(context.Background(), todo.ID)

	Expect(err).To(MatchError(domain.ErrTodoNotFound))
}

func (s *PageHandlerSuite) TestUpdateStatus_UpdatesStore() {
	todo := s.seed("Task")
	s.get("/")

	w := s.postForm("/actions/updateStatus", url.Values{"id": {todo.ID}, "completed": {"true"}}, true)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(s.Store.Snapshot().Todos[0].Completed).To(BeTrue())

	stored, _ := s.TodoSvc.GetByID(context.Background(), todo.ID)

	Expect(stored.Completed).To(BeTrue())
}

func (s *PageHandlerSuite) TestUpdateStatus_AnythingButTrueIsFalse() {
	todo := s.seed("Task")
	s.postForm("/actions/updateStatus", url.Values{"id": {todo.ID}, "completed": {"true"}}, true)

	for _, value := range []string{"on", "1", "TRUE", "yes please"} {
		s.postForm("/actions/updateStatus", url.Values{"id": {todo.ID}, "completed": {"true"}}, true)
		s.postForm("/actions/updateStatus", url.Values{"id": {todo.ID}, "completed": {value}}, true)

		stored, _ := s.TodoSvc.GetByID(context.Background(), todo.ID)

		Expect(stored.Completed).To(BeFalse(), value)
	}
}

func (s *PageHandlerSuite) TestAddComment_ReadsCommentField() {
	todo := s.seed("Task")

	w := s.postForm("/actions/addcomment", url.Values{"todoId": {todo.ID}, "comment": {"nice"}}, true)

	Expect(w.Code).To(Equal(http.StatusOK))

	comments, _ := s.CommentSvc.GetByTodoID(context.Background(), todo.ID)

	Expect(comments).To(HaveLen(1))
	Expect(comments[0].Text).To(Equal("nice"))
	Expect(s.Store.Snapshot().Comments).To(HaveLen(1))
}

func (s *PageHandlerSuite) TestTodosLayout() {
	s.seed("Listed")

	w := s.get("/todos")

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Body.String()).To(ContainSubstring("Listed"))
	Expect(w.Body.String()).To(ContainSubstring("Select a todo."))
}

func (s *PageHandlerSuite) TestTodosDetail() {
	todo := s.seed("Selected")
	_, err := s.CommentSvc.Add(context.Background(), todo.ID, "a comment")
	s.Require().NoError(err)

	w := s.get("/todos/" + todo.ID)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Body.String()).To(ContainSubstring("a comment"))
	Expect(w.Body.String()).To(ContainSubstring(`"selectedId":"` + todo.ID))
	Expect(s.Store.Snapshot().Comments).To(HaveLen(1))
}

func (s *PageHandlerSuite) TestTodosDetail_MissingTodoStillRenders() {
	s.seed("Other")

	w := s.get("/todos/missing")

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Body.String()).To(ContainSubstring("Todo not found."))
	Expect(w.Body.String()).To(ContainSubstring("Other"))
}

func (s *PageHandlerSuite) TestTodosActions_RedirectBack() {
	todo := s.seed("Task")

	w := s.postForm("/todos/"+todo.ID+"/addcomment", url.Values{"comment": {"hi"}}, true)

	Expect(w.Code).To(Equal(http.StatusSeeOther))
	Expect(w.Header().Get("Location")).To(Equal("/todos/" + todo.ID))

	w = s.postForm("/todos/"+todo.ID+"/updateStatus", url.Values{"completed": {"true"}}, false)

	Expect(w.Code).To(Equal(http.StatusSeeOther))
	Expect(w.Header().Get("Location")).To(Equal("/todos/" + todo.ID))

	stored, _ := s.TodoSvc.GetByID(context.Background(), todo.ID)
	comments, _ := s.CommentSvc.GetByTodoID(context.Background(), todo.ID)

	Expect(stored.Completed).To(BeTrue())
	Expect(comments).To(HaveLen(1))
}

func (s *PageHandlerSuite) TestNewTodoPage() {
	w := s.get("/todo")

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Body.String()).To(ContainSubstring(`action="/todo/createTodo"`))
}

func (s *PageHandlerSuite) TestCreateTodo_SavesEveryImageInOrder() {
	w := s.postMultipart("/todo/createTodo", todoForm("Album"), []upload{
		{field: "images", filename: "first.jpg", content: "1"},
		{field: "images", filename: "second.jpg", content: "2"},
	})

	Expect(w.Code).To(Equal(http.StatusOK))

	result := decode[response.ActionResult](&s.HandlerSuite, w)
	todo, err := s.TodoSvc.GetByID(context.Background(), result.ID)

	Expect(err).To(BeNil())
	Expect(todo.Images).To(HaveLen(2))
	Expect(todo.Images[0]).To(HaveSuffix("_first.jpg"))
	Expect(todo.Images[1]).To(HaveSuffix("_second.jpg"))

	content, err := os.ReadFile(filepath.Join(s.UploadDir, strings.TrimPrefix(todo.Images[1], "/uploads/")))

	Expect(err).To(BeNil())
	Expect(string(content)).To(Equal("2"))
}

func (s *PageHandlerSuite) TestTodoPage() {
	todo := s.seed("Detail")

	w := s.get("/todo/" + todo.ID)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Body.String()).To(ContainSubstring("Detail"))
	Expect(w.Body.String()).To(ContainSubstring("No comments yet."))
}

func (s *PageHandlerSuite) TestTodoPage_NotFound() {
	w := s.get("/todo/missing")

	Expect(w.Code).To(Equal(http.StatusNotFound))
	Expect(w.Body.String()).To(ContainSubstring("Todo not found"))
}

func (s *PageHandlerSuite) TestTodoCreateTodo_DatesNowAndKeepsExtension() {
	parent := s.seed("Parent")
	before := time.Now().UTC().Add(-time.Second)

	form := todoForm("Child")
	form.Set("date", "not used")

	w := s.postMultipart("/todo/"+parent.ID+"/createTodo", form, []upload{
		{field: "images", filename: "holiday.png", content: "x"},
	})

	Expect(w.Code).To(Equal(http.StatusOK))

	result := decode[response.ActionResult](&s.HandlerSuite, w)

	Expect(result.Success).To(BeTrue())
	Expect(result.ID).NotTo(Equal(parent.ID))

	todo, err := s.TodoSvc.GetByID(context.Background(), result.ID)

	Expect(err).To(BeNil())
	Expect(todo.Date.After(before)).To(BeTrue())
	Expect(todo.Images).To(HaveLen(1))
	Expect(todo.Images[0]).To(MatchRegexp(`^/uploads/[0-9a-f-]{36}\.png$`))
}

func (s *PageHandlerSuite) TestTodoCreateTodo_FailureIs500() {
	parent := s.seed("Parent")

	form := todoForm("Child")
	form.Del("name")

	w := s.postMultipart("/todo/"+parent.ID+"/createTodo", form, nil)

	Expect(w.Code).To(Equal(http.StatusInternalServerError))
	Expect(decode[response.ActionResult](&s.HandlerSuite, w).Error).To(Equal("Failed to create todo"))
}

func (s *PageHandlerSuite) TestTodoUpdateTodo_ReturnsStoredRow() {
	todo := s.seed("Before")

	form := todoForm("After")
	form.Add("existingImages", "/uploads/b.png")
	form.Add("existingImages", "/uploads/a.png")

	w := s.postForm("/todo/"+todo.ID+"/updateTodo", form, true)

	Expect(w.Code).To(Equal(http.StatusOK))

	result := decode[response.ActionResult](&s.HandlerSuite, w)

	Expect(result.UpdatedTodo).NotTo(BeNil())
	Expect(result.UpdatedTodo.ID).To(Equal(todo.ID))
	Expect(result.UpdatedTodo.Title).To(Equal("After"))
	Expect(result.UpdatedTodo.Images).To(Equal([]string{"/uploads/b.png", "/uploads/a.png"}))
}

func (s *PageHandlerSuite) TestTodoUpdateStatus_ReturnsTodoAndComments() {
	todo := s.seed("Task")

	w := s.postForm("/todo/"+todo.ID+"/updateStatus", url.Values{"completed": {"true"}}, true)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Body.String()).To(ContainSubstring(`"comments":[]`))

	result := decode[response.ActionResult](&s.HandlerSuite, w)

	Expect(result.UpdatedTodo.Completed).To(BeTrue())
	Expect(result.UpdatedTodo.UpdatedAt).NotTo(BeNil())
}

func (s *PageHandlerSuite) TestTodoUpdateStatus_Missing() {
	w := s.postForm("/todo/missing/updateStatus", url.Values{"completed": {"true"}}, true)

	Expect(w.Code).To(Equal(http.StatusNotFound))
}

func (s *PageHandlerSuite) TestTodoAddComment_ReturnsComments() {
	todo := s.seed("Task")

	s.postForm("/todo/"+todo.ID+"/addComment", url.Values{"comment": {"one"}}, true)
	w := s.postForm("/todo/"+todo.ID+"/addComment", url.Values{"comment": {"two"}}, true)

	Expect(w.Code).To(Equal(http.StatusOK))

	result := decode[response.ActionResult](&s.HandlerSuite, w)

	Expect(result.Comments).NotTo(BeNil())
	Expect(*result.Comments).To(HaveLen(2))
}
