package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	. "todolist/pkg/test"

	"todolist/internal/adapter/database/sqlite"
	"todolist/internal/adapter/database/sqlite/repository"
	"todolist/internal/adapter/http/handler"
	"todolist/internal/adapter/http/routes"
	"todolist/internal/adapter/http/store"
	"todolist/internal/adapter/storage"
	"todolist/internal/core/service"
	"todolist/pkg/config"
	"todolist/pkg/logger"
	"todolist/web"
)

// HandlerSuite runs requests through the real router on an in-memory
// database and a temporary uploads directory.
type HandlerSuite struct {
	suite.Suite
	DB         *sqlite.DB
	Router     *gin.Engine
	Store      *store.Store
	UploadDir  string
	TodoSvc    *service.TodoService
	CommentSvc *service.CommentService
}

func (s *HandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.DB = InitTestDB()
	s.UploadDir = s.T().TempDir()

	s.TodoSvc = service.NewTodoService(repository.NewTodoRepository(s.DB, nil), nil, nil)
	s.CommentSvc = service.NewCommentService(repository.NewCommentRepository(s.DB, nil), nil, nil)

	images, err := storage.NewLocalStorage(s.UploadDir, "/uploads", nil, nil)
	s.Require().NoError(err)

	templates, err := web.Templates()
	s.Require().NoError(err)

	cfg := config.GetDefaultConfig()
	cfg.RateLimit.Enabled = false
	cfg.Storage.UploadDir = s.UploadDir

	log := logger.NewNop()
	s.Store = store.New()

	s.Router = routes.SetupRouter(routes.HandlersConfig{
		TodoHandler:    handler.NewTodoHandler(s.TodoSvc, log),
		CommentHandler: handler.NewCommentHandler(s.CommentSvc),
		PageHandler:    handler.NewPageHandler(s.TodoSvc, s.CommentSvc, images, s.Store, log),
	}, routes.Dependencies{
		Logger:    log,
		Templates: templates,
	}, cfg)
}

func (s *HandlerSuite) TearDownTest() {
	s.DB.Close()
}

func (s *HandlerSuite) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) doJSON(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader

	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	return s.serve(req)
}

func (s *HandlerSuite) postForm(path string, values url.Values, wantJSON bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if wantJSON {
		req.Header.Set("Accept", "application/json")
	}

	return s.serve(req)
}

type upload struct {
	field    string
	filename string
	content  string
}

func (s *HandlerSuite) postMultipart(path string, values url.Values, files []upload) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, list := range values {
		for _, value := range list {
			s.Require().NoError(writer.WriteField(key, value))
		}
	}

	for _, file := range files {
		part, err := writer.CreateFormFile(file.field, file.filename)
		s.Require().NoError(err)

		_, err = io.WriteString(part, file.content)
		s.Require().NoError(err)
	}

	s.Require().NoError(writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	return s.serve(req)
}

func decode[T any](s *HandlerSuite, w *httptest.ResponseRecorder) T {
	var out T
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
