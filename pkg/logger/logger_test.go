package logger_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"todolist/pkg/logger"
)

type LoggerTestSuite struct {
	suite.Suite
	server *httptest.Server
	pushes chan logger.LokiPush
}

func (s *LoggerTestSuite) SetupTest() {
	s.pushes = make(chan logger.LokiPush, 4)

	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/loki/api/v1/push" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		body, _ := io.ReadAll(r.Body)

		var push logger.LokiPush
		if err := json.Unmarshal(body, &push); err == nil {
			s.pushes <- push
		}

		w.WriteHeader(http.StatusNoContent)
	}))
}

func (s *LoggerTestSuite) TearDownTest() {
	s.server.Close()
}

func TestLoggerTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(LoggerTestSuite))
}

func (s *LoggerTestSuite) TestNew_RejectsUnknownLevel() {
	_, err := logger.New(logger.Config{ServiceName: "todolist", Level: "loud"})

	Expect(err).NotTo(BeNil())
}

func (s *LoggerTestSuite) TestInfoWithTrace_PushesToLoki() {
	log, err := logger.New(logger.Config{ServiceName: "todolist", Level: "error", LokiURL: s.server.URL + "/"})
	s.Require().NoError(err)

	log.InfoWithTrace(context.Background(), "todo created", zap.String("todo_id", "abc"), zap.Int("images", 2))

	var push logger.LokiPush
	Eventually(s.pushes).Should(Receive(&push))

	Expect(push.Streams).To(HaveLen(1))
	Expect(push.Streams[0].Stream).To(HaveKeyWithValue("service", "todolist"))
	Expect(push.Streams[0].Stream).To(HaveKeyWithValue("level", "info"))
	Expect(push.Streams[0].Values).To(HaveLen(1))

	var line map[string]interface{}
	Expect(json.Unmarshal([]byte(push.Streams[0].Values[0][1]), &line)).To(Succeed())

	Expect(line).To(HaveKeyWithValue("message", "todo created"))
	Expect(line).To(HaveKeyWithValue("todo_id", "abc"))
	Expect(line).To(HaveKeyWithValue("images", BeNumerically("==", 2)))
	Expect(line).NotTo(HaveKey("trace_id"))
}

func (s *LoggerTestSuite) TestNop_DoesNotPush() {
	log := logger.NewNop()

	log.ErrorWithTrace(context.Background(), "nothing to see")

	Consistently(s.pushes).ShouldNot(Receive())
}
