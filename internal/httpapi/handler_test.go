package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"inbox_sync/internal/domain"
	"inbox_sync/internal/httpapi"
)

type fakeIngestor struct {
	batches   []*domain.Batch
	result    *domain.IngestResult
	mergeErr  error
	cursors   map[string]string
	cursorErr error
}

func (f *fakeIngestor) Merge(_ context.Context, batch *domain.Batch) (*domain.IngestResult, error) {
	f.batches = append(f.batches, batch)
	return f.result, f.mergeErr
}

func (f *fakeIngestor) Cursors(_ context.Context, _ string) (map[string]string, error) {
	return f.cursors, f.cursorErr
}

type HandlerTestSuite struct {
	suite.Suite
	ingestor *fakeIngestor
	router   *gin.Engine
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.ingestor = &fakeIngestor{result: &domain.IngestResult{}}
	s.router = httpapi.NewRouter(
		httpapi.NewHandler(s.ingestor, logger),
		httpapi.RouterConfig{Token: "secret", MaxBodyBytes: 1024},
		logger,
	)
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) do(method, path, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) TestSync_MergesBatch() {
	s.ingestor.result = &domain.IngestResult{InsertedConversations: 1, InsertedMessages: 2, CreatedConversations: 1}

	w := s.do(http.MethodPost, "/sync", `{
		"workspaceId": "ws",
		"conversations": [{
			"externalId": "101",
			"name": "Anna",
			"cursorMessageId": "44",
			"messages": [
				{"externalMessageId": "43", "direction": "applicant", "content": "Hallo", "sentAt": "2025-01-03"},
				{"externalMessageId": "44", "direction": "operator", "content": "Hi"}
			]
		}]
	}`, "secret")

	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get(httpapi.CorrelationHeader))

	var resp domain.IngestResult
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(*s.ingestor.result, resp)

	s.Require().Len(s.ingestor.batches, 1)
	batch := s.ingestor.batches[0]
	s.Equal("ws", batch.WorkspaceID)
	s.Require().Len(batch.Conversations, 1)
	s.Equal("44", batch.Conversations[0].CursorMessageID)
	s.Equal(domain.DirectionOperator, batch.Conversations[0].Messages[1].Direction)
}

func (s *HandlerTestSuite) TestSync_ValidationFailures() {
	cases := map[string]string{
		"missing workspace":   `{"conversations": []}`,
		"missing external id": `{"workspaceId": "ws", "conversations": [{"messages": []}]}`,
		"missing message id":  `{"workspaceId": "ws", "conversations": [{"externalId": "1", "messages": [{"direction": "applicant"}]}]}`,
		"bad direction":       `{"workspaceId": "ws", "conversations": [{"externalId": "1", "messages": [{"externalMessageId": "1", "direction": "system"}]}]}`,
		"malformed json":      `{`,
	}

	for name, body := range cases {
		s.Run(name, func() {
			w := s.do(http.MethodPost, "/sync", body, "secret")
			s.Equal(http.StatusBadRequest, w.Code)
		})
	}
	s.Empty(s.ingestor.batches)
}

func (s *HandlerTestSuite) TestSync_RequiresToken() {
	s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, "/sync", `{"workspaceId":"ws"}`, "").Code)
	s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, "/sync", `{"workspaceId":"ws"}`, "wrong").Code)
	s.Empty(s.ingestor.batches)
}

func (s *HandlerTestSuite) TestSync_BodyTooLarge() {
	body := `{"workspaceId":"ws","conversations":[{"externalId":"1","name":"` + strings.Repeat("x", 2048) + `"}]}`

	w := s.do(http.MethodPost, "/sync", body, "secret")

	s.Equal(http.StatusRequestEntityTooLarge, w.Code)
}

func (s *HandlerTestSuite) TestSync_MergeFailure() {
	s.ingestor.mergeErr = errors.New("db down")

	w := s.do(http.MethodPost, "/sync", `{"workspaceId":"ws","conversations":[]}`, "secret")

	s.Equal(http.StatusInternalServerError, w.Code)
}

func (s *HandlerTestSuite) TestCursors() {
	s.ingestor.cursors = map[string]string{"101": "9001"}

	w := s.do(http.MethodGet, "/workspaces/ws/cursors", "", "secret")

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"cursors":{"101":"9001"}}`, w.Body.String())
}

func (s *HandlerTestSuite) TestCursors_EmptyIsObject() {
	w := s.do(http.MethodGet, "/workspaces/ws/cursors", "", "secret")

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"cursors":{}}`, w.Body.String())
}

func (s *HandlerTestSuite) TestCursors_Failure() {
	s.ingestor.cursorErr = errors.New("db down")

	w := s.do(http.MethodGet, "/workspaces/ws/cursors", "", "secret")

	s.Equal(http.StatusInternalServerError, w.Code)
}

func (s *HandlerTestSuite) TestHealth_IsPublic() {
	w := s.do(http.MethodGet, "/health", "", "")

	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlerTestSuite) TestCorrelationID_IsEchoed() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(httpapi.CorrelationHeader, "abc-123")
	w := httptest.NewRecorder()

	s.router.ServeHTTP(w, req)

	s.Equal("abc-123", w.Header().Get(httpapi.CorrelationHeader))
}
