package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hairizuanbinnoorazman/testcase-generator/generation"
	"github.com/hairizuanbinnoorazman/testcase-generator/issuetracker"
	"github.com/hairizuanbinnoorazman/testcase-generator/logger"
	"github.com/hairizuanbinnoorazman/testcase-generator/scriptgen"
	"github.com/hairizuanbinnoorazman/testcase-generator/session"
	"github.com/hairizuanbinnoorazman/testcase-generator/settings"
	"github.com/hairizuanbinnoorazman/testcase-generator/storage"
	"github.com/hairizuanbinnoorazman/testcase-generator/testcase"
	"github.com/stretchr/testify/require"
)

const testCookieSecret = "0123456789abcdef0123456789abcdef"

type fakeGenerator struct {
	mu       sync.Mutex
	requests []generation.Request
	cases    []testcase.TestCase
	err      error
}

func (f *fakeGenerator) Generate(ctx context.Context, req generation.Request) ([]testcase.TestCase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.cases, nil
}

func (f *fakeGenerator) last() generation.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type stubTrackerClient struct {
	mu       sync.Mutex
	inputs   []issuetracker.CreateIssueInput
	issue    *issuetracker.Issue
	err      error
	validate error
}

func (s *stubTrackerClient) CreateIssue(ctx context.Context, input issuetracker.CreateIssueInput) (*issuetracker.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, input)
	return s.issue, s.err
}

func (s *stubTrackerClient) ValidateConnection(ctx context.Context) error {
	return s.validate
}

type stubFactory struct {
	client *stubTrackerClient
	err    error
}

func (f *stubFactory) NewClient(provider issuetracker.ProviderType, cfg issuetracker.TrackerConfig) (issuetracker.Client, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

type testServer struct {
	*httptest.Server
	client    *http.Client
	log       *logger.TestLogger
	sessions  *session.Manager
	settings  *settings.Manager
	generator *fakeGenerator
	factory   *stubFactory
	upstream  *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := logger.NewTestLogger()
	ctx := context.Background()

	store, err := settings.NewFileStore(filepath.Join(t.TempDir(), "settings"))
	require.NoError(t, err)
	manager := settings.NewManager(store, log)
	require.NoError(t, manager.Load(ctx))

	blob, err := storage.NewLocalStorage(filepath.Join(t.TempDir(), "exports"))
	require.NoError(t, err)

	sessions := session.NewManager(time.Hour, log)
	generator := &fakeGenerator{}
	factory := &stubFactory{client: &stubTrackerClient{}}

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(string(body), "rate-limit") {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"message":"slow down"}}`))
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"echo"}}],"auth":"` + r.Header.Get("Authorization") + `"}`))
	}))
	t.Cleanup(upstream.Close)

	router := NewRouter(Handlers{
		Workspace:           NewWorkspaceHandler(sessions, log),
		TestCases:           NewTestCaseHandler(sessions, generator, log),
		Scripts:             NewScriptHandler(sessions, scriptgen.NewExporter(blob, log), log),
		Issues:              NewIssueHandler(sessions, manager, factory, log),
		Settings:            NewSettingsHandler(manager, log),
		OpenAIProxy:         NewOpenAIProxy(upstream.URL, "server-key-123456", upstream.Client(), log),
		WorkspaceMiddleware: NewWorkspaceMiddleware(sessions, testCookieSecret, "testgen_workspace", false, time.Hour, log),
		Logger:              log,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testServer{
		Server:    srv,
		client:    &http.Client{Jar: jar},
		log:       log,
		sessions:  sessions,
		settings:  manager,
		generator: generator,
		factory:   factory,
		upstream:  upstream,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *testServer) upload(t *testing.T, path, fileName, content string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPut, s.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func errorMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body ErrorResponse
	decode(t, resp, &body)
	return body.Error
}

var errBoom = errors.New("boom")
