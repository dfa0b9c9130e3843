package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"flipbook/controller"
	"flipbook/models"
	"flipbook/route"
	"flipbook/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var errBoom = errors.New("boom")

// failingStore wraps a MemoryStore and fails the operations named in fail.
type failingStore struct {
	*store.MemoryStore
	fail map[string]bool
}

func (f *failingStore) ListImages(ctx context.Context) ([]models.Image, error) {
	if f.fail["ListImages"] {
		return nil, errBoom
	}
	return f.MemoryStore.ListImages(ctx)
}

func (f *failingStore) CreateProject(ctx context.Context, p *models.Project) error {
	if f.fail["CreateProject"] {
		return errBoom
	}
	return f.MemoryStore.CreateProject(ctx, p)
}

func (f *failingStore) RecordProjectView(ctx context.Context, shareID string, at time.Time) (*models.ProjectView, error) {
	if f.fail["RecordProjectView"] {
		return nil, errBoom
	}
	return f.MemoryStore.RecordProjectView(ctx, shareID, at)
}

func (f *failingStore) Ping(ctx context.Context) error {
	if f.fail["Ping"] {
		return errBoom
	}
	return f.MemoryStore.Ping(ctx)
}

type fakeObjects struct {
	mu          sync.Mutex
	uploads     map[string][]byte
	presignFail bool
}

func (f *fakeObjects) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	f.uploads[key] = data
	return "https://bucket.test/" + key, nil
}

func (f *fakeObjects) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	if f.presignFail {
		return "", errBoom
	}
	return "https://bucket.test/" + key + "?expires=" + ttl.String(), nil
}

// testClock advances by one second on every read.
type testClock struct {
	mu   sync.Mutex
	next time.Time
	last time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = c.next
	c.next = c.next.Add(time.Second)
	return c.last
}

func (c *testClock) Last() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

type testServer struct {
	router *gin.Engine
	clock  *testClock
}

func newTestServer(t *testing.T, deps controller.Deps) *testServer {
	t.Helper()
	if deps.Store == nil {
		deps.Store = store.NewMemoryStore()
	}
	clock := &testClock{next: time.Date(2026, 10, 19, 15, 4, 5, 0, time.UTC)}
	if deps.Now == nil {
		deps.Now = clock.Now
	}
	router := gin.New()
	route.Register(router, controller.New(deps))
	return &testServer{router: router, clock: clock}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeObject(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var v map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func decodeArray(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var v []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	require.NotNil(t, v, "expected a JSON array, got %s", w.Body.String())
	return v
}
