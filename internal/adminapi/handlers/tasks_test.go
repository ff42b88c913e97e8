package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cppq "github.com/jafarlihi/cppq-go"
)

func TestTaskHandler_Get_MissingParams(t *testing.T) {
	store := newQueueTestStore(t)
	h := NewTaskHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/admin/tasks//", nil)
	req = withURLParam(req, "queue", "")
	w := httptest.NewRecorder()

	h.Get(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_Get_NotFound(t *testing.T) {
	store := newQueueTestStore(t)
	h := NewTaskHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/admin/tasks/default/missing", nil)
	req = withURLParam(req, "queue", "default")
	req = withURLParam(req, "uuid", "missing")
	w := httptest.NewRecorder()

	h.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskHandler_Get_Found(t *testing.T) {
	store := newQueueTestStore(t)
	ctx := context.Background()

	task := cppq.NewTask("echo", "hi", 1)
	require.NoError(t, cppq.Enqueue(ctx, store, task, "default"))

	h := NewTaskHandler(store)
	req := httptest.NewRequest(http.MethodGet, "/admin/tasks/default/"+task.UUID, nil)
	req = withURLParam(req, "queue", "default")
	req = withURLParam(req, "uuid", task.UUID)
	w := httptest.NewRecorder()

	h.Get(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, task.UUID, body["UUID"])
	assert.Equal(t, "echo", body["Type"])
}

func TestTaskHandler_Create_MissingType(t *testing.T) {
	store := newQueueTestStore(t)
	h := NewTaskHandler(store)

	body, _ := json.Marshal(CreateTaskRequest{})
	req := httptest.NewRequest(http.MethodPost, "/admin/tasks/default", bytes.NewReader(body))
	req = withURLParam(req, "queue", "default")
	w := httptest.NewRecorder()

	h.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_Create_Immediate(t *testing.T) {
	store := newQueueTestStore(t)
	ctx := context.Background()
	h := NewTaskHandler(store)

	body, _ := json.Marshal(CreateTaskRequest{Type: "echo", Payload: "hi", MaxRetry: 2})
	req := httptest.NewRequest(http.MethodPost, "/admin/tasks/default", bytes.NewReader(body))
	req = withURLParam(req, "queue", "default")
	w := httptest.NewRecorder()

	h.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	depth, err := cppq.GetQueueDepth(ctx, store, "default")
	require.NoError(t, err)
	assert.Equal(t, int64(1), depth.Pending)
}

func TestTaskHandler_Create_Cron(t *testing.T) {
	store := newQueueTestStore(t)
	ctx := context.Background()
	h := NewTaskHandler(store)

	body, _ := json.Marshal(CreateTaskRequest{Type: "echo", Cron: "*/5 * * * *"})
	req := httptest.NewRequest(http.MethodPost, "/admin/tasks/default", bytes.NewReader(body))
	req = withURLParam(req, "queue", "default")
	w := httptest.NewRecorder()

	h.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	depth, err := cppq.GetQueueDepth(ctx, store, "default")
	require.NoError(t, err)
	assert.Equal(t, int64(1), depth.Scheduled)
}
