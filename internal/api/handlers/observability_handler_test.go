package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"commandlayer/internal/dto"
	"commandlayer/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLogLister struct {
	rows  []models.CommandLog
	limit int
}

func (f *fakeLogLister) List(_ context.Context, limit, _ int) ([]models.CommandLog, error) {
	f.limit = limit
	return f.rows, nil
}

func newLogsApp(lister CommandLogLister) *fiber.App {
	h := NewObservabilityHandler(lister, nil, nil, zap.NewNop())
	app := fiber.New()
	app.Get("/command-logs", h.ListCommandLogs)
	return app
}

func TestListCommandLogsSurfacesCallerIdentity(t *testing.T) {
	keyID := uuid.New()
	lister := &fakeLogLister{rows: []models.CommandLog{{
		ID:      uuid.New(),
		RawText: "assign_task",
		IntentJSON: `{"action":"assign_task","provider":"direct",` +
			`"auth":{"api_key_id":"` + keyID.String() + `","api_key_name":"ops-bot","role":"runner"}}`,
		Status:    models.CommandStatusSuccess,
		APIKeyID:  &keyID,
		CreatedAt: time.Now().UTC(),
	}}}
	app := newLogsApp(lister)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/command-logs", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var items []dto.CommandLogItem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 1)

	require.NotNil(t, items[0].APIKeyName)
	assert.Equal(t, "ops-bot", *items[0].APIKeyName)
	require.NotNil(t, items[0].Role)
	assert.Equal(t, "runner", *items[0].Role)
	require.NotNil(t, items[0].APIKeyID)
	assert.Equal(t, keyID.String(), *items[0].APIKeyID)
}

func TestListCommandLogsWithoutAuthMetadata(t *testing.T) {
	lister := &fakeLogLister{rows: []models.CommandLog{{
		ID:         uuid.New(),
		RawText:    "assign the thing",
		IntentJSON: `{"action":"assign_task","provider":"pre_ai"}`,
		Status:     models.CommandStatusSuccess,
		CreatedAt:  time.Now().UTC(),
	}}}
	app := newLogsApp(lister)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/command-logs", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var items []dto.CommandLogItem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.Nil(t, items[0].APIKeyID)
	assert.Nil(t, items[0].APIKeyName)
	assert.Nil(t, items[0].Role)
}

func TestListCommandLogsClampsLimit(t *testing.T) {
	lister := &fakeLogLister{}
	app := newLogsApp(lister)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/command-logs?limit=9999", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 50, lister.limit, "out-of-range limits fall back to the default")
}
