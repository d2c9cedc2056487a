package events

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorker(t *testing.T, url string) *WebhookWorker {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := config.Default()
	cfg.WebhookURL = url
	cfg.WebhookSecret = "s3cret"
	cfg.WebhookMaxRetries = 3
	cfg.WebhookBaseDelay = time.Millisecond
	cfg.WebhookTimeout = time.Second

	return NewWebhookWorker(nil, logger, cfg)
}

func testEvent(t *testing.T) (DispatchEvent, string) {
	t.Helper()
	id := uuid.New()
	event := DispatchEvent{
		Type:       IncidentAssigned,
		IncidentID: &id,
		Code:       "EMT-2026-0042",
		Status:     "DISPATCHED",
		OccurredAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return event, string(payload)
}

func TestDeliver_SignsPayload(t *testing.T) {
	event, payload := testEvent(t)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, payload, string(body))
		assert.Equal(t, Sign(payload, "s3cret"), r.Header.Get("X-Webhook-Signature"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := newTestWorker(t, srv.URL).deliver(context.Background(), event, payload)

	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestDeliver_RetriesServerErrors(t *testing.T) {
	event, payload := testEvent(t)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newTestWorker(t, srv.URL).deliver(context.Background(), event, payload)

	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestDeliver_ClientErrorIsPermanent(t *testing.T) {
	event, payload := testEvent(t)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := newTestWorker(t, srv.URL).deliver(context.Background(), event, payload)

	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestDeliver_GivesUpAfterMaxRetries(t *testing.T) {
	event, payload := testEvent(t)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := newTestWorker(t, srv.URL).deliver(context.Background(), event, payload)

	require.Error(t, err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestDeliver_NoURLSkips(t *testing.T) {
	event, payload := testEvent(t)
	assert.NoError(t, newTestWorker(t, "").deliver(context.Background(), event, payload))
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "dispatch.events.incident.reported", Subject(IncidentReported))
	assert.Equal(t, "dispatch.events.provider.status_changed", Subject(ProviderStatusChanged))
}

func TestNopPublisher(t *testing.T) {
	event, _ := testEvent(t)
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), event))
}
