package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pedrorrivero/qlab/internal/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestEventsStreamRejectsNonGet(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	handler := NewEventsStreamHandler(events.NewBus(log), log)

	req := httptest.NewRequest("POST", "/api/events/stream", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestEventsStreamSendsConnectionMessage(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	bus := events.NewBus(log)
	handler := NewEventsStreamHandler(bus, log)

	// A pre-cancelled context makes the stream loop exit right after the
	// initial message.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest("GET", "/api/events/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"type":"connected"`)
}

