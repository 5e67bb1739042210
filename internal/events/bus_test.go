package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus() *Bus {
	return NewBus(zerolog.New(nil).Level(zerolog.Disabled))
}

func TestSubscribeAndEmit(t *testing.T) {
	bus := newTestBus()

	var received []*Event
	bus.Subscribe(RunStarted, func(e *Event) {
		received = append(received, e)
	})

	bus.Emit(RunStarted, "workflows", map[string]interface{}{"run_id": "abc"})

	require.Len(t, received, 1)
	assert.Equal(t, RunStarted, received[0].Type)
	assert.Equal(t, "workflows", received[0].Module)
	assert.Equal(t, "abc", received[0].Data["run_id"])
	assert.False(t, received[0].Timestamp.IsZero())
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := newTestBus()

	kept := 0
	dropped := 0
	bus.Subscribe(RunStarted, func(e *Event) { kept++ })
	sub := bus.Subscribe(RunStarted, func(e *Event) { dropped++ })

	bus.Emit(RunStarted, "workflows", nil)
	bus.Unsubscribe(RunStarted, sub)
	bus.Emit(RunStarted, "workflows", nil)

	assert.Equal(t, 2, kept)
	assert.Equal(t, 1, dropped)
}

func TestEmitOnlyMatchingType(t *testing.T) {
	bus := newTestBus()

	started := 0
	completed := 0
	bus.Subscribe(RunStarted, func(e *Event) { started++ })
	bus.Subscribe(RunCompleted, func(e *Event) { completed++ })

	bus.Emit(RunStarted, "workflows", nil)
	bus.Emit(RunStarted, "workflows", nil)

	assert.Equal(t, 2, started)
	assert.Equal(t, 0, completed)
}

func TestEmitWithoutSubscribersIsSafe(t *testing.T) {
	bus := newTestBus()
	assert.NotPanics(t, func() {
		bus.Emit(MaskRecovered, "simon", map[string]interface{}{"mask": "011"})
	})
}

func TestEmitTypedConvertsToMap(t *testing.T) {
	bus := newTestBus()

	var got map[string]interface{}
	bus.Subscribe(ConstraintCollected, func(e *Event) {
		got = e.Data
	})

	bus.EmitTyped(ConstraintCollected, "simon", &ConstraintCollectedData{
		RunID:     "run-1",
		Vector:    "011",
		Collected: 1,
		Needed:    2,
	})

	require.NotNil(t, got)
	assert.Equal(t, "run-1", got["run_id"])
	assert.Equal(t, "011", got["vector"])
	// JSON round-trips numbers as float64.
	assert.Equal(t, float64(1), got["collected"])
	assert.Equal(t, float64(2), got["needed"])
}

func TestEmitError(t *testing.T) {
	bus := newTestBus()

	var got *Event
	bus.Subscribe(ErrorOccurred, func(e *Event) { got = e })

	bus.EmitError("backend", errors.New("register too large"), map[string]interface{}{"qubits": 30})

	require.NotNil(t, got)
	assert.Equal(t, "register too large", got.Data["error"])
}

func TestEventWithDataRoundTrip(t *testing.T) {
	original := &EventWithData{
		Type:      RoundResolved,
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Module:    "workflows",
		Data: &RoundResolvedData{
			RunID: "run-1",
			Round: 3,
			Bit:   1,
			Bits:  "1",
		},
	}

	encoded, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded EventWithData
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	assert.Equal(t, RoundResolved, decoded.Type)
	data, ok := decoded.Data.(*RoundResolvedData)
	require.True(t, ok)
	assert.Equal(t, "run-1", data.RunID)
	assert.Equal(t, 3, data.Round)
	assert.Equal(t, 1, data.Bit)
}

func TestEventWithDataUnknownType(t *testing.T) {
	raw := `{"type":"SOMETHING_ELSE","timestamp":"2026-01-01T00:00:00Z","module":"x","data":{"k":"v"}}`

	var decoded EventWithData
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))

	generic, ok := decoded.Data.(*GenericEventData)
	require.True(t, ok)
	assert.Equal(t, "v", generic.Data["k"])
}
