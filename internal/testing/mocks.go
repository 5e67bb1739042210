package testing

import (
	"context"
	"sync"

	"github.com/pedrorrivero/qlab/internal/modules/backend"
	"github.com/pedrorrivero/qlab/internal/modules/circuit"
)

// ScriptedBackend replays a fixed sequence of count maps, one per Run call,
// and records every submitted circuit. It makes measurement-driven control
// flow deterministic in tests.
type ScriptedBackend struct {
	mu       sync.Mutex
	script   []backend.Counts
	next     int
	Circuits []*circuit.Circuit
}

// NewScriptedBackend creates a backend replaying the given count maps in
// order. Once the script is exhausted the last entry repeats.
func NewScriptedBackend(script ...backend.Counts) *ScriptedBackend {
	return &ScriptedBackend{script: script}
}

// Name identifies the backend in run records.
func (b *ScriptedBackend) Name() string { return "scripted" }

// Run records the circuit and returns the next scripted counts.
func (b *ScriptedBackend) Run(ctx context.Context, c *circuit.Circuit, shots int) (backend.Counts, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.Circuits = append(b.Circuits, c)
	if len(b.script) == 0 {
		return backend.Counts{}, nil
	}
	counts := b.script[b.next]
	if b.next < len(b.script)-1 {
		b.next++
	}
	return counts, nil
}

// Runs returns how many circuits were submitted.
func (b *ScriptedBackend) Runs() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Circuits)
}

// FailingBackend returns the configured error from every Run call.
type FailingBackend struct {
	Err error
}

// Name identifies the backend in run records.
func (b *FailingBackend) Name() string { return "failing" }

// Run always fails.
func (b *FailingBackend) Run(ctx context.Context, c *circuit.Circuit, shots int) (backend.Counts, error) {
	return nil, b.Err
}
