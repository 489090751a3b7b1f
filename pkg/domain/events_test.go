package domain

import (
	"errors"
	"testing"
)

func TestCombineHooks(t *testing.T) {
	var calls []string
	first := LifecycleHooks{
		OnNodeCreated: func(NodeEvent) { calls = append(calls, "first-created") },
		OnConnectionRejected: func(error) {
			calls = append(calls, "first-rejected")
		},
	}
	second := LifecycleHooks{
		OnNodeCreated: func(NodeEvent) { calls = append(calls, "second-created") },
		// OnConnectionRejected left nil on purpose
	}

	combined := CombineHooks(first, second)
	combined.OnNodeCreated(NodeEvent{ID: "n1"})
	combined.OnNodeRemoved(NodeEvent{ID: "n1"})
	combined.OnConnectionRejected(errors.New("refused"))

	want := []string{"first-created", "second-created", "first-rejected"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, calls[i], want[i])
		}
	}
}
