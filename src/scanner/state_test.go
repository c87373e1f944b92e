package scanner

import "testing"

// -----------------------------------------------------------------------------

func TestStateFirstSessionWinsDesignation(t *testing.T) {
	state := NewState()
	if state.Active() {
		t.Fatal("fresh state should be inactive")
	}

	first := &Session{}
	second := &Session{}

	if !state.Activate(first) {
		t.Error("first session should take the designation")
	}
	if !state.Active() {
		t.Error("state should be active after first session")
	}

	if state.Activate(second) {
		t.Error("second session must not steal the designation")
	}
	if state.Current() != first {
		t.Error("designated session changed")
	}

	// The flag is never cleared by this core
	if !state.Active() {
		t.Error("active flag must stay set")
	}
}
