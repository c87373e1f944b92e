package scanner

import "volatility-scanner/src/models"

// -----------------------------------------------------------------------------
// Signal Table
// -----------------------------------------------------------------------------

// SignalTable holds at most one signal per symbol, in first-seen order.
// It is owned by exactly one Session, which serializes access to it.
type SignalTable struct {
	signals []models.MSignal
	index   map[string]int
}

// -----------------------------------------------------------------------------

func NewSignalTable() *SignalTable {
	return &SignalTable{index: make(map[string]int)}
}

// -----------------------------------------------------------------------------

// Upsert replaces the signal for its symbol in place, or appends it.
func (t *SignalTable) Upsert(sig models.MSignal) {
	if i, ok := t.index[sig.Symbol]; ok {
		t.signals[i] = sig
		return
	}
	t.index[sig.Symbol] = len(t.signals)
	t.signals = append(t.signals, sig)
}

// -----------------------------------------------------------------------------

// Snapshot returns a copy of the current signals in table order.
func (t *SignalTable) Snapshot() []models.MSignal {
	out := make([]models.MSignal, len(t.signals))
	copy(out, t.signals)
	return out
}

// -----------------------------------------------------------------------------

// Clear empties the table.
func (t *SignalTable) Clear() {
	t.signals = nil
	t.index = make(map[string]int)
}

// -----------------------------------------------------------------------------

func (t *SignalTable) Len() int {
	return len(t.signals)
}
