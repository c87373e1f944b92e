package scanner

import (
	"context"
	"sync"
	"testing"
	"time"

	"volatility-scanner/src/helpers"
	"volatility-scanner/src/interfaces"
	"volatility-scanner/src/models"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeSelector struct {
	mu      sync.Mutex
	calls   int
	errs    []error // error per call; nil entries and overflow mean success
	symbols []string
}

func (f *fakeSelector) TopSymbols(ctx context.Context, max int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	call := f.calls
	f.calls++
	f.mu.Unlock()

	if call < len(f.errs) && f.errs[call] != nil {
		return nil, f.errs[call]
	}
	return f.symbols, nil
}

func (f *fakeSelector) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// -----------------------------------------------------------------------------

type readResult struct {
	bar models.MIntervalBar
	err error
}

// fakeStream serves scripted reads pushed through a channel; Close (from
// any goroutine) unblocks a pending read with a disruption, mirroring a
// real socket.
type fakeStream struct {
	steps     chan readResult
	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		steps:  make(chan readResult, 16),
		closed: make(chan struct{}),
	}
}

func (f *fakeStream) ReadBar(timeout time.Duration) (models.MIntervalBar, error) {
	select {
	case step := <-f.steps:
		return step.bar, step.err
	case <-f.closed:
		return models.MIntervalBar{}, helpers.NewStreamDisrupted("connection closed", nil)
	case <-time.After(timeout):
		return models.MIntervalBar{}, helpers.NewStreamDisrupted("read timeout", nil)
	}
}

func (f *fakeStream) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

// -----------------------------------------------------------------------------

type fakeDialer struct {
	mu      sync.Mutex
	streams []*fakeStream
	dials   int
}

func (f *fakeDialer) Dial(ctx context.Context, symbols []string, timeFrame string) (interfaces.IBarStream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.dials >= len(f.streams) {
		f.streams = append(f.streams, newFakeStream())
	}
	stream := f.streams[f.dials]
	f.dials++
	return stream, nil
}

func (f *fakeDialer) stream(i int) *fakeStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.streams) <= i {
		f.streams = append(f.streams, newFakeStream())
	}
	return f.streams[i]
}

func (f *fakeDialer) dialCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dials
}

// -----------------------------------------------------------------------------
// Harness
// -----------------------------------------------------------------------------

type harness struct {
	sink     *fakeSink
	session  *Session
	selector *fakeSelector
	dialer   *fakeDialer
	ingestor *Ingestor
	cancel   context.CancelFunc
	done     chan struct{}
}

func startIngestor(t *testing.T, selector *fakeSelector, dialer *fakeDialer) *harness {
	t.Helper()

	sink := &fakeSink{}
	session := newTestSession(sink)
	session.State.Activate(session)

	ing := NewIngestor(session, selector, dialer, "ERROR")
	ing.ReconnectCooldown = time.Millisecond
	ing.MessageCooldown = time.Millisecond
	ing.ReadTimeout = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ing.Run(ctx)
		close(done)
	}()

	h := &harness{
		sink:     sink,
		session:  session,
		selector: selector,
		dialer:   dialer,
		ingestor: ing,
		cancel:   cancel,
		done:     done,
	}
	t.Cleanup(func() {
		cancel()
		h.waitDone(t)
	})
	return h
}

func (h *harness) waitDone(t *testing.T) {
	t.Helper()
	select {
	case <-h.done:
	case <-time.After(2 * time.Second):
		t.Fatal("ingestor did not terminate")
	}
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func countType(types []string, want string) int {
	n := 0
	for _, tp := range types {
		if tp == want {
			n++
		}
	}
	return n
}

// -----------------------------------------------------------------------------
// Scenarios
// -----------------------------------------------------------------------------

func TestIngestorEmitsSignalBetweenScanMarkers(t *testing.T) {
	selector := &fakeSelector{symbols: []string{"BTCUSDT"}}
	dialer := &fakeDialer{}
	stream := dialer.stream(0)

	h := startIngestor(t, selector, dialer)

	stream.steps <- readResult{bar: testBar()}
	waitFor(t, "signal event", func() bool {
		return countType(h.sink.eventTypes(), models.EventSignal) == 1
	})

	h.cancel()
	h.waitDone(t)

	types := h.sink.eventTypes()
	if types[0] != models.EventScanStart {
		t.Errorf("first event = %q, want scan_start", types[0])
	}
	if types[len(types)-1] != models.EventScanEnd {
		t.Errorf("last event = %q, want scan_end", types[len(types)-1])
	}
	if countType(types, models.EventSignal) != 1 {
		t.Errorf("events = %v, want exactly one signal", types)
	}
}

// -----------------------------------------------------------------------------

func TestIngestorOpenBarsAreIgnored(t *testing.T) {
	selector := &fakeSelector{symbols: []string{"BTCUSDT"}}
	dialer := &fakeDialer{}
	stream := dialer.stream(0)

	h := startIngestor(t, selector, dialer)

	open := testBar()
	open.IsClosed = false
	stream.steps <- readResult{bar: open}
	stream.steps <- readResult{bar: testBar()}

	waitFor(t, "signal event", func() bool {
		return countType(h.sink.eventTypes(), models.EventSignal) == 1
	})
	if got := h.session.Signals(); len(got) != 1 {
		t.Errorf("table = %+v, want one signal (open bar ignored)", got)
	}
}

// -----------------------------------------------------------------------------

func TestIngestorReselectsAfterDisruption(t *testing.T) {
	selector := &fakeSelector{symbols: []string{"BTCUSDT"}}
	dialer := &fakeDialer{}
	first := dialer.stream(0)
	second := dialer.stream(1)

	h := startIngestor(t, selector, dialer)

	// Kill the first subscription
	first.steps <- readResult{err: helpers.NewStreamDisrupted("read timeout", nil)}

	waitFor(t, "second connection cycle", func() bool {
		return dialer.dialCount() >= 2
	})
	waitFor(t, "second scan_start", func() bool {
		return countType(h.sink.eventTypes(), models.EventScanStart) >= 2
	})

	// The fresh subscription keeps working
	second.steps <- readResult{bar: testBar()}
	waitFor(t, "signal after reconnect", func() bool {
		return countType(h.sink.eventTypes(), models.EventSignal) == 1
	})

	if selector.callCount() < 2 {
		t.Errorf("selector called %d times, want a full reselect", selector.callCount())
	}
}

// -----------------------------------------------------------------------------

func TestIngestorRetriesWhenMarketUnavailable(t *testing.T) {
	selector := &fakeSelector{
		symbols: []string{"BTCUSDT"},
		errs: []error{
			helpers.NewMarketUnavailable("ranking query failed", nil),
			helpers.NewMarketUnavailable("ranking query failed", nil),
		},
	}
	dialer := &fakeDialer{}

	h := startIngestor(t, selector, dialer)

	waitFor(t, "selection retry to succeed", func() bool {
		return selector.callCount() >= 3 && dialer.dialCount() >= 1
	})

	// scan_start only announced once selection finally succeeded
	types := h.sink.eventTypes()
	if len(types) == 0 || types[0] != models.EventScanStart {
		t.Errorf("events = %v, want scan_start first and nothing during retries", types)
	}
	if countType(types, models.EventScanStart) != 1 {
		t.Errorf("events = %v, want exactly one scan_start", types)
	}
}

// -----------------------------------------------------------------------------

func TestIngestorDropsMalformedMessages(t *testing.T) {
	selector := &fakeSelector{symbols: []string{"BTCUSDT"}}
	dialer := &fakeDialer{}
	stream := dialer.stream(0)

	h := startIngestor(t, selector, dialer)

	stream.steps <- readResult{err: helpers.NewMalformedMessage("undecodable stream message", nil)}
	stream.steps <- readResult{bar: testBar()}

	waitFor(t, "signal after dropped message", func() bool {
		return countType(h.sink.eventTypes(), models.EventSignal) == 1
	})

	// Still on the first subscription: no reconnect happened
	if dialer.dialCount() != 1 {
		t.Errorf("dial count = %d, want 1", dialer.dialCount())
	}
}

// -----------------------------------------------------------------------------

func TestIngestorScanEndOnCancelThenSilence(t *testing.T) {
	selector := &fakeSelector{symbols: []string{"BTCUSDT"}}
	dialer := &fakeDialer{}
	stream := dialer.stream(0)

	h := startIngestor(t, selector, dialer)

	stream.steps <- readResult{bar: testBar()}
	waitFor(t, "signal event", func() bool {
		return countType(h.sink.eventTypes(), models.EventSignal) == 1
	})

	// Viewer disconnects mid-CONNECTED
	h.cancel()
	h.waitDone(t)

	types := h.sink.eventTypes()
	if types[len(types)-1] != models.EventScanEnd {
		t.Fatalf("last event = %q, want scan_end", types[len(types)-1])
	}

	// Nothing more may arrive for this session
	count := len(h.sink.all())
	time.Sleep(20 * time.Millisecond)
	if len(h.sink.all()) != count {
		t.Error("events emitted after scan_end")
	}

	if h.ingestor.CurrentState() != StateClosed {
		t.Errorf("state = %v, want CLOSED", h.ingestor.CurrentState())
	}
}

// -----------------------------------------------------------------------------

func TestIngestorScanEndOnDeadViewer(t *testing.T) {
	selector := &fakeSelector{symbols: []string{"BTCUSDT"}}
	dialer := &fakeDialer{}
	stream := dialer.stream(0)

	h := startIngestor(t, selector, dialer)

	waitFor(t, "first connection", func() bool { return dialer.dialCount() == 1 })

	// Viewer dies; next delivery fails and the loop must terminate
	h.sink.kill()
	stream.steps <- readResult{bar: testBar()}

	h.waitDone(t)
}

// -----------------------------------------------------------------------------

func TestIngestorPeriodicResync(t *testing.T) {
	selector := &fakeSelector{symbols: []string{"BTCUSDT"}}
	dialer := &fakeDialer{}
	stream := dialer.stream(0)

	h := startIngestor(t, selector, dialer)

	// Seed three signals
	for _, sym := range []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"} {
		bar := testBar()
		bar.Symbol = sym
		stream.steps <- readResult{bar: bar}
	}
	waitFor(t, "three signals", func() bool {
		return countType(h.sink.eventTypes(), models.EventSignal) == 3
	})

	// Force the sync interval to be elapsed, then let any bar through
	h.session.mu.Lock()
	h.session.lastSync = time.Now().Add(-time.Hour)
	h.session.mu.Unlock()

	quiet := testBar()
	quiet.TradeCount = 1 // non-qualifying, triggers no signal of its own
	stream.steps <- readResult{bar: quiet}

	waitFor(t, "resync re-emission", func() bool {
		return countType(h.sink.eventTypes(), models.EventSignal) == 6
	})

	if got := h.session.Signals(); len(got) != 3 {
		t.Errorf("table size = %d after resync, want 3", len(got))
	}
}
