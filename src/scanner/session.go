package scanner

import (
	"fmt"
	"sync"
	"time"

	"volatility-scanner/src/config"
	"volatility-scanner/src/helpers"
	"volatility-scanner/src/interfaces"
	"volatility-scanner/src/logger"
	"volatility-scanner/src/models"
)

// -----------------------------------------------------------------------------
// Session
// -----------------------------------------------------------------------------

// Session is the per-viewer unit: one signal table, one periodic-sync
// timestamp, one event sink, plus references to the shared config store
// and process state. It is created on viewer connect and discarded on
// disconnect.
type Session struct {
	Store  *config.Store
	State  *State
	Logger *logger.Logger

	sink interfaces.IEventSink

	mu       sync.Mutex
	table    *SignalTable
	lastSync time.Time
}

// -----------------------------------------------------------------------------

func NewSession(store *config.Store, state *State, sink interfaces.IEventSink, logLevel string) *Session {
	return &Session{
		Store:    store,
		State:    state,
		Logger:   logger.NewLogger(logLevel, "Session"),
		sink:     sink,
		table:    NewSignalTable(),
		lastSync: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Command Handling (viewer -> session)
// -----------------------------------------------------------------------------

// HandleCommand applies one parsed viewer command. Validation failures are
// returned to the caller; every other outcome is acknowledged through the
// sink.
func (s *Session) HandleCommand(cmd models.MClientCommand) error {
	switch cmd.Action {
	case models.ActionClear:
		s.mu.Lock()
		s.table.Clear()
		s.mu.Unlock()
		return s.send(models.NewClearEvent())

	case models.ActionUpdateConfig:
		if cmd.Config == nil {
			// Reply with the unchanged snapshot so the viewer sees the
			// rejection, then surface the validation error.
			s.send(models.NewConfigEvent(s.Store.Get()))
			return helpers.NewInvalidConfiguration("update_config requires a config object")
		}
		applied, err := s.Store.Replace(*cmd.Config)
		if sendErr := s.send(models.NewConfigEvent(applied)); sendErr != nil {
			return sendErr
		}
		return err

	case models.ActionGetConfig:
		return s.send(models.NewConfigEvent(s.Store.Get()))

	default:
		return helpers.NewInvalidConfiguration(fmt.Sprintf("unknown action %q", cmd.Action))
	}
}

// -----------------------------------------------------------------------------
// Ingestion Callbacks (ingestor -> session)
// -----------------------------------------------------------------------------

// ProcessBar evaluates one closed bar; a qualifying result is upserted and
// pushed immediately. Only delivery trouble is an error.
func (s *Session) ProcessBar(bar models.MIntervalBar) error {
	sig, ok := Evaluate(bar, s.Store.Get())
	if !ok {
		return nil
	}

	s.mu.Lock()
	s.table.Upsert(sig)
	s.mu.Unlock()

	return s.send(models.NewSignalEvent(sig))
}

// -----------------------------------------------------------------------------

// ResyncDue reports whether the periodic full resync interval has elapsed.
func (s *Session) ResyncDue() bool {
	refresh := time.Duration(s.Store.Get().RefreshRateSeconds) * time.Second

	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastSync) >= refresh
}

// -----------------------------------------------------------------------------

// Resync re-announces every current signal and resets the sync timer. The
// table itself is left untouched.
func (s *Session) Resync() error {
	s.mu.Lock()
	signals := s.table.Snapshot()
	s.lastSync = time.Now()
	s.mu.Unlock()

	for _, sig := range signals {
		if err := s.send(models.NewSignalEvent(sig)); err != nil {
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// AnnounceScanStart pushes the scan_start marker.
func (s *Session) AnnounceScanStart() error {
	return s.send(models.NewScanStartEvent())
}

// -----------------------------------------------------------------------------

// AnnounceScanEnd pushes the scan_end marker. Called on every ingestion
// exit path; a dead sink at this point is expected and only logged.
func (s *Session) AnnounceScanEnd() {
	if err := s.send(models.NewScanEndEvent()); err != nil {
		s.Logger.Debug("scan_end not delivered: %v", err)
	}
}

// -----------------------------------------------------------------------------

// Signals returns a copy of the session's current signal table.
func (s *Session) Signals() []models.MSignal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Snapshot()
}

// -----------------------------------------------------------------------------

func (s *Session) send(event interface{}) error {
	if err := s.sink.Send(event); err != nil {
		if helpers.IsDeliveryFailure(err) {
			return err
		}
		return helpers.NewDeliveryFailure("event delivery failed", err)
	}
	return nil
}
