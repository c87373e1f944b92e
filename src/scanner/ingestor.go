package scanner

import (
	"context"
	"time"

	"volatility-scanner/src/helpers"
	"volatility-scanner/src/interfaces"
	"volatility-scanner/src/logger"
)

// -----------------------------------------------------------------------------
// Stream Ingestor State Machine
// -----------------------------------------------------------------------------
//
// Per-session lifecycle:
//
//	IDLE -> SELECTING            on activation
//	SELECTING -> SELECTING       ranking query failed (cooldown, retry)
//	SELECTING -> CONNECTED       subscription opened (scan_start first)
//	CONNECTED -> CONNECTED       bar processed, or bad message dropped
//	CONNECTED -> DEGRADED        read timeout / abrupt close (cooldown,
//	                             then full reselect)
//	any -> CLOSED                deactivation, cancellation or delivery
//	                             failure; scan_end is always announced

type ScanState int

const (
	StateIdle ScanState = iota
	StateSelecting
	StateConnected
	StateDegraded
	StateClosed
)

func (s ScanState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateSelecting:
		return "SELECTING"
	case StateConnected:
		return "CONNECTED"
	case StateDegraded:
		return "DEGRADED"
	case StateClosed:
		return "CLOSED"
	}
	return "UNKNOWN"
}

// -----------------------------------------------------------------------------
// Timing policy
// -----------------------------------------------------------------------------

const (
	// DefaultReadTimeout bounds a single stream read; silence beyond it
	// counts as a disrupted stream.
	DefaultReadTimeout = 30 * time.Second

	// DefaultReconnectCooldown is the pause before a full reselect after
	// a failed selection or a disrupted stream.
	DefaultReconnectCooldown = 5 * time.Second

	// DefaultMessageCooldown is the pause after dropping one bad message.
	DefaultMessageCooldown = 1 * time.Second
)

// -----------------------------------------------------------------------------

// Ingestor drives one session's selection/subscription cycle.
type Ingestor struct {
	Session  *Session
	Selector interfaces.ISymbolSelector
	Dialer   interfaces.IStreamDialer
	Logger   *logger.Logger

	// Timing knobs, overridable in tests
	ReadTimeout       time.Duration
	ReconnectCooldown time.Duration
	MessageCooldown   time.Duration

	state ScanState
}

// -----------------------------------------------------------------------------

func NewIngestor(session *Session, selector interfaces.ISymbolSelector, dialer interfaces.IStreamDialer, logLevel string) *Ingestor {
	return &Ingestor{
		Session:           session,
		Selector:          selector,
		Dialer:            dialer,
		Logger:            logger.NewLogger(logLevel, "Ingestor"),
		ReadTimeout:       DefaultReadTimeout,
		ReconnectCooldown: DefaultReconnectCooldown,
		MessageCooldown:   DefaultMessageCooldown,
		state:             StateIdle,
	}
}

// -----------------------------------------------------------------------------

// CurrentState returns the machine's current state.
func (ing *Ingestor) CurrentState() ScanState {
	return ing.state
}

// -----------------------------------------------------------------------------

// Run executes the ingestion loop until the session is deactivated, the
// context is cancelled or the viewer is gone. scan_end is announced on
// every exit path.
func (ing *Ingestor) Run(ctx context.Context) {
	defer func() {
		ing.state = StateClosed
		ing.Session.AnnounceScanEnd()
	}()

	for ing.running(ctx) {
		ing.state = StateSelecting

		symbols, err := ing.Selector.TopSymbols(ctx, ing.Session.Store.Get().MaxSymbols)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			ing.Logger.Warning("Selection failed: %v (retrying in %v)", err, ing.ReconnectCooldown)
			if !ing.cooldown(ctx, ing.ReconnectCooldown) {
				return
			}
			continue
		}

		// scan_start marks the new connection cycle before any signal
		// from it can be emitted
		if err := ing.Session.AnnounceScanStart(); err != nil {
			ing.Logger.Info("Viewer gone before scan start: %v", err)
			return
		}

		cfg := ing.Session.Store.Get()
		stream, err := ing.Dialer.Dial(ctx, symbols, cfg.TimeFrame)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			ing.Logger.Warning("Stream connect failed: %v (retrying in %v)", err, ing.ReconnectCooldown)
			if !ing.cooldown(ctx, ing.ReconnectCooldown) {
				return
			}
			continue
		}

		ing.state = StateConnected
		ing.Logger.Info("Connected, scanning %d symbols at %s", len(symbols), cfg.TimeFrame)

		err = ing.consume(ctx, stream)

		if err == nil || ctx.Err() != nil {
			// Deactivated or cancelled: clean close
			stream.Close()
			return
		}
		if helpers.IsDeliveryFailure(err) {
			stream.Close()
			ing.Logger.Info("Viewer gone: %v", err)
			return
		}

		// Disrupted stream: tear down, cool off, reselect from scratch
		// (the remote top-volume set may have changed)
		stream.Close()
		ing.state = StateDegraded
		ing.Logger.Warning("Stream disrupted: %v (reconnecting in %v)", err, ing.ReconnectCooldown)
		if !ing.cooldown(ctx, ing.ReconnectCooldown) {
			return
		}
	}
}

// -----------------------------------------------------------------------------

// consume runs the CONNECTED loop. Returns nil on deactivation, a
// DeliveryFailure when the viewer is gone, or a StreamDisrupted error to
// trigger a reconnect.
func (ing *Ingestor) consume(ctx context.Context, stream interfaces.IBarStream) error {
	// Unblock the pending read promptly when the session is cancelled
	stop := context.AfterFunc(ctx, func() { stream.Close() })
	defer stop()

	for ing.running(ctx) {
		bar, err := stream.ReadBar(ing.ReadTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if helpers.IsMalformedMessage(err) {
				// One bad message never kills the subscription
				ing.Logger.Debug("Dropped message: %v", err)
				if !ing.cooldown(ctx, ing.MessageCooldown) {
					return nil
				}
				continue
			}
			return err
		}

		if bar.IsClosed {
			if err := ing.Session.ProcessBar(bar); err != nil {
				return err
			}
		}

		if ing.Session.ResyncDue() {
			if err := ing.Session.Resync(); err != nil {
				return err
			}
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (ing *Ingestor) running(ctx context.Context) bool {
	return ing.Session.State.Active() && ctx.Err() == nil
}

// -----------------------------------------------------------------------------

// cooldown sleeps for d unless the context ends first; the return value
// reports whether the loop may continue.
func (ing *Ingestor) cooldown(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
