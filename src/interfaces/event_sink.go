package interfaces

// -----------------------------------------------------------------------------
// IEventSink delivers outbound events to one viewer.
// -----------------------------------------------------------------------------

type IEventSink interface {

	// -----------------------------------------------------------------------------

	// Send pushes one outbound event. A DeliveryFailure error means the
	// viewer is gone and the owning session must terminate its loop.
	Send(event interface{}) error
}
