package models

// -----------------------------------------------------------------------------
// Viewer Protocol (tagged variants, validated at the boundary)
// -----------------------------------------------------------------------------

// Inbound command actions.
const (
	ActionClear        = "clear"
	ActionUpdateConfig = "update_config"
	ActionGetConfig    = "get_config"
)

// Outbound event types.
const (
	EventStatus    = "status"
	EventConfig    = "config"
	EventScanStart = "scan_start"
	EventScanEnd   = "scan_end"
	EventSignal    = "signal"
	EventClear     = "clear"
)

// -----------------------------------------------------------------------------

// MClientCommand is a parsed viewer command. Config is only set for
// update_config and must pass Store validation before taking effect.
type MClientCommand struct {
	Action string       `json:"action"`
	Config *MScanConfig `json:"config,omitempty"`
}

// -----------------------------------------------------------------------------
// Outbound events. One struct per variant so the wire shape is explicit
// rather than assembled from loose maps.
// -----------------------------------------------------------------------------

type MStatusEvent struct {
	Type   string `json:"type"`
	Active bool   `json:"active"`
}

type MConfigEvent struct {
	Type   string      `json:"type"`
	Config MScanConfig `json:"config"`
}

// MScanEvent covers scan_start, scan_end and clear, which carry no payload.
type MScanEvent struct {
	Type string `json:"type"`
}

type MSignalEvent struct {
	Type   string  `json:"type"`
	Signal MSignal `json:"signal"`
}

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewStatusEvent(active bool) MStatusEvent {
	return MStatusEvent{Type: EventStatus, Active: active}
}

func NewConfigEvent(cfg MScanConfig) MConfigEvent {
	return MConfigEvent{Type: EventConfig, Config: cfg}
}

func NewScanStartEvent() MScanEvent { return MScanEvent{Type: EventScanStart} }

func NewScanEndEvent() MScanEvent { return MScanEvent{Type: EventScanEnd} }

func NewClearEvent() MScanEvent { return MScanEvent{Type: EventClear} }

func NewSignalEvent(sig MSignal) MSignalEvent {
	return MSignalEvent{Type: EventSignal, Signal: sig}
}
