package helpers

import (
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Error Taxonomy
// -----------------------------------------------------------------------------
//
// Every failure in the scanner core resolves to one of these classes:
//
//	InvalidConfiguration - rejected viewer input, previous config stays live
//	MarketUnavailable    - ranking query failed, retried with cooldown
//	StreamDisrupted      - stream timeout or abrupt close, full reconnect
//	MalformedMessage     - one bad stream update, dropped, loop continues
//	DeliveryFailure      - push to a dead viewer, terminates that session
//
// None of them are fatal to the process.

type ScannerError struct {
	Message string
	Cause   error
}

func (e *ScannerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ScannerError) Unwrap() error {
	return e.Cause
}

// -----------------------------------------------------------------------------

type InvalidConfigurationError struct{ ScannerError }
type MarketUnavailableError struct{ ScannerError }
type StreamDisruptedError struct{ ScannerError }
type MalformedMessageError struct{ ScannerError }
type DeliveryFailureError struct{ ScannerError }

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewInvalidConfiguration(msg string) error {
	return &InvalidConfigurationError{ScannerError{Message: msg}}
}

func NewMarketUnavailable(msg string, cause error) error {
	return &MarketUnavailableError{ScannerError{Message: msg, Cause: cause}}
}

func NewStreamDisrupted(msg string, cause error) error {
	return &StreamDisruptedError{ScannerError{Message: msg, Cause: cause}}
}

func NewMalformedMessage(msg string, cause error) error {
	return &MalformedMessageError{ScannerError{Message: msg, Cause: cause}}
}

func NewDeliveryFailure(msg string, cause error) error {
	return &DeliveryFailureError{ScannerError{Message: msg, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Classification
// -----------------------------------------------------------------------------

func IsInvalidConfiguration(err error) bool {
	var target *InvalidConfigurationError
	return errors.As(err, &target)
}

func IsMarketUnavailable(err error) bool {
	var target *MarketUnavailableError
	return errors.As(err, &target)
}

func IsStreamDisrupted(err error) bool {
	var target *StreamDisruptedError
	return errors.As(err, &target)
}

func IsMalformedMessage(err error) bool {
	var target *MalformedMessageError
	return errors.As(err, &target)
}

func IsDeliveryFailure(err error) bool {
	var target *DeliveryFailureError
	return errors.As(err, &target)
}
