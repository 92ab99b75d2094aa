package sync

import "errors"

var (
	// ErrProtocolViolation indicates a backend response that breaks the record
	// service contract (missing per-record outcome, missing conflict record)
	ErrProtocolViolation = errors.New("backend protocol violation")

	// ErrNotStarted is returned when the coordinator is used before Start
	ErrNotStarted = errors.New("sync coordinator not started")

	// ErrQueueClosed is the result of operations dropped by a closed queue
	ErrQueueClosed = errors.New("operation queue closed")

	// ErrZoneNotReady is returned when subscription provisioning is attempted
	// before the zone exists
	ErrZoneNotReady = errors.New("zone is not ready")
)
