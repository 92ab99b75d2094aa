package remote

import (
	"errors"
	"fmt"
	"time"
)

// Code classifies a backend failure
type Code string

const (
	CodeZoneNotFound         Code = "zone_not_found"
	CodeSubscriptionNotFound Code = "subscription_not_found"
	CodeLimitExceeded        Code = "limit_exceeded"
	CodePartialFailure       Code = "partial_failure"
	CodeServerRecordChanged  Code = "server_record_changed"
	CodeBatchRequestFailed   Code = "batch_request_failed"
	CodeChangeTokenExpired   Code = "change_token_expired"
	CodeRateLimited          Code = "rate_limited"
	CodeServiceUnavailable   Code = "service_unavailable"
	CodeNetworkFailure       Code = "network_failure"
	CodeUnknownItem          Code = "unknown_item"
	CodeBadRequest           Code = "bad_request"
	CodeUnauthorized         Code = "unauthorized"
	CodeInternal             Code = "internal"
)

// Error is a failure reported by the backend.
//
// RetryAfter is non-zero only when the backend explicitly asked the caller to
// retry after a delay. PerRecord is set for CodePartialFailure, keyed by
// record name. ServerRecord is set for CodeServerRecordChanged.
type Error struct {
	PerRecord    map[string]*Error
	ServerRecord *Record
	Code         Code
	Message      string
	RetryAfter   time.Duration
}

func (e *Error) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("remote %s: %s (retry after %s)", e.Code, e.Message, e.RetryAfter)
	}
	if e.Message == "" {
		return "remote " + string(e.Code)
	}
	return fmt.Sprintf("remote %s: %s", e.Code, e.Message)
}

// CodeOf extracts the Code of a remote error, or "" for any other error
func CodeOf(err error) Code {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Code
	}
	return ""
}

// RetryAfterOf returns the backend-supplied retry delay of err
func RetryAfterOf(err error) (time.Duration, bool) {
	var rerr *Error
	if errors.As(err, &rerr) && rerr.RetryAfter > 0 {
		return rerr.RetryAfter, true
	}
	return 0, false
}
