package storage

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common storage errors
var (
	// ErrZoneNotFound indicates that the zone does not exist for the owner
	ErrZoneNotFound = errors.New("zone not found")

	// ErrSubscriptionNotFound indicates that the subscription does not exist
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrChangeTokenExpired indicates that the feed position was pruned
	ErrChangeTokenExpired = errors.New("change token expired")
)

// ConflictError rejects a whole batch: Conflicts holds the current server
// version of every record whose change tag did not match. Nothing was written.
type ConflictError struct {
	Conflicts map[string]*Record
}

func (e *ConflictError) Error() string {
	names := make([]string, 0, len(e.Conflicts))
	for name := range e.Conflicts {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("server record changed: %s", strings.Join(names, ", "))
}
