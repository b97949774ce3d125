// Package id generates time-sortable identifiers for trades and journal
// entries.
package id

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// New returns a ULID string. IDs created in the same millisecond stay
// lexicographically increasing.
func New() string {
	return ulid.Make().String()
}

// Timestamp recovers the creation time embedded in an ID.
func Timestamp(s string) (time.Time, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
