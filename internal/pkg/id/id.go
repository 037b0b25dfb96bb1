package id

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs sort by creation time, which the
// OTP table relies on to find the newest record for a target.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// Time returns the timestamp encoded in a ULID produced by New.
func Time(s string) (time.Time, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
