package tzlocal

import (
	"time"

	"github.com/cockroachdb/errors"
)

// verifyOffset checks a zone against the live system clock. It is a
// package variable so tests, which have no control over the host
// clock, can substitute their own check.
var verifyOffset = assertTZOffset

// assertTZOffset fails when the zone's current UTC offset disagrees
// with the system's. Config files can go stale after a zone change; a
// plausible name with the wrong offset is worse than an error.
func assertTZOffset(loc *time.Location) error {
	now := time.Now()
	_, sysOffset := now.Zone()
	_, tzOffset := now.In(loc).Zone()
	if tzOffset != sysOffset {
		return errors.Newf(
			"timezone offset of %v (%d) does not match system offset (%d); please verify your configuration files",
			loc, tzOffset, sysOffset)
	}
	return nil
}
