package tzlocal

import "github.com/cockroachdb/errors"

// ErrZoneNotFound marks failures to resolve a zone name against the
// timezone database. Matched with errors.Is.
var ErrZoneNotFound = errors.New("time zone not found")

// ErrConflictingConfigs marks resolution failures caused by
// configuration sources that disagree about the zone name.
var ErrConflictingConfigs = errors.New("conflicting time zone configurations")
