package tzlocal

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/puzpuzpuz/xsync/v3"
)

// zoneDB resolves zone names against the system timezone database.
// Successful lookups are memoized; the database does not change within
// a process lifetime.
type zoneDB struct {
	locations *xsync.MapOf[string, *time.Location]
}

func newZoneDB() *zoneDB {
	return &zoneDB{
		locations: xsync.NewMapOf[string, *time.Location](),
	}
}

// Resolve looks up an IANA zone name such as "Europe/Amsterdam".
func (db *zoneDB) Resolve(name string) (*time.Location, error) {
	if name == "" {
		return nil, errors.Mark(errors.New("empty time zone name"), ErrZoneNotFound)
	}
	if loc, ok := db.locations.Load(name); ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "unknown time zone %q", name), ErrZoneNotFound)
	}
	db.locations.Store(name, loc)
	return loc, nil
}

// LoadTZData builds a location from raw TZif bytes. The name is fixed
// by the caller since a raw file carries no recoverable zone
// identifier.
func (db *zoneDB) LoadTZData(name string, data []byte) (*time.Location, error) {
	loc, err := time.LoadLocationFromTZData(name, data)
	if err != nil {
		return nil, errors.Wrap(err, "invalid TZif data")
	}
	return loc, nil
}
