package tzlocal

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// zoneCandidate pairs a configuration source with the raw zone name it
// contributed.
type zoneCandidate struct {
	source string
	name   string
}

// detector runs the timezone detection chain against a search root.
// The root is the filesystem prefix for all well-known configuration
// paths; it defaults to "/" and exists so tests can build isolated
// filesystem layouts.
type detector struct {
	root string
	db   *zoneDB
}

func newDetector(root string) *detector {
	return &detector{root: root, db: newZoneDB()}
}

func (d *detector) path(rel string) string {
	return filepath.Join(d.root, rel)
}

// detect runs the strategies in strict priority order: TZ environment
// override, Android property probe, distribution config files, and
// finally the localtime symlink or raw TZif file. The first strategy
// that produces a result wins.
func (d *detector) detect() (*time.Location, error) {
	loc, err := d.fromEnv()
	if loc != nil || err != nil {
		return loc, err
	}

	// Are we under Termux on Android? getprop is authoritative there,
	// so its failures propagate instead of falling through.
	if _, err := os.Stat(d.path("system/bin/getprop")); err == nil {
		return d.fromAndroidProperty()
	}

	if candidates := d.scanConfigFiles(); len(candidates) > 0 {
		return d.reconcile(candidates)
	}

	loc, err = d.fromLocaltime()
	if loc != nil || err != nil {
		return loc, err
	}

	zlog.Warn().Msg("Can not find any timezone configuration, defaulting to UTC")
	return time.UTC, nil
}

// fromEnv honors the TZ environment variable. An empty value counts as
// unset. An absolute path to an existing file is loaded as raw TZif
// data; anything else must be a zone database name, and a name the
// database does not know fails the whole resolution rather than
// silently falling through to weaker strategies.
func (d *detector) fromEnv() (*time.Location, error) {
	tzenv := os.Getenv("TZ")
	if tzenv == "" {
		return nil, nil
	}

	// POSIX allows a leading colon on TZ values.
	tzenv = strings.TrimPrefix(tzenv, ":")

	// TZ may point directly at a TZif file.
	if filepath.IsAbs(tzenv) {
		if _, err := os.Stat(tzenv); err == nil {
			data, err := os.ReadFile(tzenv)
			if err != nil {
				return nil, errors.Wrapf(err, "reading TZ file %s", tzenv)
			}
			return d.db.LoadTZData(sentinelZoneName, data)
		}
	}

	loc, err := d.db.Resolve(tzenv)
	if err != nil {
		return nil, errors.Mark(errors.Newf(
			"tzlocal does not support non-zoneinfo timezones like %q; please use a timezone in the form of Continent/City",
			tzenv), ErrZoneNotFound)
	}
	return loc, nil
}

// fromAndroidProperty queries the Android system property service for
// the device timezone.
func (d *detector) fromAndroidProperty() (*time.Location, error) {
	output, err := exec.Command("getprop", "persist.sys.timezone").Output()
	if err != nil {
		return nil, errors.Wrap(err, "querying persist.sys.timezone")
	}
	return d.db.Resolve(strings.TrimSpace(string(output)))
}

// scanConfigFiles collects zone name candidates from distribution
// configuration files. Files that are missing, unreadable, or not text
// contribute nothing; clock files are sometimes symlinks to the binary
// localtime file and must not abort the scan.
func (d *detector) scanConfigFiles() []zoneCandidate {
	var found []zoneCandidate

	// Debian and derivatives keep a plain zone name in etc/timezone,
	// FreeBSD in var/db/zoneinfo.
	for _, rel := range []string{"etc/timezone", "var/db/zoneinfo"} {
		tzpath := d.path(rel)
		data, err := os.ReadFile(tzpath)
		if err != nil || !utf8.Valid(data) {
			continue
		}
		if name := parsePlainName(string(data)); name != "" {
			found = append(found, zoneCandidate{source: tzpath, name: name})
		}
	}

	// CentOS has a ZONE setting in etc/sysconfig/clock, OpenSUSE a
	// TIMEZONE setting in the same file, and Gentoo a TIMEZONE setting
	// in etc/conf.d/clock.
	for _, rel := range []string{"etc/sysconfig/clock", "etc/conf.d/clock"} {
		tzpath := d.path(rel)
		data, err := os.ReadFile(tzpath)
		if err != nil || !utf8.Valid(data) {
			continue
		}
		if name := parseClockFile(string(data)); name != "" {
			found = append(found, zoneCandidate{source: tzpath, name: name})
		}
	}

	return found
}

// parsePlainName extracts a zone name from a plain-name file such as
// etc/timezone. Host definitions and comments are stripped per line.
// The last non-empty line wins; files in the wild are occasionally
// malformed this way and the historical tie-break is kept as-is.
func parsePlainName(data string) string {
	var name string
	for _, line := range strings.Split(data, "\n") {
		if i := strings.Index(line, " "); i >= 0 {
			line = line[:i]
		}
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		name = strings.ReplaceAll(line, " ", "_")
	}
	return name
}

var (
	zoneRe     = regexp.MustCompile(`^\s*ZONE\s*=\s*"`)
	timezoneRe = regexp.MustCompile(`^\s*TIMEZONE\s*=\s*"`)
)

// parseClockFile extracts the ZONE or TIMEZONE setting from a
// key=value clock file. ZONE takes precedence on each line; the last
// matching line wins.
func parseClockFile(data string) string {
	var name string
	for _, line := range strings.Split(data, "\n") {
		m := zoneRe.FindStringIndex(line)
		if m == nil {
			m = timezoneRe.FindStringIndex(line)
		}
		if m == nil {
			continue
		}
		rest := line[m[1]:]
		end := strings.Index(rest, `"`)
		if end < 0 {
			continue
		}
		name = strings.ReplaceAll(rest[:end], " ", "_")
	}
	return name
}

// foldSynonyms normalizes a zone name for conflict comparison only.
// Many systems carry synonyms for UTC; treating those as conflicting
// would fail resolution on perfectly consistent hosts.
func foldSynonyms(name string) string {
	name = strings.ReplaceAll(name, "Etc/", "")
	name = strings.ReplaceAll(name, "UTC", "GMT")
	switch name {
	case "GMT0", "GMT+0", "GMT-0":
		return "GMT"
	}
	return name
}

// reconcile turns the collected candidates into a single zone, failing
// when the sources genuinely disagree. Synonym folding applies to the
// comparison only; the first raw candidate is what gets resolved.
func (d *detector) reconcile(candidates []zoneCandidate) (*time.Location, error) {
	if len(candidates) > 1 {
		unique := make(map[string]struct{})
		for _, c := range candidates {
			unique[foldSynonyms(c.name)] = struct{}{}
		}
		if len(unique) != 1 {
			var b strings.Builder
			b.WriteString("multiple conflicting time zone configurations found:\n")
			for _, c := range candidates {
				fmt.Fprintf(&b, "%s: %s\n", c.source, c.name)
			}
			b.WriteString("fix the configuration, or set the time zone in a TZ environment variable")
			return nil, errors.Mark(errors.New(b.String()), ErrConflictingConfigs)
		}
	}

	loc, err := d.db.Resolve(candidates[0].name)
	if err != nil {
		return nil, err
	}
	if d.root == DefaultRoot {
		// The name came from a config file; make sure the system
		// clock actually runs on it before trusting a stale config.
		if err := verifyOffset(loc); err != nil {
			return nil, err
		}
	}
	return loc, nil
}

// fromLocaltime recovers the timezone from the localtime file itself.
// systemd distributions use symlinks that include the zone name, see
// localtime(5) and timedatectl(1). When no name is recoverable the raw
// TZif file is loaded as an anonymous local zone.
func (d *detector) fromLocaltime() (*time.Location, error) {
	link := d.path("etc/localtime")
	if fi, err := os.Lstat(link); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		if target, err := filepath.EvalSymlinks(link); err == nil {
			if loc := d.zoneFromPath(target); loc != nil {
				return loc, nil
			}
		}
	}

	for _, rel := range []string{"etc/localtime", "usr/local/etc/localtime"} {
		data, err := os.ReadFile(d.path(rel))
		if err != nil {
			continue
		}
		return d.db.LoadTZData(sentinelZoneName, data)
	}

	return nil, nil
}

// zoneFromPath recovers a zone name from a symlink target such as
// /usr/share/zoneinfo/Europe/Amsterdam by stripping leading path
// segments until a suffix resolves. The longest resolvable suffix
// wins; if nothing resolves, no name is recoverable and that is not an
// error.
func (d *detector) zoneFromPath(target string) *time.Location {
	parts := strings.Split(strings.TrimPrefix(target, "/"), "/")
	for i := range parts {
		name := strings.Join(parts[i:], "/")
		if loc, err := d.db.Resolve(name); err == nil {
			return loc
		}
	}
	return nil
}
