package tzlocal

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheMemoizes(t *testing.T) {
	runs := 0
	c := &Cache{detect: func() (*time.Location, error) {
		runs++
		return time.UTC, nil
	}}

	first, err := c.Get()
	require.NoError(t, err)
	second, err := c.Get()
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, runs)
}

func TestCacheReloadForcesRescan(t *testing.T) {
	runs := 0
	c := &Cache{detect: func() (*time.Location, error) {
		runs++
		return time.UTC, nil
	}}

	_, err := c.Get()
	require.NoError(t, err)
	_, err = c.Reload()
	require.NoError(t, err)
	assert.Equal(t, 2, runs)

	// The reloaded value is cached again.
	_, err = c.Get()
	require.NoError(t, err)
	assert.Equal(t, 2, runs)
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	runs := 0
	c := &Cache{detect: func() (*time.Location, error) {
		runs++
		if runs == 1 {
			return nil, errors.New("boom")
		}
		return time.UTC, nil
	}}

	_, err := c.Get()
	require.Error(t, err)

	loc, err := c.Get()
	require.NoError(t, err)
	assert.Same(t, time.UTC, loc)
	assert.Equal(t, 2, runs)
}

func TestNewCacheDetectsAgainstRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "etc/timezone", "America/New_York\n")
	t.Setenv("TZ", "")

	c := NewCache(root)
	loc, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())

	again, err := c.Get()
	require.NoError(t, err)
	assert.Same(t, loc, again)
}
