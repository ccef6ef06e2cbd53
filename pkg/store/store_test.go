package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFilterRoundTrip(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Filter()
	require.NoError(t, err)
	assert.Equal(t, "", got)

	require.NoError(t, s.SetFilter("deploy"))
	got, err = s.Filter()
	require.NoError(t, err)
	assert.Equal(t, "deploy", got)

	// Clearing writes an empty string, not a missing key.
	require.NoError(t, s.SetFilter(""))
	got, err = s.Filter()
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestLastSlotsAreIndependent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetLastRun("api#tasks:build"))
	require.NoError(t, s.SetLastDebug("api#launches:Server"))

	run, err := s.LastRun()
	require.NoError(t, err)
	assert.Equal(t, "api#tasks:build", run)

	dbg, err := s.LastDebug()
	require.NoError(t, err)
	assert.Equal(t, "api#launches:Server", dbg)

	// Overwriting one slot leaves the other alone.
	require.NoError(t, s.SetLastRun("api#tasks:test"))
	dbg, err = s.LastDebug()
	require.NoError(t, err)
	assert.Equal(t, "api#launches:Server", dbg)
}

func TestStatePersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()

	s, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.SetFilter("xyz"))
	require.NoError(t, s.SetLastRun("id-1"))
	require.NoError(t, s.Close())

	s2, err := NewStore(dir)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Filter()
	require.NoError(t, err)
	assert.Equal(t, "xyz", got)

	run, err := s2.LastRun()
	require.NoError(t, err)
	assert.Equal(t, "id-1", run)
}
