package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.RecordsLoaded("csv", 3)
	m.RecordsLoaded("csv", 2)
	m.Rejected("invalid_liked", 4)
	m.TracksCleaned(7)
	m.Examples(5)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.recordsLoaded.WithLabelValues("csv")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.recordsRejected.WithLabelValues("invalid_liked")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.tracksCleaned))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.examples))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.Identities(12)
	m.ObserveStage("clean", 0.2)
	m.MarkSuccess()

	path := filepath.Join(t.TempDir(), "mirify.prom")
	require.NoError(t, m.WriteTextfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "mirify_track_identities 12")
	assert.Contains(t, string(raw), `mirify_stage_duration_seconds_count{stage="clean"} 1`)
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.TracksCleaned(1)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.tracksCleaned))
}
