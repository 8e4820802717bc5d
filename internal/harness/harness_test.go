package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.Equal(t, int64(1), cfg.LowestTrackableValue)
	assert.Equal(t, int64(3600000000), cfg.HighestTrackableValue)
	assert.Equal(t, 3, cfg.SignificantFigures)
	assert.Greater(t, cfg.Recorders, 0)
	assert.Greater(t, cfg.SamplesPerRecorder, 0)
}

func TestLoadOverlaysEnvironment(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"HDR_RECORDERS":            "4",
		"HDR_SAMPLES_PER_RECORDER": "100",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg, err := Load(lookup)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Recorders)
	assert.Equal(t, 100, cfg.SamplesPerRecorder)
	// Unset fields fall back to DefaultConfig's values.
	assert.Equal(t, int64(1), cfg.LowestTrackableValue)
}

func TestRunRecordsAcrossAllRecorders(t *testing.T) {
	t.Parallel()

	cfg := Config{
		LowestTrackableValue:  1,
		HighestTrackableValue: 100000,
		SignificantFigures:    3,
		Recorders:             8,
		SamplesPerRecorder:    500,
	}

	result, err := Run(context.Background(), cfg, func(recorderIdx, sampleIdx int) int64 {
		return int64(sampleIdx%1000) + 1
	})
	require.NoError(t, err)

	assert.Equal(t, int64(cfg.Recorders*cfg.SamplesPerRecorder), result.Total)
	assert.Equal(t, result.Recorded+result.Rejected, result.Total)
	assert.Equal(t, int64(0), result.Rejected)
	assert.Greater(t, result.P99, int64(0))
	assert.GreaterOrEqual(t, result.P999, result.P99)
}

func TestRunCountsRejectedOutOfRangeSamples(t *testing.T) {
	t.Parallel()

	cfg := Config{
		LowestTrackableValue:  1,
		HighestTrackableValue: 1000,
		SignificantFigures:    3,
		Recorders:             4,
		SamplesPerRecorder:    50,
	}

	result, err := Run(context.Background(), cfg, func(recorderIdx, sampleIdx int) int64 {
		return 5000
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Recorded)
	assert.Equal(t, result.Total, result.Rejected)
}
