package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	report := Stats(1_000_000, map[string]int64{"thumbnail": 100_000})

	assert.Equal(t, int64(1_000_000), report.OriginalSizeBytes)
	assert.InDelta(t, 0.95, report.OriginalSizeMB, 0.001)

	require.Contains(t, report.Optimized, "thumbnail")
	thumb := report.Optimized["thumbnail"]
	assert.Equal(t, int64(100_000), thumb.SizeBytes)
	assert.InDelta(t, 97.66, thumb.SizeKB, 0.001)
	assert.InDelta(t, 0.1, thumb.SizeMB, 0.001)
	assert.InDelta(t, 90.0, thumb.ReductionPercent, 0.001)
}

func TestStatsMultipleProfiles(t *testing.T) {
	report := Stats(5_242_880, map[string]int64{
		"thumbnail": 15_000,
		"preview":   180_000,
		"full":      950_000,
	})

	require.Len(t, report.Optimized, 3)
	assert.InDelta(t, 5.0, report.OriginalSizeMB, 0.001)

	for name, stats := range report.Optimized {
		assert.Positive(t, stats.ReductionPercent, "reduction for %s", name)
		assert.Less(t, stats.ReductionPercent, 100.0, "reduction for %s", name)
	}

	assert.InDelta(t, 99.7, report.Optimized["thumbnail"].ReductionPercent, 0.001)
}

func TestStatsEmpty(t *testing.T) {
	report := Stats(1024, map[string]int64{})

	assert.NotNil(t, report.Optimized)
	assert.Empty(t, report.Optimized)
}
