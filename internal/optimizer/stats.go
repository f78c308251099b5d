package optimizer

import "math"

// VariantStats reports the encoded size of one variant and its reduction
// relative to the original
type VariantStats struct {
	SizeBytes        int64   `json:"size_bytes"`
	SizeKB           float64 `json:"size_kb"`
	SizeMB           float64 `json:"size_mb"`
	ReductionPercent float64 `json:"reduction_percent"`
}

// Report summarizes an optimization run
type Report struct {
	OriginalSizeBytes int64                   `json:"original_size_bytes"`
	OriginalSizeMB    float64                 `json:"original_size_mb"`
	Optimized         map[string]VariantStats `json:"optimized"`
}

// Stats computes per-variant size and reduction statistics. Sizes are
// rounded to 2 decimals, reduction percentages to 1 decimal. Pure function,
// no storage access.
func Stats(originalSize int64, optimizedSizes map[string]int64) Report {
	report := Report{
		OriginalSizeBytes: originalSize,
		OriginalSizeMB:    round2(float64(originalSize) / 1024 / 1024),
		Optimized:         make(map[string]VariantStats, len(optimizedSizes)),
	}

	for name, size := range optimizedSizes {
		reduction := (1 - float64(size)/float64(originalSize)) * 100
		report.Optimized[name] = VariantStats{
			SizeBytes:        size,
			SizeKB:           round2(float64(size) / 1024),
			SizeMB:           round2(float64(size) / 1024 / 1024),
			ReductionPercent: round1(reduction),
		}
	}

	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
