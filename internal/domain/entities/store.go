package entities

import (
	"strconv"
)

// StoreStats describes the contents of the license output directory
type StoreStats struct {
	TotalFiles      int
	TotalSizeBytes  int64
	OutputDirectory string
}

// FormatBytes renders a byte count with up to two decimals, e.g. "1.5 KB"
func FormatBytes(bytes int64) string {
	sizes := []string{"B", "KB", "MB", "GB"}
	length := float64(bytes)
	order := 0

	for length >= 1024 && order < len(sizes)-1 {
		order++
		length /= 1024
	}

	return strconv.FormatFloat(roundTo(length, 2), 'f', -1, 64) + " " + sizes[order]
}

func roundTo(value float64, decimals int) float64 {
	scale := 1.0
	for i := 0; i < decimals; i++ {
		scale *= 10
	}
	return float64(int64(value*scale+0.5)) / scale
}
