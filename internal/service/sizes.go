package service

import (
	"fmt"
	"math"
)

func toMB(bytes int64) float64 {
	return float64(bytes) / (1024 * 1024)
}

func roundMB(bytes int64) float64 {
	return math.Round(toMB(bytes)*100) / 100
}

// formatSize renders a byte count for display: below 1 MB in KB, otherwise in
// MB, both with two-decimal precision.
func formatSize(bytes int64) string {
	if toMB(bytes) < 1 {
		return fmt.Sprintf("%.2f KB", float64(bytes)/1024)
	}
	return fmt.Sprintf("%.2f MB", toMB(bytes))
}
