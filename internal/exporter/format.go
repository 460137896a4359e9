package exporter

import (
	"fmt"
	"time"
)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	// This ensures values like 13.4 appear as 13.40 in CSV
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}

// formatPercent formats a fraction as a percentage with 2 decimals
func formatPercent(f float64) string {
	return fmt.Sprintf("%.2f%%", f*100)
}

// formatDate formats a date column as ISO 8601 (date only)
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
