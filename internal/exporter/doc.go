// Package exporter writes the pipeline outputs to disk: the cleaned
// tables and KPI exports as CSV (UTF-8 BOM for Excel), the executive
// summary as markdown and the revenue charts as PNG.
package exporter
