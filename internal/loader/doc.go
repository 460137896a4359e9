// Package loader reads the four commercial datasets into typed records.
//
// The parser is chosen by file extension (autodetected reading): .xlsx
// files go through excelize, .csv through encoding/csv, .json expects an
// array of objects and .jsonl one object per line. All formats funnel
// into the same raw table shape before column binding, so the rest of
// the pipeline never cares where the data came from.
//
// The loader is deliberately lenient about cell values: unparseable
// numbers and dates become zero values and are counted as parse issues,
// leaving the drop decision to the validation and cleaning stages.
// Missing required columns, by contrast, abort the load.
package loader
