// Package metrics appends per-run performance records to a JSONL file
// so consecutive runs can be compared without a metrics backend.
package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"aurelion/internal/config"
)

// StageRecord is the timing of one pipeline stage.
type StageRecord struct {
	Name     string  `json:"name"`
	Status   string  `json:"status"`
	Seconds  float64 `json:"seconds"`
	RowsIn   int     `json:"rows_in,omitempty"`
	RowsOut  int     `json:"rows_out,omitempty"`
	ErrorMsg string  `json:"error,omitempty"`
}

// RunRecord is one pipeline execution, written as a single JSON line.
type RunRecord struct {
	RunID      string        `json:"run_id"`
	Mode       string        `json:"mode"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Seconds    float64       `json:"seconds"`
	Status     string        `json:"status"`
	Stages     []StageRecord `json:"stages"`
}

// Recorder appends run records to the performance log.
type Recorder struct {
	path   string
	logger *slog.Logger
}

// NewRecorder creates a recorder writing to performance.jsonl under the
// logs directory.
func NewRecorder(paths *config.Paths, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{path: paths.GetLogPath("performance.jsonl"), logger: logger}
}

// Record appends one run record. Failures are logged and returned but
// never abort the pipeline; callers treat this as best-effort.
func (r *Recorder) Record(ctx context.Context, record RunRecord) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return err
	}

	file, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		r.logger.WarnContext(ctx, "cannot open performance log", slog.String("error", err.Error()))
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	if err := encoder.Encode(record); err != nil {
		r.logger.WarnContext(ctx, "cannot append performance record", slog.String("error", err.Error()))
		return err
	}

	r.logger.InfoContext(ctx, "performance record appended",
		slog.String("run_id", record.RunID),
		slog.String("status", record.Status),
		slog.Float64("seconds", record.Seconds))
	return nil
}

// ReadAll loads every recorded run, oldest first. Missing file yields an
// empty slice.
func (r *Recorder) ReadAll() ([]RunRecord, error) {
	raw, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var records []RunRecord
	decoder := json.NewDecoder(bytes.NewReader(raw))
	for decoder.More() {
		var record RunRecord
		if err := decoder.Decode(&record); err != nil {
			return records, err
		}
		records = append(records, record)
	}
	return records, nil
}
