package operations

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// RunManifest records what a pipeline run produced. It is the single
// source of truth for the run and is persisted next to the exports.
type RunManifest struct {
	mu sync.RWMutex

	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Mode      RunMode   `json:"mode"`
	StartTime time.Time `json:"start_time"`

	// Execution tracking
	Stages []StageExecution `json:"stages"`

	// Artifacts produced by the run, keyed by a short artifact name.
	Artifacts map[string]ArtifactInfo `json:"artifacts"`

	Status      string    `json:"status"` // "pending", "running", "completed", "failed"
	LastUpdated time.Time `json:"last_updated"`
	Error       string    `json:"error,omitempty"`
}

// ArtifactInfo tracks one output file of the run
type ArtifactInfo struct {
	Path      string    `json:"path"`
	Rows      int       `json:"rows,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// StageExecution tracks the execution of a single stage
type StageExecution struct {
	StageID   string    `json:"stage_id"`
	StageName string    `json:"stage_name"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  string    `json:"duration"`
	Status    string    `json:"status"` // "running", "completed", "failed", "skipped"
	Error     string    `json:"error,omitempty"`
}

// NewRunManifest creates a manifest for one pipeline run
func NewRunManifest(runID string, mode RunMode) *RunManifest {
	now := time.Now()
	return &RunManifest{
		ID:          fmt.Sprintf("manifest-%d", now.Unix()),
		RunID:       runID,
		Mode:        mode,
		StartTime:   now,
		Stages:      []StageExecution{},
		Artifacts:   make(map[string]ArtifactInfo),
		Status:      "pending",
		LastUpdated: now,
	}
}

// AddArtifact records a produced output file
func (m *RunManifest) AddArtifact(name string, info ArtifactInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info.CreatedAt = time.Now()
	m.Artifacts[name] = info
	m.LastUpdated = time.Now()
}

// RecordStageStart records the start of a stage execution
func (m *RunManifest) RecordStageStart(stageID, stageName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, stage := range m.Stages {
		if stage.StageID == stageID {
			m.Stages[i].StartTime = time.Now()
			m.Stages[i].Status = "running"
			m.LastUpdated = time.Now()
			return
		}
	}

	m.Stages = append(m.Stages, StageExecution{
		StageID:   stageID,
		StageName: stageName,
		StartTime: time.Now(),
		Status:    "running",
	})
	m.Status = "running"
	m.LastUpdated = time.Now()
}

// RecordStageCompletion records the completion of a stage
func (m *RunManifest) RecordStageCompletion(stageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, stage := range m.Stages {
		if stage.StageID == stageID {
			m.Stages[i].EndTime = time.Now()
			m.Stages[i].Duration = time.Since(stage.StartTime).String()
			m.Stages[i].Status = "completed"
			break
		}
	}
	m.LastUpdated = time.Now()
}

// RecordStageFailure records a stage failure
func (m *RunManifest) RecordStageFailure(stageID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, stage := range m.Stages {
		if stage.StageID == stageID {
			m.Stages[i].EndTime = time.Now()
			m.Stages[i].Duration = time.Since(stage.StartTime).String()
			m.Stages[i].Status = "failed"
			m.Stages[i].Error = err.Error()
			break
		}
	}
	m.Status = "failed"
	m.Error = fmt.Sprintf("stage %s failed: %v", stageID, err)
	m.LastUpdated = time.Now()
}

// RecordStageSkip records a stage that did not run
func (m *RunManifest) RecordStageSkip(stageID, stageName, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Stages = append(m.Stages, StageExecution{
		StageID:   stageID,
		StageName: stageName,
		Status:    "skipped",
		Error:     reason,
	})
	m.LastUpdated = time.Now()
}

// MarkCompleted sets the final status unless a failure was recorded
func (m *RunManifest) MarkCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Status != "failed" {
		m.Status = "completed"
	}
	m.LastUpdated = time.Now()
}

// IsStageCompleted checks if a stage has been completed
func (m *RunManifest) IsStageCompleted(stageID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, stage := range m.Stages {
		if stage.StageID == stageID && stage.Status == "completed" {
			return true
		}
	}
	return false
}

// SaveToFile saves the manifest to a JSON file
func (m *RunManifest) SaveToFile(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}

	return nil
}

// LoadManifestFromFile loads a manifest from a JSON file
func LoadManifestFromFile(path string) (*RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var manifest RunManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}

	return &manifest, nil
}
