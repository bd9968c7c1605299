// Package maintenance holds the administrative jobs around the request
// store: JSON snapshots of all requests and repair of rows whose status
// drifted out of the known enum.
package maintenance

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"request-approval-backend/internal/model"
	"request-approval-backend/internal/store"
)

// Service runs maintenance jobs against the request store.
type Service struct {
	store store.Store
	dir   string
}

// NewService creates a maintenance service writing snapshots under dir.
func NewService(s store.Store, dir string) *Service {
	return &Service{store: s, dir: dir}
}

// SnapshotCounts breaks the stored requests down by decision state.
type SnapshotCounts struct {
	TotalRequests int `json:"total_requests"`
	Approved      int `json:"approved"`
	Rejected      int `json:"rejected"`
	Pending       int `json:"pending"`
}

// Snapshot is the on-disk backup document.
type Snapshot struct {
	Timestamp time.Time      `json:"timestamp"`
	Counts    SnapshotCounts `json:"counts"`
	Data      struct {
		Requests []model.Request `json:"requests"`
	} `json:"data"`
}

// SnapshotResult reports where a snapshot landed and what it held.
type SnapshotResult struct {
	FilePath string         `json:"filePath"`
	Counts   SnapshotCounts `json:"counts"`
}

// WriteSnapshot dumps every request to a timestamped JSON file and
// returns the path and per-state counts.
func (s *Service) WriteSnapshot(ctx context.Context) (*SnapshotResult, error) {
	requests, err := s.store.ListRequests(ctx, store.RequestFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to back up requests: %w", err)
	}

	snapshot := Snapshot{Timestamp: time.Now()}
	snapshot.Data.Requests = requests
	snapshot.Counts.TotalRequests = len(requests)
	for _, req := range requests {
		switch {
		case req.IsApproved == nil:
			snapshot.Counts.Pending++
		case *req.IsApproved:
			snapshot.Counts.Approved++
		default:
			snapshot.Counts.Rejected++
		}
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup dir: %w", err)
	}

	stamp := strings.ReplaceAll(snapshot.Timestamp.UTC().Format(time.RFC3339), ":", "-")
	path := filepath.Join(s.dir, fmt.Sprintf("requests-snapshot-%s.json", stamp))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}

	return &SnapshotResult{FilePath: path, Counts: snapshot.Counts}, nil
}

// SyncError records one row that could not be repaired.
type SyncError struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

// SyncResult summarizes one status-synchronization pass.
type SyncResult struct {
	Total   int         `json:"total"`
	Updated int         `json:"updated"`
	Errors  []SyncError `json:"errors,omitempty"`
}

// SyncStatuses repairs rows whose status fell outside the known enum.
// The stored tri-state approval flag is the source of truth: an
// undecided request becomes PENDING again, a decided one APPROVED or
// REJECTED. Per-row failures are collected, not fatal.
func (s *Service) SyncStatuses(ctx context.Context) (*SyncResult, error) {
	requests, err := s.store.ListRequests(ctx, store.RequestFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requests: %w", err)
	}

	result := &SyncResult{Total: len(requests)}
	for _, req := range requests {
		if req.Status.Valid() {
			continue
		}

		corrected := model.StatusFor(req.IsApproved)
		log.Printf("maintenance: correcting request %d status %q -> %q", req.ID, req.Status, corrected)
		if _, err := s.store.UpdateRequest(ctx, req.ID, store.RequestPatch{Status: &corrected}); err != nil {
			result.Errors = append(result.Errors, SyncError{ID: req.ID, Error: err.Error()})
			continue
		}
		result.Updated++
	}

	return result, nil
}
