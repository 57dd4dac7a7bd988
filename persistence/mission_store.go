package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lexcodex/hivemind/hive"
)

// stateFile is the on-disk shape of the mission history. A single document
// keeps the store trivially inspectable with standard tooling.
type stateFile struct {
	Version     string         `json:"version"`
	Missions    []hive.Mission `json:"missions"`
	CreatedAt   time.Time      `json:"created_at"`
	LastUpdated time.Time      `json:"last_updated"`
}

// FileMissionStore persists missions to a single JSON state file. Ids are
// sequential positions in the mission list, assigned at append time.
type FileMissionStore struct {
	path string
	mu   sync.Mutex
}

// NewFileMissionStore builds a store writing to the given path. Parent
// directories are created eagerly so the first append cannot fail on them.
func NewFileMissionStore(path string) (*FileMissionStore, error) {
	if path == "" {
		return nil, errors.New("mission store path required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &FileMissionStore{path: path}, nil
}

// Append assigns the next sequential id, stamps the mission, and durably
// writes the state file.
func (s *FileMissionStore) Append(ctx context.Context, mission *hive.Mission) (int64, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}
	if mission == nil {
		return 0, errors.New("nil mission")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.load()
	if err != nil {
		return 0, err
	}
	mission.ID = int64(len(state.Missions) + 1)
	mission.Timestamp = time.Now().UTC()
	state.Missions = append(state.Missions, *mission)
	if err := s.save(state); err != nil {
		return 0, err
	}
	return mission.ID, nil
}

// History returns the most recent missions in chronological order.
func (s *FileMissionStore) History(ctx context.Context, limit int) ([]hive.Mission, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.load()
	if err != nil {
		return nil, err
	}
	missions := state.Missions
	if limit > 0 && len(missions) > limit {
		missions = missions[len(missions)-limit:]
	}
	out := make([]hive.Mission, len(missions))
	copy(out, missions)
	return out, nil
}

func (s *FileMissionStore) load() (*stateFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			now := time.Now().UTC()
			return &stateFile{Version: "1", CreatedAt: now, LastUpdated: now}, nil
		}
		return nil, err
	}
	var state stateFile
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *FileMissionStore) save(state *stateFile) error {
	state.LastUpdated = time.Now().UTC()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
