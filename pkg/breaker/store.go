package breaker

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"

	"github.com/driftsync/driftsync/pkg/errors"
)

// storeFile is the wire format of the state file.
type storeFile struct {
	Services map[string]Circuit `json:"services"`
}

// fileLock guards the state file against concurrent read-modify-write from
// other driftsync processes. The in-process lock alone isn't enough because
// the engine is driven by a scheduler that may overlap invocations.
type fileLock interface {
	Lock() error
	Unlock() error
}

// Mocked out for unit testing, where the state file lives on a MemMapFs
// that a flock can't attach to.
var newFileLock = func(path string) fileLock {
	return flock.New(path)
}

// Store persists one Circuit per service in a single JSON file. A missing
// file is equivalent to an empty store; a corrupt file is treated as empty
// and rewritten by the next update rather than crashing the run.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a store backed by the JSON file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the circuit for the given service. Services that have never
// been recorded get a fresh closed circuit without touching the file.
func (s *Store) Load(service string) (Circuit, error) {
	circuits, err := s.List()
	if err != nil {
		return Circuit{}, err
	}

	circuit, ok := circuits[service]
	if !ok {
		return NewCircuit(), nil
	}
	return circuit, nil
}

// List returns every known circuit keyed by service name.
func (s *Store) List() (map[string]Circuit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Update applies fn to the circuit for the given service and persists the
// result atomically. The whole read-modify-write runs under both the
// in-process lock and a file lock, so concurrent processes can't lose
// updates. If fn returns the circuit unchanged, nothing is written.
func (s *Store) Update(service string, fn func(Circuit) Circuit) (Circuit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock := newFileLock(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return Circuit{}, errors.WithContext(err, "lock state file")
	}
	defer func() {
		_ = lock.Unlock()
	}()

	circuits, err := s.read()
	if err != nil {
		return Circuit{}, err
	}

	current, ok := circuits[service]
	if !ok {
		current = NewCircuit()
	}

	updated := fn(current)
	if ok && updated == current {
		return updated, nil
	}

	circuits[service] = updated
	if err := s.write(circuits); err != nil {
		return Circuit{}, err
	}
	return updated, nil
}

// read parses the state file. The caller must hold s.mu.
func (s *Store) read() (map[string]Circuit, error) {
	contents, err := afero.ReadFile(fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Circuit{}, nil
		}
		return nil, errors.WithContext(err, "read state file")
	}

	var parsed storeFile
	if err := json.Unmarshal(contents, &parsed); err != nil {
		// A corrupt state file shouldn't block syncing. Start over with an
		// empty store; the next persist recreates the file.
		return map[string]Circuit{}, nil
	}

	if parsed.Services == nil {
		parsed.Services = map[string]Circuit{}
	}
	return parsed.Services, nil
}

// write persists the circuits with a write-to-temp-then-rename so that a
// crash mid-write can't leave a truncated state file. The caller must hold
// s.mu.
func (s *Store) write(circuits map[string]Circuit) error {
	contents, err := json.MarshalIndent(storeFile{Services: circuits}, "", "  ")
	if err != nil {
		return errors.WithContext(err, "marshal state")
	}

	if err := fs.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.WithContext(err, "create state directory")
	}

	tmpPath := s.path + ".tmp"
	if err := afero.WriteFile(fs, tmpPath, contents, 0644); err != nil {
		return errors.WithContext(err, "write state file")
	}

	if err := fs.Rename(tmpPath, s.path); err != nil {
		return errors.WithContext(err, "replace state file")
	}
	return nil
}
