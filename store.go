package bramble

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// KVStore is the persistence port behind the position override store. The
// engine only ever reads and writes whole values under composite keys; any
// key-value backend (file, embedded database, browser storage bridge)
// satisfies it. Get reports ok=false for a missing key without an error.
type KVStore interface {
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	Remove(key string) error
}

// overrideKeyPrefix namespaces override records within a shared KVStore.
const overrideKeyPrefix = "bramble.layout."

func overrideKey(treeID string) string {
	return overrideKeyPrefix + treeID
}

// overrideRecord is the persisted JSON shape for one tree's manual layout.
type overrideRecord struct {
	Positions map[string]Vec2 `json:"positions"`
	IsManual  bool            `json:"isManual"`
	Timestamp int64           `json:"timestamp"` // unix milliseconds at save time
}

// OverrideStore persists user-dragged node positions per tree, keyed by node
// id. Manual positioning is a convenience feature: every failure here
// degrades to auto layout with a logged warning, and no call ever blocks or
// fails a render.
type OverrideStore struct {
	kv  KVStore
	now func() time.Time
}

// NewOverrideStore wraps a KVStore. A nil kv yields a store whose loads are
// always empty and whose saves go nowhere, which is exactly the degraded
// behavior a broken backend gets.
func NewOverrideStore(kv KVStore) *OverrideStore {
	return &OverrideStore{kv: kv, now: time.Now}
}

// Load returns the saved overrides and the manual-layout flag for a tree.
// Missing, unreadable, or corrupt records all come back as (nil, false).
func (s *OverrideStore) Load(treeID string) (map[string]Vec2, bool) {
	if s == nil || s.kv == nil {
		return nil, false
	}
	raw, ok, err := s.kv.Get(overrideKey(treeID))
	if err != nil {
		warnf("loading overrides for tree %q: %v", treeID, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var rec overrideRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		warnf("override record for tree %q is corrupt: %v", treeID, err)
		return nil, false
	}
	return rec.Positions, rec.IsManual
}

// Save writes the full override mapping for a tree. Fire-and-forget: errors
// are logged, never returned.
func (s *OverrideStore) Save(treeID string, positions map[string]Vec2, isManual bool) {
	if s == nil || s.kv == nil {
		return
	}
	rec := overrideRecord{
		Positions: positions,
		IsManual:  isManual,
		Timestamp: s.now().UnixMilli(),
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		warnf("encoding overrides for tree %q: %v", treeID, err)
		return
	}
	if err := s.kv.Set(overrideKey(treeID), raw); err != nil {
		warnf("saving overrides for tree %q: %v", treeID, err)
	}
}

// Clear removes a tree's override record entirely.
func (s *OverrideStore) Clear(treeID string) {
	if s == nil || s.kv == nil {
		return
	}
	if err := s.kv.Remove(overrideKey(treeID)); err != nil {
		warnf("clearing overrides for tree %q: %v", treeID, err)
	}
}

// mergePositions overlays manual overrides onto freshly computed auto-layout
// positions. When the manual flag is off or no overrides exist, auto wins
// untouched. Otherwise each override applies only if its node still exists in
// the tree; a stale override for a deleted node survives in storage but is
// skipped here, never an error.
func mergePositions(t *Tree, auto, overrides map[string]Vec2, isManual bool) map[string]Vec2 {
	if !isManual || len(overrides) == 0 {
		return auto
	}
	merged := make(map[string]Vec2, len(auto))
	for id, p := range auto {
		merged[id] = p
	}
	for id, p := range overrides {
		if _, ok := t.Nodes[id]; !ok {
			continue
		}
		merged[id] = p
	}
	return merged
}

// --- MemStore ---

// MemStore is an in-memory KVStore for tests, examples, and callers that
// persist elsewhere.
type MemStore struct {
	m map[string][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{m: make(map[string][]byte)}
}

// Get returns the stored value for key, if any.
func (s *MemStore) Get(key string) ([]byte, bool, error) {
	v, ok := s.m[key]
	return v, ok, nil
}

// Set stores a copy of value under key.
func (s *MemStore) Set(key string, value []byte) error {
	buf := make([]byte, len(value))
	copy(buf, value)
	s.m[key] = buf
	return nil
}

// Remove deletes key. Removing a missing key is a no-op.
func (s *MemStore) Remove(key string) error {
	delete(s.m, key)
	return nil
}

// --- FileStore ---

// FileStore keeps one JSON file per key under a directory. Keys are
// sanitized into file names, so any key the engine produces is safe.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	buf := []byte(key)
	for i, b := range buf {
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9',
			b == '.', b == '-', b == '_':
		default:
			buf[i] = '_'
		}
	}
	return filepath.Join(s.dir, string(buf)+".json")
}

// Get reads the file for key. A missing file is ok=false without an error.
func (s *FileStore) Get(key string) ([]byte, bool, error) {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return raw, true, nil
}

// Set writes value to the file for key.
func (s *FileStore) Set(key string, value []byte) error {
	return os.WriteFile(s.path(key), value, 0o644)
}

// Remove deletes the file for key. A missing file is a no-op.
func (s *FileStore) Remove(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
