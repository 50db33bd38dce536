package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

type DiskConfig struct {
	Root       string
	MaxEntries int
	// Retention bounds how long a report stays on disk. Zero keeps reports
	// until MaxEntries evicts them.
	Retention time.Duration
}

type diskEntry struct {
	File      string    `json:"file"`
	Size      int64     `json:"size"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type diskIndex struct {
	Entries map[string]diskEntry `json:"entries"`
}

// DiskStore keeps reports as files under Root with a JSON index. The oldest
// report is evicted once MaxEntries is exceeded.
type DiskStore struct {
	mu sync.Mutex

	dataDir   string
	indexPath string

	maxEntries int
	retention  time.Duration

	entries map[string]diskEntry
	now     func() time.Time
}

func NewDiskStore(cfg DiskConfig) (*DiskStore, error) {
	root := strings.TrimSpace(cfg.Root)
	if root == "" {
		return nil, fmt.Errorf("root is required")
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1024
	}
	s := &DiskStore{
		dataDir:    filepath.Join(root, "reports"),
		indexPath:  filepath.Join(root, "index.json"),
		maxEntries: cfg.MaxEntries,
		retention:  cfg.Retention,
		entries:    map[string]diskEntry{},
		now:        time.Now,
	}
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return nil, err
	}
	if err := s.loadIndex(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cleanupLocked(); err != nil {
		return nil, err
	}
	if err := s.persistIndexLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *DiskStore) Put(_ context.Context, id string, content []byte) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	id, err := normalizeID(id)
	if err != nil {
		return err
	}
	file := hashedName(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(filepath.Join(s.dataDir, file), content, 0o644); err != nil {
		return err
	}
	now := s.now()
	ent := diskEntry{File: file, Size: int64(len(content)), StoredAt: now}
	if s.retention > 0 {
		ent.ExpiresAt = now.Add(s.retention)
	}
	s.entries[id] = ent

	if err := s.cleanupLocked(); err != nil {
		return err
	}
	return s.persistIndexLocked()
}

func (s *DiskStore) Get(_ context.Context, id string) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	id, err := normalizeID(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.expiredLocked(ent) {
		s.removeEntryLocked(id, ent)
		_ = s.persistIndexLocked()
		return nil, ErrNotFound
	}
	raw, err := os.ReadFile(filepath.Join(s.dataDir, ent.File))
	if err != nil {
		if os.IsNotExist(err) {
			s.removeEntryLocked(id, ent)
			_ = s.persistIndexLocked()
			return nil, ErrNotFound
		}
		return nil, err
	}
	return raw, nil
}

func (s *DiskStore) List(_ context.Context) ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.entries))
	for id, ent := range s.entries {
		if s.expiredLocked(ent) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *DiskStore) expiredLocked(ent diskEntry) bool {
	return !ent.ExpiresAt.IsZero() && s.now().After(ent.ExpiresAt)
}

func (s *DiskStore) loadIndex() error {
	raw, err := os.ReadFile(s.indexPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var idx diskIndex
	if err := json.Unmarshal(raw, &idx); err != nil {
		return fmt.Errorf("read archive index: %w", err)
	}
	if idx.Entries != nil {
		s.entries = idx.Entries
	}
	return nil
}

func (s *DiskStore) cleanupLocked() error {
	for id, ent := range s.entries {
		if s.expiredLocked(ent) {
			s.removeEntryLocked(id, ent)
			continue
		}
		if _, err := os.Stat(filepath.Join(s.dataDir, ent.File)); err != nil {
			if os.IsNotExist(err) {
				s.removeEntryLocked(id, ent)
				continue
			}
			return err
		}
	}
	for len(s.entries) > s.maxEntries {
		id, ent := s.oldestLocked()
		s.removeEntryLocked(id, ent)
	}
	return nil
}

func (s *DiskStore) oldestLocked() (string, diskEntry) {
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.entries[ids[i]].StoredAt, s.entries[ids[j]].StoredAt
		if a.Equal(b) {
			return ids[i] < ids[j]
		}
		return a.Before(b)
	})
	return ids[0], s.entries[ids[0]]
}

func (s *DiskStore) removeEntryLocked(id string, ent diskEntry) {
	delete(s.entries, id)
	_ = os.Remove(filepath.Join(s.dataDir, ent.File))
}

func (s *DiskStore) persistIndexLocked() error {
	raw, err := json.MarshalIndent(diskIndex{Entries: s.entries}, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.indexPath + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.indexPath)
}

func hashedName(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:]) + ".json"
}
