package archive

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	archiverepo "logospace/internal/gateway/repository/archive"
)

type Store = archiverepo.Store

type CacheConfig struct {
	ReportTTL        time.Duration
	ReportMaxEntries int

	ListTTL time.Duration
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		ReportTTL:        5 * time.Minute,
		ReportMaxEntries: 256,
		ListTTL:          30 * time.Second,
	}
}

type MetricsSnapshot struct {
	ReportHits     uint64
	ReportMisses   uint64
	ListHits       uint64
	ListMisses     uint64
	OriginReads    uint64
	OriginWrites   uint64
	OriginReadErr  uint64
	OriginWriteErr uint64
}

type Metrics struct {
	reportHits     atomic.Uint64
	reportMisses   atomic.Uint64
	listHits       atomic.Uint64
	listMisses     atomic.Uint64
	originReads    atomic.Uint64
	originWrites   atomic.Uint64
	originReadErr  atomic.Uint64
	originWriteErr atomic.Uint64
}

func (m *Metrics) snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		ReportHits:     m.reportHits.Load(),
		ReportMisses:   m.reportMisses.Load(),
		ListHits:       m.listHits.Load(),
		ListMisses:     m.listMisses.Load(),
		OriginReads:    m.originReads.Load(),
		OriginWrites:   m.originWrites.Load(),
		OriginReadErr:  m.originReadErr.Load(),
		OriginWriteErr: m.originWriteErr.Load(),
	}
}

const listKey = "*"

// CachedStore is a read-through, write-through cache in front of an archive
// origin.
type CachedStore struct {
	origin Store

	reports *expirable.LRU[string, []byte]
	lists   *expirable.LRU[string, []string]
	metrics Metrics
}

func NewCachedStore(origin Store, cfg CacheConfig) *CachedStore {
	def := DefaultCacheConfig()
	if cfg.ReportTTL <= 0 {
		cfg.ReportTTL = def.ReportTTL
	}
	if cfg.ReportMaxEntries <= 0 {
		cfg.ReportMaxEntries = def.ReportMaxEntries
	}
	if cfg.ListTTL <= 0 {
		cfg.ListTTL = def.ListTTL
	}
	return &CachedStore{
		origin:  origin,
		reports: expirable.NewLRU[string, []byte](cfg.ReportMaxEntries, nil, cfg.ReportTTL),
		lists:   expirable.NewLRU[string, []string](1, nil, cfg.ListTTL),
	}
}

func (s *CachedStore) Put(ctx context.Context, id string, content []byte) error {
	s.metrics.originWrites.Add(1)
	if err := s.origin.Put(ctx, id, content); err != nil {
		s.metrics.originWriteErr.Add(1)
		return err
	}
	s.reports.Add(id, append([]byte(nil), content...))
	s.lists.Remove(listKey)
	return nil
}

func (s *CachedStore) Get(ctx context.Context, id string) ([]byte, error) {
	if raw, ok := s.reports.Get(id); ok {
		s.metrics.reportHits.Add(1)
		return append([]byte(nil), raw...), nil
	}
	s.metrics.reportMisses.Add(1)
	s.metrics.originReads.Add(1)

	raw, err := s.origin.Get(ctx, id)
	if err != nil {
		s.metrics.originReadErr.Add(1)
		return nil, err
	}
	s.reports.Add(id, append([]byte(nil), raw...))
	return raw, nil
}

func (s *CachedStore) List(ctx context.Context) ([]string, error) {
	if ids, ok := s.lists.Get(listKey); ok {
		s.metrics.listHits.Add(1)
		return append([]string(nil), ids...), nil
	}
	s.metrics.listMisses.Add(1)
	s.metrics.originReads.Add(1)

	ids, err := s.origin.List(ctx)
	if err != nil {
		s.metrics.originReadErr.Add(1)
		return nil, err
	}
	s.lists.Add(listKey, append([]string(nil), ids...))
	return ids, nil
}

func (s *CachedStore) Metrics() MetricsSnapshot {
	if s == nil {
		return MetricsSnapshot{}
	}
	return s.metrics.snapshot()
}
