package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"logospace/internal/analyzer"
	archiverepo "logospace/internal/gateway/repository/archive"
	"logospace/internal/report"
)

const DefaultResultCacheSize = 256

// Service runs analyses for the gateway. Results are memoized by corpus
// digest; the analyzer itself stays stateless.
type Service struct {
	analyzer *analyzer.Analyzer
	results  *lru.Cache[[sha256.Size]byte, *analyzer.Report]
	archive  archiverepo.Store
	now      func() time.Time
}

type Option func(*Service)

// WithClock overrides the timestamp source for generated reports.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a service. archive may be nil, in which case reports are not
// persisted and lookups return archive.ErrNotFound.
func New(a *analyzer.Analyzer, archive archiverepo.Store, cacheSize int, opts ...Option) (*Service, error) {
	if a == nil {
		a = analyzer.New()
	}
	if cacheSize <= 0 {
		cacheSize = DefaultResultCacheSize
	}
	results, err := lru.New[[sha256.Size]byte, *analyzer.Report](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	s := &Service{
		analyzer: a,
		results:  results,
		archive:  archive,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Analyze returns the report for files. The returned report is shared with
// the cache and must not be mutated.
func (s *Service) Analyze(files map[string]string) (*analyzer.Report, error) {
	c, err := s.analyzer.Corpus(files)
	if err != nil {
		return nil, err
	}
	key := sha256.Sum256([]byte(c))
	if cached, ok := s.results.Get(key); ok {
		return cached, nil
	}
	out := analyzer.AnalyzeCorpus(c)
	s.results.Add(key, out)
	return out, nil
}

// BuildReport analyzes files, wraps the result in a report document and
// archives it. Archive failures are logged and do not fail the call.
func (s *Service) BuildReport(ctx context.Context, repository string, files map[string]string) (*report.Document, error) {
	a, err := s.Analyze(files)
	if err != nil {
		return nil, err
	}
	doc := report.New(repository, files, a, s.now())
	if s.archive == nil {
		return doc, nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		log.Printf("analysis: encode report id=%s failed: %v", doc.ID, err)
		return doc, nil
	}
	if err := s.archive.Put(ctx, doc.ID, raw); err != nil {
		log.Printf("analysis: archive report id=%s failed: %v", doc.ID, err)
	}
	return doc, nil
}

// GetReport returns the archived report JSON for id.
func (s *Service) GetReport(ctx context.Context, id string) (json.RawMessage, error) {
	if s.archive == nil {
		return nil, archiverepo.ErrNotFound
	}
	raw, err := s.archive.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

func (s *Service) ListReports(ctx context.Context) ([]string, error) {
	if s.archive == nil {
		return []string{}, nil
	}
	ids, err := s.archive.List(ctx)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// CachedResults reports how many analyses are memoized.
func (s *Service) CachedResults() int {
	return s.results.Len()
}
