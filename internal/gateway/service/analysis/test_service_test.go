package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logospace/internal/analyzer"
	archiverepo "logospace/internal/gateway/repository/archive"
)

type failingStore struct{}

func (failingStore) Put(context.Context, string, []byte) error   { return errors.New("disk full") }
func (failingStore) Get(context.Context, string) ([]byte, error) { return nil, archiverepo.ErrNotFound }
func (failingStore) List(context.Context) ([]string, error)      { return nil, nil }

func fixedClock() time.Time {
	return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestAnalyzeMemoizesByCorpus(t *testing.T) {
	svc, err := New(nil, nil, 8)
	require.NoError(t, err)

	first, err := svc.Analyze(map[string]string{"a.py": "autonomous agent"})
	require.NoError(t, err)
	second, err := svc.Analyze(map[string]string{"a.py": "autonomous agent"})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, svc.CachedResults())
}

func TestAnalyzePropagatesCoreErrors(t *testing.T) {
	svc, err := New(analyzer.New(analyzer.WithMaxCorpusBytes(4)), nil, 8)
	require.NoError(t, err)

	_, err = svc.Analyze(nil)
	assert.ErrorIs(t, err, analyzer.ErrNoFiles)

	_, err = svc.Analyze(map[string]string{"a": "too long"})
	assert.ErrorIs(t, err, analyzer.ErrCorpusTooLarge)
	assert.Equal(t, 0, svc.CachedResults())
}

func TestBuildReportArchives(t *testing.T) {
	store := archiverepo.NewMemoryStore()
	svc, err := New(nil, store, 8, WithClock(fixedClock))
	require.NoError(t, err)
	ctx := context.Background()

	doc, err := svc.BuildReport(ctx, "acme/widgets", map[string]string{"main.go": "func loop() { loop() }"})
	require.NoError(t, err)
	assert.Equal(t, "acme/widgets", doc.Repository)
	assert.Equal(t, fixedClock(), doc.GeneratedAt)

	raw, err := svc.GetReport(ctx, doc.ID)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, doc.ID, decoded["id"])
	assert.Equal(t, "acme/widgets", decoded["repository"])

	ids, err := svc.ListReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{doc.ID}, ids)
}

func TestBuildReportIgnoresArchiveFailure(t *testing.T) {
	svc, err := New(nil, failingStore{}, 8)
	require.NoError(t, err)

	doc, err := svc.BuildReport(context.Background(), "", map[string]string{"a.txt": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "Unknown", doc.Repository)
}

func TestReportsWithoutArchive(t *testing.T) {
	svc, err := New(nil, nil, 0)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.GetReport(ctx, "report-x")
	assert.ErrorIs(t, err, archiverepo.ErrNotFound)

	ids, err := svc.ListReports(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NotNil(t, ids)
}
