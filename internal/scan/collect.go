package scan

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

const DefaultMaxFileBytes = 1 << 20

type Options struct {
	// MaxFileBytes skips larger files. Zero means DefaultMaxFileBytes,
	// negative disables the limit.
	MaxFileBytes int64
	// Concurrency bounds parallel reads. Zero means GOMAXPROCS.
	Concurrency int
	// VisitFunc, if set, is called for every file that is kept.
	VisitFunc func(FileVisit)
}

// Collect reads every text file under paths. Directory arguments are walked;
// file arguments are keyed by their cleaned path. Reads go through os.Root so
// a symlink cannot pull in content from outside the scanned directory.
func Collect(ctx context.Context, paths []string, opts Options) (map[string]string, error) {
	limit := opts.MaxFileBytes
	if limit == 0 {
		limit = DefaultMaxFileBytes
	}

	var visits []FileVisit
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			visits = append(visits, FileVisit{
				Key:  filepath.ToSlash(filepath.Clean(p)),
				Root: filepath.Dir(p),
				Rel:  filepath.Base(p),
				Ext:  filepath.Ext(p),
				Size: info.Size(),
			})
			continue
		}
		found, err := walk(p, limit)
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
		visits = append(visits, found...)
	}

	roots, err := openRoots(visits)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, r := range roots {
			_ = r.Close()
		}
	}()

	workers := opts.Concurrency
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		mu    sync.Mutex
		files = make(map[string]string, len(visits))
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, v := range visits {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			raw, err := readLimited(roots[v.Root], v.Rel, limit)
			if err != nil {
				return fmt.Errorf("read %s: %w", v.Key, err)
			}
			if raw == nil || bytes.IndexByte(raw, 0) >= 0 {
				slog.Debug("skipping file", "path", v.Key, "bytes", v.Size)
				return nil
			}
			if opts.VisitFunc != nil {
				opts.VisitFunc(v)
			}
			mu.Lock()
			files[v.Key] = string(raw)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func openRoots(visits []FileVisit) (map[string]*os.Root, error) {
	roots := make(map[string]*os.Root)
	for _, v := range visits {
		if _, ok := roots[v.Root]; ok {
			continue
		}
		r, err := os.OpenRoot(v.Root)
		if err != nil {
			for _, opened := range roots {
				_ = opened.Close()
			}
			return nil, fmt.Errorf("open root %s: %w", v.Root, err)
		}
		roots[v.Root] = r
	}
	return roots, nil
}

// readLimited returns nil content when the file turns out larger than limit.
func readLimited(root *os.Root, rel string, limit int64) ([]byte, error) {
	f, err := root.Open(rel)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if limit < 0 {
		return io.ReadAll(f)
	}
	raw, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > limit {
		return nil, nil
	}
	return raw, nil
}
