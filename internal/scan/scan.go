// Package scan collects source files from local paths into the name to text
// mapping the analyzer consumes.
package scan

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// FileVisit describes one file selected for collection.
type FileVisit struct {
	// Key is the slash-separated path relative to the scanned root.
	Key string
	// Root is the directory the file was found under.
	Root string
	// Rel is Key in filesystem separators, relative to Root.
	Rel  string
	Ext  string
	Size int64
}

// Skip VCS & dependency dirs
var skipDirs = map[string]bool{
	".git": true, ".hg": true, ".svn": true,
	"node_modules": true, "vendor": true, "__pycache__": true,
	"target": true, "build": true, "dist": true, ".next": true, ".cache": true,
}

func isBinary(ext string) bool {
	switch ext {
	// images
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico", ".bmp", ".tiff":
		return true
	// video
	case ".mp4", ".m4v", ".mov", ".mkv", ".webm", ".avi":
		return true
	// audio
	case ".mp3", ".wav", ".ogg", ".flac", ".m4a":
		return true
	// archives / others
	case ".pdf", ".zip", ".jar", ".gz", ".tgz", ".bz2", ".7z", ".exe", ".dll", ".dylib", ".so", ".woff", ".woff2":
		return true
	}
	return false
}

// walk lists candidate files under root, skipping dependency dirs and known
// binary extensions.
func walk(root string, maxFileBytes int64) ([]FileVisit, error) {
	var out []FileVisit
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if isBinary(ext) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if maxFileBytes > 0 && info.Size() > maxFileBytes {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, FileVisit{
			Key:  filepath.ToSlash(rel),
			Root: root,
			Rel:  rel,
			Ext:  ext,
			Size: info.Size(),
		})
		return nil
	})
	return out, err
}
