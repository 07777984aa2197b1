// Package credential models bearer credential pools and the providers that
// load them.
//
// This file implements the directory-backed provider, the default backend
// when no Redis address is configured. Pool files are re-read on every load
// (or on cache expiry when the cache is enabled), so operators can replace a
// pool file while the daemon runs.
//
// FILE LAYOUT:
//   - <dir>/<pool>.json holds the dispatch pool
//   - <dir>/<pool>_measure.json holds the measurement pool
//
// The pool name comes from the Router, so several groups can read the same
// pair of files.
package credential

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/concave-dev/fanout/internal/logging"
)

// FileProvider loads pools from JSON files in a directory. The dispatch pool
// of pool "br" is read from br.json and its measurement pool from
// br_measure.json.
type FileProvider struct {
	dir    string
	router *Router
}

// NewFileProvider creates a provider reading pools from dir. The directory
// does not need to exist yet; missing files are reported per load.
func NewFileProvider(dir string, router *Router) *FileProvider {
	return &FileProvider{dir: dir, router: router}
}

// PoolPath returns the file backing a group's pool for purpose.
func (p *FileProvider) PoolPath(group string, purpose Purpose) string {
	name := p.router.Pool(group)
	if purpose == Measurement {
		name += "_measure"
	}
	return filepath.Join(p.dir, name+".json")
}

// LoadPool reads and decodes the pool file. Missing files and malformed
// documents produce an empty pool and a warning.
func (p *FileProvider) LoadPool(_ context.Context, group string, purpose Purpose) []Credential {
	group = NormalizeGroup(group)
	path := p.PoolPath(group, purpose)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.Warn("Pool file %s not found, using empty %s pool for group %s", path, purpose, group)
		} else {
			logging.Warn("Failed to read pool file %s: %v", path, err)
		}
		return nil
	}

	pool, err := decodePool(data)
	if err != nil {
		logging.Warn("Pool file %s is not in the expected format: %v", path, err)
		return nil
	}

	logging.Debug("Loaded %d credentials from %s for group %s", len(pool), path, group)
	return pool
}
