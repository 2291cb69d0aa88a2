// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package lifecycle

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"

	"github.com/samber/oops"

	"github.com/plugspace/plugspace/internal/xdg"
	"github.com/plugspace/plugspace/pkg/entrypoint"
	"github.com/plugspace/plugspace/pkg/metadata"
)

// SearchPathEnv is the environment variable holding the default search path,
// as a list of directories separated by the platform's list separator.
const SearchPathEnv = "PLUGSPACE_PATH"

// cacheFileSuffix is appended to the search-path state hash to name on-disk
// cache files.
const cacheFileSuffix = ".entry_points.txt"

// EntryPointSource produces the entry point index for the current search
// path.
type EntryPointSource interface {
	EntryPoints() (entrypoint.Index, error)
}

// EntryPointCache resolves entry points from distribution metadata through a
// two-level cache: an in-process memo keyed by the exact search path, and an
// on-disk file named by a hash of the search path's mutation state. Any mtime
// change of a path entry or of a declaration file reachable from it produces
// a different hash, so staleness cannot silently persist.
//
// Callers for the same search path serialize through a per-key lock while the
// index is built; callers for different paths do not block each other. The
// cache directory is shared across processes without locking: concurrent
// processes may race to build the same file, which is tolerated because the
// content is a deterministic function of the same inputs.
type EntryPointCache struct {
	searchPath func() []string
	cacheDir   string
	resolve    func(paths []string) []entrypoint.EntryPoint

	mu    sync.Mutex
	memo  map[string]entrypoint.Index
	locks map[string]*sync.Mutex
}

var _ EntryPointSource = (*EntryPointCache)(nil)

// CacheOption configures an EntryPointCache.
type CacheOption func(*EntryPointCache)

// WithSearchPath overrides where the cache takes its search path from. The
// function is consulted on every lookup.
func WithSearchPath(fn func() []string) CacheOption {
	return func(c *EntryPointCache) { c.searchPath = fn }
}

// WithCacheDir overrides the on-disk cache directory.
func WithCacheDir(dir string) CacheOption {
	return func(c *EntryPointCache) { c.cacheDir = dir }
}

// WithMetadataResolver overrides the underlying metadata resolution used on a
// cache miss.
func WithMetadataResolver(fn func(paths []string) []entrypoint.EntryPoint) CacheOption {
	return func(c *EntryPointCache) { c.resolve = fn }
}

// NewEntryPointCache creates a cache. Without options it reads the search
// path from PLUGSPACE_PATH and stores cache files under the user cache
// directory.
func NewEntryPointCache(opts ...CacheOption) *EntryPointCache {
	c := &EntryPointCache{
		searchPath: EnvSearchPath,
		cacheDir:   xdg.CacheDir(),
		resolve:    metadata.ResolveEntryPoints,
		memo:       make(map[string]entrypoint.Index),
		locks:      make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnvSearchPath reads the search path from PLUGSPACE_PATH.
func EnvSearchPath() []string {
	return filepath.SplitList(os.Getenv(SearchPathEnv))
}

// EntryPoints returns the entry point index for the current search path.
func (c *EntryPointCache) EntryPoints() (entrypoint.Index, error) {
	paths := c.searchPath()
	key := strings.Join(paths, "\x00")

	c.mu.Lock()
	if index, ok := c.memo[key]; ok {
		c.mu.Unlock()
		return index, nil
	}
	lock, ok := c.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[key] = lock
	}
	c.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	// Another caller may have built the index while we waited.
	c.mu.Lock()
	if index, ok := c.memo[key]; ok {
		c.mu.Unlock()
		return index, nil
	}
	c.mu.Unlock()

	index, err := c.buildAndStore(paths)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.memo[key] = index
	c.mu.Unlock()

	return index, nil
}

// buildAndStore loads the index from the on-disk cache when a file for the
// current search-path state exists, and otherwise computes it from
// distribution metadata and writes it back.
func (c *EntryPointCache) buildAndStore(paths []string) (entrypoint.Index, error) {
	hash := hashSearchPathState(paths)
	cacheFile := filepath.Join(c.cacheDir, hash+cacheFileSuffix)

	if data, err := os.ReadFile(filepath.Clean(cacheFile)); err == nil {
		eps, err := entrypoint.ParseText(data)
		if err != nil {
			return nil, oops.In("lifecycle").
				With("cache_file", cacheFile).
				Hint("cache file is corrupt; remove it to force a rebuild").
				Wrap(err)
		}
		return entrypoint.BuildIndex(eps), nil
	}

	index := entrypoint.BuildIndex(c.resolve(paths))

	// A failed write degrades to an uncached scan on the next miss; the
	// computed index is still valid.
	if err := xdg.EnsureDir(c.cacheDir); err != nil {
		slog.Warn("could not create entry point cache directory",
			"dir", c.cacheDir,
			"error", err)
		return index, nil
	}
	if err := os.WriteFile(cacheFile, entrypoint.SerializeIndex(index), 0o600); err != nil {
		slog.Warn("could not write entry point cache file",
			"file", cacheFile,
			"error", err)
	}

	return index, nil
}

// hashSearchPathState computes the content-address of the search path's
// mutation state: the executable identity, the runtime version, each path
// entry with its mtime, and every discoverable declaration file with its
// mtime, including files reached through editable redirection links. Missing
// files contribute a sentinel value instead of erroring.
func hashSearchPathState(paths []string) string {
	h := sha256.New()

	// Tie the cache to the binary, in case several applications share a
	// cache directory.
	executable, err := os.Executable()
	if err != nil {
		executable = "unknown"
	}
	h.Write([]byte(executable))
	h.Write([]byte(goruntime.Version()))

	for _, entry := range paths {
		h.Write([]byte(entry))
		h.Write(mtimeBytes(entry))

		for _, file := range declarationFiles(entry) {
			h.Write([]byte(file))
			h.Write(mtimeBytes(file))
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

// declarationFiles returns every entry-point declaration file discoverable
// under one search path entry, transparently following editable links.
func declarationFiles(entry string) []string {
	var files []string
	for _, pattern := range []string{
		filepath.Join(entry, "*.dist-info", metadata.EntryPointsFile),
		filepath.Join(entry, "*.egg-info", metadata.EntryPointsFile),
	} {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}

	links, err := filepath.Glob(filepath.Join(entry, "*.dist-info", metadata.EditableLinkFile))
	if err != nil {
		return files
	}
	for _, link := range links {
		data, err := os.ReadFile(filepath.Clean(link))
		if err != nil {
			continue
		}
		target := strings.TrimSpace(string(data))
		if target == "" {
			continue
		}
		if _, err := os.Stat(target); err == nil {
			files = append(files, target)
		}
	}

	return files
}

// mtimeBytes encodes a file's modification time for hashing. Nonexistent
// paths encode the sentinel -1.
func mtimeBytes(path string) []byte {
	mtime := -1.0
	if info, err := os.Stat(path); err == nil {
		mtime = float64(info.ModTime().UnixNano()) / 1e9
	}

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(mtime))
	return buf[:]
}

var (
	defaultCache     *EntryPointCache
	defaultCacheOnce sync.Once
)

// DefaultCache returns the process-wide cache instance, lazily created on
// first access. Components accept an EntryPointSource via their constructors;
// the singleton exists only as a convenient default.
func DefaultCache() *EntryPointCache {
	defaultCacheOnce.Do(func() {
		defaultCache = NewEntryPointCache()
	})
	return defaultCache
}
