package rhubarb

import (
	"os"
	"strings"
	"sync"

	"mouthpiece/internal/deps"
)

// DefaultPath is where the analyzer is expected relative to the working
// directory when no path is configured.
const DefaultPath = "./bin/rhubarb/rhubarb"

// Candidates returns the probe order for configured (or DefaultPath when
// empty): the configured path, fixed fallbacks in the working directory, then
// the bin directory next to the running executable.
func Candidates(configured string) []string {
	configured = strings.TrimSpace(configured)
	if configured == "" {
		configured = DefaultPath
	}
	out := []string{configured, "./rhubarb", "./bin/rhubarb.exe", "./rhubarb.exe"}
	return append(out, deps.SidecarCandidates("bin/rhubarb", "bin/rhubarb.exe")...)
}

// PathCache remembers resolved analyzer paths keyed by the first candidate.
// It is safe for concurrent use.
type PathCache struct {
	mu    sync.RWMutex
	paths map[string]string
}

// NewPathCache returns an empty cache.
func NewPathCache() *PathCache {
	return &PathCache{paths: make(map[string]string)}
}

// sharedCache is used by analyzers built without WithCache.
var sharedCache = NewPathCache()

// Get returns the cached path for key when it still names an existing file.
func (c *PathCache) Get(key string) (string, bool) {
	c.mu.RLock()
	path, ok := c.paths[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if _, err := os.Stat(path); err != nil {
		c.mu.Lock()
		if c.paths[key] == path {
			delete(c.paths, key)
		}
		c.mu.Unlock()
		return "", false
	}
	return path, true
}

// Store records path for key.
func (c *PathCache) Store(key, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paths == nil {
		c.paths = make(map[string]string)
	}
	c.paths[key] = path
}

// Reset clears every cached entry.
func (c *PathCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = make(map[string]string)
}
