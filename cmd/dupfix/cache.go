package main

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"sync"
)

const cacheVersion = 1

// CachedTokens stores one file's token stream with its mod time.
type CachedTokens struct {
	ModTime int64
	Tokens  []Token
}

// cacheFile is the on-disk gob layout, versioned for invalidation.
type cacheFile struct {
	Version int
	Files   map[string]CachedTokens
}

// TokenCache is the incremental tokenization cache. Blocks are always
// rebuilt from the cached token stream, so only the lexical scan is saved.
// A nil receiver behaves as an always-miss cache.
type TokenCache struct {
	mu    sync.Mutex
	files map[string]CachedTokens
	fresh map[string]CachedTokens
}

// LoadTokenCache reads the cache from <dir>/.dupfix/tokens.gob. Any load
// problem, including a version mismatch, yields an empty cache.
func LoadTokenCache(dir string) *TokenCache {
	c := &TokenCache{
		files: make(map[string]CachedTokens),
		fresh: make(map[string]CachedTokens),
	}

	f, err := os.Open(filepath.Join(dir, ".dupfix", "tokens.gob"))
	if err != nil {
		return c
	}
	defer f.Close()

	var on cacheFile
	if err := gob.NewDecoder(f).Decode(&on); err != nil || on.Version != cacheVersion {
		return c
	}
	c.files = on.Files
	return c
}

// Lookup returns the cached token stream when the file's mod time still
// matches.
func (c *TokenCache) Lookup(path string) ([]Token, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	cached, ok := c.files[path]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	info, err := os.Stat(path)
	if err != nil || info.ModTime().UnixNano() != cached.ModTime {
		return nil, false
	}
	// Carry hits over so Save keeps them for the next run.
	c.mu.Lock()
	c.fresh[path] = cached
	c.mu.Unlock()
	return cached.Tokens, true
}

// Store records a freshly tokenized file for the next Save.
func (c *TokenCache) Store(path string, tokens []Token) {
	if c == nil || len(tokens) == 0 {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.fresh[path] = CachedTokens{ModTime: info.ModTime().UnixNano(), Tokens: tokens}
	c.mu.Unlock()
}

// Save writes the cache for every stored file. Failures are silent; the
// cache is an optimization, never a correctness concern.
func (c *TokenCache) Save(dir string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	on := cacheFile{Version: cacheVersion, Files: c.fresh}
	c.mu.Unlock()
	if len(on.Files) == 0 {
		return
	}

	cacheDir := filepath.Join(dir, ".dupfix")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return
	}
	f, err := os.Create(filepath.Join(cacheDir, "tokens.gob"))
	if err != nil {
		return
	}
	defer f.Close()
	gob.NewEncoder(f).Encode(on)
}
