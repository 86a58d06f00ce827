// Package cache stores compiled units keyed by the content that produced
// them.
package cache

import (
	"encoding/hex"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/opal-lang/clc/core/params"
)

// Entry is a cached compilation result
type Entry struct {
	Code     string
	Filename string
	ProcName string
	HasProc  bool
	Warnings []string
	Params   []*params.Variable
	Locals   []*params.Variable
}

// Cache is a compiled-unit store. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(key string) (*Entry, bool)
	Put(key string, e *Entry) error
}

// StatKey identifies a file revision without reading it
type StatKey struct {
	Path    string
	Size    int64
	ModTime int64 // Unix nanoseconds
}

// StatCache remembers the source digest last computed for a file
// revision so unchanged files need not be hashed again
type StatCache interface {
	Lookup(st StatKey) (string, bool)
	Remember(st StatKey, digest string)
}

// Digest returns the BLAKE2b-256 digest of source, hex encoded
func Digest(source string) string {
	sum := blake2b.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Key returns the cache key for compiling the source with the given
// digest under a file name and translation mode
func Key(digest, filename, mode string) string {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic("blake2b.New256 failed: " + err.Error())
	}
	for _, part := range []string{mode, filename, digest} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "blake2b:" + hex.EncodeToString(h.Sum(nil))
}

// Memory is an in-process cache holding encoded entries. When full it
// starts over.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
	stats   map[StatKey]string
	maxSize int
}

// NewMemory creates a cache holding up to maxSize entries
func NewMemory(maxSize int) *Memory {
	if maxSize <= 0 {
		maxSize = 256
	}
	return &Memory{
		entries: make(map[string][]byte),
		stats:   make(map[StatKey]string),
		maxSize: maxSize,
	}
}

// Get returns a decoded copy of the entry stored under key
func (m *Memory) Get(key string) (*Entry, bool) {
	m.mu.RLock()
	data, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	e, err := Decode(data)
	if err != nil {
		return nil, false
	}
	return e, true
}

// Put stores e under key; the last writer wins
func (m *Memory) Put(key string, e *Entry) error {
	data, err := Encode(e)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxSize {
		m.entries = make(map[string][]byte)
		m.stats = make(map[StatKey]string)
	}
	m.entries[key] = data
	return nil
}

// Lookup returns the digest remembered for a file revision
func (m *Memory) Lookup(st StatKey) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key, ok := m.stats[st]
	return key, ok
}

// Remember records the digest of a file revision
func (m *Memory) Remember(st StatKey, digest string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[st] = digest
}

// Len reports the number of stored entries
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
