package translate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// DefaultCacheFile is where translations persist between runs.
const DefaultCacheFile = "translation.json"

// Key identifies one translated plugin text.
type Key struct {
	PluginID string
	Language string
}

// Entry is one persisted translation record.
type Entry struct {
	PluginID    string `json:"plugin_id"`
	Language    string `json:"language"`
	Description string `json:"translated_description"`
	Mitigation  string `json:"translate_mitigation"`
}

func (e Entry) key() Key { return Key{PluginID: e.PluginID, Language: e.Language} }

// Cache is the append-only translation store. The file is a JSON array and is
// rewritten in full on every Store; a crash mid-write can leave it truncated.
type Cache struct {
	path    string
	entries []Entry
	index   map[Key]int
}

// LoadCache reads path; a missing file yields an empty cache.
func LoadCache(path string) (*Cache, error) {
	c := &Cache{path: path, index: make(map[Key]int)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read translation cache: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return c, nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse translation cache %s: %w", path, err)
	}
	for _, e := range entries {
		// first record wins, later duplicates are kept on disk but never read
		if _, ok := c.index[e.key()]; !ok {
			c.index[e.key()] = len(c.entries)
		}
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// Path returns the backing file.
func (c *Cache) Path() string { return c.path }

// Len returns the number of distinct keys.
func (c *Cache) Len() int { return len(c.index) }

func (c *Cache) Lookup(k Key) (Entry, bool) {
	i, ok := c.index[k]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Store records a translation and rewrites the file. Storing an existing key
// is a no-op: entries are never overwritten.
func (c *Cache) Store(k Key, description, mitigation string) error {
	if _, ok := c.index[k]; ok {
		return nil
	}
	e := Entry{
		PluginID:    k.PluginID,
		Language:    k.Language,
		Description: strings.TrimSpace(description),
		Mitigation:  mitigation,
	}
	c.index[k] = len(c.entries)
	c.entries = append(c.entries, e)
	return c.flush()
}

func (c *Cache) flush() error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c.entries); err != nil {
		return fmt.Errorf("encode translation cache: %w", err)
	}
	if err := os.WriteFile(c.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write translation cache: %w", err)
	}
	return nil
}
