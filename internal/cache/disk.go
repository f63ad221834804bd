package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const entrySuffix = ".facts"

// DiskCache keeps extraction results across runs. Entries are spread over
// two-character shard directories so a large batch does not produce one
// huge flat directory.
type DiskCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewDiskCache creates a disk cache rooted at dir. A non-positive ttl
// means one day.
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DiskCache{dir: dir, ttl: ttl, now: time.Now}
}

// envelope is the on-disk record. Key is stored so Prune and Stats can
// report on entries without trusting file names.
type envelope struct {
	Key       string    `json:"key"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Data      []byte    `json:"data"`
}

// Get returns the stored bytes for key. Corrupt and expired entries are
// removed and reported as misses.
func (c *DiskCache) Get(key string) ([]byte, bool) {
	data, _, ok := c.Lookup(key)
	return data, ok
}

// Lookup is Get plus the entry's expiry time.
func (c *DiskCache) Lookup(key string) ([]byte, time.Time, bool) {
	path := c.path(key)
	env, err := readEnvelope(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			_ = os.Remove(path)
		}
		return nil, time.Time{}, false
	}
	if env.Key != key || !c.now().Before(env.ExpiresAt) {
		_ = os.Remove(path)
		return nil, time.Time{}, false
	}
	return env.Data, env.ExpiresAt, true
}

// Set stores value under key. A zero ttl uses the cache default. Entries
// hold claimant data, so directories and files are private to the user.
func (c *DiskCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	now := c.now()
	data, err := json.Marshal(envelope{
		Key:       key,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
		Data:      value,
	})
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	path := c.path(key)
	shard := filepath.Dir(path)
	if err := os.MkdirAll(shard, 0o700); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(shard, "entry-*.tmp")
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("commit cache file: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (c *DiskCache) Delete(key string) error {
	err := os.Remove(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Clear removes the whole cache directory.
func (c *DiskCache) Clear() error {
	return os.RemoveAll(c.dir)
}

// Stats summarizes what is on disk.
type Stats struct {
	Entries int   `json:"entries"`
	Expired int   `json:"expired"`
	Bytes   int64 `json:"bytes"`
}

// Stats walks the cache directory without modifying it. A missing
// directory is an empty cache.
func (c *DiskCache) Stats() (Stats, error) {
	var st Stats
	now := c.now()
	err := c.walk(func(path string, info fs.FileInfo) error {
		st.Entries++
		st.Bytes += info.Size()
		env, err := readEnvelope(path)
		if err != nil || !now.Before(env.ExpiresAt) {
			st.Expired++
		}
		return nil
	})
	return st, err
}

// Prune deletes expired, corrupt and orphaned temp files and returns how
// many entries were removed.
func (c *DiskCache) Prune() (int, error) {
	removed := 0
	now := c.now()
	err := c.walk(func(path string, _ fs.FileInfo) error {
		env, err := readEnvelope(path)
		if err == nil && now.Before(env.ExpiresAt) {
			return nil
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, err
	}
	leftovers, _ := filepath.Glob(filepath.Join(c.dir, "*", "entry-*.tmp"))
	for _, tmp := range leftovers {
		if os.Remove(tmp) == nil {
			removed++
		}
	}
	return removed, nil
}

func (c *DiskCache) walk(fn func(path string, info fs.FileInfo) error) error {
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), entrySuffix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return fn(path, info)
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// path shards on the last two characters of the key, which are hex for
// keys built by CacheKey.
func (c *DiskCache) path(key string) string {
	name := sanitize(key)
	shard := "00"
	if len(name) >= 2 {
		shard = name[len(name)-2:]
	}
	return filepath.Join(c.dir, shard, name+entrySuffix)
}

func sanitize(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, key)
}

func readEnvelope(path string) (envelope, error) {
	var env envelope
	data, err := os.ReadFile(path)
	if err != nil {
		return env, err
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return env, nil
}
