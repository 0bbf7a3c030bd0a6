package cache

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Load reads a persisted cache from path. The file holds one key per
// line, most-recently-used first, so lines are replayed in reverse to
// rebuild the same recency order. A missing or unreadable file is not
// an error: the bot starts over with an empty cache and logs a warning.
func Load(path string, capacity int) (*Recency, error) {
	cache, err := New(capacity)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("unable to load cache, starting over empty", "path", path, "err", err)
		return cache, nil
	}

	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}

	// The first line of the file is the most recently used entry, which
	// means it must be inserted last.
	for i := len(lines) - 1; i >= 0; i-- {
		cache.Touch(lines[i])
	}
	return cache, nil
}

// Store writes the cache to path, one key per line, most-recently-used
// first. The write goes to a temporary file in the same directory which
// is then renamed over path, so a crash mid-write never leaves a
// partial file at the canonical location.
func Store(cache *Recency, path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}

	w := bufio.NewWriter(tmp)
	for _, key := range cache.Keys() {
		if _, err := w.WriteString(key + "\n"); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return fmt.Errorf("write cache entry: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("flush cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}
