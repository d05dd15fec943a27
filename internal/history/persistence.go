// Package history keeps a JSONL log of every achievement the overlay has
// shown, so `cheevo history` can list and prune them later.
package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmylchreest/cheevo/internal/model"
)

// SchemaVersion is the current file schema version.
const SchemaVersion = 1

// maxLineSize bounds a single JSONL record.
const maxLineSize = 1024 * 1024

// ErrClosed is returned when operations are attempted on a closed log.
var ErrClosed = errors.New("history is closed")

// schemaHeader is the first line of the file.
type schemaHeader struct {
	CheevoSchemaVersion int   `json:"cheevo_schema_version"`
	CreatedAt           int64 `json:"created_at"`
}

// Log is an append-only JSONL file of achievements.
type Log struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	closed bool
}

// Open opens (creating if needed) the history file at path.
func Open(path string) (*Log, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open history %s: %w", path, err)
	}

	l := &Log{path: path, file: file}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.Size() == 0 {
		if err := l.writeHeader(); err != nil {
			_ = file.Close()
			return nil, err
		}
	}
	return l, nil
}

// Path returns the file path.
func (l *Log) Path() string { return l.path }

func (l *Log) writeHeader() error {
	data, err := json.Marshal(schemaHeader{
		CheevoSchemaVersion: SchemaVersion,
		CreatedAt:           time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	_, err = l.file.Write(append(data, '\n'))
	return err
}

// Load reads every achievement in file order. Malformed lines are skipped.
func (l *Log) Load() ([]model.Achievement, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.file == nil {
		return nil, ErrClosed
	}
	if _, err := l.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %s: %w", l.path, err)
	}

	entries, err := decode(l.file)
	if err != nil {
		return entries, err
	}

	if _, err := l.file.Seek(0, io.SeekEnd); err != nil {
		return entries, err
	}
	return entries, nil
}

func decode(r io.Reader) ([]model.Achievement, error) {
	var entries []model.Achievement
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	first := true
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if first {
			first = false
			var header schemaHeader
			if json.Unmarshal(line, &header) == nil && header.CheevoSchemaVersion > 0 {
				if header.CheevoSchemaVersion > SchemaVersion {
					return nil, fmt.Errorf("unsupported schema version %d (max: %d)",
						header.CheevoSchemaVersion, SchemaVersion)
				}
				continue
			}
		}

		var a model.Achievement
		if err := json.Unmarshal(line, &a); err != nil {
			continue
		}
		if a.Validate() == nil {
			entries = append(entries, a)
		}
	}

	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("error reading history: %w", err)
	}
	return entries, nil
}

// Append adds one achievement and syncs the file.
func (l *Log) Append(a model.Achievement) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.file == nil {
		return ErrClosed
	}

	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	if _, err := l.file.Write(append(data, '\n')); err != nil {
		return err
	}
	return l.file.Sync()
}

// Rewrite replaces the file contents with entries, keeping a .bak copy
// until the new file is synced.
func (l *Log) Rewrite(entries []model.Achievement) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	if l.file != nil {
		if err := l.file.Close(); err != nil {
			return err
		}
		l.file = nil
	}

	backup := l.path + ".bak"
	if err := os.Rename(l.path, backup); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	file, err := os.OpenFile(l.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND, 0o600)
	if err != nil {
		_ = os.Rename(backup, l.path)
		return fmt.Errorf("failed to create history: %w", err)
	}
	l.file = file

	if err := l.writeHeader(); err != nil {
		return err
	}
	for _, a := range entries {
		data, err := json.Marshal(a)
		if err != nil {
			return err
		}
		if _, err := l.file.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	if err := l.file.Sync(); err != nil {
		return err
	}

	_ = os.Remove(backup)
	return nil
}

// Clear removes every entry.
func (l *Log) Clear() error {
	return l.Rewrite(nil)
}

// Close releases the file handle. Further calls return ErrClosed.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}
