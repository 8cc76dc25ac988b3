// Package ledger tracks which input images have already been converted,
// so batch runs can skip completed work and retry failures.
//
// The ledger is a flat JSON mapping from absolute image path to the
// outcome of the last attempt. It is loaded once at startup and the
// whole file is rewritten after every mutation; there is no append
// format and no partial-write protection beyond what the filesystem
// provides. Concurrent callers must use separate ledger files.
package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"vocab/internal/logger"
)

// Entry records the outcome of the last processing attempt for one image.
type Entry struct {
	ProcessedAt time.Time `json:"processed_at"`
	Success     bool      `json:"success"`
	Error       *string   `json:"error"`
	FileSize    int64     `json:"file_size"`
}

// Stats aggregates counts over all ledger entries.
type Stats struct {
	Total      int
	Successful int
	Failed     int
}

// Ledger is the in-memory view of the durable ledger file.
type Ledger struct {
	path    string
	entries map[string]Entry
	log     zerolog.Logger
}

// Open loads the ledger at path. A missing or corrupt file degrades to
// an empty ledger instead of failing: losing the ledger only costs
// re-processing, never data.
func Open(path string) *Ledger {
	l := &Ledger{
		path:    path,
		entries: make(map[string]Entry),
		log:     logger.WithComponent("ledger"),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.log.Warn().Err(err).Str("path", path).Msg("Could not read ledger, starting empty")
		}
		return l
	}
	if err := json.Unmarshal(data, &l.entries); err != nil {
		l.log.Warn().Err(err).Str("path", path).Msg("Ledger file is corrupt, starting empty")
		l.entries = make(map[string]Entry)
	}
	return l
}

// IsProcessed reports whether the image at path was already converted
// successfully. Previously failed attempts report false and stay
// eligible for retry.
func (l *Ledger) IsProcessed(path string) bool {
	entry, ok := l.entries[l.key(path)]
	return ok && entry.Success
}

// Mark upserts the outcome for the image at path and persists the whole
// ledger immediately. Persistence failures are logged but non-fatal:
// the in-memory ledger stays usable for the rest of the run.
func (l *Ledger) Mark(path string, success bool, procErr error) {
	entry := Entry{
		ProcessedAt: time.Now(),
		Success:     success,
		FileSize:    fileSize(path),
	}
	if procErr != nil {
		msg := procErr.Error()
		entry.Error = &msg
	}
	l.entries[l.key(path)] = entry

	if err := l.save(); err != nil {
		l.log.Warn().Err(err).Str("path", l.path).Msg("Could not persist ledger")
	}
}

// Stats returns aggregate counts over all entries.
func (l *Ledger) Stats() Stats {
	stats := Stats{Total: len(l.entries)}
	for _, entry := range l.entries {
		if entry.Success {
			stats.Successful++
		} else {
			stats.Failed++
		}
	}
	return stats
}

// save rewrites the full ledger file.
func (l *Ledger) save() error {
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, data, 0644)
}

// key normalizes an image path to its absolute form so the same file is
// recognized regardless of how the caller spelled the path.
func (l *Ledger) key(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// fileSize returns the current size of the file, 0 if it no longer
// exists.
func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
