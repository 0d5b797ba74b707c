package recordio

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// PartFileName returns the conventional name of the part file peer id
// writes under prefix (spec §4.6, per-peer-file placement): a
// zero-padded sequence number so lexicographic and numeric order agree,
// matching the -part-NNNNN convention readers enumerate in
// RemoteDirReader.
func PartFileName(prefix string, id int) string {
	return fmt.Sprintf("%s-part-%05d", prefix, id)
}

// CleanStalePartFiles removes any existing part files under prefix
// before a run starts (spec §4.6: "a prior run's part files must not
// leak into a fresh one"). Conventionally called once, by peer 0,
// before any PerPeerFileWriter is opened.
func CleanStalePartFiles(prefix string) error {
	matches, err := filepath.Glob(prefix + "-part-*")
	if err != nil {
		return fmt.Errorf("recordio: glob stale part files: %w", err)
	}
	sort.Strings(matches)
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			return fmt.Errorf("recordio: remove stale part file %s: %w", m, err)
		}
	}
	return nil
}

// PerPeerFileWriter is a RecordWriter that streams records into its own,
// independently sized output file (spec §4.6, per-peer-file placement).
// Unlike SharedFileWriter it needs no pre-sizing coordination: each peer
// owns a file nobody else touches.
type PerPeerFileWriter struct {
	file *os.File
	buf  *bufio.Writer
}

// CreatePerPeerFileWriter creates (truncating any existing) the part
// file for id under prefix.
func CreatePerPeerFileWriter(prefix string, id int) (*PerPeerFileWriter, error) {
	path := PartFileName(prefix, id)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("recordio: create part file %s: %w", path, err)
	}
	return &PerPeerFileWriter{file: f, buf: bufio.NewWriterSize(f, 1<<20)}, nil
}

// WriteRecord appends r to the part file.
func (w *PerPeerFileWriter) WriteRecord(r Record) error {
	_, err := w.buf.Write(r[:])
	return err
}

// Close flushes buffered writes and closes the file.
func (w *PerPeerFileWriter) Close() error {
	if err := w.buf.Flush(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("recordio: flush part file: %w", err)
	}
	return w.file.Close()
}
