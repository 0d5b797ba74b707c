package recordio

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	terrors "github.com/faramir/terasort/errors"
)

// CreateSharedOutputFile pre-sizes path to hold totalRecords records and
// closes it. Exactly one peer (conventionally peer 0) calls this, after
// a barrier, before any peer opens a SharedFileWriter onto the same path
// (spec §4.6, shared-file placement: "the output file is pre-allocated
// to its final size before any peer writes into it").
func CreateSharedOutputFile(path string, totalRecords int64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("recordio: create shared output %s: %w", path, err)
	}
	if err := fallocateFile(f, totalRecords*RecordSize); err != nil {
		return fmt.Errorf("recordio: allocate shared output %s: %w", path, err)
	}
	return f.Close()
}

// SharedFileWriter is a RecordWriter over one peer's disjoint byte
// window of a single, already-sized shared output file (spec §4.6):
// every peer mmaps only [startRecord, endRecord) of the same file and
// writes its locally sorted run there, so no coordination is needed
// once the per-peer offsets are known.
type SharedFileWriter struct {
	file   *os.File
	mm     mmap.MMap
	cursor int64 // next record index within [start, end) to write
	start  int64
	end    int64
}

// OpenSharedFileWriter opens the shared output file at path and maps
// this peer's window [startRecord, endRecord). The file must already
// have been sized by CreateSharedOutputFile.
func OpenSharedFileWriter(path string, startRecord, endRecord int64) (*SharedFileWriter, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("recordio: open shared output %s: %w", path, err)
	}
	byteLen := (endRecord - startRecord) * RecordSize
	if byteLen == 0 {
		return &SharedFileWriter{file: f, start: startRecord, end: endRecord, cursor: startRecord}, nil
	}
	mm, err := mmap.MapRegion(f, int(byteLen), mmap.RDWR, 0, startRecord*RecordSize)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("recordio: mmap shared output window: %w", err)
	}
	prefaultRegion([]byte(mm))
	return &SharedFileWriter{file: f, mm: mm, start: startRecord, end: endRecord, cursor: startRecord}, nil
}

// WriteRecord writes r at the next position in this peer's window.
func (w *SharedFileWriter) WriteRecord(r Record) error {
	if w.cursor >= w.end {
		return terrors.ErrOffsetOverflow
	}
	offset := (w.cursor - w.start) * RecordSize
	copy(w.mm[offset:offset+RecordSize], r[:])
	w.cursor++
	return nil
}

// Close flushes this peer's window to disk, unmaps it, and closes the
// file handle. Every peer closes its own handle onto the shared file
// independently.
func (w *SharedFileWriter) Close() error {
	var flushErr error
	if w.mm != nil {
		flushErr = w.mm.Flush()
	}
	var unmapErr error
	if w.mm != nil {
		unmapErr = w.mm.Unmap()
		w.mm = nil
	}
	closeErr := w.file.Close()
	if flushErr != nil {
		return flushErr
	}
	if unmapErr != nil {
		return unmapErr
	}
	return closeErr
}
