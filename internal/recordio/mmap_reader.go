package recordio

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	terrors "github.com/faramir/terasort/errors"
)

// DefaultWindowRecords is the number of records kept memory-mapped at
// once by an MmapReader that doesn't override the window size (spec
// §4.7, "-memoryMap.elementCount"). At 100 bytes/record this is a
// ~95 MiB window, small enough that several peers can each hold one
// without exhausting address space on a modest box, large enough that
// sequential classification rarely slides the window.
const DefaultWindowRecords = 1_000_000

// MmapReader is a RecordReader over one local partition file, backed by
// a sliding mmap window rather than one mapping of the whole file (spec
// §4.7, RecordReader: "a local file, accessed through a sliding
// memory-mapped window"). Random Seek calls anywhere within the file are
// supported; the window only remaps when the seek target falls outside
// it.
type MmapReader struct {
	file          *os.File
	length        int64 // total records in the file
	windowRecords int64

	mm          mmap.MMap
	windowStart int64 // first record index currently mapped
	windowEnd   int64 // one past the last record index currently mapped
	cursor      int64 // next record index ReadRecord will return
}

// OpenMmapReader opens path as a RecordReader. windowRecords <= 0 falls
// back to DefaultWindowRecords.
func OpenMmapReader(path string, windowRecords int64) (*MmapReader, error) {
	if windowRecords <= 0 {
		windowRecords = DefaultWindowRecords
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("recordio: open %s: %w", path, err)
	}
	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("recordio: stat %s: %w", path, err)
	}
	if stat.Size()%RecordSize != 0 {
		_ = f.Close()
		return nil, terrors.ErrRecordCountMisaligned
	}
	r := &MmapReader{
		file:          f,
		length:        stat.Size() / RecordSize,
		windowRecords: windowRecords,
	}
	if err := r.mapWindow(0); err != nil {
		_ = f.Close()
		return nil, err
	}
	return r, nil
}

// Length returns the total number of records in the file.
func (r *MmapReader) Length() int64 { return r.length }

// Seek repositions the next ReadRecord to recordIndex, remapping the
// window only if recordIndex falls outside the currently mapped range.
func (r *MmapReader) Seek(recordIndex int64) error {
	if r.mm == nil && r.file == nil {
		return terrors.ErrClosed
	}
	if recordIndex < 0 || recordIndex > r.length {
		return terrors.ErrOutOfWindow
	}
	if recordIndex < r.windowStart || recordIndex >= r.windowEnd {
		if err := r.mapWindow(recordIndex); err != nil {
			return err
		}
	}
	r.cursor = recordIndex
	return nil
}

// ReadRecord reads the record at the current cursor and advances it,
// remapping the window transparently when the cursor runs off the end
// of it.
func (r *MmapReader) ReadRecord() (Record, error) {
	if r.file == nil {
		return Record{}, terrors.ErrClosed
	}
	if r.cursor >= r.length {
		return Record{}, terrors.ErrShortRecord
	}
	if r.cursor >= r.windowEnd {
		if err := r.mapWindow(r.cursor); err != nil {
			return Record{}, err
		}
	}
	offset := (r.cursor - r.windowStart) * RecordSize
	rec := FromBytes(r.mm[offset : offset+RecordSize])
	r.cursor++
	return rec, nil
}

// Close unmaps the current window and closes the underlying file.
func (r *MmapReader) Close() error {
	var unmapErr error
	if r.mm != nil {
		unmapErr = r.mm.Unmap()
		r.mm = nil
	}
	var closeErr error
	if r.file != nil {
		closeErr = r.file.Close()
		r.file = nil
	}
	if unmapErr != nil {
		return unmapErr
	}
	return closeErr
}

func (r *MmapReader) mapWindow(start int64) error {
	if r.mm != nil {
		if err := r.mm.Unmap(); err != nil {
			return fmt.Errorf("recordio: unmap window: %w", err)
		}
		r.mm = nil
	}
	end := start + r.windowRecords
	if end > r.length {
		end = r.length
	}
	byteLen := (end - start) * RecordSize
	if byteLen == 0 {
		r.windowStart, r.windowEnd = start, start
		return nil
	}
	byteOffset := start * RecordSize
	mm, err := mmap.MapRegion(r.file, int(byteLen), mmap.RDONLY, 0, byteOffset)
	if err != nil {
		return fmt.Errorf("recordio: mmap window at record %d: %w", start, err)
	}
	fadviseSequential(int(r.file.Fd()), byteOffset, byteLen)
	r.mm = mm
	r.windowStart, r.windowEnd = start, end
	return nil
}
