package recordio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	terrors "github.com/faramir/terasort/errors"
)

// span describes one part file's position in the logical concatenated
// record stream a RemoteDirReader presents.
type span struct {
	path         string
	startRecord  int64
	endRecord    int64 // exclusive
}

// RemoteDirReader is a RecordReader over a directory of part files
// (spec §4.6/§4.7: the per-peer-file and sequential placement variants
// both leave behind a directory that downstream consumers read back as
// one logical stream). Files are ordered lexicographically, which for
// PartFileName's zero-padded sequence numbers is also numeric order.
type RemoteDirReader struct {
	spans  []span
	length int64

	cur      *os.File
	curSpan  int
	cursor   int64
}

// OpenRemoteDir enumerates every file under dir matching glob (typically
// "part*", spec §6's remote-filesystem adapter) and validates that each
// one's size is a multiple of RecordSize. confPaths are the
// remote-filesystem configuration files a real HDFS-backed adapter
// would load (spec §6 tunable hdfsConf); this local-directory stand-in
// has no remote client to configure, so it only validates each path
// exists, failing fast on a misconfigured adapter rather than silently
// ignoring the setting.
func OpenRemoteDir(dir, glob string, confPaths ...string) (*RemoteDirReader, error) {
	for _, p := range confPaths {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("recordio: remote-fs config %s: %w", p, err)
		}
	}

	matches, err := filepath.Glob(filepath.Join(dir, glob))
	if err != nil {
		return nil, fmt.Errorf("recordio: glob remote dir: %w", err)
	}
	sort.Strings(matches)

	r := &RemoteDirReader{}
	var total int64
	for _, path := range matches {
		stat, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("recordio: stat %s: %w", path, err)
		}
		if stat.Size()%RecordSize != 0 {
			return nil, terrors.ErrPartSizeMisaligned
		}
		count := stat.Size() / RecordSize
		r.spans = append(r.spans, span{path: path, startRecord: total, endRecord: total + count})
		total += count
	}
	r.length = total
	return r, nil
}

// Length returns the total number of records across every part file.
func (r *RemoteDirReader) Length() int64 { return r.length }

// Seek repositions the next ReadRecord to recordIndex, opening whichever
// part file contains it.
func (r *RemoteDirReader) Seek(recordIndex int64) error {
	if recordIndex < 0 || recordIndex > r.length {
		return terrors.ErrOutOfWindow
	}
	idx := sort.Search(len(r.spans), func(i int) bool { return r.spans[i].endRecord > recordIndex })
	if idx < len(r.spans) {
		if err := r.openSpan(idx); err != nil {
			return err
		}
		byteOffset := (recordIndex - r.spans[idx].startRecord) * RecordSize
		if _, err := r.cur.Seek(byteOffset, io.SeekStart); err != nil {
			return fmt.Errorf("recordio: seek within %s: %w", r.spans[idx].path, err)
		}
	}
	r.cursor = recordIndex
	return nil
}

// ReadRecord reads the record at the current cursor, transparently
// crossing into the next part file when the cursor runs off the end of
// the current one.
func (r *RemoteDirReader) ReadRecord() (Record, error) {
	if r.cursor >= r.length {
		return Record{}, terrors.ErrShortRecord
	}
	if r.cur == nil || r.cursor >= r.spans[r.curSpan].endRecord {
		if err := r.Seek(r.cursor); err != nil {
			return Record{}, err
		}
	}
	var buf [RecordSize]byte
	if _, err := io.ReadFull(r.cur, buf[:]); err != nil {
		return Record{}, fmt.Errorf("recordio: read part file %s: %w", r.spans[r.curSpan].path, err)
	}
	r.cursor++
	return FromBytes(buf[:]), nil
}

// Close closes whichever part file is currently open.
func (r *RemoteDirReader) Close() error {
	if r.cur == nil {
		return nil
	}
	err := r.cur.Close()
	r.cur = nil
	return err
}

func (r *RemoteDirReader) openSpan(idx int) error {
	if r.cur != nil && idx == r.curSpan {
		return nil
	}
	if r.cur != nil {
		_ = r.cur.Close()
	}
	f, err := os.Open(r.spans[idx].path)
	if err != nil {
		return fmt.Errorf("recordio: open part file %s: %w", r.spans[idx].path, err)
	}
	r.cur = f
	r.curSpan = idx
	return nil
}
