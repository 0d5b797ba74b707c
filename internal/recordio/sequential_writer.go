package recordio

import (
	"context"
	"fmt"
	"os"

	terrors "github.com/faramir/terasort/errors"
)

// SequentialFile is the single output file written by the sequential
// placement variant (spec §4.6: "every peer appends to one shared file,
// one at a time, in an order fixed by a circulating token"). Peer id's
// entire run must land contiguously before peer id+1's, since only the
// partition ordering (not the file offset bookkeeping) guarantees the
// result is globally sorted; TakeTurn/AdvanceTurn implement that
// hand-off as a channel baton rather than a single per-record mutex, so
// one peer's whole run writes without another's interleaving.
type SequentialFile struct {
	file   *os.File
	offset int64
	turns  []chan struct{}
}

// CreateSequentialFile creates (truncating any existing) the shared
// output file at path and readies the turn baton for a peers-sized
// group; peer 0 may start immediately.
func CreateSequentialFile(path string, peers int) (*SequentialFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("recordio: create sequential output %s: %w", path, err)
	}
	turns := make([]chan struct{}, peers)
	for i := range turns {
		turns[i] = make(chan struct{})
	}
	close(turns[0])
	return &SequentialFile{file: f, turns: turns}, nil
}

// TakeTurn blocks until it is id's turn to write.
func (sf *SequentialFile) TakeTurn(ctx context.Context, id int) error {
	select {
	case <-sf.turns[id]:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AdvanceTurn hands the baton to id+1, if there is one.
func (sf *SequentialFile) AdvanceTurn(id int) {
	if id+1 < len(sf.turns) {
		close(sf.turns[id+1])
	}
}

// NewWriter returns a RecordWriter handle for id. The caller must hold
// id's turn (via TakeTurn) for the lifetime of every WriteRecord call.
func (sf *SequentialFile) NewWriter(id int) *SequentialWriter {
	return &SequentialWriter{shared: sf, id: id}
}

// Close flushes and closes the underlying file. Called once, after the
// last peer's AdvanceTurn.
func (sf *SequentialFile) Close() error {
	return sf.file.Close()
}

// SequentialWriter is one peer's RecordWriter handle onto a
// SequentialFile, valid only while that peer holds the turn.
type SequentialWriter struct {
	shared *SequentialFile
	id     int
}

// WriteRecord appends r at the file's current end.
func (w *SequentialWriter) WriteRecord(r Record) error {
	n, err := w.shared.file.WriteAt(r[:], w.shared.offset)
	if err != nil {
		return fmt.Errorf("recordio: sequential write: %w", err)
	}
	if n != RecordSize {
		return terrors.ErrShortRecord
	}
	w.shared.offset += RecordSize
	return nil
}

// Close hands the turn to the next peer. It does not close the shared
// file; SequentialFile.Close does that once, after every peer is done.
func (w *SequentialWriter) Close() error {
	w.shared.AdvanceTurn(w.id)
	return nil
}
