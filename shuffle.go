package terasort

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/faramir/terasort/internal/cluster"
)

// ShuffleBatch ships every sub-bucket to its target peer in one
// shipment each, after classification has fully finished (spec §4.4,
// batch shuffle). subBuckets must have exactly cl.Size() entries,
// subBuckets[target] holding the records this peer classified for
// target. It returns this peer's inbox: one slice per sender, in
// sender-id order, ready for LocalSorter.
func ShuffleBatch(ctx context.Context, cl *cluster.Cluster, subBuckets [][]Record) ([][]Record, error) {
	for target, bucket := range subBuckets {
		if err := cl.SendBucket(target, EncodeRecords(bucket)); err != nil {
			return nil, err
		}
	}
	payloads, err := cl.WaitBuckets(ctx)
	if err != nil {
		return nil, err
	}
	inbox := make([][]Record, len(payloads))
	for i, p := range payloads {
		inbox[i] = DecodeRecords(p)
	}
	return inbox, nil
}

// StreamedShuffler overlaps classification with transmission (spec
// §4.4, streamed shuffle): as records are classified, they accumulate
// per target, and once a target's accumulation reaches the configured
// threshold it is flushed immediately instead of waiting for the whole
// input slice to finish. Flushes run concurrently, bounded by a
// semaphore so a slow receiver applies back-pressure to the sender
// instead of letting unbounded memory pile up (spec §5 back-pressure).
type StreamedShuffler struct {
	cl        *cluster.Cluster
	threshold int

	ctx context.Context
	g   *errgroup.Group
	sem *semaphore.Weighted

	mu      sync.Mutex
	pending [][]Record
}

// NewStreamedShuffler prepares a streamed shuffle against cl. threshold
// is the per-target record count that triggers a flush
// (concurSendBucketSize); maxInFlight bounds concurrent outstanding
// flushes across all targets.
func NewStreamedShuffler(ctx context.Context, cl *cluster.Cluster, threshold int, maxInFlight int64) *StreamedShuffler {
	g, gctx := errgroup.WithContext(ctx)
	return &StreamedShuffler{
		cl:        cl,
		threshold: threshold,
		ctx:       gctx,
		g:         g,
		sem:       semaphore.NewWeighted(maxInFlight),
		pending:   make([][]Record, cl.Size()),
	}
}

// Classify streams every record in reader's [start, end) slice, routing
// it by LowerBound(pivots, r) into the per-target accumulation buffer
// and flushing whichever buffer crosses threshold.
func (s *StreamedShuffler) Classify(reader RecordReader, start, end int64, pivots []Record) error {
	if err := reader.Seek(start); err != nil {
		return err
	}
	for i := start; i < end; i++ {
		r, err := reader.ReadRecord()
		if err != nil {
			return err
		}
		target := LowerBound(pivots, r)

		s.mu.Lock()
		s.pending[target] = append(s.pending[target], r)
		var chunk []Record
		if len(s.pending[target]) >= s.threshold {
			chunk = s.pending[target]
			s.pending[target] = nil
		}
		s.mu.Unlock()

		if chunk != nil {
			if err := s.flush(target, chunk); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *StreamedShuffler) flush(target int, chunk []Record) error {
	if err := s.sem.Acquire(s.ctx, 1); err != nil {
		return err
	}
	payload := EncodeRecords(chunk)
	s.g.Go(func() error {
		defer s.sem.Release(1)
		return s.cl.FlushChunk(target, payload)
	})
	return nil
}

// Finish flushes every remaining partial buffer, waits for every
// outstanding flush to land, signals this peer has finished sending,
// then blocks until every peer has done the same and returns this
// peer's accumulated inbox. Unlike ShuffleBatch's inbox, chunk order
// carries no sender information: the streamed inbox is a set (spec §5).
func (s *StreamedShuffler) Finish() ([][]Record, error) {
	s.mu.Lock()
	remaining := s.pending
	s.pending = nil
	s.mu.Unlock()

	for target, chunk := range remaining {
		if len(chunk) == 0 {
			continue
		}
		if err := s.flush(target, chunk); err != nil {
			return nil, err
		}
	}
	if err := s.g.Wait(); err != nil {
		return nil, err
	}

	s.cl.SignalFinished()
	chunks, err := s.cl.WaitAllFinished(s.ctx)
	if err != nil {
		return nil, err
	}
	inbox := make([][]Record, len(chunks))
	for i, c := range chunks {
		inbox[i] = DecodeRecords(c)
	}
	return inbox, nil
}
