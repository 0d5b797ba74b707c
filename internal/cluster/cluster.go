package cluster

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"

	terrors "github.com/faramir/terasort/errors"
)

// Cluster is one peer's handle onto the shared per-group runtime (spec
// §9's minimal abstraction: put_remote, wait_for, broadcast, reduce,
// barrier). All operations are addressed by peer id; FIFO delivery
// per (sender, receiver, variable) is guaranteed the way spec §5
// describes, because every slot is either single-writer or
// mutex-guarded multi-writer in program order.
type Cluster struct {
	id   int
	size int
	bus  *bus
}

// Group creates one Cluster handle per peer, all sharing one in-process
// bus. This is the stand-in for the out-of-scope peer-group launcher
// (spec §1): real deployments would replace *bus with a network
// transport behind the same Cluster methods.
func Group(size int) []*Cluster {
	b := newBus(size)
	clusters := make([]*Cluster, size)
	for i := range clusters {
		clusters[i] = &Cluster{id: i, size: size, bus: b}
	}
	return clusters
}

// ID returns this peer's id in [0, Size()).
func (c *Cluster) ID() int { return c.id }

// Size returns the number of peers in the group.
func (c *Cluster) Size() int { return c.size }

// Close shuts down this peer group's transport. Any peer's subsequent
// SendBucket or FlushChunk call fails with ErrTransportClosed rather
// than writing into a bus nobody is still draining. Idempotent and safe
// to call from any single peer once every peer has finished its run.
func (c *Cluster) Close() error {
	c.bus.closeOnce.Do(func() { c.bus.closed.Store(true) })
	return nil
}

// Barrier blocks until every peer has called Barrier for this phase.
func (c *Cluster) Barrier(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.bus.barrier.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// bus holds every named slot shared across a peer group (spec §3
// "Pivot list", "Inbox"): pivots, buckets, and completion signals.
type bus struct {
	size    int
	barrier *Barrier

	closeOnce sync.Once
	closed    atomic.Bool

	sampleMu sync.Mutex
	samples  [][]byte
	sampleWG sync.WaitGroup

	pivotOnce  sync.Once
	pivotReady chan struct{}
	pivotData  []byte
	pivotHash  uint64

	batchMu  sync.Mutex
	batch    [][][]byte // batch[target][sender]
	batchSum [][]uint32 // batch checksums, same indexing
	batchWG  []sync.WaitGroup

	streamMu   []sync.Mutex
	stream     [][][]byte
	finishedWG sync.WaitGroup

	runLenMu sync.Mutex
	runLens  []int64
	runLenWG sync.WaitGroup
}

func newBus(size int) *bus {
	b := &bus{
		size:       size,
		barrier:    NewBarrier(size),
		pivotReady: make(chan struct{}),
		samples:    make([][]byte, size),
		batch:      make([][][]byte, size),
		batchSum:   make([][]uint32, size),
		batchWG:    make([]sync.WaitGroup, size),
		streamMu:   make([]sync.Mutex, size),
		stream:     make([][][]byte, size),
		runLens:    make([]int64, size),
	}
	for i := 0; i < size; i++ {
		b.batch[i] = make([][]byte, size)
		b.batchSum[i] = make([]uint32, size)
		b.batchWG[i].Add(size)
	}
	b.sampleWG.Add(size)
	b.finishedWG.Add(size)
	b.runLenWG.Add(size)
	return b
}

func waitCtx(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubmitSamples contributes this peer's sample records (encoded as a
// flat byte buffer, a multiple of the record length) to the pivot
// reduction. Every peer calls this exactly once, including peers with
// zero samples.
func (c *Cluster) SubmitSamples(sampleBytes []byte) {
	c.bus.sampleMu.Lock()
	c.bus.samples[c.id] = sampleBytes
	c.bus.sampleMu.Unlock()
	c.bus.sampleWG.Done()
}

// CollectSamples blocks until every peer has submitted its samples, then
// returns the concatenation in peer-id order. Only peer 0 is expected to
// call this (spec §4.2: "peer 0 reduces").
func (c *Cluster) CollectSamples(ctx context.Context) ([]byte, error) {
	if err := waitCtx(ctx, &c.bus.sampleWG); err != nil {
		return nil, err
	}
	c.bus.sampleMu.Lock()
	defer c.bus.sampleMu.Unlock()
	var total int
	for _, s := range c.bus.samples {
		total += len(s)
	}
	out := make([]byte, 0, total)
	for _, s := range c.bus.samples {
		out = append(out, s...)
	}
	return out, nil
}

// BroadcastPivots publishes the final pivot list (as a flat byte buffer)
// to every peer. Called once, by peer 0.
func (c *Cluster) BroadcastPivots(pivotBytes []byte) {
	c.bus.pivotOnce.Do(func() {
		c.bus.pivotData = pivotBytes
		c.bus.pivotHash = xxhash.Sum64(pivotBytes)
		close(c.bus.pivotReady)
	})
}

// WaitPivots blocks until the pivot broadcast has been received, then
// returns the pivot bytes. It re-hashes the received buffer with xxhash
// and compares against the hash the broadcaster recorded, surfacing
// ErrPivotMismatch if they differ — the debug assertion spec §7/§9
// describes for invariant I1 (every peer's pivot list is byte-identical).
func (c *Cluster) WaitPivots(ctx context.Context) ([]byte, error) {
	select {
	case <-c.bus.pivotReady:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if xxhash.Sum64(c.bus.pivotData) != c.bus.pivotHash {
		return nil, terrors.ErrPivotMismatch
	}
	return c.bus.pivotData, nil
}

// SendBucket delivers one sub-bucket (batch shuffle, spec §4.4) to
// target's inbox slot for this sender. Single-writer-single-reader per
// (sender, target) slot. A murmur3 checksum travels alongside the
// payload so the receiver can assert the transport didn't corrupt it in
// flight (spec §7, transport errors are fatal). Returns ErrPeerUnknown
// if target is outside [0, Size()), and ErrTransportClosed if the group
// has already torn down.
func (c *Cluster) SendBucket(target int, data []byte) error {
	if c.bus.closed.Load() {
		return terrors.ErrTransportClosed
	}
	if target < 0 || target >= c.size {
		return terrors.ErrPeerUnknown
	}
	sum := murmur3.Sum32(data)
	c.bus.batchMu.Lock()
	c.bus.batch[target][c.id] = data
	c.bus.batchSum[target][c.id] = sum
	c.bus.batchMu.Unlock()
	c.bus.batchWG[target].Done()
	return nil
}

// WaitBuckets blocks until this peer has received a shipment from every
// sender (count == Size(), spec §5), then returns the per-sender
// payloads in sender-id order.
func (c *Cluster) WaitBuckets(ctx context.Context) ([][]byte, error) {
	if err := waitCtx(ctx, &c.bus.batchWG[c.id]); err != nil {
		return nil, err
	}
	c.bus.batchMu.Lock()
	defer c.bus.batchMu.Unlock()
	out := make([][]byte, c.size)
	for sender, data := range c.bus.batch[c.id] {
		if murmur3.Sum32(data) != c.bus.batchSum[c.id][sender] {
			return nil, terrors.ErrChecksumFailed
		}
		out[sender] = data
	}
	return out, nil
}

// FlushChunk appends one chunk to target's streamed inbox (spec §4.4
// streamed shuffle). The inbox is multi-writer, so appends are
// serialized per target. Returns ErrPeerUnknown if target is outside
// [0, Size()), and ErrTransportClosed if the group has already torn
// down.
func (c *Cluster) FlushChunk(target int, data []byte) error {
	if c.bus.closed.Load() {
		return terrors.ErrTransportClosed
	}
	if target < 0 || target >= c.size {
		return terrors.ErrPeerUnknown
	}
	c.bus.streamMu[target].Lock()
	c.bus.stream[target] = append(c.bus.stream[target], data)
	c.bus.streamMu[target].Unlock()
	return nil
}

// SignalFinished broadcasts this peer's finishedSending flag (spec
// §4.4): "I have flushed everything".
func (c *Cluster) SignalFinished() {
	c.bus.finishedWG.Done()
}

// WaitAllFinished blocks until every peer has signaled finishedSending,
// then returns this peer's accumulated stream chunks. The streamed
// inbox is a set, not a sequence (spec §5): callers must not depend on
// chunk order.
func (c *Cluster) WaitAllFinished(ctx context.Context) ([][]byte, error) {
	if err := waitCtx(ctx, &c.bus.finishedWG); err != nil {
		return nil, err
	}
	c.bus.streamMu[c.id].Lock()
	defer c.bus.streamMu[c.id].Unlock()
	return c.bus.stream[c.id], nil
}

// SubmitRunLength broadcasts this peer's sorted-run length, in records
// (spec §4.6 shared-file placement: "each peer announces its sorted-run
// length").
func (c *Cluster) SubmitRunLength(length int64) {
	c.bus.runLenMu.Lock()
	c.bus.runLens[c.id] = length
	c.bus.runLenMu.Unlock()
	c.bus.runLenWG.Done()
}

// CollectRunLengths blocks until every peer has submitted its run
// length, then returns them in peer-id order.
func (c *Cluster) CollectRunLengths(ctx context.Context) ([]int64, error) {
	if err := waitCtx(ctx, &c.bus.runLenWG); err != nil {
		return nil, err
	}
	c.bus.runLenMu.Lock()
	defer c.bus.runLenMu.Unlock()
	return append([]int64(nil), c.bus.runLens...), nil
}
