package cluster

import (
	"context"
	"sync"
	"testing"
	"time"

	terrors "github.com/faramir/terasort/errors"
)

func TestCollectSamplesConcatenatesInPeerOrder(t *testing.T) {
	const peers = 3
	clusters := Group(peers)

	payloads := [][]byte{{1, 2}, {3}, {4, 5, 6}}
	var wg sync.WaitGroup
	wg.Add(peers)
	for i := 0; i < peers; i++ {
		i := i
		go func() {
			defer wg.Done()
			clusters[i].SubmitSamples(payloads[i])
		}()
	}
	wg.Wait()

	got, err := clusters[0].CollectSamples(context.Background())
	if err != nil {
		t.Fatalf("CollectSamples: %v", err)
	}
	want := []byte{1, 2, 3, 4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestBroadcastPivotsDeliversToEveryPeer(t *testing.T) {
	const peers = 4
	clusters := Group(peers)
	pivotData := []byte{9, 9, 9}

	clusters[0].BroadcastPivots(pivotData)

	var wg sync.WaitGroup
	wg.Add(peers)
	errs := make([]error, peers)
	for i := 0; i < peers; i++ {
		i := i
		go func() {
			defer wg.Done()
			got, err := clusters[i].WaitPivots(context.Background())
			if err != nil {
				errs[i] = err
				return
			}
			if len(got) != len(pivotData) {
				t.Errorf("peer %d: got %v, want %v", i, got, pivotData)
			}
		}()
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Errorf("peer %d: WaitPivots: %v", i, err)
		}
	}
}

func TestWaitPivotsDetectsCorruption(t *testing.T) {
	clusters := Group(2)
	clusters[0].BroadcastPivots([]byte{1, 2, 3})

	// Simulate transport corruption (spec's debug assertion for
	// invariant I1): the broadcast payload changes after the hash was
	// recorded.
	clusters[0].bus.pivotData[0] = 0xFF

	if _, err := clusters[1].WaitPivots(context.Background()); err != terrors.ErrPivotMismatch {
		t.Fatalf("expected ErrPivotMismatch, got %v", err)
	}
}

func TestSendBucketAndWaitBucketsRoundTrip(t *testing.T) {
	const peers = 2
	clusters := Group(peers)

	clusters[0].SendBucket(1, []byte{1, 2, 3})
	clusters[1].SendBucket(1, []byte{4, 5})

	got, err := clusters[1].WaitBuckets(context.Background())
	if err != nil {
		t.Fatalf("WaitBuckets: %v", err)
	}
	if len(got) != peers {
		t.Fatalf("expected %d sender slots, got %d", peers, len(got))
	}
	if string(got[0]) != string([]byte{1, 2, 3}) {
		t.Errorf("sender 0 payload: got %v", got[0])
	}
	if string(got[1]) != string([]byte{4, 5}) {
		t.Errorf("sender 1 payload: got %v", got[1])
	}
}

func TestWaitBucketsDetectsChecksumMismatch(t *testing.T) {
	clusters := Group(2)
	clusters[0].SendBucket(1, []byte{1, 2, 3})
	clusters[1].SendBucket(1, []byte{9})

	// Corrupt the payload in the bus after the checksum was recorded.
	clusters[1].bus.batch[1][0][0] = 0xFF

	if _, err := clusters[1].WaitBuckets(context.Background()); err != terrors.ErrChecksumFailed {
		t.Fatalf("expected ErrChecksumFailed, got %v", err)
	}
}

func TestFlushChunkAndWaitAllFinished(t *testing.T) {
	const peers = 3
	clusters := Group(peers)

	clusters[0].FlushChunk(2, []byte{1})
	clusters[1].FlushChunk(2, []byte{2})
	for i := 0; i < peers; i++ {
		clusters[i].SignalFinished()
	}

	chunks, err := clusters[2].WaitAllFinished(context.Background())
	if err != nil {
		t.Fatalf("WaitAllFinished: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks delivered to peer 2, got %d", len(chunks))
	}
}

func TestCollectRunLengthsReturnsPeerOrder(t *testing.T) {
	const peers = 3
	clusters := Group(peers)

	var wg sync.WaitGroup
	wg.Add(peers)
	lens := []int64{10, 0, 7}
	for i := 0; i < peers; i++ {
		i := i
		go func() {
			defer wg.Done()
			clusters[i].SubmitRunLength(lens[i])
		}()
	}
	wg.Wait()

	got, err := clusters[0].CollectRunLengths(context.Background())
	if err != nil {
		t.Fatalf("CollectRunLengths: %v", err)
	}
	for i := range lens {
		if got[i] != lens[i] {
			t.Errorf("peer %d run length: got %d, want %d", i, got[i], lens[i])
		}
	}
}

func TestSendBucketRejectsUnknownTarget(t *testing.T) {
	clusters := Group(2)
	if err := clusters[0].SendBucket(5, []byte{1}); err != terrors.ErrPeerUnknown {
		t.Fatalf("expected ErrPeerUnknown, got %v", err)
	}
	if err := clusters[0].SendBucket(-1, []byte{1}); err != terrors.ErrPeerUnknown {
		t.Fatalf("expected ErrPeerUnknown, got %v", err)
	}
}

func TestFlushChunkRejectsUnknownTarget(t *testing.T) {
	clusters := Group(2)
	if err := clusters[0].FlushChunk(5, []byte{1}); err != terrors.ErrPeerUnknown {
		t.Fatalf("expected ErrPeerUnknown, got %v", err)
	}
}

func TestCloseRejectsFurtherSends(t *testing.T) {
	clusters := Group(2)
	if err := clusters[0].Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := clusters[1].SendBucket(0, []byte{1}); err != terrors.ErrTransportClosed {
		t.Fatalf("expected ErrTransportClosed, got %v", err)
	}
	if err := clusters[1].FlushChunk(0, []byte{1}); err != terrors.ErrTransportClosed {
		t.Fatalf("expected ErrTransportClosed, got %v", err)
	}
	// Close is idempotent regardless of which peer calls it.
	if err := clusters[1].Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestCollectSamplesRespectsContextCancellation(t *testing.T) {
	clusters := Group(2)
	// Only one of two peers submits; CollectSamples must block until
	// the context is canceled rather than hang forever.
	clusters[0].SubmitSamples([]byte{1})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := clusters[0].CollectSamples(ctx); err != context.DeadlineExceeded {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
}
