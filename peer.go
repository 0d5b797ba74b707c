package terasort

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/faramir/terasort/internal/cluster"
	"github.com/faramir/terasort/internal/recordio"
)

// runPeer drives one peer through every phase of the sort: partition
// planning, sampling, pivot reduction and broadcast, classification,
// shuffle, local sort, and placement (spec §4). It is the single
// sequential pipeline every peer runs, whether as an in-process
// goroutine sharing a LocalCluster bus or, eventually, as a process on a
// real network transport behind the same Cluster methods.
//
// Progress is logged one line per phase, in the style
// "TL:<id>\t<phase>\t<seconds>", so a run across many peers can be
// grepped and compared phase-by-phase.
func runPeer(ctx context.Context, cl *cluster.Cluster, cfg *config, reader RecordReader, outputPath string, shared *recordio.SequentialFile, log io.Writer) error {
	id := cl.ID()
	total := reader.Length()
	start, end := Plan(total, int64(cl.Size()), int64(id))

	phase := func(name string, fn func() error) error {
		t0 := time.Now()
		err := fn()
		fmt.Fprintf(log, "TL:%d\t%s\t%.3f\n", id, name, time.Since(t0).Seconds())
		return err
	}

	var pivots []Record
	if err := phase("sample", func() error {
		n := SampleCount(cfg.sampleSize, cl.Size(), id)
		samples, err := SelectSamples(reader, start, end, n)
		if err != nil {
			return err
		}
		cl.SubmitSamples(EncodeRecords(samples))

		if id == 0 {
			allSampleBytes, err := cl.CollectSamples(ctx)
			if err != nil {
				return err
			}
			cl.BroadcastPivots(EncodeRecords(ReducePivots(DecodeRecords(allSampleBytes), cl.Size())))
		}
		pivotBytes, err := cl.WaitPivots(ctx)
		if err != nil {
			return err
		}
		pivots = DecodeRecords(pivotBytes)
		return nil
	}); err != nil {
		return err
	}

	var subBuckets [][]Record
	var streamer *StreamedShuffler
	if cfg.shuffle == Streamed {
		streamer = NewStreamedShuffler(ctx, cl, cfg.concurSendBucketSize, cfg.maxInFlightSends)
	}

	if err := phase("classify", func() error {
		if cfg.shuffle == Streamed {
			return streamer.Classify(reader, start, end, pivots)
		}
		buckets, err := Classify(reader, start, end, pivots)
		if err != nil {
			return err
		}
		// Classify returns len(pivots)+1 buckets; pad up to one per
		// peer so ShuffleBatch can index subBuckets[target] for every
		// target in [0, cl.Size()), even when the pivot list is
		// shorter than peers-1 (spec §4.2 "Failure": too few distinct
		// samples collapses every record onto peer 0's bucket).
		subBuckets = make([][]Record, cl.Size())
		copy(subBuckets, buckets)
		return nil
	}); err != nil {
		return err
	}

	var inbox [][]Record
	if err := phase("shuffle", func() error {
		var err error
		if cfg.shuffle == Streamed {
			inbox, err = streamer.Finish()
		} else {
			inbox, err = ShuffleBatch(ctx, cl, subBuckets)
		}
		return err
	}); err != nil {
		return err
	}

	var sortedRun []Record
	if err := phase("sort", func() error {
		sortedRun = Sort(inbox)
		return nil
	}); err != nil {
		return err
	}

	return phase("place", func() error {
		switch cfg.placement {
		case SharedFile:
			return PlaceSharedFile(ctx, cl, outputPath, total, sortedRun)
		case PerPeerFile:
			return PlacePerPeerFile(ctx, cl, cfg.outputPrefix, sortedRun)
		case Sequential:
			return PlaceSequential(ctx, cl, shared, sortedRun)
		default:
			return fmt.Errorf("terasort: unknown placement variant %v", cfg.placement)
		}
	})
}
