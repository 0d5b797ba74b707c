package terasort

import (
	"context"

	"github.com/faramir/terasort/errors"
	"github.com/faramir/terasort/internal/cluster"
	"github.com/faramir/terasort/internal/recordio"
)

// PlaceSharedFile writes sortedRun into a single pre-sized output file,
// at the disjoint byte offset spec §4.6 assigns this peer (spec §4.6,
// shared-file placement). Every peer calls this; peer 0 additionally
// pre-sizes the file before anyone opens it.
//
// The per-peer offsets are derived from a broadcast of every peer's run
// length, not from the partition plan's input offsets: a pivot-routed
// shuffle redistributes records unevenly, so peer id's sorted output run
// is very rarely the same size as its input slice.
func PlaceSharedFile(ctx context.Context, cl *cluster.Cluster, path string, totalRecords int64, sortedRun []Record) error {
	cl.SubmitRunLength(int64(len(sortedRun)))
	lens, err := cl.CollectRunLengths(ctx)
	if err != nil {
		return err
	}

	var sum int64
	var start int64
	for i, l := range lens {
		if int64(i) == int64(cl.ID()) {
			start = sum
		}
		sum += l
	}
	if sum != totalRecords {
		return errors.ErrRunLengthSum
	}
	end := start + lens[cl.ID()]

	if cl.ID() == 0 {
		if err := recordio.CreateSharedOutputFile(path, totalRecords); err != nil {
			return err
		}
	}
	if err := cl.Barrier(ctx); err != nil {
		return err
	}

	w, err := recordio.OpenSharedFileWriter(path, start, end)
	if err != nil {
		return err
	}
	for _, r := range sortedRun {
		if err := w.WriteRecord(r); err != nil {
			_ = w.Close()
			return err
		}
	}
	return w.Close()
}

// PlacePerPeerFile writes sortedRun to this peer's own
// "<prefix>-part-NNNNN" file (spec §4.6, per-peer-file placement). Peer
// 0 removes any stale part files from a prior run before anyone writes.
func PlacePerPeerFile(ctx context.Context, cl *cluster.Cluster, prefix string, sortedRun []Record) error {
	if cl.ID() == 0 {
		if err := recordio.CleanStalePartFiles(prefix); err != nil {
			return err
		}
	}
	if err := cl.Barrier(ctx); err != nil {
		return err
	}

	w, err := recordio.CreatePerPeerFileWriter(prefix, cl.ID())
	if err != nil {
		return err
	}
	for _, r := range sortedRun {
		if err := w.WriteRecord(r); err != nil {
			_ = w.Close()
			return err
		}
	}
	return w.Close()
}

// PlaceSequential writes sortedRun into shared once it is this peer's
// turn, then hands the turn to peer id+1 (spec §4.6, sequential
// placement). Peer id's entire run lands contiguously before peer
// id+1's: global sortedness depends on peer-id order, not just on
// exclusive access to the file.
func PlaceSequential(ctx context.Context, cl *cluster.Cluster, shared *recordio.SequentialFile, sortedRun []Record) error {
	if err := shared.TakeTurn(ctx, cl.ID()); err != nil {
		return err
	}
	w := shared.NewWriter(cl.ID())
	for _, r := range sortedRun {
		if err := w.WriteRecord(r); err != nil {
			_ = w.Close()
			return err
		}
	}
	return w.Close()
}
