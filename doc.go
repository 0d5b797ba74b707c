// Package terasort implements a distributed sample-sort engine for fixed
// 100-byte records (a 10-byte key followed by a 90-byte value), the
// TeraSort benchmark shape: read a raw record file, sort it globally by
// unsigned lexicographic key (ties broken by value), and write the result
// back out in place.
//
// # Basic usage
//
// Running a sort across a simulated peer group:
//
//	grp, err := terasort.NewGroup(peerCount,
//	    terasort.WithSampleSize(1000),
//	    terasort.WithPlacement(terasort.SharedFile),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := grp.Run(ctx, inputPath, outputPath); err != nil {
//	    log.Fatal(err)
//	}
//
// # Package structure
//
//   - Public API: group.go (NewGroup, Run), peer.go (per-peer phase pipeline)
//   - Configuration: options.go (Option, With* functions)
//   - Data model: record.go (Record, Compare)
//   - Partition math: planner.go (Plan)
//   - Sampling: sampler.go (SelectSamples, ReducePivots)
//   - Routing: classifier.go (LowerBound, Classify)
//   - Shuffle: shuffle.go (batch and streamed transports)
//   - Local sort: sortpipeline.go (Sort)
//   - Placement: placer.go (SharedFile, PerPeerFile, Sequential)
//   - Runtime: internal/cluster (Cluster trait, in-process LocalCluster)
//   - I/O adapters: internal/recordio (mmap reader/writer, remote dir)
//   - Oracle: internal/oracle (single-process reference sort, for tests)
package terasort
