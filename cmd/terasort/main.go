// Command terasort sorts a TeraSort-format input file (fixed 100-byte
// records: a 10-byte key followed by a 90-byte value) across a
// simulated peer group and writes the globally sorted result back out.
//
// Usage:
//
//	terasort <input-path> <output-path> <sample-size> <nodes-file>
//
// Flags:
//
//	-memoryMap.elementCount   records per mmap window (default: 1,000,000)
//	-concurSendBucketSize     streamed-shuffle flush threshold, in records (default: 100,000)
//	-maxInFlightSends         streamed-shuffle concurrency bound (default: 8)
//	-placement                sharedFile, perPeerFile, or sequential (default: sharedFile)
//	-shuffle                  batch or streamed (default: batch)
//	-hdfsConf                 path-separator-delimited remote-filesystem config files
//
// nodes-file lists one peer address per non-empty line; node discovery
// itself is out of scope here, so only the line count is used, to size
// the simulated peer group.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/faramir/terasort"
	"github.com/faramir/terasort/errors"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "terasort:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("terasort", flag.ContinueOnError)
	memoryMapElementCount := fs.Int64("memoryMap.elementCount", 1_000_000, "records per mmap window")
	concurSendBucketSize := fs.Int("concurSendBucketSize", 100_000, "streamed-shuffle flush threshold, in records")
	maxInFlightSends := fs.Int64("maxInFlightSends", 8, "streamed-shuffle concurrency bound")
	placement := fs.String("placement", "sharedFile", "sharedFile, perPeerFile, or sequential")
	shuffle := fs.String("shuffle", "batch", "batch or streamed")
	hdfsConf := fs.String("hdfsConf", "", "path-separator-delimited remote-filesystem config files")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: terasort [flags] <input-path> <output-path> <sample-size> <nodes-file>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 4 {
		fs.Usage()
		return errors.ErrBadArgs
	}

	inputPath, outputPath, sampleSizeArg, nodesPath := fs.Arg(0), fs.Arg(1), fs.Arg(2), fs.Arg(3)

	sampleSize, err := strconv.Atoi(sampleSizeArg)
	if err != nil {
		return fmt.Errorf("terasort: sample size %q: %w", sampleSizeArg, err)
	}

	peers, err := countNodes(nodesPath)
	if err != nil {
		return err
	}

	placementVariant, err := parsePlacement(*placement)
	if err != nil {
		return err
	}
	shuffleVariant, err := parseShuffle(*shuffle)
	if err != nil {
		return err
	}

	opts := []terasort.Option{
		terasort.WithSampleSize(sampleSize),
		terasort.WithMemoryMapElementCount(*memoryMapElementCount),
		terasort.WithConcurSendBucketSize(*concurSendBucketSize),
		terasort.WithMaxInFlightSends(*maxInFlightSends),
		terasort.WithPlacement(placementVariant),
		terasort.WithShuffle(shuffleVariant),
		terasort.WithOutputPrefix(outputPath),
	}
	if *hdfsConf != "" {
		opts = append(opts, terasort.WithHDFSConf(filepath.SplitList(*hdfsConf)...))
	}

	grp, err := terasort.NewGroup(peers, opts...)
	if err != nil {
		return err
	}
	return grp.Run(context.Background(), inputPath, outputPath)
}

// countNodes returns the number of non-empty, non-comment lines in the
// nodes file, used only to size the simulated peer group: real node
// discovery (resolving those lines to live peer processes) is out of
// scope.
func countNodes(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("terasort: read nodes file %s: %w", path, err)
	}
	count := 0
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		count++
	}
	if count == 0 {
		return 0, errors.ErrEmptyNodes
	}
	return count, nil
}

func parsePlacement(s string) (terasort.PlacementVariant, error) {
	switch s {
	case "sharedFile":
		return terasort.SharedFile, nil
	case "perPeerFile":
		return terasort.PerPeerFile, nil
	case "sequential":
		return terasort.Sequential, nil
	default:
		return 0, fmt.Errorf("terasort: unknown -placement %q", s)
	}
}

func parseShuffle(s string) (terasort.ShuffleVariant, error) {
	switch s {
	case "batch":
		return terasort.Batch, nil
	case "streamed":
		return terasort.Streamed, nil
	default:
		return 0, fmt.Errorf("terasort: unknown -shuffle %q", s)
	}
}
