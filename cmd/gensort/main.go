// Command gensort writes a synthetic TeraSort-format input file: a
// sequence of fixed 100-byte records, each a 10-byte random key followed
// by a 90-byte random value.
//
// Usage:
//
//	gensort -count 10000000 -out /tmp/input.dat
//
// Flags:
//
//	-count   number of records to generate (default: 1,000,000)
//	-out     output file path (required)
//	-seed    PRNG seed, for reproducible inputs (default: 1)
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/faramir/terasort"
)

func main() {
	count := flag.Int64("count", 1_000_000, "number of records to generate")
	out := flag.String("out", "", "output file path (required)")
	seed := flag.Uint64("seed", 1, "PRNG seed, for reproducible inputs")
	flag.Parse()

	if *out == "" {
		fmt.Fprintln(os.Stderr, "gensort: -out is required")
		os.Exit(1)
	}

	if err := run(*count, *out, *seed); err != nil {
		fmt.Fprintln(os.Stderr, "gensort:", err)
		os.Exit(1)
	}
}

func run(count int64, path string, seed uint64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gensort: create %s: %w", path, err)
	}
	w := bufio.NewWriterSize(f, 1<<20)

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	var rec terasort.Record
	var buf [8]byte
	for i := int64(0); i < count; i++ {
		for j := 0; j < terasort.RecordSize; j += 8 {
			end := j + 8
			if end > terasort.RecordSize {
				end = terasort.RecordSize
			}
			binary.LittleEndian.PutUint64(buf[:], rng.Uint64())
			copy(rec[j:end], buf[:end-j])
		}
		if _, err := w.Write(rec[:]); err != nil {
			_ = f.Close()
			return fmt.Errorf("gensort: write record %d: %w", i, err)
		}
	}

	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("gensort: flush: %w", err)
	}
	return f.Close()
}
