package terasort

import "slices"

// SampleCount returns the number of samples peer id must contribute out
// of a total sampleSize spread across a peers-sized group: ceil((S-id)/T)
// (spec §4.2 SampleSelector). For id >= sampleSize this is zero or
// negative under plain division, so it is clamped to zero.
func SampleCount(sampleSize, peers, id int) int {
	n := (sampleSize - id + peers - 1) / peers
	if n < 0 {
		return 0
	}
	return n
}

// SelectSamples draws the leading n records of a peer's local slice
// [start, end) from reader. Drawing from the head (rather than at
// random positions) needs no RNG agreement between peers and is cheap;
// spec §4.2 accepts the resulting sampling bias since pivots only need
// to be approximate load balancers.
func SelectSamples(reader RecordReader, start, end int64, n int) ([]Record, error) {
	if n > int(end-start) {
		n = int(end - start)
	}
	samples := make([]Record, 0, n)
	if n == 0 {
		return samples, nil
	}
	if err := reader.Seek(start); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		r, err := reader.ReadRecord()
		if err != nil {
			return nil, err
		}
		samples = append(samples, r)
	}
	return samples, nil
}

// ReducePivots performs peer 0's side of the sampling reduction (spec
// §4.2): deduplicate the concatenation of every peer's samples, sort
// ascending, then select pivots at indices i*stride for
// i=1..min(peers,P)-1, where P is the deduplicated sample count and
// stride = max(P/peers, 1).
//
// This stride formula (rather than a peers-adjusted variant) is the one
// documented behavior in spec §9's Open Question, confirmed against the
// original TeraSort source's seekValue/IntStream.range pivot-selection
// code.
//
// If the deduplicated sample count is 0 or 1, the pivot list is empty:
// every peer becomes a single-bucket sink and every record routes to
// peer 0 (spec §4.2 "Failure").
func ReducePivots(allSamples []Record, peers int) []Record {
	sorted := slices.Clone(allSamples)
	slices.SortFunc(sorted, func(a, b Record) int { return Compare(&a, &b) })
	sorted = slices.CompactFunc(sorted, func(a, b Record) bool { return Compare(&a, &b) == 0 })

	p := len(sorted)
	if p < 2 {
		return nil
	}

	stride := p / peers
	if stride < 1 {
		stride = 1
	}

	count := min(peers, p)
	pivots := make([]Record, 0, count-1)
	for i := 1; i < count; i++ {
		pivots = append(pivots, sorted[i*stride])
	}
	return pivots
}
