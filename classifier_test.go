package terasort

import "testing"

// TestLowerBoundRoutesBoundaryEqualityToHigherBucket covers spec §8
// scenario S6: a record exactly equal to a pivot must route to the
// higher-indexed bucket, not the lower one.
func TestLowerBoundRoutesBoundaryEqualityToHigherBucket(t *testing.T) {
	pivots := []Record{mkRecord(3, 0), mkRecord(6, 0), mkRecord(9, 0)}

	cases := []struct {
		record Record
		want   int
	}{
		{mkRecord(1, 0), 0},
		{mkRecord(3, 0), 1}, // equal to pivots[0]: higher bucket
		{mkRecord(4, 0), 1},
		{mkRecord(6, 0), 2}, // equal to pivots[1]: higher bucket
		{mkRecord(9, 0), 3}, // equal to pivots[2]: higher bucket
		{mkRecord(200, 0), 3},
	}
	for _, c := range cases {
		if got := LowerBound(pivots, c.record); got != c.want {
			t.Errorf("LowerBound(%v): got bucket %d, want %d", c.record, got, c.want)
		}
	}
}

func TestLowerBoundNoPivotsIsSingleBucket(t *testing.T) {
	if got := LowerBound(nil, mkRecord(5, 0)); got != 0 {
		t.Errorf("expected bucket 0 with no pivots, got %d", got)
	}
}

func TestClassifyGroupsBySubBucket(t *testing.T) {
	records := []Record{
		mkRecord(1, 0), mkRecord(5, 0), mkRecord(5, 0), mkRecord(8, 0), mkRecord(2, 0),
	}
	reader := newMemReader(records)
	pivots := []Record{mkRecord(5, 0)}

	buckets, err := Classify(reader, 0, int64(len(records)), pivots)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("expected 2 sub-buckets for 1 pivot, got %d", len(buckets))
	}
	if len(buckets[0]) != 2 {
		t.Errorf("expected 2 records strictly below pivot, got %d: %v", len(buckets[0]), buckets[0])
	}
	if len(buckets[1]) != 3 {
		t.Errorf("expected 3 records >= pivot (boundary goes high), got %d: %v", len(buckets[1]), buckets[1])
	}

	var total int
	for _, b := range buckets {
		total += len(b)
	}
	if total != len(records) {
		t.Errorf("classify dropped or duplicated records: got %d total, want %d", total, len(records))
	}
}
