package terasort

// Plan computes the contiguous, non-overlapping input slice [start, end)
// owned by peer id out of a T-peer group sorting total records (spec
// §3 "Partition plan", §4.1 PartitionPlanner).
//
// base = total/T records per peer; the first (total - T*base) peers take
// one extra record. This must be computed identically on every peer,
// since both reading and, in the shared-file placement variant, output
// offsets depend on it.
func Plan(total, peers, id int64) (start, end int64) {
	base := total / peers
	remainder := total - base*peers
	count := base
	if id < remainder {
		count++
	}
	start = id*base + min64(id, remainder)
	end = start + count
	return start, end
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
