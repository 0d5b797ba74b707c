package terasort

import "github.com/faramir/terasort/internal/recordio"

// Record, its layout constants, and its comparison functions are defined
// in internal/recordio and re-exported here by alias. That keeps the
// type identical on both sides of the RecordReader/RecordWriter
// boundary: recordio's concrete readers and writers satisfy those
// interfaces without importing this package back.
const (
	KeySize    = recordio.KeySize
	ValueSize  = recordio.ValueSize
	RecordSize = recordio.RecordSize
)

// Record is one fixed 100-byte unit: a 10-byte key followed by a 90-byte
// value. Records compare as unsigned byte sequences on the key, then on
// the value when keys tie.
type Record = recordio.Record

// Compare orders two records: unsigned byte-lexicographic on the key,
// then on the value. Returns <0, 0, or >0 the way bytes.Compare does.
var Compare = recordio.Compare

// Less reports whether a sorts strictly before b.
var Less = recordio.Less

// FromBytes copies a 100-byte slice into a Record.
var FromBytes = recordio.FromBytes

// EncodeRecords flattens records into one contiguous byte buffer, the
// wire form every shuffle transport (spec §4.4) and the sample
// reduction (spec §4.2) ship across a Cluster.
func EncodeRecords(records []Record) []byte {
	buf := make([]byte, len(records)*RecordSize)
	for i, r := range records {
		copy(buf[i*RecordSize:], r[:])
	}
	return buf
}

// DecodeRecords is EncodeRecords' inverse.
func DecodeRecords(buf []byte) []Record {
	n := len(buf) / RecordSize
	out := make([]Record, n)
	for i := range out {
		out[i] = FromBytes(buf[i*RecordSize:])
	}
	return out
}
