package terasort

// RecordReader is the collaborator interface the sort pipeline depends on
// for input access (spec §4.7 RecordIO, reader side): learn how many
// records exist, seek to a record index, and read records out in order.
// Concrete implementations (windowed mmap, remote-directory) live in
// internal/recordio; the core never depends on a concrete type, only on
// this trait (spec §9 "Dynamic dispatch").
type RecordReader interface {
	// Length returns the total number of records in the stream.
	Length() int64
	// Seek repositions the next ReadRecord to recordIndex.
	Seek(recordIndex int64) error
	// ReadRecord reads one record and advances the cursor.
	ReadRecord() (Record, error)
	// Close releases any underlying resources (mmap regions, file
	// handles).
	Close() error
}

// RecordWriter durably persists a sorted run (spec §4.7 RecordIO, writer
// side). Implementations differ in how the destination is opened — a
// pre-sized shared file at a byte offset, or a streaming per-peer file —
// but all guarantee durability on Close.
type RecordWriter interface {
	// WriteRecord appends (or, for offset writers, writes at the next
	// position in the pre-assigned window) one record.
	WriteRecord(r Record) error
	// Close flushes and releases the writer. Must be called exactly
	// once.
	Close() error
}
