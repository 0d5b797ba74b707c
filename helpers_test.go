package terasort

// memReader is a RecordReader over an in-memory slice, used by unit
// tests that exercise sampler.go and classifier.go without touching the
// filesystem. internal/recordio's MmapReader is exercised separately,
// by its own package's tests.
type memReader struct {
	records []Record
	cursor  int64
}

func newMemReader(records []Record) *memReader {
	return &memReader{records: records}
}

func (m *memReader) Length() int64 { return int64(len(m.records)) }

func (m *memReader) Seek(recordIndex int64) error {
	m.cursor = recordIndex
	return nil
}

func (m *memReader) ReadRecord() (Record, error) {
	r := m.records[m.cursor]
	m.cursor++
	return r, nil
}

func (m *memReader) Close() error { return nil }
