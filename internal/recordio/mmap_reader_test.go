package recordio

import (
	"os"
	"path/filepath"
	"testing"

	terrors "github.com/faramir/terasort/errors"
)

func writeRecordFile(t *testing.T, n int) (string, []Record) {
	t.Helper()
	records := make([]Record, n)
	for i := range records {
		records[i] = mkRecord(byte(i))
	}
	path := filepath.Join(t.TempDir(), "records.dat")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, r := range records {
		if _, err := f.Write(r[:]); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return path, records
}

func TestMmapReaderSequentialRead(t *testing.T) {
	path, want := writeRecordFile(t, 10)
	r, err := OpenMmapReader(path, 4) // small window forces multiple remaps
	if err != nil {
		t.Fatalf("OpenMmapReader: %v", err)
	}
	defer r.Close()

	if r.Length() != int64(len(want)) {
		t.Fatalf("Length: got %d, want %d", r.Length(), len(want))
	}
	for i := range want {
		got, err := r.ReadRecord()
		if err != nil {
			t.Fatalf("ReadRecord %d: %v", i, err)
		}
		if got != want[i] {
			t.Errorf("record %d: got %v, want %v", i, got, want[i])
		}
	}
}

func TestMmapReaderSeekAcrossWindows(t *testing.T) {
	path, want := writeRecordFile(t, 20)
	r, err := OpenMmapReader(path, 3)
	if err != nil {
		t.Fatalf("OpenMmapReader: %v", err)
	}
	defer r.Close()

	for _, idx := range []int64{15, 0, 19, 7, 7} {
		if err := r.Seek(idx); err != nil {
			t.Fatalf("Seek(%d): %v", idx, err)
		}
		got, err := r.ReadRecord()
		if err != nil {
			t.Fatalf("ReadRecord after Seek(%d): %v", idx, err)
		}
		if got != want[idx] {
			t.Errorf("after Seek(%d): got %v, want %v", idx, got, want[idx])
		}
	}
}

func TestMmapReaderRejectsMisalignedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.dat")
	if err := os.WriteFile(path, make([]byte, RecordSize+1), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := OpenMmapReader(path, 10); err != terrors.ErrRecordCountMisaligned {
		t.Fatalf("expected ErrRecordCountMisaligned, got %v", err)
	}
}

func TestMmapReaderEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.dat")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	r, err := OpenMmapReader(path, 10)
	if err != nil {
		t.Fatalf("OpenMmapReader: %v", err)
	}
	defer r.Close()
	if r.Length() != 0 {
		t.Errorf("expected length 0, got %d", r.Length())
	}
}
