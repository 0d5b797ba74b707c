package recordio

import (
	"os"
	"testing"
)

func TestPerPeerFileWriterRoundTrip(t *testing.T) {
	prefix := t.TempDir() + "/out"
	w, err := CreatePerPeerFileWriter(prefix, 3)
	if err != nil {
		t.Fatalf("CreatePerPeerFileWriter: %v", err)
	}
	want := []Record{mkRecord(1), mkRecord(2), mkRecord(3)}
	for _, r := range want {
		if err := w.WriteRecord(r); err != nil {
			t.Fatalf("WriteRecord: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(PartFileName(prefix, 3))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) != len(want)*RecordSize {
		t.Fatalf("got %d bytes, want %d", len(data), len(want)*RecordSize)
	}
	for i, r := range want {
		if FromBytes(data[i*RecordSize:]) != r {
			t.Errorf("record %d mismatch", i)
		}
	}
}

func TestCleanStalePartFilesRemovesOnlyMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	prefix := dir + "/out"

	for _, id := range []int{0, 1, 2} {
		w, err := CreatePerPeerFileWriter(prefix, id)
		if err != nil {
			t.Fatalf("CreatePerPeerFileWriter(%d): %v", id, err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close(%d): %v", id, err)
		}
	}
	unrelated := dir + "/unrelated.txt"
	if err := os.WriteFile(unrelated, []byte("keep me"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := CleanStalePartFiles(prefix); err != nil {
		t.Fatalf("CleanStalePartFiles: %v", err)
	}

	for _, id := range []int{0, 1, 2} {
		if _, err := os.Stat(PartFileName(prefix, id)); !os.IsNotExist(err) {
			t.Errorf("expected part file %d to be removed, stat err=%v", id, err)
		}
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Errorf("expected unrelated file to survive cleanup: %v", err)
	}
}
