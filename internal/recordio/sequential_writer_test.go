package recordio

import (
	"context"
	"os"
	"sync"
	"testing"
)

func TestSequentialFileEnforcesPeerIDOrder(t *testing.T) {
	const peers = 4
	path := t.TempDir() + "/sequential.dat"
	sf, err := CreateSequentialFile(path, peers)
	if err != nil {
		t.Fatalf("CreateSequentialFile: %v", err)
	}

	var order []int
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(peers)

	// Launch in reverse order: if TakeTurn didn't enforce id order, the
	// writes would land out of peer-id sequence.
	for id := peers - 1; id >= 0; id-- {
		id := id
		go func() {
			defer wg.Done()
			if err := sf.TakeTurn(context.Background(), id); err != nil {
				t.Errorf("peer %d: TakeTurn: %v", id, err)
				return
			}
			mu.Lock()
			order = append(order, id)
			mu.Unlock()

			w := sf.NewWriter(id)
			if err := w.WriteRecord(mkRecord(byte(id))); err != nil {
				t.Errorf("peer %d: WriteRecord: %v", id, err)
			}
			if err := w.Close(); err != nil {
				t.Errorf("peer %d: Close: %v", id, err)
			}
		}()
	}
	wg.Wait()

	for i, id := range order {
		if id != i {
			t.Fatalf("turn order = %v, want 0..%d in order", order, peers-1)
		}
	}

	if err := sf.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) != peers*RecordSize {
		t.Fatalf("got %d bytes, want %d", len(data), peers*RecordSize)
	}
	for i := 0; i < peers; i++ {
		if FromBytes(data[i*RecordSize:]) != mkRecord(byte(i)) {
			t.Errorf("record %d: expected peer %d's record in position %d", i, i, i)
		}
	}
}
