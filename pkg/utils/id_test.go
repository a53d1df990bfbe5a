package utils

import (
	"strings"
	"sync"
	"testing"
)

func TestGenerateRunID(t *testing.T) {
	id := GenerateRunID()

	if !strings.HasPrefix(id, "run-") {
		t.Errorf("GenerateRunID should start with 'run-': %s", id)
	}
	// run-YYYYMMDD-HHMMSS-xxxxxxxx
	parts := strings.Split(id, "-")
	if len(parts) != 4 {
		t.Fatalf("expected 4 dash-separated parts, got %d: %s", len(parts), id)
	}
	if len(parts[1]) != 8 || len(parts[2]) != 6 || len(parts[3]) != 8 {
		t.Errorf("unexpected run id layout: %s", id)
	}
}

func TestGenerateRunIDConcurrentUnique(t *testing.T) {
	const n = 200
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		ids = make(map[string]bool, n)
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := GenerateRunID()
			mu.Lock()
			ids[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(ids) != n {
		t.Errorf("expected %d unique ids, got %d", n, len(ids))
	}
}
