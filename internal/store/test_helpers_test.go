package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/jsgraph/internal/graph"
	"github.com/roach88/jsgraph/internal/testutil"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRow creates a row with the n-th sequential id, timestamped n
// seconds after the test epoch.
func createTestRow(n uint64, user string, typ graph.EntityType, name string) graph.Row {
	return graph.Row{
		ID:        testutil.SeqID(n),
		User:      user,
		Name:      name,
		Kind:      graph.DefaultKind,
		Type:      typ,
		Timestamp: testutil.Epoch.Add(time.Duration(n) * time.Second),
		Body:      []byte(`{"id":"` + testutil.SeqID(n).String() + `"}`),
	}
}
