package testutil

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/jsgraph/internal/jid"
)

// SequentialIDs generates version-4 shaped identifiers whose last 48 bits
// count up from 1:
//
//	00000000-0000-4000-8000-000000000001
//	00000000-0000-4000-8000-000000000002
//
// This enables golden snapshot comparison of serialized graphs.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu sync.Mutex
	n  uint64
}

// NewSequentialIDs creates a generator whose first ID ends in 1.
func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{}
}

// Next returns the next identifier. Implements jid.Generator.
func (g *SequentialIDs) Next() jid.ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return SeqID(g.n)
}

// Reset restarts the sequence at 1.
func (g *SequentialIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}

// SeqID returns the n-th identifier a fresh SequentialIDs produces.
func SeqID(n uint64) jid.ID {
	return jid.FromUUID(uuid.MustParse(fmt.Sprintf("00000000-0000-4000-8000-%012x", n)))
}
