package testutil

import (
	"strconv"
	"sync"
)

// FixedIDGenerator returns predetermined import IDs in order, then repeats
// the last one. Satisfies store.IDGenerator.
type FixedIDGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedIDGenerator creates a generator over ids. With no ids it returns
// "import-1", "import-2", ...
func NewFixedIDGenerator(ids ...string) *FixedIDGenerator {
	return &FixedIDGenerator{ids: ids}
}

// Generate returns the next ID.
func (g *FixedIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.idx++
	if len(g.ids) == 0 {
		return "import-" + strconv.Itoa(g.idx)
	}
	if g.idx > len(g.ids) {
		return g.ids[len(g.ids)-1]
	}
	return g.ids[g.idx-1]
}
