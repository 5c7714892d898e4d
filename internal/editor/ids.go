package editor

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"sitebuilder/internal/domain"
)

// IDGenerator produces node ids. Ids are prefixed with the component type so
// they stay traceable in logs and stored documents.
type IDGenerator interface {
	NewID(componentType string) string
}

// UUIDGenerator generates "<type>-<uuid>" ids.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(componentType string) string {
	return componentType + "-" + uuid.New().String()
}

// SequenceGenerator generates "<type>-<n>" ids from a counter. Two generators
// started at the same value produce the same ids, which makes reductions
// replayable.
type SequenceGenerator struct {
	mu   sync.Mutex
	next int
}

// NewSequenceGenerator returns a generator whose first id ends in start.
func NewSequenceGenerator(start int) *SequenceGenerator {
	return &SequenceGenerator{next: start}
}

func (g *SequenceGenerator) NewID(componentType string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("%s-%d", componentType, g.next)
	g.next++
	return id
}

// NextSequence returns the first counter value that cannot collide with a
// "<type>-<n>" id already present in doc.
func NextSequence(doc domain.Document) int {
	highest := 0
	visit := func(nodes []domain.Node) {
		for _, n := range nodes {
			id := n.ID()
			i := strings.LastIndex(id, "-")
			if i < 0 {
				continue
			}
			if v, err := strconv.Atoi(id[i+1:]); err == nil && v > highest {
				highest = v
			}
		}
	}
	visit(doc.Content)
	for _, nodes := range doc.Zones {
		visit(nodes)
	}
	return highest + 1
}
