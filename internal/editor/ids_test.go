package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sitebuilder/internal/domain"
)

func TestSequenceGenerator(t *testing.T) {
	g := NewSequenceGenerator(7)
	assert.Equal(t, "Card-7", g.NewID("Card"))
	assert.Equal(t, "Text-8", g.NewID("Text"))
}

func TestUUIDGenerator(t *testing.T) {
	var g UUIDGenerator
	a, b := g.NewID("Card"), g.NewID("Card")
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^Card-[0-9a-f-]{36}$`, a)
}

func TestNextSequence(t *testing.T) {
	assert.Equal(t, 1, NextSequence(domain.NewDocument()))

	doc := nestedDocument()
	doc.Zones["Text-9:unrelated"] = []domain.Node{node("Grid", "Grid-41"), node("Text", "custom-id-x")}
	assert.Equal(t, 42, NextSequence(doc))
}
