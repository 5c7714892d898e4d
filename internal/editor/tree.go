package editor

import (
	"fmt"

	"sitebuilder/internal/domain"
)

// Insert returns a copy of seq with item at index. index may equal len(seq).
func Insert[T any](seq []T, index int, item T) ([]T, error) {
	if index < 0 || index > len(seq) {
		return nil, fmt.Errorf("insert at %d into %d items: %w", index, len(seq), ErrIndexOutOfRange)
	}
	out := make([]T, 0, len(seq)+1)
	out = append(out, seq[:index]...)
	out = append(out, item)
	out = append(out, seq[index:]...)
	return out, nil
}

// Remove returns a copy of seq without the element at index.
func Remove[T any](seq []T, index int) ([]T, error) {
	if index < 0 || index >= len(seq) {
		return nil, fmt.Errorf("remove at %d from %d items: %w", index, len(seq), ErrIndexOutOfRange)
	}
	out := make([]T, 0, len(seq)-1)
	out = append(out, seq[:index]...)
	out = append(out, seq[index+1:]...)
	return out, nil
}

// Reorder moves the element at from so that it ends up at to. to is an index
// into the sequence after the element has been taken out.
func Reorder[T any](seq []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(seq) {
		return nil, fmt.Errorf("reorder from %d in %d items: %w", from, len(seq), ErrIndexOutOfRange)
	}
	if to < 0 || to >= len(seq) {
		return nil, fmt.Errorf("reorder to %d in %d items: %w", to, len(seq), ErrIndexOutOfRange)
	}
	item := seq[from]
	rest, _ := Remove(seq, from)
	return Insert(rest, to, item)
}

// Replace returns a copy of seq with the element at index set to item.
func Replace[T any](seq []T, index int, item T) ([]T, error) {
	if index < 0 || index >= len(seq) {
		return nil, fmt.Errorf("replace at %d in %d items: %w", index, len(seq), ErrIndexOutOfRange)
	}
	out := make([]T, len(seq))
	copy(out, seq)
	out[index] = item
	return out, nil
}

// GetItem resolves the node at sel. RootZone addresses Document.Content.
func GetItem(sel domain.ItemSelector, doc domain.Document) (domain.Node, bool) {
	nodes, ok := doc.Zone(sel.Zone)
	if !ok || sel.Index < 0 || sel.Index >= len(nodes) {
		return domain.Node{}, false
	}
	return nodes[sel.Index], true
}
