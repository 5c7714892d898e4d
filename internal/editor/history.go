package editor

import (
	"github.com/tiendc/go-deepcopy"

	"sitebuilder/internal/domain"
)

// DefaultHistoryLimit bounds the number of snapshots kept per session.
const DefaultHistoryLimit = 40

// History is a linear undo/redo log of state snapshots. Recording after an
// undo discards the redo branch. History is not safe for concurrent use; the
// owning Session serializes access.
type History struct {
	entries []domain.State
	index   int
	limit   int
}

// NewHistory creates a history whose first entry is initial.
func NewHistory(limit int, initial domain.State) *History {
	if limit < 2 {
		limit = DefaultHistoryLimit
	}
	return &History{
		entries: []domain.State{snapshot(initial)},
		limit:   limit,
	}
}

// Record appends a snapshot of s after the current position.
func (h *History) Record(s domain.State) {
	h.entries = append(h.entries[:h.index+1], snapshot(s))
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = h.entries[over:]
	}
	h.index = len(h.entries) - 1
	historyRecordsTotal.Inc()
}

// Back moves one snapshot back and returns it.
func (h *History) Back() (domain.State, error) {
	if !h.HasPast() {
		return domain.State{}, ErrNothingToUndo
	}
	h.index--
	return snapshot(h.entries[h.index]), nil
}

// Forward moves one snapshot forward and returns it.
func (h *History) Forward() (domain.State, error) {
	if !h.HasFuture() {
		return domain.State{}, ErrNothingToRedo
	}
	h.index++
	return snapshot(h.entries[h.index]), nil
}

func (h *History) HasPast() bool   { return h.index > 0 }
func (h *History) HasFuture() bool { return h.index < len(h.entries)-1 }
func (h *History) Len() int        { return len(h.entries) }
func (h *History) Index() int      { return h.index }

// Current returns a copy of the snapshot at the current position.
func (h *History) Current() domain.State {
	return snapshot(h.entries[h.index])
}

// snapshot deep-copies s so later edits of nested props cannot leak into
// recorded history.
func snapshot(s domain.State) domain.State {
	var out domain.State
	if err := deepcopy.Copy(&out, &s); err != nil {
		return s
	}
	return out
}
