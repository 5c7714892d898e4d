package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sitebuilder/internal/domain"
)

// DefaultMaxHistoryNodes is the per-page node budget when none is given.
const DefaultMaxHistoryNodes = 200

// ErrHistoryEnd is returned when stepping past the first or last node.
var ErrHistoryEnd = errors.New("history: no further node")

// HistoryNode is one persisted snapshot.
type HistoryNode struct {
	ID           string    `json:"id"`
	PageID       string    `json:"pageId"`
	ParentID     *string   `json:"parentId"`
	Label        string    `json:"label"`
	SnapshotJSON string    `json:"snapshotJson"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Document decodes the node's snapshot.
func (n HistoryNode) Document() (domain.Document, error) {
	return domain.UnmarshalDocument([]byte(n.SnapshotJSON))
}

// HistoryTree is every node of a page plus the current position.
type HistoryTree struct {
	Nodes     []HistoryNode `json:"nodes"`
	CurrentID string        `json:"currentId"`
	RootID    string        `json:"rootId"`
}

// HistoryStore persists the history tree of each page. Recording after a
// step back starts a new branch; older branches stay until pruned.
type HistoryStore struct {
	db       *DB
	maxNodes int
}

func NewHistoryStore(db *DB, maxNodes int) *HistoryStore {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxHistoryNodes
	}
	return &HistoryStore{db: db, maxNodes: maxNodes}
}

type queryer interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
	Exec(query string, args ...any) (sql.Result, error)
}

// LoadTree returns the full tree for a page, or nil when nothing was recorded.
func (s *HistoryStore) LoadTree(pageID string) (*HistoryTree, error) {
	rows, err := s.db.Conn().Query(
		`SELECT id, page_id, parent_id, label, snapshot_json, created_at
		 FROM history_nodes WHERE page_id = ? ORDER BY rowid ASC`, pageID,
	)
	if err != nil {
		return nil, fmt.Errorf("load history nodes: %w", err)
	}
	defer rows.Close()

	var nodes []HistoryNode
	var rootID string
	for rows.Next() {
		var n HistoryNode
		if err := rows.Scan(&n.ID, &n.PageID, &n.ParentID, &n.Label, &n.SnapshotJSON, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history node: %w", err)
		}
		if n.ParentID == nil && rootID == "" {
			rootID = n.ID
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	currentID, err := currentNode(s.db.Conn(), pageID)
	if err != nil || currentID == "" {
		currentID = rootID
	}

	return &HistoryTree{Nodes: nodes, CurrentID: currentID, RootID: rootID}, nil
}

// PushNode records doc as a child of the current node and makes it current.
func (s *HistoryStore) PushNode(pageID, label string, doc domain.Document) (*HistoryNode, error) {
	data, err := domain.MarshalDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := s.db.Conn().Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	parentID, err := currentNode(tx, pageID)
	if err != nil {
		return nil, err
	}
	var pID *string
	if parentID != "" {
		pID = &parentID
	}

	node := &HistoryNode{
		ID:           uuid.New().String(),
		PageID:       pageID,
		ParentID:     pID,
		Label:        label,
		SnapshotJSON: string(data),
		CreatedAt:    time.Now(),
	}
	_, err = tx.Exec(
		`INSERT INTO history_nodes (id, page_id, parent_id, label, snapshot_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		node.ID, pageID, pID, label, node.SnapshotJSON, node.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert history node: %w", err)
	}
	if err := setCurrent(tx, pageID, node.ID); err != nil {
		return nil, err
	}
	if err := s.prune(tx, pageID); err != nil {
		return nil, fmt.Errorf("prune history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit history node: %w", err)
	}
	return node, nil
}

// GoTo moves the current position pointer.
func (s *HistoryStore) GoTo(pageID, nodeID string) error {
	return setCurrent(s.db.Conn(), pageID, nodeID)
}

// StepBack moves to the parent of the current node.
func (s *HistoryStore) StepBack(pageID string) (string, error) {
	return s.step(pageID, `SELECT COALESCE(parent_id, '') FROM history_nodes WHERE id = ?`)
}

// StepForward moves to the most recently recorded child of the current node.
func (s *HistoryStore) StepForward(pageID string) (string, error) {
	return s.step(pageID, `SELECT id FROM history_nodes WHERE parent_id = ? ORDER BY rowid DESC LIMIT 1`)
}

func (s *HistoryStore) step(pageID, query string) (string, error) {
	current, err := currentNode(s.db.Conn(), pageID)
	if err != nil {
		return "", err
	}
	if current == "" {
		return "", ErrHistoryEnd
	}
	var next string
	err = s.db.Conn().QueryRow(query, current).Scan(&next)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && next == "") {
		return "", ErrHistoryEnd
	}
	if err != nil {
		return "", fmt.Errorf("step history: %w", err)
	}
	if err := s.GoTo(pageID, next); err != nil {
		return "", err
	}
	return next, nil
}

// Chain returns up to limit snapshots ending at the current node, oldest
// first.
func (s *HistoryStore) Chain(pageID string, limit int) ([]domain.Document, error) {
	id, err := currentNode(s.db.Conn(), pageID)
	if err != nil {
		return nil, err
	}

	var docs []domain.Document
	for id != "" && (limit <= 0 || len(docs) < limit) {
		var parent sql.NullString
		var raw string
		err := s.db.Conn().QueryRow(
			`SELECT parent_id, snapshot_json FROM history_nodes WHERE id = ?`, id,
		).Scan(&parent, &raw)
		if errors.Is(err, sql.ErrNoRows) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("load history chain: %w", err)
		}
		doc, err := domain.UnmarshalDocument([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", id, err)
		}
		docs = append(docs, doc)
		id = parent.String
	}

	for i, j := 0, len(docs)-1; i < j; i, j = i+1, j-1 {
		docs[i], docs[j] = docs[j], docs[i]
	}
	return docs, nil
}

// ClearPage removes all history for a page.
func (s *HistoryStore) ClearPage(pageID string) error {
	if _, err := s.db.Conn().Exec(`DELETE FROM history_state WHERE page_id = ?`, pageID); err != nil {
		return err
	}
	_, err := s.db.Conn().Exec(`DELETE FROM history_nodes WHERE page_id = ?`, pageID)
	return err
}

// prune removes the oldest nodes beyond maxNodes. Children of a removed node
// are re-attached to its parent; the current node is never removed.
func (s *HistoryStore) prune(q queryer, pageID string) error {
	var count int
	if err := q.QueryRow(`SELECT COUNT(*) FROM history_nodes WHERE page_id = ?`, pageID).Scan(&count); err != nil {
		return err
	}
	if count <= s.maxNodes {
		return nil
	}

	currentID, err := currentNode(q, pageID)
	if err != nil {
		return err
	}

	// Collect ids first; the single connection cannot hold an open cursor while writing.
	rows, err := q.Query(
		`SELECT id FROM history_nodes WHERE page_id = ?
		 ORDER BY rowid ASC LIMIT ?`, pageID, count-s.maxNodes,
	)
	if err != nil {
		return err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		if id != currentID {
			ids = append(ids, id)
		}
	}
	rows.Close()

	for _, id := range ids {
		var parentID sql.NullString
		if err := q.QueryRow(`SELECT parent_id FROM history_nodes WHERE id = ?`, id).Scan(&parentID); err != nil {
			return err
		}
		if _, err := q.Exec(`UPDATE history_nodes SET parent_id = ? WHERE parent_id = ?`, parentID, id); err != nil {
			return err
		}
		if _, err := q.Exec(`DELETE FROM history_nodes WHERE id = ?`, id); err != nil {
			return err
		}
	}
	return nil
}

func currentNode(q queryer, pageID string) (string, error) {
	var id string
	err := q.QueryRow(`SELECT current_node_id FROM history_state WHERE page_id = ?`, pageID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load history state: %w", err)
	}
	return id, nil
}

func setCurrent(q queryer, pageID, nodeID string) error {
	_, err := q.Exec(
		`INSERT INTO history_state (page_id, current_node_id) VALUES (?, ?)
		 ON CONFLICT(page_id) DO UPDATE SET current_node_id = excluded.current_node_id`,
		pageID, nodeID,
	)
	if err != nil {
		return fmt.Errorf("update history state: %w", err)
	}
	return nil
}
